package parser

import (
	"context"
	"fmt"
	"io"

	"github.com/mrjpierce/mp3-file-analysis/errors"
	"github.com/mrjpierce/mp3-file-analysis/stream"
)

// countFrames walks the stream to exhaustion, counting every yielded
// frame that is not a VBR summary frame. Summary frames consume their
// stream positions but never the counter. A walk that finds nothing
// fails with the kind matching what the source actually contained.
func countFrames(ctx context.Context, source io.Reader, codec Codec) (count int, err error) {
	it := stream.NewIterator(source, codec)

	var position int64
	defer func() {
		if r := recover(); r != nil {
			count = 0
			err = errors.WrapInvalid(errors.ErrCorruptedFrame, "Parser", "CountFrames",
				fmt.Sprintf("unexpected failure at position %d: %v", position, r))
		}
	}()

	for {
		frame, iterErr := it.Next(ctx)
		if iterErr == io.EOF {
			break
		}
		if iterErr != nil {
			return 0, iterErr
		}
		position = frame.Offset

		if codec.IsInfoFrame(frame.Window, frame.Start) {
			continue
		}
		count++
	}

	if count == 0 {
		return 0, classifyEmptyWalk(it, codec)
	}
	return count, nil
}
