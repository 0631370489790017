package parser

import (
	"context"
	"fmt"
	"io"

	"github.com/mrjpierce/mp3-file-analysis/errors"
	"github.com/mrjpierce/mp3-file-analysis/mpeg"
	"github.com/mrjpierce/mp3-file-analysis/stream"
)

// ValidateConfig tunes the corruption screen. The tolerance window and
// frame caps are empirically chosen heuristics, not format invariants,
// so they are configuration rather than constants.
type ValidateConfig struct {
	// MaxFrames caps how many leading frames the screen visits
	MaxFrames int

	// ConsistencyFrames caps how many leading frames must agree on
	// version, layer and sample rate
	ConsistencyFrames int

	// AlignmentTolerance is how many bytes past the arithmetically
	// expected offset the next frame's sync may appear before the
	// stream is flagged as misaligned. Padding shifts boundaries by a
	// byte; corruption shifts them much further.
	AlignmentTolerance int
}

// DefaultValidateConfig returns the standard screening parameters.
func DefaultValidateConfig() ValidateConfig {
	return ValidateConfig{
		MaxFrames:          10,
		ConsistencyFrames:  5,
		AlignmentTolerance: 3,
	}
}

// normalized replaces meaningless zero values with the defaults. A
// screen capped at zero frames would pass judgment on streams it never
// looked at, so MaxFrames and ConsistencyFrames fall back to the
// standard caps. A zero AlignmentTolerance stays: it demands exact
// frame alignment, which is a legitimate strict setting.
func (cfg ValidateConfig) normalized() ValidateConfig {
	def := DefaultValidateConfig()
	if cfg.MaxFrames <= 0 {
		cfg.MaxFrames = def.MaxFrames
	}
	if cfg.ConsistencyFrames <= 0 {
		cfg.ConsistencyFrames = def.ConsistencyFrames
	}
	if cfg.ConsistencyFrames > cfg.MaxFrames {
		cfg.ConsistencyFrames = cfg.MaxFrames
	}
	if cfg.AlignmentTolerance < 0 {
		cfg.AlignmentTolerance = def.AlignmentTolerance
	}
	return cfg
}

// validateFrames is the shared corruption screen: it walks up to
// cfg.MaxFrames leading frames, recomputing each length through the
// strict parse path, checking bounds, cross-checking encoding
// parameters across the first few frames, and verifying each next
// frame lands within tolerance of its expected offset.
//
// The alignment check is suppressed for the very first frame pair: no
// baseline exists yet, and leading garbage before the first real sync
// would otherwise produce false positives.
func validateFrames(ctx context.Context, source io.Reader, codec Codec, cfg ValidateConfig) (err error) {
	it := stream.NewIterator(source, codec)

	// Anything unclassified thrown while visiting a frame reports as
	// generic corruption at that position rather than leaking
	var position int64
	defer func() {
		if r := recover(); r != nil {
			err = errors.WrapInvalid(errors.ErrCorruptedFrame, "Parser", "Validate",
				fmt.Sprintf("unexpected failure at position %d: %v", position, r))
		}
	}()

	var (
		visited  int
		prev     *stream.FrameDescriptor
		prevInfo bool
		baseline mpeg.HeaderFields
	)

	sawStreamEnd := false
	for visited < cfg.MaxFrames {
		frame, iterErr := it.Next(ctx)
		if iterErr == io.EOF {
			sawStreamEnd = true
			break
		}
		if iterErr != nil {
			return iterErr
		}
		position = frame.Offset

		// Strict parse path: a frame the scan committed to must have a
		// valid encoding and fit inside the window it came from
		length, parseErr := codec.ParseLength(frame.Window, frame.Start)
		if parseErr != nil {
			return parseErr
		}
		if frame.Start+length > len(frame.Window) {
			return errors.WrapInvalid(errors.ErrTruncatedFrame, "Parser", "Validate",
				fmt.Sprintf("frame at position %d declares %d bytes past available data",
					frame.Offset, length))
		}

		info := codec.IsInfoFrame(frame.Window, frame.Start)

		// Encoding parameters must agree across the leading frames; a
		// stream that changes sample rate five frames in is corrupt,
		// not adaptive
		fields, _ := mpeg.ParseHeaderFields(frame.Header[:], 0)
		if visited == 0 {
			baseline = fields
		} else if visited < cfg.ConsistencyFrames {
			if fields.Version != baseline.Version ||
				fields.Layer != baseline.Layer ||
				fields.SampleRateIndex != baseline.SampleRateIndex {
				return errors.WrapInvalid(errors.ErrCorruptedFrame, "Parser", "Validate",
					fmt.Sprintf("encoding parameters changed at position %d", frame.Offset))
			}
		}

		// Alignment: the frame must start within tolerance of where the
		// previous frame's length said it would. Suppressed for the
		// first pair (no baseline) and after summary frames.
		if prev != nil && visited >= 2 && !prevInfo {
			expected := prev.Offset + int64(prev.Length)
			drift := frame.Offset - expected
			if drift < 0 || drift > int64(cfg.AlignmentTolerance) {
				return errors.WrapInvalid(errors.ErrFrameAlignment, "Parser", "Validate",
					fmt.Sprintf("frame expected near position %d, found at %d", expected, frame.Offset))
			}
		}

		prev = frame
		prevInfo = info
		visited++
	}

	if visited == 0 {
		return classifyEmptyWalk(it, codec)
	}

	// A stream that ends inside a declared frame is truncated, not
	// merely short. Only observable when the walk reached the stream
	// end within the screening cap.
	if sawStreamEnd && it.TruncatedTail() {
		return errors.WrapInvalid(errors.ErrTruncatedFrame, "Parser", "Validate",
			"stream ends inside a declared frame")
	}
	return nil
}

// classifyEmptyWalk distinguishes the three ways a walk can find
// nothing: the source had no bytes, too few bytes for a minimal frame,
// or plenty of bytes with no usable frame in them.
func classifyEmptyWalk(it *stream.Iterator, codec Codec) error {
	consumed := it.BytesConsumed()
	switch {
	case consumed == 0:
		return errors.WrapInvalid(errors.ErrEmptyFile, "Parser", "walk", "source inspection")
	case consumed < int64(codec.MinFrameSize()):
		return errors.WrapInvalid(errors.ErrFileTooSmall, "Parser", "walk",
			fmt.Sprintf("%d bytes is below the minimum frame size %d", consumed, codec.MinFrameSize()))
	case it.TruncatedTail():
		return errors.WrapInvalid(errors.ErrTruncatedFrame, "Parser", "walk",
			"only frame in the stream overruns the available bytes")
	default:
		return errors.WrapInvalid(errors.ErrNoValidFrames, "Parser", "walk",
			fmt.Sprintf("no usable frames in %d bytes", consumed))
	}
}
