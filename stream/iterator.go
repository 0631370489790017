package stream

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/mrjpierce/mp3-file-analysis/errors"
	"github.com/mrjpierce/mp3-file-analysis/mpeg"
)

// Default iterator tuning. Chunk size matches a typical object-store
// read buffer; the lookback keeps enough bytes behind the cursor for a
// header re-read after compaction.
const (
	DefaultChunkSize = 32 * 1024
	defaultLookback  = 2 * mpeg.HeaderSize
)

// FrameScanner is the format capability the iterator needs to locate
// frames: sync detection, full field validation, and the lightweight
// length computation with its zero sentinel. A format-specific parser
// provides the implementation.
type FrameScanner interface {
	// IsSync reports a sync pattern at pos
	IsSync(buf []byte, pos int) bool
	// IsFormatMember reports whether the header at pos satisfies all
	// format field constraints; never fails
	IsFormatMember(buf []byte, pos int) bool
	// ComputeLength returns the frame length for 4 header bytes, or 0
	// if the encoding is invalid
	ComputeLength(header []byte) int
}

// FrameDescriptor describes one located frame. It is ephemeral: Window
// aliases the iterator's internal buffer and is valid only until the
// next call to Next, which may compact the buffer underneath it.
type FrameDescriptor struct {
	// Start is the frame's position within Window
	Start int
	// Header holds the raw 4 header bytes
	Header [4]byte
	// Length is the computed total frame length in bytes
	Length int
	// Window is the buffer window the frame was located in;
	// Start+Length never exceeds len(Window) at the moment of emission
	Window []byte
	// Offset is the frame's absolute position in the source stream,
	// stable across buffer compaction
	Offset int64
}

// Iterator walks an MPEG audio byte stream one frame at a time. It
// consumes the source in chunks of arbitrary size, maintains a rolling
// buffer with a scan cursor, skips a leading ID3v2 tag exactly once,
// and keeps memory bounded by discarding bytes the scan has moved past.
//
// Results are identical whether the source delivers one contiguous
// buffer or any sequence of non-empty chunks.
//
// Only one Next call may be outstanding at a time; a concurrent second
// call fails with ErrIteratorBusy without disturbing iterator state.
// An Iterator is scoped to a single traversal and must not be reused
// across streams.
type Iterator struct {
	source  io.Reader
	scanner FrameScanner

	chunkSize int
	lookback  int

	buf      []byte
	readBuf  []byte
	cursor   int
	base     int64 // absolute stream offset of buf[0]
	tagDone   bool
	eof       bool
	truncated bool
	err       error // terminal source error
	busy      atomic.Bool
	consumed  int64
}

// Option configures an Iterator
type Option func(*Iterator)

// WithChunkSize sets the read chunk size used against the source
func WithChunkSize(n int) Option {
	return func(it *Iterator) {
		if n > 0 {
			it.chunkSize = n
		}
	}
}

// NewIterator creates an iterator over source using the given scanner.
func NewIterator(source io.Reader, scanner FrameScanner, opts ...Option) *Iterator {
	it := &Iterator{
		source:    source,
		scanner:   scanner,
		chunkSize: DefaultChunkSize,
		lookback:  defaultLookback,
	}
	for _, opt := range opts {
		opt(it)
	}
	it.readBuf = make([]byte, it.chunkSize)
	return it
}

// BytesConsumed returns the total number of source bytes read so far.
// The parser uses it to distinguish an empty source from a too-small
// one when no frames were found.
func (it *Iterator) BytesConsumed() int64 {
	return it.consumed
}

// TruncatedTail reports whether the stream ended inside a frame: a
// valid header was located whose declared length overruns the bytes
// the source could deliver. The partial frame is never emitted; the
// validator consults this flag to classify the stream as truncated.
func (it *Iterator) TruncatedTail() bool {
	return it.truncated
}

// Next returns the next frame in the stream. It suspends (reading more
// chunks from the source) until a complete frame is buffered, the
// source is exhausted, or the source fails.
//
// Terminal states: io.EOF means the stream ended cleanly with no
// further frames; a source error is recorded and returned from every
// subsequent call.
func (it *Iterator) Next(ctx context.Context) (*FrameDescriptor, error) {
	if !it.busy.CompareAndSwap(false, true) {
		return nil, errors.WrapInvalid(errors.ErrIteratorBusy, "Iterator", "Next",
			"pending call check")
	}
	defer it.busy.Store(false)

	for {
		if it.err != nil {
			return nil, it.err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !it.tagDone && !it.trySkipTag() {
			// Tag header (or the full declared tag) not buffered yet
			it.fill()
			continue
		}

		if frame := it.scan(); frame != nil {
			return frame, nil
		}

		if it.eof {
			return nil, io.EOF
		}

		it.compact()
		it.fill()
	}
}

// trySkipTag consults the ID3v2 tag skipper exactly once per stream,
// discarding the tag prefix from the buffer. Returns false while more
// data is needed to decide.
func (it *Iterator) trySkipTag() bool {
	if len(it.buf) < mpeg.ID3v2HeaderSize {
		if !it.eof {
			return false
		}
		// Source too small to carry a tag header; scan what is there
		it.tagDone = true
		return true
	}

	end, ok := mpeg.TagDeclaredEnd(it.buf)
	if !ok {
		it.tagDone = true
		return true
	}

	// Wait until the declared tag end is buffered, so the skip does
	// not depend on how the source happened to be chunked
	if end > len(it.buf) && !it.eof {
		return false
	}
	if end > len(it.buf) {
		end = len(it.buf)
	}

	it.buf = it.buf[end:]
	it.base += int64(end)
	it.cursor = 0
	it.tagDone = true
	return true
}

// scan advances the cursor over buffered bytes until a complete valid
// frame fits, returning its descriptor, or nil when more data is
// needed. False sync matches and invalid headers advance the cursor by
// one byte; an emitted frame advances the cursor past the whole frame
// body so known-good bytes are never re-scanned.
func (it *Iterator) scan() *FrameDescriptor {
	for it.cursor+mpeg.HeaderSize <= len(it.buf) {
		if !it.scanner.IsSync(it.buf, it.cursor) || !it.scanner.IsFormatMember(it.buf, it.cursor) {
			it.cursor++
			continue
		}

		length := it.scanner.ComputeLength(it.buf[it.cursor : it.cursor+mpeg.HeaderSize])
		if length == 0 {
			// Sync false-positive with an invalid encoding
			it.cursor++
			continue
		}

		if it.cursor+length > len(it.buf) {
			if it.eof {
				// Nothing more is coming; the partial frame stays
				// unemitted
				it.truncated = true
				return nil
			}
			// Frame extends past buffered data: hold the cursor and
			// await more input rather than emit a short frame
			return nil
		}

		frame := &FrameDescriptor{
			Start:  it.cursor,
			Header: [4]byte(it.buf[it.cursor : it.cursor+mpeg.HeaderSize]),
			Length: length,
			Window: it.buf,
			Offset: it.base + int64(it.cursor),
		}
		it.cursor += length
		return frame
	}
	return nil
}

// compact discards bytes well behind the cursor. No future scan
// revisits them, so the rolling buffer stays bounded by the chunk size
// plus one frame regardless of total stream length.
func (it *Iterator) compact() {
	drop := it.cursor - it.lookback
	if drop <= 0 {
		return
	}
	n := copy(it.buf, it.buf[drop:])
	it.buf = it.buf[:n]
	it.base += int64(drop)
	it.cursor = it.lookback
}

// fill reads one chunk from the source into the rolling buffer,
// recording exhaustion and terminal errors.
func (it *Iterator) fill() {
	if it.eof || it.err != nil {
		return
	}

	n, err := it.source.Read(it.readBuf)
	if n > 0 {
		it.buf = append(it.buf, it.readBuf[:n]...)
		it.consumed += int64(n)
	}
	if err == io.EOF {
		it.eof = true
	} else if err != nil {
		it.err = errors.WrapTransient(err, "Iterator", "fill", "source read")
	}
}
