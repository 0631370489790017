package parser

import (
	"context"
	"io"

	"github.com/mrjpierce/mp3-file-analysis/mpeg"
	"github.com/mrjpierce/mp3-file-analysis/stream"
)

// Codec is the format-specific capability a parser contributes to the
// shared walk algorithms: sync detection, format membership, length
// computation (lenient and strict), the minimum frame size, and
// summary-frame identification. Implementations are stateless and safe
// to share across concurrent requests.
type Codec interface {
	stream.FrameScanner

	// ParseLength is the strict variant of ComputeLength: an invalid
	// encoding surfaces as a corrupted-header error instead of the
	// zero sentinel
	ParseLength(buf []byte, pos int) (int, error)

	// MinFrameSize returns the smallest possible frame length for the
	// format
	MinFrameSize() int

	// IsInfoFrame reports whether the frame at pos is a VBR summary
	// frame that consumes a stream position but carries no audio
	IsInfoFrame(buf []byte, pos int) bool
}

// Parser analyzes one concrete audio format. The shared validate and
// count algorithms are composed with the format's Codec by injection;
// adding a format means implementing a Codec, not modifying the
// algorithms.
type Parser interface {
	Codec

	// Format returns the (version, layer) pair this parser handles
	Format() mpeg.FormatDescriptor

	// Validate screens the leading frames of the stream for
	// corruption: strict length parsing, bounds checks, and frame
	// alignment within tolerance
	Validate(ctx context.Context, source io.Reader) error

	// CountFrames walks the stream to exhaustion and returns the
	// number of audio frames, excluding summary frames
	CountFrames(ctx context.Context, source io.Reader) (int, error)
}

// formatParser composes a Codec with the shared walk algorithms.
type formatParser struct {
	Codec

	format mpeg.FormatDescriptor
	cfg    ValidateConfig
}

// Format returns the (version, layer) pair this parser handles
func (p *formatParser) Format() mpeg.FormatDescriptor {
	return p.format
}

// Validate runs the shared corruption screen over the leading frames
func (p *formatParser) Validate(ctx context.Context, source io.Reader) error {
	return validateFrames(ctx, source, p.Codec, p.cfg)
}

// CountFrames runs the shared full-stream frame count
func (p *formatParser) CountFrames(ctx context.Context, source io.Reader) (int, error) {
	return countFrames(ctx, source, p.Codec)
}
