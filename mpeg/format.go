package mpeg

import "fmt"

// Version identifies the MPEG audio version encoded in a frame header.
type Version int

// MPEG audio versions. The two-bit header field maps 0 to Version2_5,
// 2 to Version2 and 3 to Version1; value 1 is reserved.
const (
	VersionUnknown Version = iota
	Version1
	Version2
	Version2_5
)

// String returns the human-readable version name
func (v Version) String() string {
	switch v {
	case Version1:
		return "MPEG-1"
	case Version2:
		return "MPEG-2"
	case Version2_5:
		return "MPEG-2.5"
	default:
		return "unknown"
	}
}

// Layer identifies the MPEG audio layer encoded in a frame header.
type Layer int

// MPEG audio layers. The two-bit header field maps 1 to Layer3,
// 2 to Layer2 and 3 to Layer1; value 0 is reserved.
const (
	LayerUnknown Layer = iota
	Layer1
	Layer2
	Layer3
)

// String returns the human-readable layer name
func (l Layer) String() string {
	switch l {
	case Layer1:
		return "Layer I"
	case Layer2:
		return "Layer II"
	case Layer3:
		return "Layer III"
	default:
		return "unknown"
	}
}

// FormatDescriptor classifies a stream's format family. It is computed
// once per input stream from the first frame header found and is
// immutable thereafter.
type FormatDescriptor struct {
	Version Version
	Layer   Layer

	// Diagnostic carries detail when classification failed (empty
	// stream, stream too small, no sync pattern found). Empty for a
	// successfully classified stream.
	Diagnostic string
}

// Known reports whether both version and layer were classified
func (f FormatDescriptor) Known() bool {
	return f.Version != VersionUnknown && f.Layer != LayerUnknown
}

// Label returns a human-readable description of the format
func (f FormatDescriptor) Label() string {
	if !f.Known() {
		if f.Diagnostic != "" {
			return fmt.Sprintf("unknown format (%s)", f.Diagnostic)
		}
		return "unknown format"
	}
	return f.Version.String() + " " + f.Layer.String()
}

// decodeVersion maps the raw two-bit header field to a Version
func decodeVersion(bits byte) Version {
	switch bits {
	case 0x0:
		return Version2_5
	case 0x2:
		return Version2
	case 0x3:
		return Version1
	default:
		return VersionUnknown
	}
}

// decodeLayer maps the raw two-bit header field to a Layer
func decodeLayer(bits byte) Layer {
	switch bits {
	case 0x1:
		return Layer3
	case 0x2:
		return Layer2
	case 0x3:
		return Layer1
	default:
		return LayerUnknown
	}
}
