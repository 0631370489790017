package mpeg

import "io"

// DetectBudget is the bounded number of leading bytes the detector
// accumulates before giving up on classification.
const DetectBudget = 8 * 1024

// DetectFormat classifies a stream's format family from its first
// ~8KB. It skips a leading ID3v2 tag, scans byte-by-byte for the first
// sync pattern, and decodes the version/layer fields directly. This is
// classification, not verification: no frame-length validation happens
// here, and a false sync match is caught later by the parser.
//
// An empty stream, a stream with fewer than 4 usable bytes, or a stream
// with no sync pattern inside the budget yields an Unknown/Unknown
// descriptor whose Diagnostic explains why.
func DetectFormat(r io.Reader) FormatDescriptor {
	buf, err := io.ReadAll(io.LimitReader(r, DetectBudget))
	if err != nil {
		return FormatDescriptor{Diagnostic: "read failed: " + err.Error()}
	}
	return DetectFormatBytes(buf)
}

// DetectFormatBytes classifies from an already-buffered prefix.
func DetectFormatBytes(buf []byte) FormatDescriptor {
	if len(buf) == 0 {
		return FormatDescriptor{Diagnostic: "empty stream"}
	}

	start := SkipOffset(buf)
	usable := buf[start:]
	if len(usable) < HeaderSize {
		return FormatDescriptor{Diagnostic: "stream too small"}
	}

	for pos := 0; pos+1 < len(usable); pos++ {
		if !IsSync(usable, pos) {
			continue
		}
		fields, ok := ParseHeaderFields(usable, pos)
		if !ok {
			continue
		}
		return FormatDescriptor{Version: fields.Version, Layer: fields.Layer}
	}

	return FormatDescriptor{Diagnostic: "no frame sync found"}
}
