package mpeg

import (
	"bytes"
	"fmt"

	"github.com/mrjpierce/mp3-file-analysis/errors"
)

// HeaderSize is the size of an MPEG audio frame header in bytes
const HeaderSize = 4

const (
	// channelModeMono is the two-bit channel mode value for single channel
	channelModeMono = 0x3
	// emphasisReserved is the reserved two-bit emphasis value
	emphasisReserved = 0x2
)

// Side information block sizes for MPEG-1 Layer III. The Xing/Info tag
// sits immediately after the header and side information, so its offset
// depends on the channel mode.
const (
	sideInfoV1Mono   = 17
	sideInfoV1Stereo = 32
)

// Summary-frame magic strings. Encoders embed a VBR index inside a
// frame-shaped block identified by one of these tags; such frames occupy
// stream positions like real frames but carry no audio.
var (
	xingMagic = []byte("Xing")
	infoMagic = []byte("Info")
)

// HeaderFields holds the raw bit fields extracted from a 4-byte frame
// header. Fields are indexes into the format lookup tables, not decoded
// values.
type HeaderFields struct {
	Version         Version
	Layer           Layer
	BitrateIndex    byte
	SampleRateIndex byte
	Padding         byte
	ChannelMode     byte
	Emphasis        byte
}

// IsSync reports whether a frame sync pattern starts at pos: byte 0xFF
// followed by a byte with the top three bits set. The pattern is a
// probabilistic anchor only; arbitrary audio data produces false
// positives, so callers must re-validate with field constraints.
func IsSync(buf []byte, pos int) bool {
	if pos < 0 || pos+1 >= len(buf) {
		return false
	}
	return buf[pos] == 0xFF && buf[pos+1]&0xE0 == 0xE0
}

// ParseHeaderFields extracts the raw bit fields from the 4-byte header
// at pos. Returns false if fewer than HeaderSize bytes are available or
// the sync pattern is absent.
func ParseHeaderFields(buf []byte, pos int) (HeaderFields, bool) {
	if pos < 0 || pos+HeaderSize > len(buf) || !IsSync(buf, pos) {
		return HeaderFields{}, false
	}

	return HeaderFields{
		Version:         decodeVersion((buf[pos+1] >> 3) & 0x3),
		Layer:           decodeLayer((buf[pos+1] >> 1) & 0x3),
		BitrateIndex:    (buf[pos+2] >> 4) & 0xF,
		SampleRateIndex: (buf[pos+2] >> 2) & 0x3,
		Padding:         (buf[pos+2] >> 1) & 0x1,
		ChannelMode:     (buf[pos+3] >> 6) & 0x3,
		Emphasis:        buf[pos+3] & 0x3,
	}, true
}

// IsFormatMemberV1L3 reports whether the header at pos passes the full
// MPEG-1 Layer III field constraints beyond the sync pattern: matching
// version and layer, a usable bitrate index, a non-reserved sample-rate
// index, and a non-reserved emphasis value. Never returns an error; any
// violation yields false.
func IsFormatMemberV1L3(buf []byte, pos int) bool {
	fields, ok := ParseHeaderFields(buf, pos)
	if !ok {
		return false
	}
	if fields.Version != Version1 || fields.Layer != Layer3 {
		return false
	}
	if BitrateV1L3(fields.BitrateIndex) == 0 {
		return false
	}
	if SampleRateV1(fields.SampleRateIndex) == 0 {
		return false
	}
	if fields.Emphasis == emphasisReserved {
		return false
	}
	return true
}

// ComputeLengthV1L3 returns the total MPEG-1 Layer III frame length in
// bytes (header included) for exactly 4 header bytes:
//
//	floor(144 * bitrate / sample_rate) + padding
//
// Returns 0 if the bitrate or sample-rate encoding is invalid. The zero
// sentinel means "not a usable frame here, keep scanning"; this function
// never fails.
func ComputeLengthV1L3(header []byte) int {
	if len(header) < HeaderSize {
		return 0
	}

	bitrate := BitrateV1L3((header[2] >> 4) & 0xF)
	sampleRate := SampleRateV1((header[2] >> 2) & 0x3)
	if bitrate == 0 || sampleRate == 0 {
		return 0
	}
	padding := int((header[2] >> 1) & 0x1)

	return 144*bitrate*1000/sampleRate + padding
}

// ParseLengthV1L3 is the strict variant of ComputeLengthV1L3 for call
// sites that have already committed to treating pos as a real frame: an
// invalid bitrate/sample-rate encoding surfaces as ErrCorruptedHeader
// instead of the zero sentinel.
func ParseLengthV1L3(buf []byte, pos int) (int, error) {
	if pos < 0 || pos+HeaderSize > len(buf) {
		return 0, errors.WrapInvalid(errors.ErrCorruptedHeader, "Codec", "ParseLength",
			fmt.Sprintf("header bounds at position %d", pos))
	}

	length := ComputeLengthV1L3(buf[pos : pos+HeaderSize])
	if length == 0 {
		return 0, errors.WrapInvalid(errors.ErrCorruptedHeader, "Codec", "ParseLength",
			fmt.Sprintf("bitrate/sample-rate encoding at position %d", pos))
	}
	return length, nil
}

// IsInfoFrameV1L3 reports whether the frame at pos is a Xing/Info VBR
// summary frame. The magic string sits after the header and the
// channel-mode-dependent side information block. Summary frames consume
// stream positions like real frames but must be excluded from the audio
// frame count.
func IsInfoFrameV1L3(buf []byte, pos int) bool {
	fields, ok := ParseHeaderFields(buf, pos)
	if !ok {
		return false
	}

	sideInfo := sideInfoV1Stereo
	if fields.ChannelMode == channelModeMono {
		sideInfo = sideInfoV1Mono
	}

	magicAt := pos + HeaderSize + sideInfo
	if magicAt+len(xingMagic) > len(buf) {
		return false
	}

	tag := buf[magicAt : magicAt+len(xingMagic)]
	return bytes.Equal(tag, xingMagic) || bytes.Equal(tag, infoMagic)
}

// MinFrameSizeV1L3 returns the smallest possible MPEG-1 Layer III frame
// length: the lowest valid bitrate (32 kbit/s) at the highest sample
// rate (48 kHz) with no padding.
func MinFrameSizeV1L3() int {
	return 144 * 32 * 1000 / 48000
}
