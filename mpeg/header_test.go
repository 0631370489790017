package mpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrjpierce/mp3-file-analysis/errors"
	"github.com/mrjpierce/mp3-file-analysis/testutil"
)

func TestIsSync(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		pos  int
		want bool
	}{
		{"valid sync", []byte{0xFF, 0xFB, 0x90, 0x00}, 0, true},
		{"valid sync mid-buffer", []byte{0x00, 0xFF, 0xE0}, 1, true},
		{"top three bits only", []byte{0xFF, 0xE0}, 0, true},
		{"second byte misses bits", []byte{0xFF, 0xC0}, 0, false},
		{"first byte not FF", []byte{0xFE, 0xFB}, 0, false},
		{"position at last byte", []byte{0x00, 0xFF}, 1, false},
		{"negative position", []byte{0xFF, 0xFB}, -1, false},
		{"empty buffer", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSync(tt.buf, tt.pos))
		})
	}
}

func TestParseHeaderFields(t *testing.T) {
	fields, ok := ParseHeaderFields([]byte{0xFF, 0xFB, 0x90, 0x00}, 0)
	require.True(t, ok)

	assert.Equal(t, Version1, fields.Version)
	assert.Equal(t, Layer3, fields.Layer)
	assert.Equal(t, byte(0x9), fields.BitrateIndex)
	assert.Equal(t, byte(0x0), fields.SampleRateIndex)
	assert.Equal(t, byte(0x0), fields.Padding)
	assert.Equal(t, byte(0x0), fields.ChannelMode)
	assert.Equal(t, byte(0x0), fields.Emphasis)
}

func TestParseHeaderFields_TooShort(t *testing.T) {
	_, ok := ParseHeaderFields([]byte{0xFF, 0xFB, 0x90}, 0)
	assert.False(t, ok)
}

func TestIsFormatMemberV1L3(t *testing.T) {
	tests := []struct {
		name   string
		header []byte
		want   bool
	}{
		{"valid 128kbps 44.1kHz", []byte{0xFF, 0xFB, 0x90, 0x00}, true},
		{"valid with padding", []byte{0xFF, 0xFB, 0x92, 0x00}, true},
		// 0xF2: version bits 10 = MPEG-2
		{"wrong version", []byte{0xFF, 0xF3, 0x90, 0x00}, false},
		// layer bits 10 = Layer II
		{"wrong layer", []byte{0xFF, 0xFD, 0x90, 0x00}, false},
		{"free-format bitrate index 0", []byte{0xFF, 0xFB, 0x00, 0x00}, false},
		{"reserved bitrate index 15", []byte{0xFF, 0xFB, 0xF0, 0x00}, false},
		{"reserved sample-rate index 3", []byte{0xFF, 0xFB, 0x9C, 0x00}, false},
		{"reserved emphasis", []byte{0xFF, 0xFB, 0x90, 0x02}, false},
		{"no sync", []byte{0x00, 0xFB, 0x90, 0x00}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFormatMemberV1L3(tt.header, 0))
		})
	}
}

func TestComputeLengthV1L3(t *testing.T) {
	// 144 * 128000 / 44100 = 417 (truncated)
	assert.Equal(t, 417, ComputeLengthV1L3([]byte{0xFF, 0xFB, 0x90, 0x00}))

	// padding adds one byte
	assert.Equal(t, 418, ComputeLengthV1L3([]byte{0xFF, 0xFB, 0x92, 0x00}))

	// 320 kbit/s at 44.1 kHz: 144 * 320000 / 44100 = 1044
	assert.Equal(t, 1044, ComputeLengthV1L3([]byte{0xFF, 0xFB, 0xE0, 0x00}))

	// 32 kbit/s at 48 kHz is the minimum: 144 * 32000 / 48000 = 96
	assert.Equal(t, 96, ComputeLengthV1L3([]byte{0xFF, 0xFB, 0x14, 0x00}))
}

func TestComputeLengthV1L3_ZeroSentinel(t *testing.T) {
	// bitrate index 0 means free-format, which the scanner treats as
	// "not a usable frame"
	assert.Equal(t, 0, ComputeLengthV1L3([]byte{0xFF, 0xFB, 0x00, 0x00}))
	// reserved bitrate index 15
	assert.Equal(t, 0, ComputeLengthV1L3([]byte{0xFF, 0xFB, 0xF0, 0x00}))
	// reserved sample-rate index 3
	assert.Equal(t, 0, ComputeLengthV1L3([]byte{0xFF, 0xFB, 0x9C, 0x00}))
	// short buffer
	assert.Equal(t, 0, ComputeLengthV1L3([]byte{0xFF, 0xFB}))
}

func TestParseLengthV1L3(t *testing.T) {
	length, err := ParseLengthV1L3([]byte{0xFF, 0xFB, 0x90, 0x00}, 0)
	require.NoError(t, err)
	assert.Equal(t, 417, length)
}

func TestParseLengthV1L3_CorruptedHeader(t *testing.T) {
	_, err := ParseLengthV1L3([]byte{0xFF, 0xFB, 0x00, 0x00}, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCorruptedHeader))

	_, err = ParseLengthV1L3([]byte{0xFF, 0xFB}, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCorruptedHeader))
}

func TestIsInfoFrameV1L3(t *testing.T) {
	assert.True(t, IsInfoFrameV1L3(testutil.XingFrame(), 0))
	assert.True(t, IsInfoFrameV1L3(testutil.InfoFrame(), 0))
	assert.True(t, IsInfoFrameV1L3(testutil.MonoXingFrame(), 0))
	assert.False(t, IsInfoFrameV1L3(testutil.StandardFrame(), 0))
}

func TestIsInfoFrameV1L3_MagicPastBuffer(t *testing.T) {
	// Magic offset beyond the buffered bytes must not panic
	frame := testutil.XingFrame()[:20]
	assert.False(t, IsInfoFrameV1L3(frame, 0))
}

func TestIsInfoFrameV1L3_MonoOffsetDiffers(t *testing.T) {
	// A mono frame with the magic at the stereo offset is not a
	// summary frame; the side information block is only 17 bytes.
	header := StandardHeaderMono(t)
	frame := make([]byte, testutil.StandardFrameLength)
	copy(frame, header)
	copy(frame[4+32:], "Xing")
	assert.False(t, IsInfoFrameV1L3(frame, 0))
}

// StandardHeaderMono returns the standard test header with mono channel mode
func StandardHeaderMono(t *testing.T) []byte {
	t.Helper()
	return []byte{0xFF, 0xFB, 0x90, 0xC0}
}

func TestMinFrameSizeV1L3(t *testing.T) {
	assert.Equal(t, 96, MinFrameSizeV1L3())
}
