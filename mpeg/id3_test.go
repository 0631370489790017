package mpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrjpierce/mp3-file-analysis/testutil"
)

func TestSkipOffset_TagPresent(t *testing.T) {
	tag := testutil.ID3v2Tag(100)
	assert.Equal(t, 110, SkipOffset(tag))
}

func TestSkipOffset_TagAbsent(t *testing.T) {
	assert.Equal(t, 0, SkipOffset(testutil.StandardFrame()))
}

func TestSkipOffset_BufferTooShort(t *testing.T) {
	assert.Equal(t, 0, SkipOffset([]byte("ID3")))
	assert.Equal(t, 0, SkipOffset(nil))
}

func TestSkipOffset_DeclaredEndPastBuffer(t *testing.T) {
	// Tag declares 100 payload bytes but only the header is buffered:
	// treated as absent
	tag := testutil.ID3v2Tag(100)[:10]
	assert.Equal(t, 0, SkipOffset(tag))
}

func TestSkipOffset_SynchsafeDecoding(t *testing.T) {
	// 128 encodes as 0x01 0x00 in the low synchsafe bytes, not 0x80
	tag := testutil.ID3v2Tag(128)
	require.Equal(t, byte(0x01), tag[8])
	require.Equal(t, byte(0x00), tag[9])
	assert.Equal(t, 138, SkipOffset(tag))
}

func TestSkipOffset_HighBitsIgnored(t *testing.T) {
	// Bit 7 of each size byte carries no value
	tag := testutil.ID3v2Tag(100)
	tag[9] |= 0x80
	assert.Equal(t, 110, SkipOffset(tag))
}

func TestTagDeclaredEnd(t *testing.T) {
	tag := testutil.ID3v2Tag(5000)

	// Full declared end is reported even when the buffer holds only the
	// tag header, so a streaming caller knows how much to accumulate.
	end, ok := TagDeclaredEnd(tag[:10])
	require.True(t, ok)
	assert.Equal(t, 5010, end)

	_, ok = TagDeclaredEnd(testutil.StandardFrame())
	assert.False(t, ok)
}
