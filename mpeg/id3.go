package mpeg

// ID3v2HeaderSize is the fixed size of an ID3v2 tag header
const ID3v2HeaderSize = 10

// id3Magic is the 3-byte prefix identifying an ID3v2 tag
var id3Magic = []byte("ID3")

// hasID3Magic reports whether buf starts with the ID3v2 magic prefix
func hasID3Magic(buf []byte) bool {
	return len(buf) >= len(id3Magic) &&
		buf[0] == id3Magic[0] && buf[1] == id3Magic[1] && buf[2] == id3Magic[2]
}

// synchsafeSize decodes the 28-bit synchsafe big-endian size from ID3v2
// header bytes 6-9. Only 7 bits of each byte carry value, which keeps
// the size field free of accidental frame sync patterns.
func synchsafeSize(buf []byte) int {
	return int(buf[6]&0x7F)<<21 |
		int(buf[7]&0x7F)<<14 |
		int(buf[8]&0x7F)<<7 |
		int(buf[9]&0x7F)
}

// TagDeclaredEnd returns the declared end offset of a leading ID3v2 tag
// (header plus payload) and whether a tag header is present at all.
// Unlike SkipOffset it reports the declared size even when the buffer
// does not yet hold the whole tag, which lets a streaming caller keep
// accumulating until the tag end is reachable.
func TagDeclaredEnd(buf []byte) (int, bool) {
	if len(buf) < ID3v2HeaderSize || !hasID3Magic(buf) {
		return 0, false
	}
	return ID3v2HeaderSize + synchsafeSize(buf), true
}

// SkipOffset returns the offset at which frame scanning should resume
// after a leading ID3v2 metadata tag, or 0 if no tag is present or the
// declared tag end exceeds the available buffer. Requires at least 10
// buffered bytes to consult the tag header.
func SkipOffset(buf []byte) int {
	end, ok := TagDeclaredEnd(buf)
	if !ok || end > len(buf) {
		return 0
	}
	return end
}
