package testutil

// MP3 test data generators. These build byte-accurate MPEG-1 Layer III
// streams (frames, ID3v2 tags, Xing summary frames) so parser and
// iterator tests can assert against known frame boundaries without
// shipping binary fixtures.

// StandardHeader is a 128 kbit/s, 44.1 kHz MPEG-1 Layer III frame
// header with no padding. Its computed frame length is 417 bytes.
var StandardHeader = [4]byte{0xFF, 0xFB, 0x90, 0x00}

// StandardFrameLength is the total length of a frame built from
// StandardHeader, header included.
const StandardFrameLength = 417

// Frame returns one complete frame: the given header followed by a
// zero body padded to the header's computed length. The caller supplies
// the total length to keep test expectations explicit.
func Frame(header [4]byte, totalLength int) []byte {
	frame := make([]byte, totalLength)
	copy(frame, header[:])
	return frame
}

// StandardFrame returns one 417-byte frame built from StandardHeader.
func StandardFrame() []byte {
	return Frame(StandardHeader, StandardFrameLength)
}

// Frames returns n standard frames back-to-back.
func Frames(n int) []byte {
	stream := make([]byte, 0, n*StandardFrameLength)
	for i := 0; i < n; i++ {
		stream = append(stream, StandardFrame()...)
	}
	return stream
}

// ID3v2Tag returns a complete ID3v2 tag (10-byte header plus payload)
// whose synchsafe size field declares payloadSize bytes.
func ID3v2Tag(payloadSize int) []byte {
	tag := make([]byte, 10+payloadSize)
	copy(tag, "ID3")
	tag[3] = 0x04 // v2.4
	tag[6] = byte(payloadSize>>21) & 0x7F
	tag[7] = byte(payloadSize>>14) & 0x7F
	tag[8] = byte(payloadSize>>7) & 0x7F
	tag[9] = byte(payloadSize) & 0x7F
	return tag
}

// XingFrame returns a standard-length frame carrying a Xing VBR tag.
// StandardHeader encodes joint-stereo-free channel mode 0, so the side
// information block is 32 bytes and the magic lands at offset 36.
func XingFrame() []byte {
	frame := StandardFrame()
	copy(frame[4+32:], "Xing")
	return frame
}

// InfoFrame is XingFrame with the CBR "Info" variant of the magic.
func InfoFrame() []byte {
	frame := StandardFrame()
	copy(frame[4+32:], "Info")
	return frame
}

// MonoXingFrame returns a Xing frame with the mono channel mode set, so
// the side information block is 17 bytes and the magic lands at offset 21.
func MonoXingFrame() []byte {
	header := StandardHeader
	header[3] |= 0xC0 // channel mode 3 = mono
	frame := Frame(header, StandardFrameLength)
	copy(frame[4+17:], "Xing")
	return frame
}
