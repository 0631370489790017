package mpeg

// Bitrate lookup table for MPEG-1 Layer III, indexed by the 4-bit header
// field, in kbit/s. Index 0 (free-format) and index 15 (reserved) are
// invalid and map to zero.
var bitrateV1L3 = [16]int{
	0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0,
}

// Sample rate lookup table for MPEG-1, indexed by the 2-bit header
// field, in Hz. Index 3 is reserved and maps to zero.
var sampleRateV1 = [4]int{
	44100, 48000, 32000, 0,
}

// BitrateV1L3 returns the MPEG-1 Layer III bitrate in kbit/s for a
// 4-bit header index, or 0 if the index is free-format or reserved.
func BitrateV1L3(index byte) int {
	if index > 15 {
		return 0
	}
	return bitrateV1L3[index]
}

// SampleRateV1 returns the MPEG-1 sample rate in Hz for a 2-bit header
// index, or 0 if the index is reserved.
func SampleRateV1(index byte) int {
	if index > 3 {
		return 0
	}
	return sampleRateV1[index]
}
