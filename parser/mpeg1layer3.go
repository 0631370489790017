package parser

import (
	"github.com/mrjpierce/mp3-file-analysis/mpeg"
)

// mpeg1Layer3Codec implements the Codec capability for MPEG-1 Layer III
// by delegating to the pure codec functions. It holds no state.
type mpeg1Layer3Codec struct{}

func (mpeg1Layer3Codec) IsSync(buf []byte, pos int) bool {
	return mpeg.IsSync(buf, pos)
}

func (mpeg1Layer3Codec) IsFormatMember(buf []byte, pos int) bool {
	return mpeg.IsFormatMemberV1L3(buf, pos)
}

func (mpeg1Layer3Codec) ComputeLength(header []byte) int {
	return mpeg.ComputeLengthV1L3(header)
}

func (mpeg1Layer3Codec) ParseLength(buf []byte, pos int) (int, error) {
	return mpeg.ParseLengthV1L3(buf, pos)
}

func (mpeg1Layer3Codec) MinFrameSize() int {
	return mpeg.MinFrameSizeV1L3()
}

func (mpeg1Layer3Codec) IsInfoFrame(buf []byte, pos int) bool {
	return mpeg.IsInfoFrameV1L3(buf, pos)
}

// NewMPEG1Layer3 returns the parser for MPEG-1 Layer III streams.
func NewMPEG1Layer3() Parser {
	return NewMPEG1Layer3WithConfig(DefaultValidateConfig())
}

// NewMPEG1Layer3WithConfig returns the MPEG-1 Layer III parser with
// custom validation tuning. Zero frame caps fall back to the defaults.
func NewMPEG1Layer3WithConfig(cfg ValidateConfig) Parser {
	return &formatParser{
		Codec:  mpeg1Layer3Codec{},
		format: mpeg.FormatDescriptor{Version: mpeg.Version1, Layer: mpeg.Layer3},
		cfg:    cfg.normalized(),
	}
}
