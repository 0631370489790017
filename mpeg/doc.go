// Package mpeg implements the byte-level MPEG audio frame header codec:
// sync-pattern detection, header field extraction, the MPEG-1 Layer III
// bitrate and sample-rate lookup tables, frame length computation,
// Xing/Info summary-frame identification, ID3v2 tag skipping, and
// format-family detection.
//
// Everything in this package is a pure function over byte slices.
// Streaming concerns (buffering, chunk boundaries, backpressure) live in
// the stream package; the walk/validate/count algorithms live in the
// parser package.
//
// # Sync Detection
//
// A frame header starts with eleven set bits: a 0xFF byte followed by a
// byte whose top three bits are set. This anchor is probabilistic -
// arbitrary audio payload bytes match it regularly - so IsSync alone
// never identifies a frame. IsFormatMemberV1L3 adds the field
// constraints (version, layer, bitrate, sample rate, emphasis) that
// demote most false positives, and the parser's alignment checks catch
// the rest.
//
// # Frame Length
//
// A Layer III frame's total length in bytes, header included, is
//
//	floor(144 * bitrate / sample_rate) + padding
//
// with bitrate and sample rate resolved through the lookup tables.
// ComputeLengthV1L3 returns 0 for invalid encodings (scan-path
// sentinel); ParseLengthV1L3 surfaces the same condition as a typed
// corruption error for call sites already committed to a frame.
package mpeg
