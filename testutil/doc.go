// Package testutil provides test data generators for the analysis
// pipeline: byte-accurate MPEG-1 Layer III frames, ID3v2 tags, Xing/Info
// summary frames, and readers that replay a byte stream in arbitrary
// chunk splits for boundary-independence tests.
package testutil
