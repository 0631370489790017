// Package parser implements per-format analysis of MPEG audio streams
// and the registry that dispatches a detected format to its parser.
//
// # Composition
//
// The validate and count algorithms are shared across formats. Each
// concrete format contributes only a Codec - the predicate and length
// functions specific to its header layout - and the shared algorithms
// are composed with it by injection. One format ships today (MPEG-1
// Layer III); adding another means implementing a Codec and registering
// the parser, with no changes to the walk logic.
//
// # Validation
//
// Validate is a cheap corruption screen over the leading frames: strict
// length re-parsing, bounds checks, encoding-parameter consistency
// across the first few frames, and frame alignment within a small byte
// tolerance of each arithmetically expected boundary. The caps and
// tolerance are heuristics and are configurable via ValidateConfig.
//
// # Counting
//
// CountFrames walks the stream to exhaustion and returns the number of
// audio frames. Xing/Info VBR summary frames occupy stream positions
// like real frames but are excluded from the count. The returned count
// is the system's sole external commitment.
package parser
