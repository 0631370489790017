// Package stream provides the chunked streaming frame iterator: the
// state machine that turns an arbitrary sequence of byte chunks into a
// sequence of frame descriptors.
//
// The iterator owns a rolling buffer and a scan cursor. Each Next call
// scans buffered bytes for the next complete frame, pulling additional
// chunks from the source only when the buffered data cannot yield one -
// the suspend/resume protocol that replaces push-style data/end/error
// events. Bytes behind the cursor are discarded as the scan advances,
// so memory stays bounded no matter how long the stream is.
//
// Format knowledge is injected through the FrameScanner capability;
// the iterator itself knows only about sync scanning mechanics, the
// one-time ID3v2 tag skip, and chunk accounting.
package stream
