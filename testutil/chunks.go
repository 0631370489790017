package testutil

import "io"

// ChunkReader yields a fixed byte stream in caller-chosen chunk sizes.
// It exercises the chunk-boundary independence property: any split of
// the same bytes must produce identical parse results.
type ChunkReader struct {
	chunks [][]byte
	index  int
	offset int
}

// NewChunkReader splits data into the given chunk sizes. Sizes must sum
// to len(data); a trailing remainder becomes one final chunk.
func NewChunkReader(data []byte, sizes ...int) *ChunkReader {
	var chunks [][]byte
	pos := 0
	for _, size := range sizes {
		if pos >= len(data) {
			break
		}
		end := pos + size
		if end > len(data) {
			end = len(data)
		}
		chunks = append(chunks, data[pos:end])
		pos = end
	}
	if pos < len(data) {
		chunks = append(chunks, data[pos:])
	}
	return &ChunkReader{chunks: chunks}
}

// NewFixedChunkReader splits data into equal chunks of size n.
func NewFixedChunkReader(data []byte, n int) *ChunkReader {
	var sizes []int
	for pos := 0; pos < len(data); pos += n {
		sizes = append(sizes, n)
	}
	return NewChunkReader(data, sizes...)
}

// Read returns at most one chunk per call, never coalescing across
// chunk boundaries, so each Read models one network packet arrival.
func (r *ChunkReader) Read(p []byte) (int, error) {
	if r.index >= len(r.chunks) {
		return 0, io.EOF
	}
	chunk := r.chunks[r.index]
	n := copy(p, chunk[r.offset:])
	r.offset += n
	if r.offset >= len(chunk) {
		r.index++
		r.offset = 0
	}
	return n, nil
}

// ErrReader returns err after serving its data.
type ErrReader struct {
	data []byte
	err  error
	pos  int
}

// NewErrReader returns a reader that yields data then fails with err.
func NewErrReader(data []byte, err error) *ErrReader {
	return &ErrReader{data: data, err: err}
}

func (r *ErrReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, r.err
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}
