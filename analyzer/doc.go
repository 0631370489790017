// Package analyzer is the orchestrator of the analysis pipeline.
//
// ProcessUpload persists the uploaded bytes to the blob store, then
// makes three independent passes over the stored object: format
// detection (bounded prefix read), the corruption screen, and the full
// frame count. Keeping the passes on separate readers means the
// pipeline streams each one and never needs the whole file in memory.
package analyzer
