// Package errors defines the failure taxonomy of the analysis pipeline
// and helpers for wrapping and classifying errors.
//
// # Failure Kinds
//
// Every way a frame walk can fail has a sentinel error, so callers
// distinguish outcomes with errors.Is rather than string matching:
//
//   - ErrEmptyFile: zero-length source
//   - ErrFileTooSmall: fewer bytes than a minimal frame header
//   - ErrCorruptedHeader: invalid bitrate/sample-rate encoding
//   - ErrTruncatedFrame: declared length exceeds available bytes
//   - ErrFrameAlignment: next frame missing near its expected offset
//   - ErrCorruptedFrame: unclassified failure at a specific position
//   - ErrNoValidFrames: scanned to completion, zero usable frames
//   - ErrUnsupportedFormat: no parser registered for the detected format
//
// # Classification
//
// Errors classify as invalid, transient, or fatal. Frame-level kinds are
// always invalid: corruption is a property of the uploaded bytes and is
// never retried or downgraded to a partial success. Connection and
// storage failures are transient. Configuration problems, including a
// duplicate parser registration, are fatal and surface at startup.
//
// # Wrapping
//
// Wrap and its classified variants produce errors of the form
// "component.method: action failed: <cause>" while preserving the chain
// for errors.Is and errors.As:
//
//	if err := store.Put(ctx, key, r); err != nil {
//	    return errors.WrapTransient(err, "Store", "Put", "object write")
//	}
package errors
