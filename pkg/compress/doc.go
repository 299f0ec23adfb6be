// Package compress implements the stream-level compressors the codec's
// framing layer (pkg/codec/framing.go) can select between: none, LZ4,
// Snappy, and LZMA2. Each is a thin adapter around a third-party codec
// library; this package owns only name resolution and the auto-selection
// heuristic, not the compression algorithms themselves.
package compress
