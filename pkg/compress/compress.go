package compress

import "fmt"

// autoThreshold is the raw payload length past which AutoSelect prefers
// LZ4 over leaving the payload uncompressed, per spec.md §4.7's default
// auto-compressor heuristic.
const autoThreshold = 8192

// Compressor adapts one third-party compression library to the codec's
// framing layer. Name must match one of the header table's compressor
// columns ("none", "lz4", "snappy", "lzma2") or "custom" for a
// caller-supplied implementation.
type Compressor interface {
	Name() string
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// None is the identity compressor: Compress and Decompress both return
// their input unchanged. It exists so callers can uniformly treat "no
// compression" as just another Compressor.
type None struct{}

func (None) Name() string                         { return "none" }
func (None) Compress(data []byte) ([]byte, error)   { return data, nil }
func (None) Decompress(data []byte) ([]byte, error) { return data, nil }

// Resolve maps a compressor name from configuration or Options onto a
// concrete Compressor. "custom" is not resolvable here — callers must
// supply their own instance via codec.WithCustomCompressor.
func Resolve(name string) (Compressor, error) {
	switch name {
	case "", "none":
		return None{}, nil
	case "lz4":
		return NewLZ4(), nil
	case "snappy":
		return NewSnappy(), nil
	case "lzma2":
		return NewLZMA2(), nil
	default:
		return nil, fmt.Errorf("compress: unknown compressor %q", name)
	}
}

// AutoCompressorFunc picks a compressor for a given raw payload, letting
// callers implement "compress only if large" or content-aware policies in
// place of the built-in threshold heuristic.
type AutoCompressorFunc func(data []byte) Compressor

// AutoSelect implements the default auto-compressor: LZ4 once the raw
// payload exceeds autoThreshold bytes, otherwise no compression.
func AutoSelect(data []byte) Compressor {
	if len(data) > autoThreshold {
		return NewLZ4()
	}
	return None{}
}
