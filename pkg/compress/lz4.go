package compress

import (
	"bytes"
	"io"

	"github.com/pierrec/lz4/v4"
)

// LZ4 wraps pierrec/lz4's block-level API — the codec already knows the
// uncompressed length is whatever Thaw's reader consumes next, so a
// framed stream format isn't needed here.
type LZ4 struct{}

func NewLZ4() *LZ4 { return &LZ4{} }

func (*LZ4) Name() string { return "lz4" }

func (*LZ4) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (*LZ4) Decompress(data []byte) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(data))
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return out, nil
}
