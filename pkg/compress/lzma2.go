package compress

import (
	"bytes"
	"io"

	"github.com/ulikunitz/xz"
)

// LZMA2 wraps ulikunitz/xz's container format, which frames its payload
// with LZMA2 internally. This isn't present in the retrieval pack (see
// DESIGN.md for why it was pulled in anyway): no pack example ships an
// LZMA implementation, and this is the standard pure-Go one.
type LZMA2 struct{}

func NewLZMA2() *LZMA2 { return &LZMA2{} }

func (*LZMA2) Name() string { return "lzma2" }

func (*LZMA2) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (*LZMA2) Decompress(data []byte) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return out, nil
}
