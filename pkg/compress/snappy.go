package compress

import "github.com/golang/snappy"

// Snappy wraps golang/snappy's block format. The teacher already pulls
// this transitively through Pebble; here it's a first-class codec option
// rather than an incidental dependency.
type Snappy struct{}

func NewSnappy() *Snappy { return &Snappy{} }

func (*Snappy) Name() string { return "snappy" }

func (*Snappy) Compress(data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

func (*Snappy) Decompress(data []byte) ([]byte, error) {
	return snappy.Decode(nil, data)
}
