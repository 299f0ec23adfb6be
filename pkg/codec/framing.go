package codec

import (
	"bytes"
	"sync/atomic"

	"github.com/cockroachdb/errors"

	"github.com/ssargent/skald/pkg/compress"
	"github.com/ssargent/skald/pkg/crypto"
)

// headerMagic is bytes 0..2 of the optional 4-byte stream header.
var headerMagic = [3]byte{'N', 'P', 'Y'}

// headerRow is one entry of the closed (compressor, encryptor) table the
// header's metadata byte selects from, per spec.md §6.1.
type headerRow struct {
	compressor string
	encryptor  string
}

// metaTable is indexed by the header's metadata byte. Order and contents
// are fixed by the wire format and must never change.
var metaTable = [14]headerRow{
	{"none", "none"},
	{"snappy", "none"},
	{"none", "aes128-sha512"},
	{"snappy", "aes128-sha512"},
	{"none", "custom"},
	{"custom", "none"},
	{"custom", "custom"},
	{"snappy", "custom"},
	{"lz4", "none"},
	{"lz4", "aes128-sha512"},
	{"lz4", "custom"},
	{"lzma2", "none"},
	{"lzma2", "aes128-sha512"},
	{"lzma2", "custom"},
}

func metaByteFor(compressorName, encryptorName string) (byte, bool) {
	for i, row := range metaTable {
		if row.compressor == compressorName && row.encryptor == encryptorName {
			return byte(i), true
		}
	}
	return 0, false
}

var autoCompressorFunc atomic.Pointer[compress.AutoCompressorFunc]

// SetAutoCompressor installs a process-wide hook invoked whenever a
// Freeze call resolves compressor "auto" and no no-header override
// applies, in place of the built-in size-threshold heuristic.
func SetAutoCompressor(fn compress.AutoCompressorFunc) {
	autoCompressorFunc.Store(&fn)
}

func newWriterState(o *options) *writerState {
	return &writerState{registry: o.registry, fallback: o.fallback, maxDepth: o.maxDepth}
}

// Freeze encodes v and applies the full stream pipeline: encode, optional
// compression, optional encryption, optional 4-byte header prefix.
func Freeze(v any, opts ...Option) ([]byte, error) {
	o := buildOptions(opts)
	body := newBuffer(64)
	ws := newWriterState(o)
	if err := freezeValue(ws, body, v); err != nil {
		return nil, err
	}
	return frame(body.Bytes(), o)
}

func frame(raw []byte, o *options) ([]byte, error) {
	compressorName, comp, err := resolveWriteCompressor(raw, o)
	if err != nil {
		return nil, err
	}
	payload, err := comp.Compress(raw)
	if err != nil {
		return nil, wrapError(err, 0, compressorName, "", o.v1Compatible)
	}

	encryptorName := "none"
	if len(o.password) > 0 {
		encryptorName, err = resolveWriteEncryptorName(o)
		if err != nil {
			return nil, err
		}
		enc, err := resolveEncryptor(encryptorName, o)
		if err != nil {
			return nil, err
		}
		payload, err = enc.Encrypt(payload, o.password)
		if err != nil {
			return nil, wrapError(err, 0, compressorName, encryptorName, o.v1Compatible)
		}
	}

	if o.noHeader {
		return payload, nil
	}

	meta, ok := metaByteFor(compressorName, encryptorName)
	if !ok {
		return nil, wrapError(
			&UnrecognizedHeaderError{MetaByte: 0xFF}, 0, compressorName, encryptorName, o.v1Compatible)
	}
	out := make([]byte, 0, 4+len(payload))
	out = append(out, headerMagic[0], headerMagic[1], headerMagic[2], meta)
	out = append(out, payload...)
	return out, nil
}

// resolveWriteCompressor picks the compressor to use for this Freeze call
// and returns its wire-table name alongside the instance.
func resolveWriteCompressor(raw []byte, o *options) (string, compress.Compressor, error) {
	switch o.compressor {
	case "custom":
		if o.customCompressor == nil {
			return "", nil, errors.New("codec: compressor \"custom\" requires WithCustomCompressor")
		}
		return "custom", o.customCompressor, nil
	case "", "auto":
		if o.noHeader {
			c := compress.NewLZ4()
			return "lz4", c, nil
		}
		if fn := autoCompressorFunc.Load(); fn != nil {
			c := (*fn)(raw)
			return c.Name(), c, nil
		}
		c := compress.AutoSelect(raw)
		return c.Name(), c, nil
	default:
		c, err := compress.Resolve(o.compressor)
		if err != nil {
			return "", nil, err
		}
		return c.Name(), c, nil
	}
}

func resolveWriteEncryptorName(o *options) (string, error) {
	switch o.encryptor {
	case "custom":
		return "custom", nil
	case "", "auto":
		return "aes128-sha512", nil
	default:
		return o.encryptor, nil
	}
}

func resolveEncryptor(name string, o *options) (crypto.Encryptor, error) {
	if name == "custom" {
		if o.customEncryptor == nil {
			return nil, errors.New("codec: encryptor \"custom\" requires WithCustomEncryptor")
		}
		return o.customEncryptor, nil
	}
	return crypto.Resolve(name)
}

// Thaw reverses Freeze: parses the optional header (or trusts the
// caller's explicit options when framing was suppressed), decrypts,
// decompresses, and decodes the resulting body.
func Thaw(data []byte, opts ...Option) (any, error) {
	o := buildOptions(opts)
	payload, compressorName, encryptorName, err := unframe(data, o)
	if err != nil {
		return nil, err
	}

	if encryptorName != "none" {
		if len(o.password) == 0 {
			return nil, &PasswordRequiredError{}
		}
		enc, err := resolveEncryptor(encryptorName, o)
		if err != nil {
			return nil, err
		}
		payload, err = enc.Decrypt(payload, o.password)
		if err != nil {
			return nil, wrapError(err, 0, compressorName, encryptorName, o.v1Compatible)
		}
	}

	body, err := decompressWithFallback(payload, compressorName, o)
	if err != nil {
		return nil, err
	}

	in := newReader(bytes.NewReader(body), o.registry, o.maxDepth)
	v, err := thawValue(in)
	if err != nil {
		return nil, wrapError(err, 0, compressorName, encryptorName, o.v1Compatible)
	}
	return v, nil
}

func decompressWithFallback(payload []byte, compressorName string, o *options) ([]byte, error) {
	comp, err := resolveReadCompressor(compressorName, o)
	if err != nil {
		return nil, err
	}
	body, err := comp.Decompress(payload)
	if err == nil {
		return body, nil
	}
	if !o.v1Compatible {
		return nil, wrapError(err, 0, compressorName, "", o.v1Compatible)
	}
	// Legacy heuristic (spec.md §4.7): v1 headerless payloads cannot be
	// told apart from v2 ones, so retry Snappy, then raw, before failing.
	if snappyBody, snappyErr := compress.NewSnappy().Decompress(payload); snappyErr == nil {
		return snappyBody, nil
	}
	return payload, nil
}

func resolveReadCompressor(name string, o *options) (compress.Compressor, error) {
	if name == "custom" {
		if o.customCompressor == nil {
			return nil, errors.New("codec: compressor \"custom\" requires WithCustomCompressor")
		}
		return o.customCompressor, nil
	}
	return compress.Resolve(name)
}

// unframe splits data into (payload, compressorName, encryptorName),
// consuming and validating the 4-byte header when present.
func unframe(data []byte, o *options) (payload []byte, compressorName, encryptorName string, err error) {
	if o.noHeader {
		compressorName = o.compressor
		if compressorName == "" || compressorName == "auto" {
			// A headerless Freeze resolves auto to LZ4, so read it back the same way.
			compressorName = "lz4"
		}
		encryptorName = o.encryptor
		if encryptorName == "" || encryptorName == "auto" {
			encryptorName = "none"
		}
		return data, compressorName, encryptorName, nil
	}

	if len(data) < 4 || data[0] != headerMagic[0] || data[1] != headerMagic[1] || data[2] != headerMagic[2] {
		if o.v1Compatible {
			return data, "snappy", "none", nil
		}
		return nil, "", "", &UnrecognizedHeaderError{MetaByte: 0}
	}
	meta := data[3]
	if int(meta) >= len(metaTable) {
		return nil, "", "", &UnrecognizedHeaderError{MetaByte: meta}
	}
	row := metaTable[meta]
	return data[4:], row.compressor, row.encryptor, nil
}
