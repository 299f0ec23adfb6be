package codec

import (
	"github.com/ssargent/skald/pkg/compress"
	"github.com/ssargent/skald/pkg/crypto"
)

// Option configures a single Freeze/Thaw/FreezeValue/ThawValue call. The
// zero value of every field is the documented default, so callers only
// need to set what they're overriding.
type Option func(*options)

type options struct {
	registry         *Registry
	fallback         FallbackPolicy
	compressor       string
	customCompressor compress.Compressor
	encryptor        string
	customEncryptor  crypto.Encryptor
	password         []byte
	v1Compatible     bool
	noHeader         bool
	maxDepth         int
}

func buildOptions(opts []Option) *options {
	o := &options{
		registry: DefaultRegistry(),
		fallback: currentFallbackPolicy(),
		maxDepth: defaultMaxDepth,
	}
	for _, fn := range opts {
		fn(o)
	}
	return o
}

// WithRegistry overrides the custom-type registry consulted during
// Freeze/Thaw, in place of DefaultRegistry().
func WithRegistry(r *Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithFallback overrides the fallback policy for values with no direct or
// custom encoder, in place of the process-wide policy set via
// SetFreezeFallback.
func WithFallback(policy FallbackPolicy) Option {
	return func(o *options) { o.fallback = policy }
}

// WithCompressor selects the stream-level compressor by name ("lz4",
// "snappy", "lzma2", "none", or "auto" to pick lz4 when compression is
// worthwhile). Only meaningful for Freeze/Thaw, not FreezeValue/ThawValue.
func WithCompressor(name string) Option {
	return func(o *options) { o.compressor = name }
}

// WithCustomCompressor installs a caller-supplied compressor, written to
// the header as the "custom" compressor id (header table rows 5 and 6,
// the only rows with a custom compressor) — the reader must be told out-of-band which
// implementation that id refers to.
func WithCustomCompressor(c compress.Compressor) Option {
	return func(o *options) { o.compressor = "custom"; o.customCompressor = c }
}

// WithEncryptor selects the stream-level encryptor by name ("aes128-sha512"
// currently the only one, "none" to disable). Only meaningful for
// Freeze/Thaw.
func WithEncryptor(name string) Option {
	return func(o *options) { o.encryptor = name }
}

// WithCustomEncryptor installs a caller-supplied encryptor, written to the
// header as the "custom" encryptor id.
func WithCustomEncryptor(e crypto.Encryptor) Option {
	return func(o *options) { o.encryptor = "custom"; o.customEncryptor = e }
}

// WithPassword supplies the passphrase an encryptor derives its key from.
func WithPassword(password []byte) Option {
	return func(o *options) { o.password = password }
}

// WithV1Compatible enables the legacy no-header, Snappy-or-none heuristic
// used to read streams written by very old writers, per spec.md §6.3.
func WithV1Compatible() Option {
	return func(o *options) { o.v1Compatible = true }
}

// WithNoHeader disables writing (and expecting, on Thaw) the 4-byte stream
// header entirely — the data is a bare compressed/encrypted or raw payload.
func WithNoHeader() Option {
	return func(o *options) { o.noHeader = true }
}

// WithMaxDepth overrides the recursion guard used while freezing or
// thawing nested values (default defaultMaxDepth).
func WithMaxDepth(depth int) Option {
	return func(o *options) { o.maxDepth = depth }
}
