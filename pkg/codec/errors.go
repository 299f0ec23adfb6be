package codec

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// UnfreezableError is raised when a value has no encoder and the
// configured fallback policy declined to produce one.
type UnfreezableError struct {
	TypeName string
	Repr     string
}

func (e *UnfreezableError) Error() string {
	return fmt.Sprintf("unfreezable value of type %s: %s", e.TypeName, e.Repr)
}

// ThawFailedError wraps a low-level decode failure with the offending tag
// and whatever breadcrumbs were known at the point of failure.
type ThawFailedError struct {
	Tag        Tag
	Compressor string
	Encryptor  string
	V1Compat   bool
	Cause      error
}

func (e *ThawFailedError) Error() string {
	return fmt.Sprintf("thaw failed at tag %s (%d): %v", e.Tag, e.Tag, e.Cause)
}

func (e *ThawFailedError) Unwrap() error { return e.Cause }

func newThawFailed(tag Tag, cause error) error {
	return errors.WithSecondaryError(&ThawFailedError{Tag: tag, Cause: cause}, cause)
}

// UnrecognizedHeaderError indicates a header was present but its metadata
// byte is not in the closed table (spec.md §6.1) — the reader is older
// than the format version that produced the blob.
type UnrecognizedHeaderError struct {
	MetaByte byte
}

func (e *UnrecognizedHeaderError) Error() string {
	return fmt.Sprintf("unrecognized header metadata byte: %d", e.MetaByte)
}

// PasswordRequiredError is raised when a header declares an encryptor but
// no password option was supplied to Thaw.
type PasswordRequiredError struct{}

func (e *PasswordRequiredError) Error() string {
	return "password required: header declares an encryptor"
}

// MaxDepthExceededError guards against cyclic or pathologically deep
// values (spec.md §9's nesting-depth note); the format has no cycle
// detection of its own, so the writer bails out past a configurable depth
// instead of diverging.
type MaxDepthExceededError struct {
	Depth int
}

func (e *MaxDepthExceededError) Error() string {
	return fmt.Sprintf("max nesting depth exceeded: %d", e.Depth)
}

// wrapError attaches contextual breadcrumbs to any fatal codec error, per
// spec.md §7's propagation policy.
func wrapError(cause error, tag Tag, compressor, encryptor string, v1compat bool) error {
	if cause == nil {
		return nil
	}
	return errors.WithDetail(cause, fmt.Sprintf(
		"tag=%s compressor=%s encryptor=%s v1-compat=%v", tag, compressor, encryptor, v1compat))
}
