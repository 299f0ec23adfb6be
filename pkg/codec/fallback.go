package codec

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

// FallbackMode selects the behavior of the default fallback chain when a
// value has no direct or custom encoder, per spec.md §4.6.
type FallbackMode int

const (
	// FallbackStrict tries a native-serializable encoding, then a textual
	// encoding, then raises UnfreezableError.
	FallbackStrict FallbackMode = iota
	// FallbackWriteUnfreezable behaves like FallbackStrict but, instead of
	// raising at the end, encodes a marker record and continues.
	FallbackWriteUnfreezable
)

// FallbackFunc, when installed via FallbackPolicy.Custom, fully replaces
// the built-in fallback chain for values with no direct encoder.
type FallbackFunc func(out *buffer, v any) error

// FallbackPolicy configures the fallback chain consulted by the writer
// when no concrete dispatch rule applies.
type FallbackPolicy struct {
	Mode   FallbackMode
	Custom FallbackFunc
}

var defaultFallbackPolicy atomic.Pointer[FallbackPolicy]

func init() {
	defaultFallbackPolicy.Store(&FallbackPolicy{Mode: FallbackStrict})
}

// SetFreezeFallback configures the process-wide fallback policy used when
// callers do not supply their own via WithFallback.
func SetFreezeFallback(policy FallbackPolicy) {
	p := policy
	defaultFallbackPolicy.Store(&p)
}

func currentFallbackPolicy() FallbackPolicy {
	return *defaultFallbackPolicy.Load()
}

// runFallback is the writer's last resort for a value with no concrete
// dispatch rule and no custom-type registration.
func runFallback(out *buffer, v any, policy FallbackPolicy) error {
	if policy.Custom != nil {
		return policy.Custom(out, v)
	}

	if err := writeSerializableFallback(out, v); err == nil {
		return nil
	}

	text, textErr := writeReadableFallback(out, v)
	if textErr == nil {
		_ = text
		return nil
	}

	switch policy.Mode {
	case FallbackWriteUnfreezable:
		return writeUnfreezableMarker(out, v)
	default:
		return &UnfreezableError{TypeName: fmt.Sprintf("%T", v), Repr: fmt.Sprintf("%#v", v)}
	}
}

// writeSerializableFallback encodes v with encoding/gob: the idiomatic Go
// arbitrary-object-graph codec (see DESIGN.md for why gob and not a pack
// dependency). gob requires the type to be gob-encodable (exported fields,
// no channels/funcs); types that aren't simply fail here and the chain
// moves on to the textual fallback.
func writeSerializableFallback(out *buffer, v any) error {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(&v); err != nil {
		return err
	}
	className := fmt.Sprintf("%T", v)
	out.WriteTag(SerializableFallbackTag)
	writeString(out, className, strSizeTags)
	writeSizedBytes(out, buf.Bytes(), byteSizeTags)
	return nil
}

// writeReadableFallback renders v as a Go-literal-like textual form. This
// is not full EDN; it exists purely so Unthawable.RawContent is inspectable
// when a value can be neither directly encoded nor gob-encoded. Funcs,
// channels, and unsafe pointers are refused here even though fmt would
// happily print their address: a pointer-as-text representation is not a
// useful diagnostic and would otherwise make FallbackStrict's Unfreezable
// path unreachable.
func writeReadableFallback(out *buffer, v any) (string, error) {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return "", errors.Newf("codec: %T has no useful textual representation", v)
	}
	text := fmt.Sprintf("%#v", v)
	className := fmt.Sprintf("%T", v)
	out.WriteTag(ReadableFallbackTag)
	writeString(out, className, strSizeTags)
	writeString(out, text, strSizeTags)
	return text, nil
}

// writeUnfreezableMarker encodes a {type, unfreezable} marker map in place
// of a value the chain could not otherwise handle.
func writeUnfreezableMarker(out *buffer, v any) error {
	out.WriteTag(UnfreezableMarkerTag)
	className := fmt.Sprintf("%T", v)
	text := fmt.Sprintf("%#v", v)
	writeString(out, className, strSizeTags)
	writeString(out, text, strSizeTags)
	return nil
}

func readSerializableFallback(in *reader) (any, error) {
	className, err := readSizedString(in)
	if err != nil {
		return nil, err
	}
	payload, err := readSizedBytes(in)
	if err != nil {
		return nil, err
	}
	var v any
	dec := gob.NewDecoder(bytes.NewReader(payload))
	if err := dec.Decode(&v); err != nil {
		return &Unthawable{Kind: "serializable", Cause: err, ClassName: className, RawContent: payload}, nil
	}
	return v, nil
}

func readReadableFallback(in *reader) (any, error) {
	className, err := readSizedString(in)
	if err != nil {
		return nil, err
	}
	text, err := readSizedString(in)
	if err != nil {
		return nil, err
	}
	return &Unthawable{Kind: "readable", Cause: errors.New("readable fallback is diagnostic-only"), ClassName: className, RawContent: []byte(text)}, nil
}

func readUnfreezableMarker(in *reader) (any, error) {
	className, err := readSizedString(in)
	if err != nil {
		return nil, err
	}
	text, err := readSizedString(in)
	if err != nil {
		return nil, err
	}
	return map[string]any{"type": className, "unfreezable": text}, nil
}
