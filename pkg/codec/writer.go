package codec

import (
	"io"
	"math"
	"math/big"
	"reflect"
	"time"
)

// defaultMaxDepth bounds recursive descent into nested values so a cyclic
// or pathologically deep value raises MaxDepthExceededError instead of
// diverging, per spec.md §9.
const defaultMaxDepth = 10000

type writerState struct {
	registry *Registry
	fallback FallbackPolicy
	depth    int
	maxDepth int
}

// FreezeValue writes v's low-level encoding to w, with no stream framing
// (no header, no compression, no encryption) — the "freeze-to-sink"
// primitive from spec.md §6.2.
func FreezeValue(w io.Writer, v any, opts ...Option) error {
	o := buildOptions(opts)
	out := newBuffer(64)
	ws := &writerState{registry: o.registry, fallback: o.fallback, maxDepth: o.maxDepth}
	if err := freezeValue(ws, out, v); err != nil {
		return err
	}
	_, err := w.Write(out.Bytes())
	return err
}

func freezeValue(ws *writerState, out *buffer, v any) error {
	ws.depth++
	defer func() { ws.depth-- }()
	if ws.depth > ws.maxDepth {
		return &MaxDepthExceededError{Depth: ws.depth}
	}

	switch val := v.(type) {
	case WithMeta:
		if len(val.Meta) > 0 {
			out.WriteTag(MetaTag)
			if err := freezeValue(ws, out, val.Meta); err != nil {
				return err
			}
		}
		return freezeValue(ws, out, val.Value)
	case *WithMeta:
		return freezeValue(ws, out, *val)
	}

	if handled, err := freezeBuiltin(ws, out, v); handled {
		return err
	}

	t := reflect.TypeOf(v)
	if entry, ok := ws.registry.lookupByType(t); ok {
		writeCustomTag(out, entry)
		return entry.writer(out, v)
	}

	if handled, err := freezeReflectGeneric(ws, out, v); handled {
		return err
	}

	return runFallback(out, v, ws.fallback)
}

func writeCustomTag(out *buffer, entry customEntry) {
	if entry.kind == idKindByte {
		out.WriteTag(byteIDTag(entry.byteID))
		return
	}
	out.WriteTag(PrefixedCustomTag)
	var b [2]byte
	putBE16(b[:], uint16(entry.keywordHash))
	out.Write(b[:])
}

func putBE16(dst []byte, v uint16) {
	dst[0] = byte(v >> 8)
	dst[1] = byte(v)
}

// freezeBuiltin handles every concrete variant named in spec.md §3's data
// model table. Returns handled=false only when v's concrete type matches
// none of them, so the caller can fall through to the custom registry,
// the reflect-based generic collection path, and finally the fallback
// chain.
func freezeBuiltin(ws *writerState, out *buffer, v any) (handled bool, err error) {
	switch val := v.(type) {
	case nil:
		out.WriteTag(NilTag)
		return true, nil
	case bool:
		if val {
			out.WriteTag(TrueTag)
		} else {
			out.WriteTag(FalseTag)
		}
		return true, nil
	case Char:
		out.WriteTag(CharTag)
		var b [2]byte
		putBE16(b[:], uint16(val))
		out.Write(b[:])
		return true, nil
	case int8:
		out.WriteTag(ByteTag)
		out.WriteByte(byte(val))
		return true, nil
	case int16:
		out.WriteTag(ShortTag)
		var b [2]byte
		putBE16(b[:], uint16(val))
		out.Write(b[:])
		return true, nil
	case int32:
		out.WriteTag(IntTag)
		var b [4]byte
		putBE32(b[:], uint32(val))
		out.Write(b[:])
		return true, nil
	case int64:
		writeSignedLong(out, val)
		return true, nil
	case int:
		writeSignedLong(out, int64(val))
		return true, nil
	case uint8:
		writeSignedLong(out, int64(val))
		return true, nil
	case uint16:
		writeSignedLong(out, int64(val))
		return true, nil
	case uint32:
		writeSignedLong(out, int64(val))
		return true, nil
	case float32:
		out.WriteTag(FloatTag)
		var b [4]byte
		putBE32(b[:], math.Float32bits(val))
		out.Write(b[:])
		return true, nil
	case float64:
		out.WriteTag(DoubleTag)
		var b [8]byte
		putBE64(b[:], math.Float64bits(val))
		out.Write(b[:])
		return true, nil
	case *big.Int:
		writeBigInt(out, val)
		return true, nil
	case BigDecimal:
		out.WriteTag(BigDecimalTag)
		var b [4]byte
		putBE32(b[:], uint32(val.Scale))
		out.Write(b[:])
		writeBigIntBody(out, val.Unscaled)
		return true, nil
	case Ratio:
		out.WriteTag(RatioTag)
		writeBigIntBody(out, val.Numerator)
		writeBigIntBody(out, val.Denominator)
		return true, nil
	case string:
		writeString(out, val, strSizeTags)
		return true, nil
	case Keyword:
		writeNamed(out, val.Namespace, val.Name, kwSizeTags)
		return true, nil
	case Symbol:
		writeNamed(out, val.Namespace, val.Name, symSizeTags)
		return true, nil
	case Regex:
		out.WriteTag(RegexTag)
		writeString(out, val.Pattern, strSizeTags)
		return true, nil
	case []byte:
		writeSizedBytes(out, val, byteSizeTags)
		return true, nil
	case time.Time:
		out.WriteTag(DateTag)
		var b [8]byte
		putBE64(b[:], uint64(val.UnixMilli()))
		out.Write(b[:])
		return true, nil
	case UUID:
		out.WriteTag(UUIDTag)
		var b [16]byte
		putBE64(b[0:8], val.Hi)
		putBE64(b[8:16], val.Lo)
		out.Write(b[:])
		return true, nil
	case Record:
		out.WriteTag(RecordTag)
		writeString(out, val.Name, strSizeTags)
		return true, freezeMapBody(ws, out, mapTags, len(val.Fields), func(add func(k, v any) error) error {
			for k, v := range val.Fields {
				if err := add(k, v); err != nil {
					return err
				}
			}
			return nil
		})
	case *Record:
		return freezeBuiltin(ws, out, *val)
	case Vector:
		return true, freezeVector(ws, out, []any(val))
	case []any:
		return true, freezeVector(ws, out, val)
	case List:
		return true, freezeCountedSeq(ws, out, listTags, []any(val))
	case Seq:
		return true, freezeUncountedSeq(ws, out, seqTags, val.Items)
	case *Set:
		return true, freezeCountedSeq(ws, out, setTags, val.Items())
	case *SortedSet:
		return true, freezeCountedSeq(ws, out, sortedSetTags, val.orderedItems())
	case *Queue:
		return true, freezeCountedSeq(ws, out, queueTags, val.Items())
	case *OrderedMap:
		var firstErr error
		err := freezeMapBody(ws, out, mapTags, val.Len(), func(add func(k, v any) error) error {
			val.Each(func(k, v any) {
				if firstErr != nil {
					return
				}
				firstErr = add(k, v)
			})
			return firstErr
		})
		return true, err
	case map[string]any:
		return true, freezeMapBody(ws, out, mapTags, len(val), func(add func(k, v any) error) error {
			for k, v := range val {
				if err := add(k, v); err != nil {
					return err
				}
			}
			return nil
		})
	case map[any]any:
		return true, freezeMapBody(ws, out, mapTags, len(val), func(add func(k, v any) error) error {
			for k, v := range val {
				if err := add(k, v); err != nil {
					return err
				}
			}
			return nil
		})
	case *SortedMap:
		return true, freezeSortedMapBody(ws, out, val)
	}
	return false, nil
}

func writeBigInt(out *buffer, n *big.Int) {
	out.WriteTag(BigIntTag)
	writeBigIntBody(out, n)
}

// writeBigIntBody writes a sign byte (0 = zero, 1 = positive, 2 = negative)
// followed by the magnitude as size-classed bytes.
func writeBigIntBody(out *buffer, n *big.Int) {
	if n == nil {
		n = big.NewInt(0)
	}
	switch n.Sign() {
	case 0:
		out.WriteByte(0)
	case 1:
		out.WriteByte(1)
	default:
		out.WriteByte(2)
	}
	writeSizedBytes(out, n.Bytes(), byteSizeTags)
}

func writeNamed(out *buffer, namespace, name string, tags [4]Tag) {
	combined := name
	if namespace != "" {
		combined = namespace + "/" + name
	}
	writeSizedBytes(out, []byte(combined), tags)
}

var kwSizeTags = [4]Tag{Kw0Tag, KwSmTag, KwMdTag, KwLgTag}
var symSizeTags = [4]Tag{Sym0Tag, SymSmTag, SymMdTag, SymLgTag}
var vecTags = [4]Tag{Vec0Tag, VecSmTag, VecMdTag, VecLgTag}
var listTags = [4]Tag{List0Tag, ListSmTag, ListMdTag, ListLgTag}
var seqTags = [4]Tag{Seq0Tag, SeqSmTag, SeqMdTag, SeqLgTag}
var setTags = [4]Tag{Set0Tag, SetSmTag, SetMdTag, SetLgTag}
var sortedSetTags = [4]Tag{SortedSet0Tag, SortedSetSmTag, SortedSetMdTag, SortedSetLgTag}
var queueTags = [4]Tag{Queue0Tag, QueueSmTag, QueueMdTag, QueueLgTag}
var mapTags = [4]Tag{Map0Tag, MapSmTag, MapMdTag, MapLgTag}
var sortedMapTags = [4]Tag{SortedMap0Tag, SortedMapSmTag, SortedMapMdTag, SortedMapLgTag}

// freezeVector handles the spec.md §4.3 rule 3 special case: vectors of
// size 2 and 3 get dedicated tags with no length prefix.
func freezeVector(ws *writerState, out *buffer, items []any) error {
	switch len(items) {
	case 2:
		out.WriteTag(Vec2Tag)
		for _, it := range items {
			if err := freezeValue(ws, out, it); err != nil {
				return err
			}
		}
		return nil
	case 3:
		out.WriteTag(Vec3Tag)
		for _, it := range items {
			if err := freezeValue(ws, out, it); err != nil {
				return err
			}
		}
		return nil
	default:
		return freezeCountedSeq(ws, out, vecTags, items)
	}
}

// freezeCountedSeq writes [size-class tag][len][items...] for a sequence
// whose length is known in O(1) (spec.md §4.3 rule 2, counted case).
func freezeCountedSeq(ws *writerState, out *buffer, tags [4]Tag, items []any) error {
	selectCountTag(out, tags, len(items))
	for _, it := range items {
		if err := freezeValue(ws, out, it); err != nil {
			return err
		}
	}
	return nil
}

// freezeUncountedSeq buffers items into a scratch sink while counting
// them, then emits [size-class tag][len][buffered bytes] in exactly one
// traversal (spec.md §4.3 rule 2, uncounted case). Used for lazily
// produced sequences whose length would otherwise cost a second pass.
func freezeUncountedSeq(ws *writerState, out *buffer, tags [4]Tag, items func(yield func(any) bool)) error {
	scratch := newBuffer(32)
	count := 0
	var firstErr error
	items(func(item any) bool {
		if err := freezeValue(ws, scratch, item); err != nil {
			firstErr = err
			return false
		}
		count++
		return true
	})
	if firstErr != nil {
		return firstErr
	}
	selectCountTag(out, tags, count)
	out.Write(scratch.Bytes())
	return nil
}

// freezeMapBody writes a counted map body: [size-class tag][len][k1 v1 k2 v2 ...].
// each is expected to call add for every pair and return whatever error add
// first produced, so iteration can stop as soon as one freeze fails.
func freezeMapBody(ws *writerState, out *buffer, tags [4]Tag, n int, each func(add func(k, v any) error) error) error {
	selectCountTag(out, tags, n)
	return each(func(k, v any) error {
		if err := freezeValue(ws, out, k); err != nil {
			return err
		}
		return freezeValue(ws, out, v)
	})
}

func freezeSortedMapBody(ws *writerState, out *buffer, m *SortedMap) error {
	keys, values := m.orderedPairs()
	selectCountTag(out, mapTags, len(keys))
	for i, k := range keys {
		if err := freezeValue(ws, out, k); err != nil {
			return err
		}
		if err := freezeValue(ws, out, values[i]); err != nil {
			return err
		}
	}
	return nil
}

// selectCountTag writes the tag matching n's size class; unlike
// writeSizedBytes, the count itself (not a byte payload) follows, with the
// same 0/1/2/4-byte width per class.
func selectCountTag(out *buffer, tags [4]Tag, n int) {
	class := classifyLength(n)
	out.WriteTag(tags[class])
	switch class {
	case sizeClassSm:
		out.WriteByte(byte(n))
	case sizeClassMd:
		var b [2]byte
		putBE16(b[:], uint16(int16(n)))
		out.Write(b[:])
	case sizeClassLg:
		var b [4]byte
		putBE32(b[:], uint32(int32(n)))
		out.Write(b[:])
	}
}

func putBE32(dst []byte, v uint32) {
	dst[0] = byte(v >> 24)
	dst[1] = byte(v >> 16)
	dst[2] = byte(v >> 8)
	dst[3] = byte(v)
}

func putBE64(dst []byte, v uint64) {
	for i := 0; i < 8; i++ {
		dst[i] = byte(v >> (56 - 8*i))
	}
}

// freezeReflectGeneric generalizes dispatch to arbitrary typed slices,
// arrays, and maps that are not one of the named collection wrappers —
// e.g. a caller's []string or map[string]int encodes as a Vector/Map the
// same way []any/map[any]any would.
func freezeReflectGeneric(ws *writerState, out *buffer, v any) (handled bool, err error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return false, nil // []byte-like already handled by freezeBuiltin
		}
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return true, freezeVector(ws, out, items)
	case reflect.Map:
		n := rv.Len()
		iter := rv.MapRange()
		return true, freezeMapBody(ws, out, mapTags, n, func(add func(k, v any) error) error {
			for iter.Next() {
				if err := add(iter.Key().Interface(), iter.Value().Interface()); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return false, nil
}
