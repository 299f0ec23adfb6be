package codec

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"math/big"
	"time"
)

// reader is the low-level decode cursor threaded through ThawValue's
// recursive descent. It wraps a bufio.Reader so tag-by-tag decoding of a
// large stream doesn't make a syscall per byte.
type reader struct {
	br       *bufio.Reader
	registry *Registry
	depth    int
	maxDepth int
}

func newReader(r io.Reader, registry *Registry, maxDepth int) *reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &reader{br: br, registry: registry, maxDepth: maxDepth}
}

func (in *reader) ReadByte() (byte, error) {
	return in.br.ReadByte()
}

func (in *reader) ReadFull(buf []byte) error {
	_, err := io.ReadFull(in.br, buf)
	return err
}

func (in *reader) ReadN(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if err := in.ReadFull(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (in *reader) ReadTag() (Tag, error) {
	b, err := in.br.ReadByte()
	if err != nil {
		return 0, err
	}
	return Tag(int8(b)), nil
}

// ThawValue reads one encoded value from r, with no stream framing — the
// decode counterpart to FreezeValue.
func ThawValue(r io.Reader, opts ...Option) (any, error) {
	o := buildOptions(opts)
	in := newReader(r, o.registry, o.maxDepth)
	return thawValue(in)
}

func thawValue(in *reader) (any, error) {
	in.depth++
	defer func() { in.depth-- }()
	if in.depth > in.maxDepth {
		return nil, &MaxDepthExceededError{Depth: in.depth}
	}

	tag, err := in.ReadTag()
	if err != nil {
		return nil, err
	}
	return thawTagged(in, tag)
}

// thawTagged decodes the value following a tag already consumed by the
// caller — used both by thawValue and by MetaTag's prefix handling, which
// must read the wrapped value's own tag itself.
func thawTagged(in *reader, tag Tag) (any, error) {
	if isCustomByteTag(tag) {
		id := byteIDFromTag(tag)
		entry, ok := in.registry.lookupByByteID(id)
		if !ok {
			return nil, newThawFailed(tag, &UnrecognizedHeaderError{MetaByte: byte(tag)})
		}
		v, err := entry.reader(in)
		if err != nil {
			return nil, newThawFailed(tag, err)
		}
		return v, nil
	}

	switch tag {
	case NilTag:
		return nil, nil
	case TrueTag:
		return true, nil
	case FalseTag:
		return false, nil
	case BoolDeprTag:
		b, err := in.ReadByte()
		if err != nil {
			return nil, newThawFailed(tag, err)
		}
		return b != 0, nil
	case CharTag:
		var b [2]byte
		if err := in.ReadFull(b[:]); err != nil {
			return nil, newThawFailed(tag, err)
		}
		return Char(binary.BigEndian.Uint16(b[:])), nil
	case ByteTag:
		b, err := in.ReadByte()
		if err != nil {
			return nil, newThawFailed(tag, err)
		}
		return int8(b), nil
	case ShortTag:
		var b [2]byte
		if err := in.ReadFull(b[:]); err != nil {
			return nil, newThawFailed(tag, err)
		}
		return int16(binary.BigEndian.Uint16(b[:])), nil
	case IntTag:
		var b [4]byte
		if err := in.ReadFull(b[:]); err != nil {
			return nil, newThawFailed(tag, err)
		}
		return int32(binary.BigEndian.Uint32(b[:])), nil
	case LongZeroTag, LongSmTag, LongMdTag, LongLgTag, LongXlTag:
		n, err := readSignedLongPayload(in, tag)
		if err != nil {
			return nil, newThawFailed(tag, err)
		}
		return n, nil
	case FloatTag:
		var b [4]byte
		if err := in.ReadFull(b[:]); err != nil {
			return nil, newThawFailed(tag, err)
		}
		return math.Float32frombits(binary.BigEndian.Uint32(b[:])), nil
	case DoubleTag:
		var b [8]byte
		if err := in.ReadFull(b[:]); err != nil {
			return nil, newThawFailed(tag, err)
		}
		return math.Float64frombits(binary.BigEndian.Uint64(b[:])), nil
	case BigIntTag:
		return readBigIntBody(in, tag)
	case BigDecimalTag:
		var b [4]byte
		if err := in.ReadFull(b[:]); err != nil {
			return nil, newThawFailed(tag, err)
		}
		scale := int32(binary.BigEndian.Uint32(b[:]))
		unscaled, err := readBigIntBody(in, tag)
		if err != nil {
			return nil, err
		}
		return BigDecimal{Unscaled: unscaled.(*big.Int), Scale: scale}, nil
	case RatioTag:
		num, err := readBigIntBody(in, tag)
		if err != nil {
			return nil, err
		}
		den, err := readBigIntBody(in, tag)
		if err != nil {
			return nil, err
		}
		return Ratio{Numerator: num.(*big.Int), Denominator: den.(*big.Int)}, nil
	case Str0Tag, StrSmTag, StrMdTag, StrLgTag, UTFDeprTag:
		s, err := readStringBody(in, tag)
		if err != nil {
			return nil, newThawFailed(tag, err)
		}
		return s, nil
	case Kw0Tag, KwSmTag, KwMdTag, KwLgTag:
		return thawNamed(in, tag, newKeyword)
	case Sym0Tag, SymSmTag, SymMdTag, SymLgTag:
		return thawNamed(in, tag, newSymbol)
	case RegexTag:
		s, err := readSizedString(in)
		if err != nil {
			return nil, newThawFailed(tag, err)
		}
		return Regex{Pattern: s}, nil
	case Bytes0Tag, BytesSmTag, BytesMdTag, BytesLgTag:
		b, err := readBytesBody(in, tag)
		if err != nil {
			return nil, newThawFailed(tag, err)
		}
		return b, nil
	case DateTag:
		var b [8]byte
		if err := in.ReadFull(b[:]); err != nil {
			return nil, newThawFailed(tag, err)
		}
		ms := int64(binary.BigEndian.Uint64(b[:]))
		return time.UnixMilli(ms).UTC(), nil
	case UUIDTag:
		var b [16]byte
		if err := in.ReadFull(b[:]); err != nil {
			return nil, newThawFailed(tag, err)
		}
		return UUID{Hi: binary.BigEndian.Uint64(b[0:8]), Lo: binary.BigEndian.Uint64(b[8:16])}, nil
	case RecordTag:
		return thawRecord(in)
	case MetaTag:
		return thawWithMeta(in)
	case Vec0Tag, VecSmTag, VecMdTag, VecLgTag, VecDeprTag:
		items, err := thawCountedSeq(in, tag)
		if err != nil {
			return nil, err
		}
		return Vector(items), nil
	case Vec2Tag:
		return thawFixedSeq(in, 2)
	case Vec3Tag:
		return thawFixedSeq(in, 3)
	case List0Tag, ListSmTag, ListMdTag, ListLgTag:
		items, err := thawCountedSeq(in, tag)
		if err != nil {
			return nil, err
		}
		return List(items), nil
	case Seq0Tag, SeqSmTag, SeqMdTag, SeqLgTag:
		items, err := thawCountedSeq(in, tag)
		if err != nil {
			return nil, err
		}
		return List(items), nil
	case Set0Tag, SetSmTag, SetMdTag, SetLgTag, SetDeprTag:
		items, err := thawCountedSeq(in, tag)
		if err != nil {
			return nil, err
		}
		return NewSet(items...), nil
	case SortedSet0Tag, SortedSetSmTag, SortedSetMdTag, SortedSetLgTag:
		items, err := thawCountedSeq(in, tag)
		if err != nil {
			return nil, err
		}
		return NewSortedSet(items...), nil
	case Queue0Tag, QueueSmTag, QueueMdTag, QueueLgTag:
		items, err := thawCountedSeq(in, tag)
		if err != nil {
			return nil, err
		}
		return NewQueue(items...), nil
	case Map0Tag, MapSmTag, MapMdTag, MapLgTag:
		return thawMap(in, tag, false)
	case MapDepr1Tag:
		return thawMap(in, tag, false)
	case MapDepr2Tag:
		return thawMap(in, tag, true)
	case SortedMap0Tag, SortedMapSmTag, SortedMapMdTag, SortedMapLgTag:
		m, err := thawMap(in, tag, false)
		if err != nil {
			return nil, err
		}
		sm := NewSortedMap()
		for k, v := range m.(map[any]any) {
			sm.Set(k, v)
		}
		return sm, nil
	case PrefixedCustomTag:
		var b [2]byte
		if err := in.ReadFull(b[:]); err != nil {
			return nil, newThawFailed(tag, err)
		}
		hash := int16(binary.BigEndian.Uint16(b[:]))
		entry, ok := in.registry.lookupByKeywordHash(hash)
		if !ok {
			return nil, newThawFailed(tag, &UnrecognizedHeaderError{MetaByte: byte(hash)})
		}
		v, err := entry.reader(in)
		if err != nil {
			return nil, newThawFailed(tag, err)
		}
		return v, nil
	case SerializableFallbackTag:
		return readSerializableFallback(in)
	case ReadableFallbackTag:
		return readReadableFallback(in)
	case UnfreezableMarkerTag:
		return readUnfreezableMarker(in)
	default:
		return nil, newThawFailed(tag, &UnrecognizedHeaderError{MetaByte: byte(tag)})
	}
}

func newKeyword(namespace, name string) any { return Keyword{Namespace: namespace, Name: name} }
func newSymbol(namespace, name string) any  { return Symbol{Namespace: namespace, Name: name} }

func thawNamed(in *reader, tag Tag, build func(namespace, name string) any) (any, error) {
	combined, err := readStringBody(in, combinedTagFor(tag))
	if err != nil {
		return nil, newThawFailed(tag, err)
	}
	ns, name := splitNamed(combined)
	return build(ns, name), nil
}

// combinedTagFor maps a Kw/Sym tag onto the equivalent Str tag so
// readStringBody's size-class switch (built around the Str family) can be
// reused verbatim for the structurally identical Kw/Sym families.
func combinedTagFor(tag Tag) Tag {
	switch tag {
	case Kw0Tag, Sym0Tag:
		return Str0Tag
	case KwSmTag, SymSmTag:
		return StrSmTag
	case KwMdTag, SymMdTag:
		return StrMdTag
	case KwLgTag, SymLgTag:
		return StrLgTag
	default:
		return tag
	}
}

func splitNamed(combined string) (namespace, name string) {
	for i := 0; i < len(combined); i++ {
		if combined[i] == '/' {
			return combined[:i], combined[i+1:]
		}
	}
	return "", combined
}

func readStringBody(in *reader, tag Tag) (string, error) {
	b, err := readBytesBody(in, tag)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func readBytesBody(in *reader, tag Tag) ([]byte, error) {
	switch tag {
	case Str0Tag, Bytes0Tag, Kw0Tag, Sym0Tag:
		return nil, nil
	case StrSmTag, BytesSmTag:
		return readBytesSm(in)
	case StrMdTag, BytesMdTag:
		return readBytesMd(in)
	case StrLgTag, BytesLgTag, UTFDeprTag:
		return readBytesLg(in)
	default:
		return nil, io.ErrUnexpectedEOF
	}
}

// readSizedString and readSizedBytes are the tag-dispatching forms used by
// fallback.go and RegexTag, where the wire hasn't already told the caller
// which size class to expect — the leading tag byte is read here too.
func readSizedString(in *reader) (string, error) {
	tag, err := in.ReadTag()
	if err != nil {
		return "", err
	}
	return readStringBody(in, tag)
}

func readSizedBytes(in *reader) ([]byte, error) {
	tag, err := in.ReadTag()
	if err != nil {
		return nil, err
	}
	return readBytesBody(in, tag)
}

// readBigIntBody reads the sign byte + size-classed magnitude layout
// writeBigIntBody produces, for both BigIntTag and the magnitude fields
// inside BigDecimalTag/RatioTag.
func readBigIntBody(in *reader, tag Tag) (any, error) {
	sign, err := in.ReadByte()
	if err != nil {
		return nil, newThawFailed(tag, err)
	}
	magTag, err := in.ReadTag()
	if err != nil {
		return nil, newThawFailed(tag, err)
	}
	mag, err := readBytesBody(in, magTag)
	if err != nil {
		return nil, newThawFailed(tag, err)
	}
	n := new(big.Int).SetBytes(mag)
	if sign == 2 {
		n.Neg(n)
	}
	return n, nil
}

func thawCountedSeq(in *reader, tag Tag) ([]any, error) {
	n, err := readCount(in, tag)
	if err != nil {
		return nil, newThawFailed(tag, err)
	}
	items := make([]any, n)
	for i := range items {
		v, err := thawValue(in)
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	return items, nil
}

func thawFixedSeq(in *reader, n int) (any, error) {
	items := make([]any, n)
	for i := range items {
		v, err := thawValue(in)
		if err != nil {
			return nil, err
		}
		items[i] = v
	}
	return Vector(items), nil
}

// readCount reads the bare count integer following a size-class tag
// (0/1/2/4 bytes), mirroring selectCountTag's write side. Class-0 tags
// carry no payload and mean count zero, matching writer.go.
func readCount(in *reader, tag Tag) (int, error) {
	switch tagSizeClass(tag) {
	case sizeClass0:
		return 0, nil
	case sizeClassSm:
		b, err := in.ReadByte()
		if err != nil {
			return 0, err
		}
		return int(b), nil
	case sizeClassMd:
		var b [2]byte
		if err := in.ReadFull(b[:]); err != nil {
			return 0, err
		}
		return int(int16(binary.BigEndian.Uint16(b[:]))), nil
	default:
		var b [4]byte
		if err := in.ReadFull(b[:]); err != nil {
			return 0, err
		}
		return int(int32(binary.BigEndian.Uint32(b[:]))), nil
	}
}

// tagSizeClass recovers which {0,Sm,Md,Lg} slot a concrete tag value
// occupies within its family, by checking against every counted-collection
// tag table defined in writer.go.
func tagSizeClass(tag Tag) sizeClass {
	families := [][4]Tag{
		vecTags, listTags, seqTags, setTags, sortedSetTags, queueTags, mapTags, sortedMapTags,
	}
	for _, fam := range families {
		for i, t := range fam {
			if t == tag {
				return sizeClass(i)
			}
		}
	}
	return sizeClassLg
}

func thawRecord(in *reader) (any, error) {
	name, err := readSizedString(in)
	if err != nil {
		return nil, newThawFailed(RecordTag, err)
	}
	m, err := thawValue(in)
	if err != nil {
		return nil, newThawFailed(RecordTag, err)
	}
	fields, _ := m.(map[any]any)
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if ks, ok := k.(string); ok {
			out[ks] = v
			continue
		}
		out[formatAnyKey(k)] = v
	}
	return &Record{Name: name, Fields: out}, nil
}

func formatAnyKey(k any) string {
	switch kv := k.(type) {
	case Keyword:
		return kv.String()
	case string:
		return kv
	default:
		return ""
	}
}

func thawWithMeta(in *reader) (any, error) {
	meta, err := thawValue(in)
	if err != nil {
		return nil, newThawFailed(MetaTag, err)
	}
	value, err := thawValue(in)
	if err != nil {
		return nil, newThawFailed(MetaTag, err)
	}
	metaMap, _ := meta.(map[any]any)
	m := make(map[string]any, len(metaMap))
	for k, v := range metaMap {
		m[formatAnyKey(k)] = v
	}
	return &WithMeta{Meta: m, Value: value}, nil
}

// thawMap reads a map body whose count field's unit is either entries
// (the normal case) or pairs-of-entries (legacy MapDepr2Tag, which stored
// 2x the entry count; see tags.go).
func thawMap(in *reader, tag Tag, countIsDoubled bool) (any, error) {
	n, err := readCount(in, tag)
	if err != nil {
		return nil, newThawFailed(tag, err)
	}
	if countIsDoubled {
		n /= 2
	}
	m := make(map[any]any, n)
	for i := 0; i < n; i++ {
		k, err := thawValue(in)
		if err != nil {
			return nil, err
		}
		v, err := thawValue(in)
		if err != nil {
			return nil, err
		}
		m[k] = v
	}
	return m, nil
}
