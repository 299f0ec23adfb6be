package codec

// Tag is the one-byte type identifier that begins every encoded value. On
// the wire a tag occupies a single byte; built-in tags are non-negative
// when that byte is read as a signed int8 (0..127), while custom byte-id
// tags occupy the negative range (-1..-128, i.e. wire bytes 128..255) so
// the two spaces never collide. See ExtendFreeze/ExtendThaw.
type Tag int8

// Built-in tags. Values are assigned once and never reassigned — new
// variants take unused values, they never reuse a retired one. Four values
// (STR_SM, VEC_0, MAP_SM, PREFIXED_CUSTOM) are fixed by the wire format's
// documented end-to-end scenarios and must not change.
const (
	NilTag  Tag = 0
	TrueTag Tag = 2
	FalseTag Tag = 3

	CharTag Tag = 4

	ByteTag  Tag = 10
	ShortTag Tag = 11
	IntTag   Tag = 9
	// LongZero, LongSm, LongMd, LongLg, LongXl cover the narrowest-fit
	// signed-long encoding (primitives.go).
	LongZeroTag Tag = 12
	LongSmTag   Tag = 13
	LongMdTag   Tag = 14
	LongLgTag   Tag = 15
	LongXlTag   Tag = 16

	FloatTag  Tag = 20
	DoubleTag Tag = 21

	BigIntTag     Tag = 25
	BigDecimalTag Tag = 26
	RatioTag      Tag = 27

	// Strings, size-classed. StrSmTag's value (105) is fixed by spec
	// scenario S1.
	Str0Tag Tag = 30
	StrSmTag Tag = 105
	StrMdTag Tag = 32
	StrLgTag Tag = 33

	Kw0Tag   Tag = 40
	KwSmTag  Tag = 41
	KwMdTag  Tag = 42
	KwLgTag  Tag = 43

	Sym0Tag  Tag = 44
	SymSmTag Tag = 45
	SymMdTag Tag = 46
	SymLgTag Tag = 47

	RegexTag Tag = 50

	Bytes0Tag Tag = 55
	BytesSmTag Tag = 56
	BytesMdTag Tag = 57
	BytesLgTag Tag = 58

	// Vectors. Vec0Tag's value (17) is fixed by spec scenario S2. Vec2/Vec3
	// omit the length prefix entirely per spec.md §4.3 rule 3.
	Vec0Tag Tag = 17
	VecSmTag Tag = 61
	VecMdTag Tag = 62
	VecLgTag Tag = 63
	Vec2Tag  Tag = 64
	Vec3Tag  Tag = 65

	List0Tag Tag = 70
	ListSmTag Tag = 71
	ListMdTag Tag = 72
	ListLgTag Tag = 73

	Seq0Tag Tag = 75
	SeqSmTag Tag = 76
	SeqMdTag Tag = 77
	SeqLgTag Tag = 78

	Set0Tag Tag = 80
	SetSmTag Tag = 81
	SetMdTag Tag = 83
	SetLgTag Tag = 84

	SortedSet0Tag Tag = 86
	SortedSetSmTag Tag = 87
	SortedSetMdTag Tag = 88
	SortedSetLgTag Tag = 89

	Queue0Tag Tag = 90
	QueueSmTag Tag = 91
	QueueMdTag Tag = 92
	QueueLgTag Tag = 93

	// Maps. MapSmTag's value (112) is fixed by spec scenario S3.
	Map0Tag Tag = 95
	MapSmTag Tag = 112
	MapMdTag Tag = 97
	MapLgTag Tag = 98

	SortedMap0Tag Tag = 99
	SortedMapSmTag Tag = 100
	SortedMapMdTag Tag = 101
	SortedMapLgTag Tag = 102

	DateTag Tag = 103
	UUIDTag Tag = 104

	RecordTag Tag = 106

	MetaTag Tag = 107

	// PrefixedCustomTag's value (82) is fixed by spec scenario S6.
	PrefixedCustomTag Tag = 82

	SerializableFallbackTag Tag = 108
	ReadableFallbackTag     Tag = 109
	UnfreezableMarkerTag    Tag = 110

	// Deprecated: decode-only, never emitted by the writer. Historical
	// values kept exactly as encountered on disk/wire from older writers.
	MapDepr1Tag Tag = 111
	// MapDepr2Tag's 32-bit count field historically stored *twice* the
	// entry count; see reader.go.
	MapDepr2Tag  Tag = 113
	SetDeprTag   Tag = 114
	VecDeprTag   Tag = 115
	UTFDeprTag   Tag = 116
	BoolDeprTag  Tag = 117
)

// customReservedLow/High bound the reserved band that keyword-based custom
// ids must never hash into — that band is reserved for the negated
// byte-id custom tags.
const (
	customReservedLow  int16 = -128
	customReservedHigh int16 = -1
)

// byteIDTag returns the wire tag for a registered byte custom id (1..128).
func byteIDTag(id int) Tag {
	return Tag(-id)
}

// byteIDFromTag recovers the custom byte id a negative tag encodes.
func byteIDFromTag(t Tag) int {
	return -int(t)
}

func isCustomByteTag(t Tag) bool {
	return t < 0
}

// tagNames gives a human-readable label for error messages and Inspect.
var tagNames = map[Tag]string{
	NilTag: "nil", TrueTag: "true", FalseTag: "false", CharTag: "char",
	ByteTag: "byte", ShortTag: "short", IntTag: "int",
	LongZeroTag: "long-zero", LongSmTag: "long-sm", LongMdTag: "long-md", LongLgTag: "long-lg", LongXlTag: "long-xl",
	FloatTag: "float", DoubleTag: "double",
	BigIntTag: "bigint", BigDecimalTag: "bigdecimal", RatioTag: "ratio",
	Str0Tag: "str-0", StrSmTag: "str-sm", StrMdTag: "str-md", StrLgTag: "str-lg",
	Kw0Tag: "kw-0", KwSmTag: "kw-sm", KwMdTag: "kw-md", KwLgTag: "kw-lg",
	Sym0Tag: "sym-0", SymSmTag: "sym-sm", SymMdTag: "sym-md", SymLgTag: "sym-lg",
	RegexTag: "regex",
	Bytes0Tag: "bytes-0", BytesSmTag: "bytes-sm", BytesMdTag: "bytes-md", BytesLgTag: "bytes-lg",
	Vec0Tag: "vec-0", VecSmTag: "vec-sm", VecMdTag: "vec-md", VecLgTag: "vec-lg", Vec2Tag: "vec-2", Vec3Tag: "vec-3",
	List0Tag: "list-0", ListSmTag: "list-sm", ListMdTag: "list-md", ListLgTag: "list-lg",
	Seq0Tag: "seq-0", SeqSmTag: "seq-sm", SeqMdTag: "seq-md", SeqLgTag: "seq-lg",
	Set0Tag: "set-0", SetSmTag: "set-sm", SetMdTag: "set-md", SetLgTag: "set-lg",
	SortedSet0Tag: "sorted-set-0", SortedSetSmTag: "sorted-set-sm", SortedSetMdTag: "sorted-set-md", SortedSetLgTag: "sorted-set-lg",
	Queue0Tag: "queue-0", QueueSmTag: "queue-sm", QueueMdTag: "queue-md", QueueLgTag: "queue-lg",
	Map0Tag: "map-0", MapSmTag: "map-sm", MapMdTag: "map-md", MapLgTag: "map-lg",
	SortedMap0Tag: "sorted-map-0", SortedMapSmTag: "sorted-map-sm", SortedMapMdTag: "sorted-map-md", SortedMapLgTag: "sorted-map-lg",
	DateTag: "date", UUIDTag: "uuid",
	RecordTag: "record", MetaTag: "meta", PrefixedCustomTag: "prefixed-custom",
	SerializableFallbackTag: "serializable-fallback", ReadableFallbackTag: "readable-fallback", UnfreezableMarkerTag: "unfreezable-marker",
	MapDepr1Tag: "map-depr1", MapDepr2Tag: "map-depr2", SetDeprTag: "set-depr", VecDeprTag: "vec-depr", UTFDeprTag: "utf-depr", BoolDeprTag: "bool-depr",
}

func (t Tag) String() string {
	if isCustomByteTag(t) {
		return "custom-byte-id"
	}
	if name, ok := tagNames[t]; ok {
		return name
	}
	return "unknown"
}
