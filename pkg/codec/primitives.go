package codec

import (
	"encoding/binary"
	"io"
)

// sizeClass is the length-prefix width selected for a bytes/string payload.
type sizeClass int

const (
	sizeClass0 sizeClass = iota
	sizeClassSm
	sizeClassMd
	sizeClassLg
)

// classifyLength selects the narrowest size class that fits n, per
// spec.md §4.2's self-classifying bytes/string writers.
func classifyLength(n int) sizeClass {
	switch {
	case n == 0:
		return sizeClass0
	case n <= 127:
		return sizeClassSm
	case n <= 32767:
		return sizeClassMd
	default:
		return sizeClassLg
	}
}

// writeBytesSm writes a 1-byte unsigned length (0..127) then the payload.
func writeBytesSm(out *buffer, data []byte) {
	out.WriteByte(byte(len(data)))
	out.Write(data)
}

// writeBytesMd writes a 2-byte big-endian signed length then the payload.
func writeBytesMd(out *buffer, data []byte) {
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(int16(len(data))))
	out.Write(lenBuf[:])
	out.Write(data)
}

// writeBytesLg writes a 4-byte big-endian signed length then the payload.
func writeBytesLg(out *buffer, data []byte) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(int32(len(data))))
	out.Write(lenBuf[:])
	out.Write(data)
}

// writeSizedBytes emits the correct _0/_sm/_md/_lg tag for data's length
// followed by the appropriately-prefixed payload. tags must be exactly
// four entries: {tag0, tagSm, tagMd, tagLg}.
func writeSizedBytes(out *buffer, data []byte, tags [4]Tag) {
	switch classifyLength(len(data)) {
	case sizeClass0:
		out.WriteTag(tags[0])
	case sizeClassSm:
		out.WriteTag(tags[1])
		writeBytesSm(out, data)
	case sizeClassMd:
		out.WriteTag(tags[2])
		writeBytesMd(out, data)
	case sizeClassLg:
		out.WriteTag(tags[3])
		writeBytesLg(out, data)
	}
}

func readBytesSm(in *reader) ([]byte, error) {
	n, err := in.ReadByte()
	if err != nil {
		return nil, err
	}
	return in.ReadN(int(n))
}

func readBytesMd(in *reader) ([]byte, error) {
	var lenBuf [2]byte
	if err := in.ReadFull(lenBuf[:]); err != nil {
		return nil, err
	}
	n := int16(binary.BigEndian.Uint16(lenBuf[:]))
	return in.ReadN(int(n))
}

func readBytesLg(in *reader) ([]byte, error) {
	var lenBuf [4]byte
	if err := in.ReadFull(lenBuf[:]); err != nil {
		return nil, err
	}
	n := int32(binary.BigEndian.Uint32(lenBuf[:]))
	return in.ReadN(int(n))
}

// writeString is the UTF-8 string analogue of writeSizedBytes.
func writeString(out *buffer, s string, tags [4]Tag) {
	writeSizedBytes(out, []byte(s), tags)
}

// writeSignedLong selects the narrowest of {byte, short, int, long} that
// faithfully holds n (including negatives) and writes the matching tag and
// payload. n == 0 always emits LongZeroTag with no payload.
func writeSignedLong(out *buffer, n int64) {
	switch {
	case n == 0:
		out.WriteTag(LongZeroTag)
	case n >= -128 && n <= 127:
		out.WriteTag(LongSmTag)
		out.WriteByte(byte(int8(n)))
	case n >= -32768 && n <= 32767:
		out.WriteTag(LongMdTag)
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], uint16(int16(n)))
		out.Write(b[:])
	case n >= -2147483648 && n <= 2147483647:
		out.WriteTag(LongLgTag)
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], uint32(int32(n)))
		out.Write(b[:])
	default:
		out.WriteTag(LongXlTag)
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], uint64(n))
		out.Write(b[:])
	}
}

func readSignedLongPayload(in *reader, tag Tag) (int64, error) {
	switch tag {
	case LongZeroTag:
		return 0, nil
	case LongSmTag:
		b, err := in.ReadByte()
		if err != nil {
			return 0, err
		}
		return int64(int8(b)), nil
	case LongMdTag:
		var b [2]byte
		if err := in.ReadFull(b[:]); err != nil {
			return 0, err
		}
		return int64(int16(binary.BigEndian.Uint16(b[:]))), nil
	case LongLgTag:
		var b [4]byte
		if err := in.ReadFull(b[:]); err != nil {
			return 0, err
		}
		return int64(int32(binary.BigEndian.Uint32(b[:]))), nil
	case LongXlTag:
		var b [8]byte
		if err := in.ReadFull(b[:]); err != nil {
			return 0, err
		}
		return int64(binary.BigEndian.Uint64(b[:])), nil
	default:
		return 0, io.ErrUnexpectedEOF
	}
}

var byteSizeTags = [4]Tag{Bytes0Tag, BytesSmTag, BytesMdTag, BytesLgTag}
var strSizeTags = [4]Tag{Str0Tag, StrSmTag, StrMdTag, StrLgTag}
