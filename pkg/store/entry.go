package store

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"time"
)

// Entry is a single append-only log record: a raw key plus an already
// codec.FreezeValue-encoded value payload. It mirrors the teacher's fixed
// Record header, generalized so Value holds a self-describing skald value
// instead of an arbitrary byte slice.
type Entry struct {
	CRC32     uint32
	KeySize   uint32
	ValueSize uint32
	Timestamp uint64
	Key       []byte
	Value     []byte
}

// EntryCodec serializes and deserializes Entry records.
type EntryCodec struct{}

// NewEntryCodec creates a new entry codec instance.
func NewEntryCodec() *EntryCodec {
	return &EntryCodec{}
}

// Encode serializes a key and an already-frozen value payload into the
// on-disk format: [CRC32(4)][KeySize(4)][ValueSize(4)][Timestamp(8)][Key][Value].
func (c *EntryCodec) Encode(key, frozenValue []byte) ([]byte, error) {
	e := NewEntry(key, frozenValue)
	e.CRC32 = e.calculateCRC32()

	buf := make([]byte, e.Size())
	binary.LittleEndian.PutUint32(buf[0:], e.CRC32)
	binary.LittleEndian.PutUint32(buf[4:], e.KeySize)
	binary.LittleEndian.PutUint32(buf[8:], e.ValueSize)
	binary.LittleEndian.PutUint64(buf[12:], e.Timestamp)
	copy(buf[20:], e.Key)
	copy(buf[20+e.KeySize:], e.Value)

	return buf, nil
}

// Decode deserializes a binary entry into an Entry struct.
func (c *EntryCodec) Decode(data []byte) (*Entry, error) {
	if len(data) < 20 {
		return nil, fmt.Errorf("data too short for entry header")
	}

	e := &Entry{}
	e.CRC32 = binary.LittleEndian.Uint32(data[0:4])
	e.KeySize = binary.LittleEndian.Uint32(data[4:8])
	e.ValueSize = binary.LittleEndian.Uint32(data[8:12])
	e.Timestamp = binary.LittleEndian.Uint64(data[12:20])
	if len(data) < int(20+e.KeySize+e.ValueSize) {
		return nil, fmt.Errorf("data too short for key/value sizes: %d < %d", len(data), 20+e.KeySize+e.ValueSize)
	}

	e.Key = data[20 : 20+e.KeySize]
	e.Value = data[20+e.KeySize : 20+e.KeySize+e.ValueSize]

	return e, nil
}

// Validate checks the integrity of an entry using CRC32.
func (e *Entry) Validate() error {
	if e.CRC32 != e.calculateCRC32() {
		return fmt.Errorf("CRC32 mismatch: %d != %d", e.CRC32, e.calculateCRC32())
	}
	return nil
}

// Size returns the total size of the entry when encoded.
func (e *Entry) Size() int {
	return 20 + len(e.Key) + len(e.Value)
}

// NewEntry creates a new entry with the current timestamp.
func NewEntry(key, frozenValue []byte) *Entry {
	keyLen := len(key)
	valLen := len(frozenValue)
	if keyLen > int(^uint32(0)) {
		panic("key too large")
	}
	if valLen > int(^uint32(0)) {
		panic("value too large")
	}
	return &Entry{
		KeySize:   uint32(keyLen),
		ValueSize: uint32(valLen),
		Timestamp: uint64(time.Now().UnixNano()),
		Key:       key,
		Value:     frozenValue,
	}
}

func (e *Entry) calculateCRC32() uint32 {
	data := make([]byte, 8+len(e.Key)+len(e.Value))
	binary.LittleEndian.PutUint64(data[0:], e.Timestamp)
	copy(data[8:], e.Key)
	copy(data[8+len(e.Key):], e.Value)
	return crc32.ChecksumIEEE(data)
}
