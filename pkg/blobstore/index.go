package blobstore

import (
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/ssargent/skald/pkg/bptree"
	"github.com/ssargent/skald/pkg/codec"
)

// SecondaryIndex keeps an ordered lookup from one field of a blob's value to
// the ksuid of every blob that carries it. The index key is the serialized
// field value plus the blob's own ksuid, so that several blobs sharing a
// field value each still get a distinct entry in the tree.
type SecondaryIndex struct {
	fieldName string
	tree      *bptree.BPlusTree[string, ksuid.KSUID]
	mutex     sync.RWMutex
}

// NewSecondaryIndex creates a new secondary index for a field.
func NewSecondaryIndex(fieldName string, order int) *SecondaryIndex {
	return &SecondaryIndex{
		fieldName: fieldName,
		tree:      bptree.NewBPlusTree[string, ksuid.KSUID](order),
	}
}

// Insert adds id to the index under fieldValue.
func (idx *SecondaryIndex) Insert(fieldValue any, id ksuid.KSUID) {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	idx.tree.Insert(idx.indexKey(fieldValue, id), id)
}

// Delete removes id from the index under fieldValue. It reports whether the
// entry was present.
func (idx *SecondaryIndex) Delete(fieldValue any, id ksuid.KSUID) bool {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	return idx.tree.Delete(idx.indexKey(fieldValue, id))
}

// Search returns the ksuids of every blob indexed under the exact fieldValue.
func (idx *SecondaryIndex) Search(fieldValue any) []ksuid.KSUID {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	prefix := serializeFieldValue(fieldValue)
	return idx.tree.Range(prefix+keySeparator, prefix+keySeparator+keyUpperBound)
}

// SearchRange returns the ksuids of every blob whose indexed field value
// falls between startValue and endValue, inclusive.
func (idx *SecondaryIndex) SearchRange(startValue, endValue any) []ksuid.KSUID {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	start := serializeFieldValue(startValue)
	end := serializeFieldValue(endValue) + keySeparator + keyUpperBound
	return idx.tree.Range(start, end)
}

// indexKey must be called with idx.mutex held.
func (idx *SecondaryIndex) indexKey(fieldValue any, id ksuid.KSUID) string {
	return serializeFieldValue(fieldValue) + keySeparator + id.String()
}

// keySeparator joins the serialized field value to the trailing ksuid.
// keyUpperBound bounds a Range query above any valid ksuid suffix: ksuid's
// base62 alphabet (0-9A-Za-z) tops out below 0x7b.
const (
	keySeparator  = "\x00"
	keyUpperBound = "\x7f"
)

// serializeFieldValue renders a field value into a string that sorts the
// same way the value itself would compare, for the scalar types a decoded
// codec.Record field can hold. Ordering across negative numbers is not
// preserved; indexed fields in practice are ids, scores and timestamps,
// which are non-negative.
func serializeFieldValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return fmt.Sprintf("%020d", v)
	case int64:
		return fmt.Sprintf("%020d", v)
	case float64:
		return fmt.Sprintf("%+020.10f", v)
	case time.Time:
		return fmt.Sprintf("%020d", v.UnixNano())
	default:
		return fmt.Sprintf("%v", v)
	}
}

// fieldValueOf extracts the named field from a decoded blob value, which is
// expected to be a *codec.Record (or codec.Record) produced by codec.Thaw.
func fieldValueOf(v any, field string) (any, bool) {
	switch rec := v.(type) {
	case *codec.Record:
		fv, ok := rec.Fields[field]
		return fv, ok
	case codec.Record:
		fv, ok := rec.Fields[field]
		return fv, ok
	default:
		return nil, false
	}
}

// IndexManager owns a named set of secondary indexes, one per indexed field.
type IndexManager struct {
	indexes map[string]*SecondaryIndex
	mutex   sync.RWMutex
	order   int
}

// NewIndexManager creates a new index manager whose trees use the given
// B+Tree order.
func NewIndexManager(order int) *IndexManager {
	return &IndexManager{
		indexes: make(map[string]*SecondaryIndex),
		order:   order,
	}
}

// GetOrCreateIndex returns the index for fieldName, creating it if needed.
func (im *IndexManager) GetOrCreateIndex(fieldName string) *SecondaryIndex {
	im.mutex.Lock()
	defer im.mutex.Unlock()

	if idx, ok := im.indexes[fieldName]; ok {
		return idx
	}
	idx := NewSecondaryIndex(fieldName, im.order)
	im.indexes[fieldName] = idx
	return idx
}

// Fields reports the names of every field currently indexed.
func (im *IndexManager) Fields() []string {
	im.mutex.RLock()
	defer im.mutex.RUnlock()

	fields := make([]string, 0, len(im.indexes))
	for name := range im.indexes {
		fields = append(fields, name)
	}
	return fields
}

// indexValue fans a decoded blob value out to every managed index that has a
// matching field.
func (im *IndexManager) indexValue(v any, id ksuid.KSUID) {
	im.mutex.RLock()
	defer im.mutex.RUnlock()

	for field, idx := range im.indexes {
		if fv, ok := fieldValueOf(v, field); ok {
			idx.Insert(fv, id)
		}
	}
}

// removeValue reverses indexValue, used before a blob is deleted or
// overwritten.
func (im *IndexManager) removeValue(v any, id ksuid.KSUID) {
	im.mutex.RLock()
	defer im.mutex.RUnlock()

	for field, idx := range im.indexes {
		if fv, ok := fieldValueOf(v, field); ok {
			idx.Delete(fv, id)
		}
	}
}
