package codec

import (
	"hash/fnv"
	"log"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

// CustomWriter encodes a value of a registered type into out. The wire tag
// identifying the custom id has already been written by the time this is
// called.
type CustomWriter func(out *buffer, v any) error

// CustomReader decodes a value previously written by the matching
// CustomWriter from in. The wire tag (and, for keyword ids, the 16-bit
// hash) has already been consumed by the time this is called.
type CustomReader func(in *reader) (any, error)

type idKind int

const (
	idKindByte idKind = iota
	idKindKeyword
)

type customEntry struct {
	writer      CustomWriter
	reader      CustomReader
	kind        idKind
	byteID      int
	keywordHash int16
}

// registryState is the custom-type registry's backing data. It is always
// replaced wholesale (never mutated in place) so concurrent readers never
// observe a torn map, per spec.md §5.
type registryState struct {
	byType      map[reflect.Type]customEntry
	byteByID    map[int]customEntry
	keywordByID map[int16]customEntry
}

func newRegistryState() *registryState {
	return &registryState{
		byType:      make(map[reflect.Type]customEntry),
		byteByID:    make(map[int]customEntry),
		keywordByID: make(map[int16]customEntry),
	}
}

func (s *registryState) clone() *registryState {
	n := newRegistryState()
	for k, v := range s.byType {
		n.byType[k] = v
	}
	for k, v := range s.byteByID {
		n.byteByID[k] = v
	}
	for k, v := range s.keywordByID {
		n.keywordByID[k] = v
	}
	return n
}

// Registry is a process-wide-by-default, explicitly injectable custom-type
// registry. Use DefaultRegistry for ergonomic call sites or NewRegistry for
// an isolated instance (testing, multi-tenant use), per spec.md §9's
// design note on exposing global state as an injectable context.
type Registry struct {
	state atomic.Pointer[registryState]
	mu    sync.Mutex // serializes writers; readers use the atomic pointer
}

// NewRegistry creates an empty, isolated custom-type registry.
func NewRegistry() *Registry {
	r := &Registry{}
	r.state.Store(newRegistryState())
	return r
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry used when callers do
// not supply their own via WithRegistry.
func DefaultRegistry() *Registry { return defaultRegistry }

func (r *Registry) load() *registryState {
	return r.state.Load()
}

// ExtendFreeze registers a writer for values of sample's concrete type
// under a positive byte id (1..128), consuming one tag slot with no
// framing overhead. Re-registration is allowed and logs a warning, per
// spec.md §4.5.
func (r *Registry) ExtendFreeze(sample any, byteID int, writer CustomWriter) error {
	if byteID < 1 || byteID > 128 {
		return errors.Newf("custom byte id %d out of range [1,128]", byteID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	next := r.load().clone()
	t := reflect.TypeOf(sample)
	entry := next.byType[t]
	if entry.writer != nil {
		log.Printf("codec: re-registering freeze writer for type %s", t)
	}
	entry.writer = writer
	entry.kind = idKindByte
	entry.byteID = byteID
	next.byType[t] = entry
	r.state.Store(next)
	return nil
}

// ExtendThaw registers a reader for the given byte id.
func (r *Registry) ExtendThaw(byteID int, reader CustomReader) error {
	if byteID < 1 || byteID > 128 {
		return errors.Newf("custom byte id %d out of range [1,128]", byteID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	next := r.load().clone()
	entry := next.byteByID[byteID]
	if entry.reader != nil {
		log.Printf("codec: re-registering thaw reader for byte id %d", byteID)
	}
	entry.reader = reader
	entry.kind = idKindByte
	entry.byteID = byteID
	next.byteByID[byteID] = entry
	r.state.Store(next)
	return nil
}

// ExtendFreezeKeyword registers a writer for values of sample's concrete
// type under an arbitrary keyword name, hashed to 16 bits. Registration
// fails if the hash falls into the band reserved for byte-id custom tags.
func (r *Registry) ExtendFreezeKeyword(sample any, name string, writer CustomWriter) error {
	hash, err := keywordHash(name)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	next := r.load().clone()
	t := reflect.TypeOf(sample)
	entry := next.byType[t]
	if entry.writer != nil {
		log.Printf("codec: re-registering freeze writer for type %s", t)
	}
	entry.writer = writer
	entry.kind = idKindKeyword
	entry.keywordHash = hash
	next.byType[t] = entry
	r.state.Store(next)
	return nil
}

// ExtendThawKeyword registers a reader for the given keyword name's hash.
func (r *Registry) ExtendThawKeyword(name string, reader CustomReader) error {
	hash, err := keywordHash(name)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	next := r.load().clone()
	entry := next.keywordByID[hash]
	if entry.reader != nil {
		log.Printf("codec: re-registering thaw reader for keyword %q (hash %d)", name, hash)
	}
	entry.reader = reader
	entry.kind = idKindKeyword
	entry.keywordHash = hash
	next.keywordByID[hash] = entry
	r.state.Store(next)
	return nil
}

// keywordHash maps an arbitrary name to a 16-bit value in
// [-32768,-129] ∪ [0,32767], refusing the reserved band [-128,-1] that
// byte-id custom tags occupy.
func keywordHash(name string) (int16, error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	sum := h.Sum32()
	v := int16(uint16(sum))
	if v >= int16(customReservedLow) && v <= int16(customReservedHigh) {
		return 0, errors.Newf("keyword %q hashes into the reserved custom byte-id band (%d)", name, v)
	}
	return v, nil
}

func (r *Registry) lookupByType(t reflect.Type) (customEntry, bool) {
	e, ok := r.load().byType[t]
	return e, ok && e.writer != nil
}

func (r *Registry) lookupByByteID(id int) (customEntry, bool) {
	e, ok := r.load().byteByID[id]
	return e, ok && e.reader != nil
}

func (r *Registry) lookupByKeywordHash(hash int16) (customEntry, bool) {
	e, ok := r.load().keywordByID[hash]
	return e, ok && e.reader != nil
}
