package blobstore_test

import (
	"os"
	"testing"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/skald/pkg/blobstore"
	"github.com/ssargent/skald/pkg/codec"
)

func openStore(t *testing.T, opts ...blobstore.Option) *blobstore.Store {
	t.Helper()
	dir, err := os.MkdirTemp("", "skald_blobstore_test")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	s, err := blobstore.Open(dir, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_CreateReadUpdateDelete(t *testing.T) {
	s := openStore(t)

	id, err := s.Create("hello, blobstore")
	require.NoError(t, err)
	assert.NotEqual(t, ksuid.Nil, id)

	got, err := s.Read(id)
	require.NoError(t, err)
	assert.Equal(t, "hello, blobstore", got)

	require.NoError(t, s.Update(id, "updated value"))
	got, err = s.Read(id)
	require.NoError(t, err)
	assert.Equal(t, "updated value", got)

	require.NoError(t, s.Delete(id))
	_, err = s.Read(id)
	assert.Error(t, err)
}

func TestStore_Each(t *testing.T) {
	s := openStore(t)

	want := map[ksuid.KSUID]any{}
	for i := 0; i < 5; i++ {
		id, err := s.Create(i)
		require.NoError(t, err)
		want[id] = int64(i)
	}

	seen := map[ksuid.KSUID]any{}
	err := s.Each(func(id ksuid.KSUID, v any) error {
		seen[id] = v
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, want, seen)
}

func TestStore_WithSecondaryIndex(t *testing.T) {
	im := blobstore.NewIndexManager(4)
	im.GetOrCreateIndex("kind")

	s := openStore(t, blobstore.WithIndexManager(im))

	makeRecord := func(name, kind string) codec.Record {
		return codec.Record{
			Name: "skald/entity",
			Fields: map[string]any{
				"name": name,
				"kind": kind,
			},
		}
	}

	characterID, err := s.Create(makeRecord("John Doe", "character"))
	require.NoError(t, err)

	placeID, err := s.Create(makeRecord("Winterfell", "place"))
	require.NoError(t, err)

	_, err = s.Create(makeRecord("Jane Smith", "character"))
	require.NoError(t, err)

	idx := im.GetOrCreateIndex("kind")
	characters := idx.Search("character")
	assert.Len(t, characters, 2)
	assert.Contains(t, characters, characterID)

	places := idx.Search("place")
	assert.Equal(t, []ksuid.KSUID{placeID}, places)

	require.NoError(t, s.Delete(characterID))
	assert.Len(t, idx.Search("character"), 1)
}

func TestStore_RebuildIndexAfterReopen(t *testing.T) {
	dir, err := os.MkdirTemp("", "skald_blobstore_rebuild_test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	im := blobstore.NewIndexManager(4)
	im.GetOrCreateIndex("score")

	s, err := blobstore.Open(dir, blobstore.WithIndexManager(im))
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		_, err := s.Create(codec.Record{
			Name:   "skald/score",
			Fields: map[string]any{"score": int64(i * 10)},
		})
		require.NoError(t, err)
	}
	require.NoError(t, s.Close())

	reopened, err := blobstore.Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	freshIndex := blobstore.NewIndexManager(4)
	freshIndex.GetOrCreateIndex("score")
	require.NoError(t, reopened.Rebuild(freshIndex))

	matches := freshIndex.GetOrCreateIndex("score").SearchRange(int64(10), int64(20))
	assert.Len(t, matches, 2)
}

func TestStore_TimeIndexedField(t *testing.T) {
	im := blobstore.NewIndexManager(4)
	im.GetOrCreateIndex("created_at")
	s := openStore(t, blobstore.WithIndexManager(im))

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := s.Create(codec.Record{
			Name:   "skald/event",
			Fields: map[string]any{"created_at": base.AddDate(0, 0, i)},
		})
		require.NoError(t, err)
	}

	idx := im.GetOrCreateIndex("created_at")
	matches := idx.SearchRange(base, base.AddDate(0, 0, 1))
	assert.Len(t, matches, 2)
}
