package blobstore_test

import (
	"testing"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/skald/pkg/blobstore"
)

func TestSecondaryIndex_InsertSearchDelete(t *testing.T) {
	idx := blobstore.NewSecondaryIndex("email", 3)

	alice := ksuid.New()
	bob := ksuid.New()

	idx.Insert("alice@example.com", alice)
	idx.Insert("bob@example.com", bob)

	assert.Equal(t, []ksuid.KSUID{alice}, idx.Search("alice@example.com"))
	assert.Empty(t, idx.Search("carol@example.com"))

	assert.True(t, idx.Delete("alice@example.com", alice))
	assert.Empty(t, idx.Search("alice@example.com"))
	assert.False(t, idx.Delete("alice@example.com", alice))
}

func TestSecondaryIndex_DuplicateFieldValue(t *testing.T) {
	idx := blobstore.NewSecondaryIndex("category", 3)

	item1 := ksuid.New()
	item2 := ksuid.New()

	idx.Insert("electronics", item1)
	idx.Insert("electronics", item2)

	got := idx.Search("electronics")
	assert.Len(t, got, 2)
	assert.Contains(t, got, item1)
	assert.Contains(t, got, item2)
}

func TestSecondaryIndex_SearchRange(t *testing.T) {
	idx := blobstore.NewSecondaryIndex("age", 3)

	ids := map[int]ksuid.KSUID{25: ksuid.New(), 30: ksuid.New(), 40: ksuid.New()}
	for age, id := range ids {
		idx.Insert(age, id)
	}

	got := idx.SearchRange(20, 35)
	assert.Len(t, got, 2)
	assert.Contains(t, got, ids[25])
	assert.Contains(t, got, ids[30])
	assert.NotContains(t, got, ids[40])
}

func TestSecondaryIndex_DataTypeSerialization(t *testing.T) {
	idx := blobstore.NewSecondaryIndex("mixed_types", 3)

	cases := []struct {
		fieldValue any
		id         ksuid.KSUID
	}{
		{int(42), ksuid.New()},
		{int64(123456789), ksuid.New()},
		{float64(3.14159), ksuid.New()},
		{"string_value", ksuid.New()},
	}

	for _, tc := range cases {
		idx.Insert(tc.fieldValue, tc.id)
	}
	for _, tc := range cases {
		assert.Contains(t, idx.Search(tc.fieldValue), tc.id)
	}
}

func TestIndexManager_GetOrCreateIndex(t *testing.T) {
	manager := blobstore.NewIndexManager(3)

	idx1 := manager.GetOrCreateIndex("field1")
	require.NotNil(t, idx1)

	idx2 := manager.GetOrCreateIndex("field1")
	assert.Same(t, idx1, idx2)

	idx3 := manager.GetOrCreateIndex("field2")
	assert.NotSame(t, idx1, idx3)
	assert.ElementsMatch(t, []string{"field1", "field2"}, manager.Fields())
}

func TestSecondaryIndex_EdgeCases(t *testing.T) {
	idx := blobstore.NewSecondaryIndex("edge_cases", 3)

	emptyKey := ksuid.New()
	idx.Insert("", emptyKey)
	assert.Contains(t, idx.Search(""), emptyKey)

	zeroKey := ksuid.New()
	idx.Insert(0, zeroKey)
	assert.Contains(t, idx.Search(0), zeroKey)
}
