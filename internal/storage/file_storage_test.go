package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"product-catalog/internal/apperr"
	"product-catalog/internal/model"
)

func newTestStore(t *testing.T, maxBytes int64) *DiskStore {
	t.Helper()
	store, err := NewDiskStore(t.TempDir(), maxBytes)
	require.NoError(t, err)
	return store
}

func pngUpload(content string) *Upload {
	return &Upload{
		Reader:      strings.NewReader(content),
		Size:        int64(len(content)),
		ContentType: "image/png",
		Filename:    "photo.png",
	}
}

func dirEntries(t *testing.T, dir string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return entries
}

func TestStoreAndDelete(t *testing.T) {
	store := newTestStore(t, 1<<20)

	ref, err := store.Store(pngUpload("fake png bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, PublicPrefix))
	assert.True(t, strings.HasSuffix(ref, ".png"))

	local := filepath.Join(store.Dir(), strings.TrimPrefix(ref, PublicPrefix))
	data, err := os.ReadFile(local)
	require.NoError(t, err)
	assert.Equal(t, "fake png bytes", string(data))

	require.NoError(t, store.Delete(ref))
	assert.Empty(t, dirEntries(t, store.Dir()))
}

func TestStoreGeneratesUniqueNames(t *testing.T) {
	store := newTestStore(t, 1<<20)

	ref1, err := store.Store(pngUpload("one"))
	require.NoError(t, err)
	ref2, err := store.Store(pngUpload("two"))
	require.NoError(t, err)

	assert.NotEqual(t, ref1, ref2)
	assert.Len(t, dirEntries(t, store.Dir()), 2)
}

func TestStoreRejectsDisallowedType(t *testing.T) {
	store := newTestStore(t, 1<<20)

	up := pngUpload("plain text")
	up.ContentType = "text/plain"
	up.Filename = "notes.txt"

	_, err := store.Store(up)
	assert.True(t, apperr.IsValidation(err))
	assert.Empty(t, dirEntries(t, store.Dir()))
}

func TestStoreRejectsOversizedDeclaredSize(t *testing.T) {
	store := newTestStore(t, 10)

	up := pngUpload("tiny")
	up.Size = 11

	_, err := store.Store(up)
	assert.True(t, apperr.IsValidation(err))
	assert.Empty(t, dirEntries(t, store.Dir()))
}

func TestStoreRejectsOversizedActualBytes(t *testing.T) {
	store := newTestStore(t, 10)

	// Declared size lies; the byte cap still applies.
	up := pngUpload("these bytes exceed the cap")
	up.Size = 5

	_, err := store.Store(up)
	assert.True(t, apperr.IsValidation(err))
	assert.Empty(t, dirEntries(t, store.Dir()))
}

func TestDeleteIgnoresForeignReferences(t *testing.T) {
	store := newTestStore(t, 1<<20)

	assert.NoError(t, store.Delete(model.DefaultImageURL))
	assert.NoError(t, store.Delete(""))
	assert.NoError(t, store.Delete(PublicPrefix+"never-stored.png"))
}
