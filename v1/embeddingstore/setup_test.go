package embeddingstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stablecanvas/aesthetic/v1/logger"
	"github.com/stablecanvas/aesthetic/v1/vecmath"
)

func newTestStore(t *testing.T) *FSStore {
	t.Helper()
	store, err := NewFSStore(Config{Dir: t.TempDir()}, logger.NewNop())
	require.NoError(t, err)
	return store
}

func TestFSStore_EmptyListsSentinelOnly(t *testing.T) {
	store := newTestStore(t)
	assert.Equal(t, []string{SentinelNone}, store.Names())
}

func TestFSStore_RegisterResolveRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	vec := vecmath.Vector{0.1, -0.5, 2.25, 0}

	location, err := store.Register(ctx, "style", vec)
	require.NoError(t, err)
	assert.FileExists(t, location)

	got, err := store.Resolve(ctx, "style")
	require.NoError(t, err)
	assert.Equal(t, vec, got)
}

func TestFSStore_NamesOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	for _, name := range []string{"zebra", "alpha", "monet"} {
		_, err := store.Register(ctx, name, vecmath.Vector{1})
		require.NoError(t, err)
	}
	assert.Equal(t, []string{SentinelNone, "alpha", "monet", "zebra"}, store.Names())
}

func TestFSStore_ResolveUnknown(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Resolve(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFSStore_SentinelNeverResolves(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Resolve(context.Background(), SentinelNone)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFSStore_OverwriteIsSilent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Register(ctx, "style", vecmath.Vector{1, 2})
	require.NoError(t, err)
	_, err = store.Register(ctx, "style", vecmath.Vector{3, 4})
	require.NoError(t, err)

	got, err := store.Resolve(ctx, "style")
	require.NoError(t, err)
	assert.Equal(t, vecmath.Vector{3, 4}, got)
	assert.Equal(t, []string{SentinelNone, "style"}, store.Names())
}

func TestFSStore_InvalidNames(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	for _, name := range []string{"", SentinelNone, "a/b", `a\b`} {
		_, err := store.Register(ctx, name, vecmath.Vector{1})
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}
}

func TestFSStore_RefreshSeesExternalFiles(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Drop a file in behind the store's back, like a user copying an
	// embedding into the folder.
	path := filepath.Join(store.dir, "imported"+Extension)
	require.NoError(t, os.WriteFile(path, EncodeVector(vecmath.Vector{0.5, 0.5}), 0o644))

	assert.Equal(t, []string{SentinelNone}, store.Names())
	require.NoError(t, store.Refresh(ctx))
	assert.Equal(t, []string{SentinelNone, "imported"}, store.Names())

	got, err := store.Resolve(ctx, "imported")
	require.NoError(t, err)
	assert.Equal(t, vecmath.Vector{0.5, 0.5}, got)
}

func TestFSStore_CorruptFile(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	path := filepath.Join(store.dir, "broken"+Extension)
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o644))
	require.NoError(t, store.Refresh(ctx))

	_, err := store.Resolve(ctx, "broken")
	assert.ErrorIs(t, err, ErrCorruptVector)
}

func TestDecodeVector_Errors(t *testing.T) {
	_, err := DecodeVector(nil)
	assert.ErrorIs(t, err, ErrCorruptVector)
	_, err = DecodeVector([]byte{0, 0, 0})
	assert.ErrorIs(t, err, ErrCorruptVector)
}

func TestCodec_RoundTrip(t *testing.T) {
	vec := vecmath.Vector{-1.5, 0, 3.25e-3, 42}
	got, err := DecodeVector(EncodeVector(vec))
	require.NoError(t, err)
	assert.Equal(t, vec, got)
}

func TestObjectKeyLayout(t *testing.T) {
	s := &ObjectStore{cfg: ObjectConfig{Prefix: "aesthetic-embeddings/"}}
	assert.Equal(t, "aesthetic-embeddings/style.emb", s.objectKey("style"))
}
