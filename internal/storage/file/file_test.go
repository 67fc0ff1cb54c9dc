package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/swift-grocers/internal/storage"
)

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	require.NoError(t, err)

	v, err := s.Read(ctx, storage.CartKey)
	require.NoError(t, err)
	assert.Nil(t, v, "absent key reads as nil")

	require.NoError(t, s.Write(ctx, storage.CartKey, []byte(`[{"id":"p1"}]`)))
	require.NoError(t, s.Write(ctx, storage.CartKey, []byte(`[]`)))

	v, err = s.Read(ctx, storage.CartKey)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(v))
}

func TestStore_UserKeysStayInsideDir(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	key := storage.UserKey(storage.CartKey, "../../etc/u1")
	require.NoError(t, s.Write(ctx, key, []byte(`[]`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "swift_grocers_cart:..%2F..%2Fetc%2Fu1.json", entries[0].Name())
}

func TestStore_DistinctUsersDoNotShareFiles(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	require.NoError(t, err)

	slash := storage.UserKey(storage.CartKey, "a/b")
	underscore := storage.UserKey(storage.CartKey, "a_b")
	require.NoError(t, s.Write(ctx, slash, []byte(`["slash"]`)))
	require.NoError(t, s.Write(ctx, underscore, []byte(`["underscore"]`)))

	v, err := s.Read(ctx, slash)
	require.NoError(t, err)
	assert.Equal(t, `["slash"]`, string(v))

	v, err = s.Read(ctx, underscore)
	require.NoError(t, err)
	assert.Equal(t, `["underscore"]`, string(v))
}

func TestStore_UnreadableFileIsUnavailable(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := New(dir)
	require.NoError(t, err)

	// A directory where the document should be makes ReadFile fail.
	require.NoError(t, os.Mkdir(filepath.Join(dir, storage.OrdersKey+".json"), 0o755))

	_, err = s.Read(ctx, storage.OrdersKey)
	require.ErrorIs(t, err, storage.ErrUnavailable)
}

func TestNew_RequiresDir(t *testing.T) {
	_, err := New("")
	require.Error(t, err)
}
