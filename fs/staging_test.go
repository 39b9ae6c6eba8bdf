package fs_test

import (
	"context"
	"strings"
	"testing"

	"github.com/fwojciec/docrag"
	"github.com/fwojciec/docrag/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStagingStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("put then read round-trips through the address", func(t *testing.T) {
		t.Parallel()

		s, err := fs.NewStagingStore(t.TempDir())
		require.NoError(t, err)

		addr, err := s.Put(ctx, "staging/run1/0-abc.txt", []byte("hello"), "text/plain")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(addr, fs.AddressScheme))

		data, err := s.Read(ctx, addr)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
	})

	t.Run("list filters by prefix", func(t *testing.T) {
		t.Parallel()

		s, err := fs.NewStagingStore(t.TempDir())
		require.NoError(t, err)
		for _, key := range []string{"staging/run1/0.txt", "staging/run1/1.txt", "staging/run2/0.txt"} {
			_, err := s.Put(ctx, key, []byte("x"), "text/plain")
			require.NoError(t, err)
		}

		keys, err := s.List(ctx, "staging/run1/")
		require.NoError(t, err)
		assert.Equal(t, []string{"staging/run1/0.txt", "staging/run1/1.txt"}, keys)

		all, err := s.List(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("list of missing directory is empty", func(t *testing.T) {
		t.Parallel()

		s, err := fs.NewStagingStore(t.TempDir() + "/never-created")
		require.NoError(t, err)

		keys, err := s.List(ctx, "")

		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		t.Parallel()

		s, err := fs.NewStagingStore(t.TempDir())
		require.NoError(t, err)
		addr, err := s.Put(ctx, "staging/run1/0.txt", []byte("x"), "text/plain")
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, "staging/run1/0.txt"))
		require.NoError(t, s.Delete(ctx, "staging/run1/0.txt"))

		_, err = s.Read(ctx, addr)
		assert.Equal(t, docrag.ENOTFOUND, docrag.ErrorCode(err))
	})

	t.Run("rejects foreign addresses", func(t *testing.T) {
		t.Parallel()

		s, err := fs.NewStagingStore(t.TempDir())
		require.NoError(t, err)

		_, err = s.Read(ctx, "s3://bucket/key")
		assert.Equal(t, docrag.EINVALID, docrag.ErrorCode(err))

		_, err = s.Read(ctx, "file:///etc/passwd")
		assert.Equal(t, docrag.EINVALID, docrag.ErrorCode(err))
	})

	t.Run("rejects invalid keys", func(t *testing.T) {
		t.Parallel()

		s, err := fs.NewStagingStore(t.TempDir())
		require.NoError(t, err)

		_, err = s.Put(ctx, "", []byte("x"), "text/plain")
		assert.Equal(t, docrag.EINVALID, docrag.ErrorCode(err))

		_, err = s.Put(ctx, ".hidden", []byte("x"), "text/plain")
		assert.Equal(t, docrag.EINVALID, docrag.ErrorCode(err))
	})
}
