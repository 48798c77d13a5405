package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	require.NoError(t, s.Put(ctx, NamespacePlain, "abc", strings.NewReader("payload"), 7))

	ok, err := s.Exists(ctx, NamespacePlain, "abc")
	require.NoError(t, err)
	require.True(t, ok)

	rc, err := s.Get(ctx, NamespacePlain, "abc")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Equal(t, "payload", string(data))

	require.NoError(t, s.Delete(ctx, NamespacePlain, "abc"))

	_, err = s.Get(ctx, NamespacePlain, "abc")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore_DeleteMissingIsNotAnError(t *testing.T) {
	s := NewMemStore()
	require.NoError(t, s.Delete(context.Background(), NamespaceZipped, "nothing"))
}

func TestMemStore_NamespacesAreSeparate(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	require.NoError(t, s.Put(ctx, NamespacePlain, "h1", strings.NewReader("raw"), 3))

	ok, err := s.Exists(ctx, NamespaceZipped, "h1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemStore_InjectedPutError(t *testing.T) {
	s := NewMemStore()
	s.PutErr = errors.New("disk on fire")

	err := s.Put(context.Background(), NamespacePlain, "h1", strings.NewReader("x"), 1)
	require.Error(t, err)
	require.Equal(t, 0, s.Len())
}

func TestPath(t *testing.T) {
	require.Equal(t, "plain/9e107d9d", Path(NamespacePlain, "9e107d9d"))
	require.Equal(t, "zipped/9e107d9d", Path(NamespaceZipped, "9e107d9d"))
}
