package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/noplp-songs/internal/storage/local"
	"github.com/JakeFAU/noplp-songs/internal/storage/memory"
)

func TestOpen(t *testing.T) {
	t.Parallel()

	store, closeFn, err := Open(context.Background(), Config{Provider: ProviderLocal, Dir: t.TempDir()}, zap.NewNop())
	require.NoError(t, err)
	require.IsType(t, &local.BlobStore{}, store)
	require.NoError(t, closeFn())

	store, closeFn, err = Open(context.Background(), Config{Provider: ProviderMemory}, zap.NewNop())
	require.NoError(t, err)
	require.IsType(t, &memory.BlobStore{}, store)
	require.NoError(t, closeFn())

	uri, err := store.PutObject(context.Background(), "run/occurrences.csv", "text/csv", strings.NewReader("x"))
	require.NoError(t, err)
	require.Equal(t, "memory://run/occurrences.csv", uri)
}

func TestOpenErrors(t *testing.T) {
	t.Parallel()

	_, closeFn, err := Open(context.Background(), Config{Provider: "s3"}, zap.NewNop())
	require.ErrorContains(t, err, "unknown storage provider")
	require.NotNil(t, closeFn)

	_, _, err = Open(context.Background(), Config{Provider: ProviderLocal}, zap.NewNop())
	require.ErrorContains(t, err, "base directory is required")
}
