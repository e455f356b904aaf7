package gcs

import (
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/require"
)

func TestNewValidation(t *testing.T) {
	t.Parallel()

	_, err := New(nil, Config{Bucket: "noplp"})
	require.ErrorContains(t, err, "storage client is required")

	_, err = New(&storage.Client{}, Config{})
	require.ErrorContains(t, err, "bucket name is required")

	store, err := New(&storage.Client{}, Config{Bucket: "noplp"})
	require.NoError(t, err)
	require.Equal(t, "noplp", store.bucket)
}

func TestURI(t *testing.T) {
	t.Parallel()

	require.Equal(t, "gs://noplp/run-1/occurrences.csv", URI("noplp", "run-1/occurrences.csv"))
	require.Equal(t, "gs://noplp/lyrics.csv", URI("noplp", "/lyrics.csv"))
}
