package uuid

import (
	"testing"
	"time"

	goUUID "github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// TestGeneratorNewID ensures generated IDs are unique, valid and ordered.
func TestGeneratorNewID(t *testing.T) {
	t.Parallel()

	gen := New()
	id1, err := gen.NewID()
	require.NoError(t, err)
	id2, err := gen.NewID()
	require.NoError(t, err)

	require.NotEqual(t, id1, id2)
	require.Less(t, id1, id2)
	parsed, err := goUUID.Parse(id1)
	require.NoError(t, err)
	require.Equal(t, goUUID.Version(7), parsed.Version())
}

func TestStartedAt(t *testing.T) {
	t.Parallel()

	before := time.Now().Add(-time.Second)
	id, err := New().NewID()
	require.NoError(t, err)

	started, err := StartedAt(id)
	require.NoError(t, err)
	require.WithinRange(t, started, before, time.Now().Add(time.Second))

	_, err = StartedAt(goUUID.NewString())
	require.ErrorContains(t, err, "not a version 7")

	_, err = StartedAt("not-a-uuid")
	require.Error(t, err)
}
