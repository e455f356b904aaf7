package pubsub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublishWithoutClient(t *testing.T) {
	t.Parallel()

	p := New(nil)
	_, err := p.Publish(context.Background(), "records", map[string]string{"k": "v"})
	require.ErrorContains(t, err, "pubsub client is not configured")
	require.NoError(t, p.Close())
}
