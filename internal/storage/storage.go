// Package storage selects the blob store that receives export tables.
package storage

import (
	"context"
	"fmt"
	"io"

	gcsclient "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/JakeFAU/noplp-songs/internal/storage/gcs"
	"github.com/JakeFAU/noplp-songs/internal/storage/local"
	"github.com/JakeFAU/noplp-songs/internal/storage/memory"
)

// Supported providers.
const (
	ProviderLocal  = "local"
	ProviderGCS    = "gcs"
	ProviderMemory = "memory"
)

// BlobStore persists named objects and returns their URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, r io.Reader) (string, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider string
	Dir      string
	Bucket   string
}

// Open builds the configured store. The returned close function releases
// provider clients and is never nil.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (BlobStore, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Provider {
	case ProviderLocal, "":
		store, err := local.New(local.Config{BaseDir: cfg.Dir})
		if err != nil {
			return nil, noop, fmt.Errorf("open local store: %w", err)
		}
		return store, noop, nil
	case ProviderMemory:
		return memory.NewBlobStore(), noop, nil
	case ProviderGCS:
		client, err := gcsclient.NewClient(ctx)
		if err != nil {
			return nil, noop, fmt.Errorf("create gcs client: %w", err)
		}
		// Fail fast on a missing bucket or missing permissions.
		if _, err := client.Bucket(cfg.Bucket).Attrs(ctx); err != nil {
			if closeErr := client.Close(); closeErr != nil {
				logger.Warn("Failed to close GCS client after bucket check failure", zap.Error(closeErr))
			}
			return nil, noop, fmt.Errorf("gcs bucket %q: %w", cfg.Bucket, err)
		}
		store, err := gcs.New(client, gcs.Config{Bucket: cfg.Bucket})
		if err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("open gcs store: %w", err)
		}
		return store, client.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}
