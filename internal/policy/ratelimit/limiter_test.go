package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestGate_Wait(t *testing.T) {
	// 10 RPS = 1 token every 100ms, burst 1.
	g := New(Config{RPS: 10, Burst: 1})
	ctx := context.Background()

	// Consume the initial token.
	require.NoError(t, g.Wait(ctx))

	start := time.Now()
	require.NoError(t, g.Wait(ctx))
	require.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestGate_SharedAcrossGoroutines(t *testing.T) {
	g := New(Config{RPS: 20, Burst: 1})
	ctx := context.Background()

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, g.Wait(ctx))
		}()
	}
	wg.Wait()

	// Five admissions at 20 RPS with burst 1 need at least four intervals.
	require.GreaterOrEqual(t, time.Since(start), 180*time.Millisecond)
}

func TestGate_ContextCanceled(t *testing.T) {
	g := New(Config{RPS: 0.1, Burst: 1})
	require.NoError(t, g.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.Error(t, g.Wait(ctx))
}

func TestGate_Unlimited(t *testing.T) {
	g := New(Config{})
	require.Equal(t, rate.Inf, g.Limit())
	for i := 0; i < 100; i++ {
		require.NoError(t, g.Wait(context.Background()))
	}
}
