package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	// Call Init multiple times to test idempotency.
	Init()
	Init()

	require.NotNil(t, pagesTotal)
	require.NotNil(t, fetchRequestsTotal)
	require.NotNil(t, occurrencesTotal)
}

func TestObservePage(t *testing.T) {
	Init()
	before := testutil.ToFloat64(pagesTotal.WithLabelValues("lyrics_missing"))
	ObservePage("lyrics_missing")
	ObservePage("lyrics_missing")
	require.InDelta(t, before+2, testutil.ToFloat64(pagesTotal.WithLabelValues("lyrics_missing")), 0)
}

func TestObserveFetch(t *testing.T) {
	Init()
	ok := testutil.ToFloat64(fetchRequestsTotal.WithLabelValues("200"))
	none := testutil.ToFloat64(fetchRequestsTotal.WithLabelValues("none"))
	retries := testutil.ToFloat64(fetchRetriesTotal)

	ObserveFetch(200, 10*time.Millisecond)
	ObserveFetch(0, time.Second)
	ObserveRetry()

	require.InDelta(t, ok+1, testutil.ToFloat64(fetchRequestsTotal.WithLabelValues("200")), 0)
	require.InDelta(t, none+1, testutil.ToFloat64(fetchRequestsTotal.WithLabelValues("none")), 0)
	require.InDelta(t, retries+1, testutil.ToFloat64(fetchRetriesTotal), 0)
	require.Positive(t, testutil.CollectAndCount(fetchDurationSeconds))
}

func TestObserveOccurrence(t *testing.T) {
	Init()
	before := testutil.ToFloat64(occurrencesTotal.WithLabelValues("Maestro"))
	ObserveOccurrence("Maestro")
	require.InDelta(t, before+1, testutil.ToFloat64(occurrencesTotal.WithLabelValues("Maestro")), 0)
}
