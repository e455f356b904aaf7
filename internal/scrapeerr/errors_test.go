package scrapeerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorIsMatchesByKind(t *testing.T) {
	t.Parallel()

	err := New(KindLyricsMissing, "").WithPage("Je sais pas")
	wrapped := fmt.Errorf("extract: %w", err)

	require.ErrorIs(t, wrapped, ErrLyricsMissing)
	require.NotErrorIs(t, wrapped, ErrSingerMissing)
	require.Equal(t, KindLyricsMissing, KindOf(wrapped))
	require.Equal(t, KindUnknown, KindOf(errors.New("plain")))
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	err := Fetch("2 be 3", 404, nil)
	require.Equal(t, `fetch_error page="2 be 3" status=404`, err.Error())

	cause := errors.New("boom")
	err = &Error{Kind: KindDateNotFound, Detail: "# lundi", Err: cause}
	require.Equal(t, `date_not_found near "# lundi": boom`, err.Error())
	require.ErrorIs(t, err, cause)
}

func TestWithPageKeepsExistingPage(t *testing.T) {
	t.Parallel()

	err := Fetch("first", 500, nil)
	require.Equal(t, "first", err.WithPage("second").Page)
	require.Equal(t, "second", New(KindFetch, "").WithPage("second").Page)
}

func TestIsTransport(t *testing.T) {
	t.Parallel()

	err := Fetch("x", 0, errors.New("connection refused"))
	require.False(t, IsTransport(err))
	err.Transport = true
	require.True(t, IsTransport(fmt.Errorf("wrap: %w", err)))
	require.False(t, IsTransport(New(KindLyricsMissing, "")))
}

func TestKindStrings(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for _, k := range Kinds() {
		name := k.String()
		require.NotContains(t, seen, name)
		seen[name] = true
	}
	require.Len(t, seen, 10)
	require.Equal(t, "kind(99)", Kind(99).String())
}
