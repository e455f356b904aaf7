package extract

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpandRepeatsInline(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 12; n++ {
		t.Run(fmt.Sprintf("x%d", n), func(t *testing.T) {
			t.Parallel()
			got := ExpandRepeats(fmt.Sprintf("la la (×%d) lère", n))
			lines := strings.Split(got, "\n")
			require.Len(t, lines, n)
			for _, l := range lines {
				require.Equal(t, "la la lère", l)
			}
			require.False(t, repeatMarker.MatchString(got))
		})
	}
}

func TestExpandRepeatsParagraph(t *testing.T) {
	t.Parallel()

	got := ExpandRepeats("(x2)\n\nA\nB\n\nC")
	require.Equal(t, "A\nB\nA\nB\n\nC", got)
}

func TestExpandRepeatsComposition(t *testing.T) {
	t.Parallel()

	got := ExpandRepeats("''(×2)''\nOh (×3)")
	require.Equal(t, strings.Repeat("Oh\n", 5)+"Oh", got)
}

func TestExpandRepeatsLargeCounts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want int
	}{
		{"inline hundred", "la (×100)", 100},
		{"paragraph", "(×150)\nla", 150},
		{"quoted paragraph", "'' (x120) ''\nla", 120},
		{"clamped overflow", "la (×99999999999999999999)", maxRepeat},
		{"clamped above max", "la (×5000)", maxRepeat},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ExpandRepeats(tc.in)
			require.False(t, repeatMarker.MatchString(got))
			require.Equal(t, strings.TrimSuffix(strings.Repeat("la\n", tc.want), "\n"), got)
		})
	}
}

func TestExpandRepeatsEdgeCases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no marker", "A\nB", "A\nB"},
		{"dangling paragraph marker", "A\n(×3)", "A"},
		{"quoted standalone marker", "A\n'' (×2) ''\nB", "A\nB\nB"},
		{"zero count", "oui (×0)", "oui"},
		{"two inline markers", "a (X2) b (x2)", "a b\na b\na b\na b"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, ExpandRepeats(tc.in))
		})
	}
}
