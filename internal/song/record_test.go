package song

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewCopiesAndStripsQuotes(t *testing.T) {
	t.Parallel()

	occ := []Occurrence{{
		Date:     time.Date(2019, time.March, 2, 18, 30, 0, 0, time.Local),
		Category: "Points",
		Points:   50,
		Episode:  3,
	}}
	rec := New(`"Je sais pas"`, "Céline Dion", "¤Je sais pas", occ)

	occ[0].Category = "mutated"
	require.Equal(t, "Je sais pas", rec.Title())
	require.Equal(t, "Points", rec.Occurrences()[0].Category)
	require.Equal(t, time.Date(2019, time.March, 2, 0, 0, 0, 0, time.UTC), rec.Occurrences()[0].Date)

	got := rec.Occurrences()
	got[0].Points = 0
	require.Equal(t, 50, rec.Occurrences()[0].Points)
	require.Equal(t, 1, rec.Len())
}

func TestOccurrenceFormat(t *testing.T) {
	t.Parallel()

	require.Equal(t, FormatOrdinary, Occurrence{Episode: 2}.Format())
	require.Equal(t, FormatUnnumbered, Occurrence{Episode: 0}.Format())
	require.Equal(t, FormatSpecial, Occurrence{Episode: -1}.Format())
}

func TestRecordJSON(t *testing.T) {
	t.Parallel()

	rec := New("2 be 3", "2Be3", "Partir un jour", []Occurrence{{
		Date:     time.Date(2012, time.January, 7, 0, 0, 0, 0, time.UTC),
		Category: "Maestro",
		Points:   NoPoints,
		Episode:  -2,
	}})

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"title": "2 be 3",
		"performer": "2Be3",
		"lyrics": "Partir un jour",
		"occurrences": [{"date": "2012-01-07", "category": "Maestro", "points": -1, "episode_number": -2}]
	}`, string(data))

	var back Record
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, rec, back)
}
