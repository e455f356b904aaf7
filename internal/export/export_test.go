package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/noplp-songs/internal/song"
	"github.com/JakeFAU/noplp-songs/internal/storage/memory"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleRecords() []song.Record {
	return []song.Record{
		song.New("Zebra", "Z", "la\n¤refrain", []song.Occurrence{
			{Date: day(2015, time.March, 2), Category: "Maestro", Points: song.NoPoints},
		}),
		song.New("Alpha", "A", "one", []song.Occurrence{
			{Date: day(2014, time.June, 1), Category: "Points", Points: 40, Episode: 3},
			{Date: day(2012, time.May, 5), Category: "Points", Points: 50, Episode: -2},
		}),
	}
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteOccurrences(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteOccurrences(&buf, sampleRecords()))
	require.Equal(t, [][]string{
		{"name", "singer", "date", "category", "points", "emissions"},
		{"Alpha", "A", "2012-05-05", "Points", "50", "-2"},
		{"Alpha", "A", "2014-06-01", "Points", "40", "3"},
		{"Zebra", "Z", "2015-03-02", "Maestro", "-1", "0"},
	}, readCSV(t, buf.Bytes()))
}

func TestWriteLyrics(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteLyrics(&buf, sampleRecords()))
	require.Equal(t, [][]string{
		{"name", "singer", "lyrics"},
		{"Alpha", "A", "one"},
		{"Zebra", "Z", `la\n¤refrain`},
	}, readCSV(t, buf.Bytes()))
}

func TestEscapeLyrics(t *testing.T) {
	t.Parallel()

	require.Equal(t, `a\nb\\n`, EscapeLyrics("a\nb\\n"))
}

func TestWrite(t *testing.T) {
	t.Parallel()

	store := memory.NewBlobStore()
	written, err := Write(context.Background(), store, "exports/run-1", sampleRecords(), []string{"Alpha", "Zebra"})
	require.NoError(t, err)
	require.Equal(t, Written{
		OccurrencesFile: "memory://exports/run-1/occurrences.csv",
		LyricsFile:      "memory://exports/run-1/lyrics.csv",
		PagesFile:       "memory://exports/run-1/pages.csv",
	}, written)

	data, contentType, ok := store.Object("exports/run-1/pages.csv")
	require.True(t, ok)
	require.Equal(t, "text/csv; charset=utf-8", contentType)
	require.Equal(t, [][]string{{"title"}, {"Alpha"}, {"Zebra"}}, readCSV(t, data))
}

func TestWriteWithoutPages(t *testing.T) {
	t.Parallel()

	store := memory.NewBlobStore()
	written, err := Write(context.Background(), store, "run", nil, nil)
	require.NoError(t, err)
	require.Len(t, written, 2)
	require.Equal(t, []string{"run/lyrics.csv", "run/occurrences.csv"}, store.Paths())
}

type failingStore struct{}

func (failingStore) PutObject(context.Context, string, string, io.Reader) (string, error) {
	return "", errors.New("bucket unavailable")
}

func TestWriteStoreFailure(t *testing.T) {
	t.Parallel()

	_, err := Write(context.Background(), failingStore{}, "run", sampleRecords(), nil)
	require.ErrorContains(t, err, "store occurrences.csv")
}
