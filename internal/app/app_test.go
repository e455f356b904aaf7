package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/noplp-songs/internal/config"
	"github.com/JakeFAU/noplp-songs/internal/scrapeerr"
)

const songSource = "{{Chanson}}\nInterprète : Jane Doe\n" +
	"[[Liste des chansons existantes|Retour à la liste des chansons]]\n\n" +
	"== Paroles ==\n''Première ligne\n'''Refrain'''''\n\n" +
	"== Dates de sortie ==\n# Samedi 5 mai 2012 : 5 points (3e émission)\n\n== Trous ==\n"

func newWiki(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api.php", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Liste des chansons existantes", r.URL.Query().Get("bltitle"))
		_, _ = w.Write([]byte(`{"query":{"backlinks":[` +
			`{"title":"Chanson A"},{"title":"Accueil"},{"title":"Chanson B"},{"title":"Chanson A"}]}}`))
	})
	mux.HandleFunc("/rest.php/v1/page/", func(w http.ResponseWriter, r *http.Request) {
		title := strings.TrimPrefix(r.URL.Path, "/rest.php/v1/page/")
		source := songSource
		if title == "Chanson B" {
			source = strings.Replace(songSource, "== Paroles ==", "== Notes ==", 1)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"title": title, "source": source})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(srv *httptest.Server, dir string) config.Config {
	return config.Config{
		Wiki: config.WikiConfig{
			PageEndpoint:   srv.URL + "/rest.php/v1/page",
			APIEndpoint:    srv.URL + "/api.php",
			RequestTimeout: time.Second,
			RetryCooldown:  time.Millisecond,
			IndexPages:     []string{"Liste des chansons existantes"},
		},
		Scrape: config.ScrapeConfig{Concurrency: 2, ExcludePages: []string{"Accueil"}},
		Output: config.OutputConfig{Provider: "local", Dir: dir, Prefix: "exports"},
	}
}

func TestDiscoverPages(t *testing.T) {
	t.Parallel()

	a := New(testConfig(newWiki(t), t.TempDir()), zap.NewNop())
	pages, err := a.DiscoverPages(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Chanson A", "Chanson B"}, pages)
}

func TestScrapeExportsTables(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := New(testConfig(newWiki(t), dir), zap.NewNop())
	defer a.Close()

	report, err := a.Scrape(context.Background(), []string{"Chanson A", "Chanson B"})
	require.NoError(t, err)
	require.Len(t, report.Result.Records, 1)
	require.Equal(t, map[string]int{scrapeerr.KindNotASongPage.String(): 1}, report.FailureCounts())

	runDir := filepath.Join(dir, "exports", report.Result.RunID)
	// #nosec G304 -- test reads from the controlled temp directory.
	occ, err := os.ReadFile(filepath.Join(runDir, "occurrences.csv"))
	require.NoError(t, err)
	require.Equal(t,
		"name,singer,date,category,points,emissions\nChanson A,Jane Doe,2012-05-05,Points,50,3\n",
		string(occ))

	// #nosec G304 -- test reads from the controlled temp directory.
	lyrics, err := os.ReadFile(filepath.Join(runDir, "lyrics.csv"))
	require.NoError(t, err)
	require.Contains(t, string(lyrics), `Chanson A,Jane Doe,Première ligne\n¤Refrain`)
	require.FileExists(t, filepath.Join(runDir, "pages.csv"))

	rec := httptest.NewRecorder()
	a.Ops().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/runs/last", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), report.Result.RunID)
}

func TestScrapeRejectsUnknownProvider(t *testing.T) {
	t.Parallel()

	cfg := testConfig(newWiki(t), t.TempDir())
	cfg.Output.Provider = "s3"
	_, err := New(cfg, nil).Scrape(context.Background(), []string{"Chanson A"})
	require.ErrorContains(t, err, "unknown storage provider")
}
