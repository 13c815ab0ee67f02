package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RecoveryAshes/legiscrape/internal/core"
	"github.com/RecoveryAshes/legiscrape/internal/crawlers"
	"github.com/RecoveryAshes/legiscrape/internal/extract"
	"github.com/RecoveryAshes/legiscrape/internal/models"
)

type recordingLoader struct {
	sources []models.PageSource
}

func (l *recordingLoader) Fetch(_ context.Context, code string, src models.PageSource) (*models.JurisdictionPage, error) {
	l.sources = append(l.sources, src)
	return models.NewJurisdictionPage(code, models.SourceInline, "inline", nil), nil
}

type noSections struct{}

func (noSections) ExtractAll(*models.JurisdictionPage) []extract.SectionResult { return nil }

func sourceFor(t *testing.T, opt core.DashboardOption) models.PageSource {
	t.Helper()
	loader := &recordingLoader{}
	scraper := core.NewDashboardScraper(loader, noSections{}, nil, "https://legiscan.com/", t.TempDir(), opt)
	scraper.ScrapeJurisdiction(context.Background(), "ak")
	require.Len(t, loader.sources, 1)
	return loader.sources[0]
}

func TestSnapshotOption(t *testing.T) {
	t.Run("stdin markup is parsed inline", func(t *testing.T) {
		opt, err := SnapshotOption("-", strings.NewReader(`<html><a name="latest"></a></html>`))
		require.NoError(t, err)

		src := sourceFor(t, opt)
		assert.Equal(t, `<html><a name="latest"></a></html>`, src.Inline)
		kind, _ := src.Kind()
		assert.Equal(t, models.SourceInline, kind)
	})

	t.Run("empty stdin", func(t *testing.T) {
		_, err := SnapshotOption("-", strings.NewReader("  \n"))
		assert.Error(t, err)
	})

	t.Run("saved page", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ak.html")
		require.NoError(t, os.WriteFile(path, []byte("<html></html>"), 0o644))

		opt, err := SnapshotOption(path, strings.NewReader(""))
		require.NoError(t, err)
		assert.Equal(t, path, sourceFor(t, opt).FilePath)
	})

	t.Run("missing saved page", func(t *testing.T) {
		_, err := SnapshotOption(filepath.Join(t.TempDir(), "absent.html"), nil)
		assert.Error(t, err)
	})

	t.Run("no file fetches live", func(t *testing.T) {
		opt, err := SnapshotOption("", nil)
		require.NoError(t, err)

		src := sourceFor(t, opt)
		assert.Equal(t, "https://legiscan.com/AK", src.URL)
		kind, _ := src.Kind()
		assert.Equal(t, models.SourceLive, kind)
	})
}

type visitRecorder struct {
	ids []models.Identity
}

func (v *visitRecorder) Visit(_ context.Context, _ string, id models.Identity, fn func(crawlers.Probe) error) error {
	v.ids = append(v.ids, id)
	return fn(func(context.Context) (string, error) { return `<a name="latest"></a>`, nil })
}

type passThroughIdentities struct{}

func (passThroughIdentities) NextIdentity(proxy string) models.Identity {
	return models.Identity{UserAgent: "test", Proxy: proxy}
}

func TestDashboardFetchOptions(t *testing.T) {
	tests := []struct {
		name      string
		proxies   []string
		wantProxy string
	}{
		{"direct", nil, ""},
		{"single", []string{"10.0.0.1:3128"}, "10.0.0.1:3128"},
		{"first of several", []string{"http://10.0.0.2:8080", "10.0.0.3:3128"}, "http://10.0.0.2:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			live := &visitRecorder{}
			pf := crawlers.NewPageFetcher(live, passThroughIdentities{}, nil, time.Second, DashboardFetchOptions(tt.proxies)...)

			_, err := pf.FetchLive(context.Background(), "https://legiscan.com/AK")
			require.NoError(t, err)
			require.Len(t, live.ids, 1)
			assert.Equal(t, tt.wantProxy, live.ids[0].Proxy)
		})
	}
}
