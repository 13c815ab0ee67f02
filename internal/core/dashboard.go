package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/RecoveryAshes/legiscrape/internal/crawlers"
	"github.com/RecoveryAshes/legiscrape/internal/extract"
	"github.com/RecoveryAshes/legiscrape/internal/models"
	"github.com/RecoveryAshes/legiscrape/internal/stealth"
	"github.com/RecoveryAshes/legiscrape/internal/store"
	"github.com/RecoveryAshes/legiscrape/internal/utils"
)

// PageLoader fetches one jurisdiction page.
type PageLoader interface {
	Fetch(ctx context.Context, code string, src models.PageSource) (*models.JurisdictionPage, error)
}

// SectionExtractor reads every dashboard section of a page.
type SectionExtractor interface {
	ExtractAll(page *models.JurisdictionPage) []extract.SectionResult
}

// DashboardScraper runs the per-jurisdiction sweep.
type DashboardScraper struct {
	loader    PageLoader
	extractor SectionExtractor
	pacing    *stealth.DelayPolicy
	baseURL   string
	outputDir string
	snapshot  string
	inline    string
	progress  bool
}

// DashboardOption customises a DashboardScraper.
type DashboardOption func(*DashboardScraper)

// WithSnapshot reads the page from a saved HTML file instead of the site.
func WithSnapshot(path string) DashboardOption {
	return func(d *DashboardScraper) { d.snapshot = path }
}

// WithInlineHTML parses the given markup instead of fetching.
func WithInlineHTML(markup string) DashboardOption {
	return func(d *DashboardScraper) { d.inline = markup }
}

// WithProgress draws a progress bar over the sweep.
func WithProgress(on bool) DashboardOption {
	return func(d *DashboardScraper) { d.progress = on }
}

// NewDashboardScraper wires the sweep. pacing is waited between jurisdictions.
func NewDashboardScraper(loader PageLoader, extractor SectionExtractor, pacing *stealth.DelayPolicy, baseURL, outputDir string, opts ...DashboardOption) *DashboardScraper {
	d := &DashboardScraper{
		loader:    loader,
		extractor: extractor,
		pacing:    pacing,
		baseURL:   baseURL,
		outputDir: outputDir,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run scrapes codes in order and returns a terminal status for each.
func (d *DashboardScraper) Run(ctx context.Context, codes []string) *models.ScrapeRunSummary {
	summary := models.NewRunSummary("dashboard")
	utils.Infof("🚀 scraping %d jurisdiction(s) into %s", len(codes), d.outputDir)

	var bar *progressbar.ProgressBar
	if d.progress && len(codes) > 1 {
		bar = utils.NewProgressBar(len(codes), "jurisdictions")
	}

	for i, code := range codes {
		utils.Infof("==================== [%d/%d] %s ====================", i+1, len(codes), code)

		result := d.ScrapeJurisdiction(ctx, code)
		summary.Record(result)
		if bar != nil {
			_ = bar.Add(1)
		}

		if ctx.Err() != nil {
			utils.Warnf("sweep interrupted after %s: %v", code, ctx.Err())
			break
		}
		if i < len(codes)-1 && d.pacing != nil {
			waited, err := d.pacing.Wait(ctx)
			if err != nil {
				break
			}
			utils.Debugf("waited %.1fs before the next jurisdiction", waited.Seconds())
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}
	summary.Finish()
	return summary
}

// ScrapeJurisdiction fetches, extracts and writes one jurisdiction. A panic is recorded as StatusError.
func (d *DashboardScraper) ScrapeJurisdiction(ctx context.Context, code string) (result models.UnitResult) {
	start := time.Now()
	code = strings.ToUpper(strings.TrimSpace(code))
	src := d.source(code)

	result = models.UnitResult{Unit: code, Source: describeSource(src)}
	unitLog := utils.ForUnit(code)
	defer func() {
		if r := recover(); r != nil {
			utils.Errorf("❌ %s: unexpected failure: %v", code, r)
			result.Status = models.StatusError
			result.Error = fmt.Sprint(r)
		}
		result.Duration = time.Since(start).Seconds()
	}()

	page, err := d.loader.Fetch(ctx, code, src)
	if err != nil {
		utils.Errorf("❌ %s: fetch failed: %v", code, err)
		result.Status = models.StatusFailed
		result.Error = err.Error()
		return result
	}

	sections := d.extractor.ExtractAll(page)
	result.Sections = make(map[string]int, len(sections))
	total := 0
	for _, s := range sections {
		result.Sections[string(s.Section)] = len(s.Records)
		total += len(s.Records)
		if s.Err != nil && !errors.Is(s.Err, models.ErrSectionNotFound) {
			unitLog.Warn().Str("section", string(s.Section)).Err(s.Err).Msg("section not extracted")
		}
	}
	if total == 0 {
		utils.Errorf("❌ %s: no data in any section", code)
		result.Status = models.StatusFailed
		result.Error = "no data scraped"
		return result
	}

	if err := d.write(code, sections); err != nil {
		result.Status = models.StatusFailed
		result.Error = err.Error()
		return result
	}

	unitLog.Info().Int("records", total).Msg("✅ jurisdiction scraped")
	result.Status = models.StatusSuccess
	return result
}

// write stores non-empty sections as CSV and every section as a workbook sheet.
func (d *DashboardScraper) write(code string, sections []extract.SectionResult) error {
	lower := strings.ToLower(code)
	dir := filepath.Join(d.outputDir, lower)

	var errs []error
	datasets := make([]store.NamedDataset, 0, len(sections))
	for _, s := range sections {
		datasets = append(datasets, store.NamedDataset{Name: s.Section.SheetName(), Rows: s.Records})
		if len(s.Records) == 0 {
			continue
		}

		path := filepath.Join(dir, s.Section.FileName())
		if err := store.WriteCSV(s.Records, path); err != nil {
			utils.Errorf("❌ %v", err)
			errs = append(errs, err)
			continue
		}
		utils.Infof("📝 wrote %d rows to %s", len(s.Records), path)
	}

	workbook := filepath.Join(dir, lower+"_legiscan_summary.xlsx")
	if err := store.WriteWorkbook(datasets, workbook); err != nil {
		utils.Errorf("❌ %v", err)
		errs = append(errs, err)
	} else {
		utils.Infof("📊 wrote %s", workbook)
	}
	return errors.Join(errs...)
}

func (d *DashboardScraper) source(code string) models.PageSource {
	return models.PageSource{
		URL:      crawlers.DashboardURL(d.baseURL, code),
		FilePath: d.snapshot,
		Inline:   d.inline,
	}
}

func describeSource(src models.PageSource) string {
	kind, _ := src.Kind()
	switch kind {
	case models.SourceInline:
		return "inline"
	case models.SourceFile:
		return src.FilePath
	default:
		return src.URL
	}
}
