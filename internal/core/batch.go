package core

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/RecoveryAshes/legiscrape/internal/billtext"
	"github.com/RecoveryAshes/legiscrape/internal/models"
	"github.com/RecoveryAshes/legiscrape/internal/stealth"
	"github.com/RecoveryAshes/legiscrape/internal/store"
	"github.com/RecoveryAshes/legiscrape/internal/utils"
)

// BillRetriever fetches the text of one bill.
type BillRetriever interface {
	Retrieve(ctx context.Context, req billtext.Request) (*models.BillTextArtifact, error)
}

// BillBatch runs the per-URL sweep over CSV inputs.
type BillBatch struct {
	retriever BillRetriever
	pacing    *stealth.DelayPolicy
	outputDir string
	prefer    string
	proxies   []string
}

// NewBillBatch writes each bill under outputDir/{bill key}. pacing is waited between URLs.
func NewBillBatch(retriever BillRetriever, pacing *stealth.DelayPolicy, outputDir, prefer string, proxies []string) *BillBatch {
	return &BillBatch{
		retriever: retriever,
		pacing:    pacing,
		outputDir: outputDir,
		prefer:    prefer,
		proxies:   proxies,
	}
}

// Run processes every *.csv in inputDir in name order, reading URLs from column.
func (b *BillBatch) Run(ctx context.Context, inputDir, column string) (*models.ScrapeRunSummary, error) {
	summary := models.NewRunSummary("batch")
	defer summary.Finish()

	files, err := filepath.Glob(filepath.Join(inputDir, "*.csv"))
	if err != nil {
		return summary, fmt.Errorf("list %s: %w", inputDir, err)
	}
	sort.Strings(files)
	if len(files) == 0 {
		return summary, fmt.Errorf("no CSV files in %s", inputDir)
	}

	for _, file := range files {
		if ctx.Err() != nil {
			break
		}
		b.runFile(ctx, file, column, summary)
	}

	utils.Infof("📊 batch done: %d processed, %d succeeded, %d failed, %d skipped",
		summary.Attempted, summary.Succeeded, summary.Failed+summary.Errored, summary.Skipped)
	return summary, nil
}

func (b *BillBatch) runFile(ctx context.Context, file, column string, summary *models.ScrapeRunSummary) {
	name := filepath.Base(file)
	utils.Infof("📄 processing %s", name)

	header, rows, err := store.ReadCSV(file)
	if err != nil {
		utils.Errorf("❌ %s: %v", name, err)
		return
	}
	if !contains(header, column) {
		utils.Errorf("column %q not found in %s, skipping file", column, name)
		utils.Infof("available columns in %s: %s", name, strings.Join(header, ", "))
		return
	}

	for i, row := range rows {
		line := i + 2
		target := strings.TrimSpace(row[column])
		if target == "" {
			continue
		}
		if !utils.HasHTTPScheme(target) {
			utils.Warnf("skipping invalid URL in %s (row %d): %s", name, line, target)
			summary.Skipped++
			continue
		}

		if summary.Attempted > 0 && b.pacing != nil {
			if _, err := b.pacing.Wait(ctx); err != nil {
				return
			}
		}

		utils.Infof("🚀 URL #%d from %s (row %d): %s", summary.Attempted+1, name, line, target)
		summary.Record(b.retrieveOne(ctx, target))
		if ctx.Err() != nil {
			return
		}
	}
}

// retrieveOne never panics; an unexpected failure is StatusError.
func (b *BillBatch) retrieveOne(ctx context.Context, target string) (result models.UnitResult) {
	start := time.Now()
	key := billtext.DeriveBillKey(target)
	result = models.UnitResult{Unit: key, Source: target}

	defer func() {
		if r := recover(); r != nil {
			utils.Errorf("❌ %s: unexpected failure: %v", target, r)
			result.Status = models.StatusError
			result.Error = fmt.Sprint(r)
		}
		result.Duration = time.Since(start).Seconds()
	}()

	artifact, err := b.retriever.Retrieve(ctx, billtext.Request{
		URL:     target,
		OutDir:  filepath.Join(b.outputDir, key),
		Prefer:  b.prefer,
		Proxies: b.proxies,
	})
	if err != nil {
		utils.Warnf("FAILED: could not download bill text for %s: %v", target, err)
		result.Status = models.StatusFailed
		result.Error = err.Error()
		return result
	}

	utils.Infof("SUCCESS: bill text saved to %s", artifact.Path)
	result.Status = models.StatusSuccess
	result.Artifact = artifact.Path
	return result
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
