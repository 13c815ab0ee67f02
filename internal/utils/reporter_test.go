package utils

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RecoveryAshes/legiscrape/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSummary() *models.ScrapeRunSummary {
	s := models.NewRunSummary("dashboard")
	s.Record(models.UnitResult{Unit: "AK", Status: models.StatusSuccess,
		Sections: map[string]int{"active_bills": 3, "sponsors": 10}})
	s.Record(models.UnitResult{Unit: "AL", Status: models.StatusFailed, Error: "navigation timed out"})
	s.Finish()
	return s
}

func TestReporter_SaveSummary(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	r := NewReporter(dir, &bytes.Buffer{})

	path, err := r.SaveSummary(sampleSummary())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, SummaryFileName), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded models.ScrapeRunSummary
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 2, decoded.Attempted)
	assert.Equal(t, models.StatusFailed, decoded.Units[1].Status)
}

func TestReporter_PrintSummary(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(t.TempDir(), &buf)

	r.PrintSummary(sampleSummary())

	out := buf.String()
	assert.Contains(t, out, "AK")
	assert.Contains(t, out, "active_bills=3 sponsors=10")
	assert.Contains(t, out, "navigation timed out")
	// footers are upper-cased by the table style
	assert.Contains(t, strings.ToLower(out), "1 ok / 1 failed / 0 error / 0 skipped")
}
