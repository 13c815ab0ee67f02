package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// UnitStatus is the terminal status of one unit
type UnitStatus string

const (
	StatusSuccess UnitStatus = "Success"
	StatusFailed  UnitStatus = "Failed"
	StatusError   UnitStatus = "Error"
)

// UnitResult is the terminal outcome of one jurisdiction or one bill URL.
type UnitResult struct {
	Unit     string         `json:"unit"`
	Source   string         `json:"source,omitempty"`
	Status   UnitStatus     `json:"status"`
	Error    string         `json:"error,omitempty"`
	Sections map[string]int `json:"sections,omitempty"`
	Artifact string         `json:"artifact,omitempty"`
	Duration float64        `json:"duration"` // seconds
}

// ScrapeRunSummary accumulates unit results for one run. Only the orchestrator's control
// goroutine calls Record; after Finish the summary is treated as read-only.
type ScrapeRunSummary struct {
	RunID      string       `json:"run_id"`
	Mode       string       `json:"mode"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Attempted  int          `json:"attempted"`
	Succeeded  int          `json:"succeeded"`
	Failed     int          `json:"failed"`
	Errored    int          `json:"errored"`
	Skipped    int          `json:"skipped"`
	Units      []UnitResult `json:"units"`
}

// NewRunSummary starts a summary with a fresh run id
func NewRunSummary(mode string) *ScrapeRunSummary {
	return &ScrapeRunSummary{
		RunID:     uuid.NewString(),
		Mode:      mode,
		StartedAt: time.Now(),
		Units:     make([]UnitResult, 0),
	}
}

// Record appends a result and updates the counters.
func (s *ScrapeRunSummary) Record(r UnitResult) {
	s.Attempted++
	switch r.Status {
	case StatusSuccess:
		s.Succeeded++
	case StatusFailed:
		s.Failed++
	default:
		s.Errored++
	}
	s.Units = append(s.Units, r)
}

// Finish stamps the end time.
func (s *ScrapeRunSummary) Finish() {
	s.FinishedAt = time.Now()
}

// Statuses lists the terminal statuses in processing order.
func (s *ScrapeRunSummary) Statuses() []UnitStatus {
	out := make([]UnitStatus, len(s.Units))
	for i, u := range s.Units {
		out[i] = u.Status
	}
	return out
}

// ToJSON renders the summary as indented JSON
func (s *ScrapeRunSummary) ToJSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
