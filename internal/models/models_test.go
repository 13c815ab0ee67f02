package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestPartyFromDisplay(t *testing.T) {
	tests := []struct {
		display string
		want    string
	}{
		{"Jane Doe [D]", "D"},
		{"John Roe [R-12]", "R-12"},
		{"No Party", ""},
		{"Half [open", ""},
		{"Backwards ] [", ""},
		{"Close] before [R]", "R"},
	}

	for _, tt := range tests {
		t.Run(tt.display, func(t *testing.T) {
			if got := PartyFromDisplay(tt.display); got != tt.want {
				t.Errorf("PartyFromDisplay(%q) = %q, want %q", tt.display, got, tt.want)
			}
		})
	}
}

func TestBillSummaryRecordColumns(t *testing.T) {
	active := BillSummaryRecord{Kind: ListingActive, BillNumber: "HB1", BillURL: "u", Jurisdiction: "AK"}
	if len(active.Header()) != len(active.Values()) {
		t.Fatalf("active header/values length mismatch")
	}
	if active.Header()[3] != "Action" {
		t.Errorf("active column 4 = %q, want Action", active.Header()[3])
	}

	viewed := BillSummaryRecord{Kind: ListingViewed, BillNumber: "HB1", BillURL: "u", TextURL: "t", Jurisdiction: "AK"}
	if len(viewed.Header()) != 5 || viewed.Values()[3] != "t" {
		t.Errorf("viewed row = %v / %v", viewed.Header(), viewed.Values())
	}
}

func TestPageSourceKind(t *testing.T) {
	tests := []struct {
		name string
		src  PageSource
		want SourceKind
		ok   bool
	}{
		{"url only", PageSource{URL: "https://legiscan.com/AK"}, SourceLive, true},
		{"file over url", PageSource{URL: "https://legiscan.com/AK", FilePath: "ak.html"}, SourceFile, true},
		{"inline over file", PageSource{FilePath: "ak.html", Inline: "<html></html>"}, SourceInline, true},
		{"nothing", PageSource{}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.src.Kind()
			if got != tt.want || ok != tt.ok {
				t.Errorf("Kind() = %q,%v want %q,%v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestRunSummaryRecord(t *testing.T) {
	s := NewRunSummary("dashboard")
	s.Record(UnitResult{Unit: "AK", Status: StatusSuccess})
	s.Record(UnitResult{Unit: "AL", Status: StatusError})
	s.Record(UnitResult{Unit: "AZ", Status: StatusFailed})
	s.Finish()

	if s.RunID == "" {
		t.Error("expected a run id")
	}
	if s.Attempted != 3 || s.Succeeded != 1 || s.Failed != 1 || s.Errored != 1 {
		t.Errorf("unexpected counters: %+v", s)
	}
	want := []UnitStatus{StatusSuccess, StatusError, StatusFailed}
	for i, st := range s.Statuses() {
		if st != want[i] {
			t.Errorf("status[%d] = %s, want %s", i, st, want[i])
		}
	}
	if s.FinishedAt.Before(s.StartedAt) {
		t.Error("finish time before start time")
	}
}

func TestCliHeadersParse(t *testing.T) {
	h, err := CliHeaders{"Referer: https://www.google.com/", "X-Trace:  abc "}.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if h.Get("Referer") != "https://www.google.com/" || h.Get("X-Trace") != "abc" {
		t.Errorf("unexpected headers: %v", h)
	}

	if _, err := (CliHeaders{"missing separator"}).Parse(); err == nil {
		t.Error("expected an error for a header without ':'")
	}
}

func TestTypedErrorsMatchSentinels(t *testing.T) {
	cause := fmt.Errorf("disk full")
	var err error = &PersistenceError{Path: "x.csv", Cause: cause}
	if !errors.Is(err, ErrPersistence) || !errors.Is(err, cause) {
		t.Errorf("PersistenceError should match ErrPersistence and its cause")
	}

	err = fmt.Errorf("attempt: %w", &ConversionError{Path: "a.pdf", Cause: cause})
	if !errors.Is(err, ErrConversion) {
		t.Errorf("wrapped ConversionError should match ErrConversion")
	}
}
