package models

import "strings"

// Row is one record of a tabular dataset. Header order is the column order.
type Row interface {
	Header() []string
	Values() []string
}

// ListingKind distinguishes the three bill listings
type ListingKind string

const (
	ListingActive    ListingKind = "active"
	ListingViewed    ListingKind = "viewed"
	ListingMonitored ListingKind = "monitored"
)

// Chamber is the legislative sub-group of a sponsor or committee
type Chamber string

const (
	ChamberHouse   Chamber = "House"
	ChamberSenate  Chamber = "Senate"
	ChamberUnknown Chamber = "Unknown"
)

var (
	activeBillHeader = []string{"Bill Number", "Bill URL", "Summary", "Action", "Action URL", "Date", "State"}
	listedBillHeader = []string{"Bill Number", "Bill URL", "Summary", "Text URL", "State"}
	sponsorHeader    = []string{"Name", "Party", "URL", "Bills Count", "RSS URL", "Chamber", "State"}
	committeeHeader  = []string{"Committee Name", "URL", "Bills Count", "RSS URL", "Chamber", "State"}
)

// BillSummaryRecord is a row of the active, viewed or monitored listings.
// BillNumber and BillURL are always set; every other field is an empty string when absent.
type BillSummaryRecord struct {
	Kind         ListingKind
	BillNumber   string
	BillURL      string
	Summary      string
	Action       string // active only
	ActionURL    string // active only
	Date         string // active only
	TextURL      string // viewed/monitored only
	Jurisdiction string
}

// Header depends on the listing kind
func (r BillSummaryRecord) Header() []string {
	if r.Kind == ListingActive {
		return activeBillHeader
	}
	return listedBillHeader
}

func (r BillSummaryRecord) Values() []string {
	if r.Kind == ListingActive {
		return []string{r.BillNumber, r.BillURL, r.Summary, r.Action, r.ActionURL, r.Date, r.Jurisdiction}
	}
	return []string{r.BillNumber, r.BillURL, r.Summary, r.TextURL, r.Jurisdiction}
}

// SponsorRecord is one legislator entry
type SponsorRecord struct {
	Name         string
	Party        string
	URL          string
	BillCount    string // kept verbatim, the site may format with separators
	RSSURL       string
	Chamber      Chamber
	Jurisdiction string
}

func (r SponsorRecord) Header() []string { return sponsorHeader }

func (r SponsorRecord) Values() []string {
	return []string{r.Name, r.Party, r.URL, r.BillCount, r.RSSURL, string(r.Chamber), r.Jurisdiction}
}

// CommitteeRecord is one committee entry
type CommitteeRecord struct {
	Name         string
	URL          string
	BillCount    string
	RSSURL       string
	Chamber      Chamber
	Jurisdiction string
}

func (r CommitteeRecord) Header() []string { return committeeHeader }

func (r CommitteeRecord) Values() []string {
	return []string{r.Name, r.URL, r.BillCount, r.RSSURL, string(r.Chamber), r.Jurisdiction}
}

// PartyFromDisplay returns the text between the first '[' and the following ']', or "".
func PartyFromDisplay(display string) string {
	open := strings.Index(display, "[")
	if open < 0 {
		return ""
	}
	end := strings.Index(display[open+1:], "]")
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(display[open+1 : open+1+end])
}

// Rows converts a typed slice for the store.
func Rows[T Row](records []T) []Row {
	out := make([]Row, len(records))
	for i, r := range records {
		out[i] = r
	}
	return out
}
