// Package extract turns a parsed dashboard page into section records.
//
// Each section is found by its named anchor. Bill listings use the first listing table after
// the anchor in document order; sponsor and committee listings use up to two sibling tables,
// one per chamber. Rows that do not fit the expected cell layout are logged and skipped.
package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/RecoveryAshes/legiscrape/internal/models"
	"github.com/RecoveryAshes/legiscrape/internal/utils"
)

const listingClass = "gaits-browser"

// SectionResult is the outcome of one section.
// Err wrapping ErrSectionNotFound means no data; ErrSectionParse means the page could not be walked.
type SectionResult struct {
	Section Section
	Records []models.Row
	Err     error
}

// Extractor reads dashboard sections. It holds no per-page state.
type Extractor struct {
	base     *url.URL
	chambers ChamberPolicy
}

// Option customises an Extractor.
type Option func(*Extractor)

// WithChamberPolicy replaces the table labelling policy.
func WithChamberPolicy(p ChamberPolicy) Option {
	return func(e *Extractor) { e.chambers = p }
}

// New builds an extractor resolving relative links against baseURL.
func New(baseURL string, opts ...Option) (*Extractor, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}

	e := &Extractor{base: base, chambers: PositionalChambers}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// ExtractAll runs every section in page order.
func (e *Extractor) ExtractAll(page *models.JurisdictionPage) []SectionResult {
	results := make([]SectionResult, 0, len(Sections))
	for _, s := range Sections {
		records, err := e.Extract(page, s)
		results = append(results, SectionResult{Section: s, Records: records, Err: err})
	}
	return results
}

// Extract reads one section.
func (e *Extractor) Extract(page *models.JurisdictionPage, section Section) (records []models.Row, err error) {
	defer func() {
		if r := recover(); r != nil {
			utils.Errorf("❌ %s %s: %v", codeOf(page), section, r)
			records, err = nil, fmt.Errorf("%w: %s: %v", models.ErrSectionParse, section, r)
		}
	}()

	if page == nil || page.Doc == nil {
		return nil, fmt.Errorf("%w: %s: no document", models.ErrSectionParse, section)
	}

	switch section {
	case SectionActiveBills:
		rows, err := e.ActiveBills(page)
		return models.Rows(rows), err
	case SectionViewedBills:
		rows, err := e.ViewedBills(page)
		return models.Rows(rows), err
	case SectionMonitoredBills:
		rows, err := e.MonitoredBills(page)
		return models.Rows(rows), err
	case SectionSponsors:
		rows, err := e.Sponsors(page)
		return models.Rows(rows), err
	case SectionCommittees:
		rows, err := e.Committees(page)
		return models.Rows(rows), err
	default:
		return nil, fmt.Errorf("%w: unknown section %q", models.ErrSectionParse, section)
	}
}

// ActiveBills reads the latest-activity listing.
func (e *Extractor) ActiveBills(page *models.JurisdictionPage) ([]models.BillSummaryRecord, error) {
	table, err := e.listingAfter(page, SectionActiveBills)
	if err != nil {
		return nil, err
	}

	var out []models.BillSummaryRecord
	e.eachRow(page, SectionActiveBills, table, func(cells *goquery.Selection) error {
		rec, err := e.billBase(cells, models.ListingActive, page.Code)
		if err != nil {
			return err
		}

		actionCell := cells.Eq(2)
		rec.Date = clean(actionCell.Find("span.gaits-browse-date").First().Text())

		action := actionCell.Find("div.gaits-browse-action").First()
		if link := action.Find("a").First(); link.Length() > 0 {
			rec.Action = clean(link.Text())
			rec.ActionURL = e.resolve(link.AttrOr("href", ""))
		} else {
			rec.Action = clean(action.Text())
		}

		out = append(out, rec)
		return nil
	})

	utils.Infof("✅ %d active bills for %s", len(out), page.Code)
	return out, nil
}

// ViewedBills reads the most-viewed listing.
func (e *Extractor) ViewedBills(page *models.JurisdictionPage) ([]models.BillSummaryRecord, error) {
	return e.listedBills(page, SectionViewedBills, models.ListingViewed)
}

// MonitoredBills reads the most-monitored listing.
func (e *Extractor) MonitoredBills(page *models.JurisdictionPage) ([]models.BillSummaryRecord, error) {
	return e.listedBills(page, SectionMonitoredBills, models.ListingMonitored)
}

func (e *Extractor) listedBills(page *models.JurisdictionPage, section Section, kind models.ListingKind) ([]models.BillSummaryRecord, error) {
	table, err := e.listingAfter(page, section)
	if err != nil {
		return nil, err
	}

	var out []models.BillSummaryRecord
	e.eachRow(page, section, table, func(cells *goquery.Selection) error {
		rec, err := e.billBase(cells, kind, page.Code)
		if err != nil {
			return err
		}
		if link := cells.Eq(2).Find("a").First(); link.Length() > 0 {
			rec.TextURL = e.resolve(link.AttrOr("href", ""))
		}
		out = append(out, rec)
		return nil
	})

	utils.Infof("✅ %d %s for %s", len(out), strings.ReplaceAll(string(section), "_", " "), page.Code)
	return out, nil
}

// Sponsors reads the House and Senate sponsor tables.
func (e *Extractor) Sponsors(page *models.JurisdictionPage) ([]models.SponsorRecord, error) {
	tables, chambers, err := e.chamberTables(page, SectionSponsors)
	if err != nil {
		return nil, err
	}

	var out []models.SponsorRecord
	for i, table := range tables {
		chamber := chambers[i]
		e.eachRow(page, SectionSponsors, table, func(cells *goquery.Selection) error {
			first := cells.Eq(0)
			name, profile, err := e.leadLink(first)
			if err != nil {
				return err
			}
			out = append(out, models.SponsorRecord{
				Name:         name,
				Party:        models.PartyFromDisplay(clean(first.Text())),
				URL:          profile,
				BillCount:    clean(cells.Eq(1).Text()),
				RSSURL:       e.optionalLink(cells.Eq(2)),
				Chamber:      chamber,
				Jurisdiction: page.Code,
			})
			return nil
		})
	}

	utils.Infof("✅ %d sponsors for %s", len(out), page.Code)
	return out, nil
}

// Committees reads the House and Senate committee tables.
func (e *Extractor) Committees(page *models.JurisdictionPage) ([]models.CommitteeRecord, error) {
	tables, chambers, err := e.chamberTables(page, SectionCommittees)
	if err != nil {
		return nil, err
	}

	var out []models.CommitteeRecord
	for i, table := range tables {
		chamber := chambers[i]
		e.eachRow(page, SectionCommittees, table, func(cells *goquery.Selection) error {
			name, profile, err := e.leadLink(cells.Eq(0))
			if err != nil {
				return err
			}
			out = append(out, models.CommitteeRecord{
				Name:         name,
				URL:          profile,
				BillCount:    clean(cells.Eq(1).Text()),
				RSSURL:       e.optionalLink(cells.Eq(2)),
				Chamber:      chamber,
				Jurisdiction: page.Code,
			})
			return nil
		})
	}

	utils.Infof("✅ %d committees for %s", len(out), page.Code)
	return out, nil
}

func (e *Extractor) billBase(cells *goquery.Selection, kind models.ListingKind, code string) (models.BillSummaryRecord, error) {
	number, billURL, err := e.leadLink(cells.Eq(0))
	if err != nil {
		return models.BillSummaryRecord{}, err
	}
	return models.BillSummaryRecord{
		Kind:         kind,
		BillNumber:   number,
		BillURL:      billURL,
		Summary:      clean(cells.Eq(1).Text()),
		Jurisdiction: code,
	}, nil
}

// leadLink reads the required link of a row's first cell.
func (e *Extractor) leadLink(cell *goquery.Selection) (text, href string, err error) {
	link := cell.Find("a").First()
	if link.Length() == 0 {
		return "", "", fmt.Errorf("%w: first cell has no link", models.ErrMalformedRow)
	}
	raw, ok := link.Attr("href")
	if !ok || strings.TrimSpace(raw) == "" {
		return "", "", fmt.Errorf("%w: first cell link has no href", models.ErrMalformedRow)
	}
	href = e.resolve(raw)
	if href == "" {
		return "", "", fmt.Errorf("%w: unusable href %q", models.ErrMalformedRow, raw)
	}
	return clean(link.Text()), href, nil
}

func (e *Extractor) optionalLink(cell *goquery.Selection) string {
	link := cell.Find("a").First()
	if link.Length() == 0 {
		return ""
	}
	return e.resolve(link.AttrOr("href", ""))
}

func (e *Extractor) resolve(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return e.base.ResolveReference(ref).String()
}

// eachRow skips the header row and every malformed row.
func (e *Extractor) eachRow(page *models.JurisdictionPage, section Section, table *goquery.Selection, fn func(cells *goquery.Selection) error) {
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		cells := row.Find("td")
		if cells.Length() < 3 {
			utils.Warnf("skipping %s %s row %d: %v (%d cells)", page.Code, section, i, models.ErrMalformedRow, cells.Length())
			return
		}
		if err := fn(cells); err != nil {
			utils.Warnf("skipping %s %s row %d: %v", page.Code, section, i, err)
		}
	})
}

func (e *Extractor) anchor(page *models.JurisdictionPage, section Section) (*goquery.Selection, error) {
	anchor := page.Doc.Find(fmt.Sprintf("a[name=%q]", section.Anchor())).First()
	if anchor.Length() == 0 {
		utils.Warnf("%s: no %q anchor for %s", page.Code, section.Anchor(), section)
		return nil, fmt.Errorf("%w: anchor %q", models.ErrSectionNotFound, section.Anchor())
	}
	return anchor, nil
}

// listingAfter finds the first listing table after the anchor in document order.
func (e *Extractor) listingAfter(page *models.JurisdictionPage, section Section) (*goquery.Selection, error) {
	anchor, err := e.anchor(page, section)
	if err != nil {
		return nil, err
	}

	for n := nextInDocument(anchor.Get(0)); n != nil; n = nextInDocument(n) {
		if isListingTable(n) {
			return page.Doc.FindNodes(n), nil
		}
	}
	utils.Warnf("%s: no listing table after %q", page.Code, section.Anchor())
	return nil, fmt.Errorf("%w: table after %q", models.ErrSectionNotFound, section.Anchor())
}

// chamberTables finds the sibling listing tables after the anchor and labels them.
func (e *Extractor) chamberTables(page *models.JurisdictionPage, section Section) ([]*goquery.Selection, []models.Chamber, error) {
	anchor, err := e.anchor(page, section)
	if err != nil {
		return nil, nil, err
	}

	expected := section.ExpectedTables()
	var nodes []*html.Node
	for n := anchor.Get(0).NextSibling; n != nil && len(nodes) < expected; n = n.NextSibling {
		if isListingTable(n) {
			nodes = append(nodes, n)
		}
	}
	if len(nodes) == 0 {
		utils.Warnf("%s: no listing tables next to %q", page.Code, section.Anchor())
		return nil, nil, fmt.Errorf("%w: tables next to %q", models.ErrSectionNotFound, section.Anchor())
	}
	if len(nodes) < expected {
		utils.Warnf("%s: expected %d %s tables, found %d; labelling from headings", page.Code, expected, section, len(nodes))
	}

	chambers := e.chambers(nodes, expected)
	if len(chambers) != len(nodes) {
		return nil, nil, fmt.Errorf("%w: chamber policy returned %d labels for %d tables", models.ErrSectionParse, len(chambers), len(nodes))
	}

	tables := make([]*goquery.Selection, len(nodes))
	for i, n := range nodes {
		tables[i] = page.Doc.FindNodes(n)
	}
	return tables, chambers, nil
}

func clean(s string) string {
	return strings.TrimSpace(s)
}

func codeOf(page *models.JurisdictionPage) string {
	if page == nil {
		return "?"
	}
	return page.Code
}
