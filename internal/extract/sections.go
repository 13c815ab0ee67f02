package extract

// Section is one of the five dashboard listings.
type Section string

const (
	SectionActiveBills    Section = "active_bills"
	SectionSponsors       Section = "sponsors"
	SectionCommittees     Section = "committees"
	SectionViewedBills    Section = "viewed_bills"
	SectionMonitoredBills Section = "monitored_bills"
)

// Sections lists every section in page order.
var Sections = []Section{
	SectionActiveBills,
	SectionSponsors,
	SectionCommittees,
	SectionViewedBills,
	SectionMonitoredBills,
}

type sectionLayout struct {
	anchor string
	sheet  string
	tables int
}

var layouts = map[Section]sectionLayout{
	SectionActiveBills:    {anchor: "latest", sheet: "Active Bills", tables: 1},
	SectionSponsors:       {anchor: "sponsors", sheet: "Sponsors", tables: 2},
	SectionCommittees:     {anchor: "committees", sheet: "Committees", tables: 2},
	SectionViewedBills:    {anchor: "viewed", sheet: "Viewed Bills", tables: 1},
	SectionMonitoredBills: {anchor: "monitored", sheet: "Monitored Bills", tables: 1},
}

// Anchor is the value of the name attribute that marks the section.
func (s Section) Anchor() string { return layouts[s].anchor }

// SheetName is the workbook sheet title.
func (s Section) SheetName() string { return layouts[s].sheet }

// FileName is the per-section CSV name.
func (s Section) FileName() string { return string(s) + ".csv" }

// ExpectedTables is how many listing tables follow the anchor.
func (s Section) ExpectedTables() int { return layouts[s].tables }
