package models

import "time"

// TextFormat is the source format of retrieved bill text
type TextFormat string

const (
	FormatHTML TextFormat = "html"
	FormatPDF  TextFormat = "pdf"
)

// BillTextArtifact describes one successful bill-text retrieval.
// Path is the HTML file for the html path and the converted .txt for the pdf path.
type BillTextArtifact struct {
	BillKey   string     `json:"bill_key"`
	Path      string     `json:"path"`
	TextPath  string     `json:"text_path"`
	Format    TextFormat `json:"format"`
	SourceURL string     `json:"source_url"`
	Proxy     string     `json:"proxy,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
