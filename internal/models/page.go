package models

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SourceKind tells where a page was read from
type SourceKind string

const (
	SourceLive   SourceKind = "live"
	SourceFile   SourceKind = "file"
	SourceInline SourceKind = "inline"
)

// PageSource names where a jurisdiction page comes from. Callers set at most one field;
// when several are set, Inline wins over FilePath, which wins over URL.
type PageSource struct {
	URL      string
	FilePath string
	Inline   string
}

// Kind reports which field will be honored.
func (s PageSource) Kind() (SourceKind, bool) {
	switch {
	case s.Inline != "":
		return SourceInline, true
	case s.FilePath != "":
		return SourceFile, true
	case s.URL != "":
		return SourceLive, true
	}
	return "", false
}

// JurisdictionPage is a parsed dashboard document. It is never mutated after creation.
type JurisdictionPage struct {
	Code     string
	Source   SourceKind
	Location string
	Doc      *goquery.Document
}

// NewJurisdictionPage normalizes the code to upper case.
func NewJurisdictionPage(code string, kind SourceKind, location string, doc *goquery.Document) *JurisdictionPage {
	return &JurisdictionPage{
		Code:     strings.ToUpper(strings.TrimSpace(code)),
		Source:   kind,
		Location: location,
		Doc:      doc,
	}
}
