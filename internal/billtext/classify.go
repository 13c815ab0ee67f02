package billtext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/RecoveryAshes/legiscrape/internal/models"
)

const (
	htmlMarker = "[HTML]"

	pdfLinkSelector   = `a[href*=".pdf"]`
	pdfObjectSelector = `object[type="application/pdf"]`
)

// htmlContainers are tried in order when capturing HTML bill text.
var htmlContainers = []string{".billtext", "#bill_all", "#bill"}

// LooksLikeHTMLText reports whether a text page carries its bill text inline.
// Pages with neither HTML containers nor a PDF are treated as HTML.
func LooksLikeHTMLText(doc *goquery.Document, raw string) bool {
	if strings.Contains(raw, htmlMarker) {
		return true
	}
	if doc.Find(".billtext").Length() > 0 || doc.Find("#bill_all").Length() > 0 {
		return true
	}
	return !HasPDF(doc)
}

// HasPDF reports a PDF link or an embedded PDF object.
func HasPDF(doc *goquery.Document) bool {
	return doc.Find(pdfLinkSelector).Length() > 0 || doc.Find(pdfObjectSelector).Length() > 0
}

// ChooseFormat applies the caller preference to the detection result.
// "html" forces the HTML path; any other preference leaves detection in charge.
func ChooseFormat(prefer string, looksHTML bool) models.TextFormat {
	if strings.EqualFold(prefer, string(models.FormatHTML)) || looksHTML {
		return models.FormatHTML
	}
	return models.FormatPDF
}

// Classify picks the extraction path for a loaded text page.
func Classify(doc *goquery.Document, raw, prefer string) models.TextFormat {
	return ChooseFormat(prefer, LooksLikeHTMLText(doc, raw))
}

// CaptureContainer returns the markup of the first bill text container, or the whole document.
func CaptureContainer(doc *goquery.Document) (markup, matched string, err error) {
	for _, sel := range htmlContainers {
		if found := doc.Find(sel).First(); found.Length() > 0 {
			markup, err = goquery.OuterHtml(found)
			return markup, sel, err
		}
	}
	markup, err = goquery.OuterHtml(doc.Selection)
	return markup, "document", err
}
