package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/RecoveryAshes/legiscrape/internal/models"
)

// ChamberPolicy labels the listing tables found for a sponsor or committee section.
// It must return one label per table.
type ChamberPolicy func(tables []*html.Node, expected int) []models.Chamber

// PositionalChambers labels a complete set of tables House then Senate.
// An incomplete set falls back to HeadingChamber per table.
func PositionalChambers(tables []*html.Node, expected int) []models.Chamber {
	order := []models.Chamber{models.ChamberHouse, models.ChamberSenate}

	labels := make([]models.Chamber, len(tables))
	for i, table := range tables {
		if len(tables) == expected && i < len(order) {
			labels[i] = order[i]
		} else {
			labels[i] = HeadingChamber(table)
		}
	}
	return labels
}

// HeadingChamber walks backwards from table to the nearest heading naming a chamber.
// The walk stops at the previous listing table. Nothing found is ChamberUnknown.
func HeadingChamber(table *html.Node) models.Chamber {
	for n := prevInDocument(table); n != nil; n = prevInDocument(n) {
		if n.Type != html.ElementNode {
			continue
		}
		if isListingTable(n) {
			break
		}
		if !isHeading(n) {
			continue
		}

		text := nodeText(n)
		switch {
		case strings.Contains(text, "House"):
			return models.ChamberHouse
		case strings.Contains(text, "Senate"):
			return models.ChamberSenate
		}
	}
	return models.ChamberUnknown
}

func isHeading(n *html.Node) bool {
	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	return false
}

func isListingTable(n *html.Node) bool {
	return n.Type == html.ElementNode && n.DataAtom == atom.Table && hasClass(n, listingClass)
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" {
			for _, c := range strings.Fields(a.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	return goquery.NewDocumentFromNode(n).Text()
}

// prevInDocument steps backwards in document order.
func prevInDocument(n *html.Node) *html.Node {
	if n.PrevSibling != nil {
		n = n.PrevSibling
		for n.LastChild != nil {
			n = n.LastChild
		}
		return n
	}
	return n.Parent
}

// nextInDocument steps forwards in document order.
func nextInDocument(n *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for n != nil {
		if n.NextSibling != nil {
			return n.NextSibling
		}
		n = n.Parent
	}
	return nil
}
