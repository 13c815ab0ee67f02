package billtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveBillKey(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://site.example/ca/bill/SB1/123", "ca_SB1"},
		{"https://legiscan.com/TX/text/HB2/id/3001234", "TX_HB2"},
		{"http://legiscan.com/US/drafts/HR1/2025", "US_HR1"},
		{"https://legiscan.com/TX/text/HB2/id/3001234/Texas-2025-HB2-Introduced.pdf", "TX_HB2"},
		{"https://legiscan.com/TX/people/someone/id/1", UnknownBillKey},
		{"not a url", UnknownBillKey},
		{"", UnknownBillKey},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveBillKey(tt.url))
		})
	}
}

func TestIsSummaryURL(t *testing.T) {
	assert.True(t, IsSummaryURL("https://legiscan.com/CA/bill/SB1/2025"))
	assert.False(t, IsSummaryURL("https://legiscan.com/CA/text/SB1/id/99"))
	assert.False(t, IsSummaryURL("https://legiscan.com/CA/drafts/SB1/2025"))
}

func TestPDFFileName(t *testing.T) {
	assert.Equal(t, "SB1_Introduced.pdf", PDFFileName("https://legiscan.com/CA/text/SB1/id/9/SB1_Introduced.pdf"))
	assert.Equal(t, "bill.pdf", PDFFileName("https://example.org/docs/bill.pdf?download=1"))
}
