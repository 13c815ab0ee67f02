package billtext

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RecoveryAshes/legiscrape/internal/models"
)

// writePDF builds a minimal PDF with one line of Helvetica text per page.
func writePDF(t *testing.T, path string, pages ...string) {
	t.Helper()

	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	for i, text := range pages {
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestConvertPDFJoinsPagesAndRemovesPDF(t *testing.T) {
	pdfPath := filepath.Join(t.TempDir(), "SB1_Introduced.pdf")
	writePDF(t, pdfPath, "First page of the bill", "Second page of the bill")

	txtPath, err := ConvertPDF(pdfPath)
	require.NoError(t, err)

	assert.Equal(t, strings.TrimSuffix(pdfPath, ".pdf")+".txt", txtPath)
	assert.NoFileExists(t, pdfPath)

	data, err := os.ReadFile(txtPath)
	require.NoError(t, err)
	text := string(data)

	first := strings.Index(text, "First page of the bill")
	second := strings.Index(text, "Second page of the bill")
	require.GreaterOrEqual(t, first, 0, "page one text in %q", text)
	require.Greater(t, second, first, "page two text after page one in %q", text)
	assert.Contains(t, text[first:second], pageSeparator)
}

func TestConvertPDFFailureStillRemovesPDF(t *testing.T) {
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "broken.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("this is not a pdf"), 0o644))

	_, err := ConvertPDF(pdfPath)
	assert.ErrorIs(t, err, models.ErrConversion)

	var convErr *models.ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, pdfPath, convErr.Path)

	assert.NoFileExists(t, pdfPath)
	assert.NoFileExists(t, filepath.Join(dir, "broken.txt"))
}

func TestWaitForFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "late.pdf")

	go func() {
		time.Sleep(30 * time.Millisecond)
		_ = os.WriteFile(path, []byte("%PDF"), 0o644)
	}()

	err := waitForFile(context.Background(), path, 2*time.Second, 5*time.Millisecond)
	assert.NoError(t, err)
}

func TestWaitForFileTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "never.pdf")

	err := waitForFile(context.Background(), path, 30*time.Millisecond, 5*time.Millisecond)
	assert.ErrorIs(t, err, models.ErrDownloadTimeout)
}

func TestWaitForFileCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := waitForFile(ctx, filepath.Join(t.TempDir(), "x.pdf"), time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, err, context.Canceled)
}
