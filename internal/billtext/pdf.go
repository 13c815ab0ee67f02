package billtext

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/RecoveryAshes/legiscrape/internal/models"
	"github.com/RecoveryAshes/legiscrape/internal/utils"
)

// pageSeparator joins the text of consecutive PDF pages.
const pageSeparator = "\n\n"

// Converter turns a downloaded PDF into a text file and returns its path.
type Converter func(pdfPath string) (string, error)

// ConvertPDF writes the text of every page next to pdfPath with a .txt extension.
// The PDF is removed whether or not conversion succeeds.
func ConvertPDF(pdfPath string) (string, error) {
	defer func() {
		if err := os.Remove(pdfPath); err != nil && !os.IsNotExist(err) {
			utils.Warnf("remove %s: %v", pdfPath, err)
		}
	}()

	text, err := readPDFText(pdfPath)
	if err != nil {
		return "", &models.ConversionError{Path: pdfPath, Cause: err}
	}

	txtPath := strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".txt"
	if err := os.WriteFile(txtPath, []byte(text), 0o644); err != nil {
		return "", &models.PersistenceError{Path: txtPath, Cause: err}
	}

	utils.Infof("📝 converted %s to text and removed the PDF", filepath.Base(pdfPath))
	return txtPath, nil
}

func readPDFText(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, content)
	}
	return strings.Join(pages, pageSeparator), nil
}

// waitForFile polls until path exists or timeout passes.
func waitForFile(ctx context.Context, path string, timeout, poll time.Duration) error {
	if poll <= 0 {
		poll = time.Second
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("%w: %s after %s", models.ErrDownloadTimeout, filepath.Base(path), timeout)
		case <-ticker.C:
		}
	}
}
