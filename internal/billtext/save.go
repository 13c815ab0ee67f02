package billtext

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/RecoveryAshes/legiscrape/internal/models"
)

const timestampLayout = "20060102_150405"

// SaveHTMLText writes markup to {key}_{timestamp}.html and text to the matching .txt.
// Earlier artifacts are never overwritten; a clash gets a numeric suffix.
func SaveHTMLText(dir, key, markup, text string, now time.Time) (htmlPath, txtPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", &models.PersistenceError{Path: dir, Cause: err}
	}

	stem := fmt.Sprintf("%s_%s", key, now.Format(timestampLayout))
	for n := 1; ; n++ {
		name := stem
		if n > 1 {
			name = fmt.Sprintf("%s_%d", stem, n)
		}
		htmlPath = filepath.Join(dir, name+".html")
		txtPath = filepath.Join(dir, name+".txt")

		err = writeNew(htmlPath, markup)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", "", &models.PersistenceError{Path: htmlPath, Cause: err}
		}
		break
	}

	if err := writeNew(txtPath, text); err != nil {
		// the pair is written together or not at all
		_ = os.Remove(htmlPath)
		return "", "", &models.PersistenceError{Path: txtPath, Cause: err}
	}
	return htmlPath, txtPath, nil
}

func writeNew(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	_, err = f.WriteString(content)
	return errors.Join(err, f.Close())
}

// ReadableText extracts the main article text of a page. It is the fallback
// when the rendered body text is empty.
func ReadableText(rawHTML, pageURL string) (string, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsed)
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(doc.Text()), nil
}
