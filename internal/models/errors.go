package models

import (
	"errors"
	"fmt"
)

// Failure taxonomy shared by every stage of the pipeline.
var (
	// ErrNavigationTimeout navigation exceeded the page-load timeout
	ErrNavigationTimeout = errors.New("navigation timed out")
	// ErrDriver the browser or HTTP layer failed in a way that cannot be recovered within the attempt
	ErrDriver = errors.New("automation driver failure")
	// ErrChallengeBlocked a bot-detection interstitial persisted after the cooldown
	ErrChallengeBlocked = errors.New("blocked by bot challenge")
	// ErrSectionNotFound the section anchor or its table is absent (no data, not fatal)
	ErrSectionNotFound = errors.New("section not found")
	// ErrSectionParse the document structure could not be walked for a section
	ErrSectionParse = errors.New("section parse failure")
	// ErrTextLinkNotFound no path from the summary page to a text page
	ErrTextLinkNotFound = errors.New("text link not found")
	// ErrDownloadTimeout the expected download never appeared
	ErrDownloadTimeout = errors.New("download timed out")
	// ErrConversion the document could not be decoded to text
	ErrConversion = errors.New("document conversion failed")
	// ErrMalformedRow a listing row lacks required cells or links
	ErrMalformedRow = errors.New("malformed row")
	// ErrPersistence a tabular or text file could not be written
	ErrPersistence = errors.New("persistence failure")
	// ErrNoRecords nothing to write
	ErrNoRecords = errors.New("no records to write")
	// ErrNoSource a fetch was requested without URL, file or inline content
	ErrNoSource = errors.New("no page source supplied")
)

// PersistenceError wraps a failed write with its path
type PersistenceError struct {
	Path  string
	Cause error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Cause)
}

// Unwrap exposes the cause.
func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is(err, ErrPersistence) match.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// ConversionError wraps a failed PDF-to-text decode
type ConversionError struct {
	Path  string
	Cause error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert %s: %v", e.Path, e.Cause)
}

func (e *ConversionError) Unwrap() error {
	return e.Cause
}

func (e *ConversionError) Is(target error) bool {
	return target == ErrConversion
}
