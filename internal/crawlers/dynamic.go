package crawlers

import (
	"context"

	"github.com/RecoveryAshes/legiscrape/internal/models"
	"github.com/RecoveryAshes/legiscrape/internal/utils"
)

// DynamicFetcher renders pages in a fresh Chromium per visit.
type DynamicFetcher struct {
	base SessionOptions
}

// NewDynamicFetcher uses base for every launch; identity fields are filled per visit.
func NewDynamicFetcher(base SessionOptions) *DynamicFetcher {
	return &DynamicFetcher{base: base}
}

// Visit navigates to targetURL and hands fn a probe that re-reads the rendered document.
func (df *DynamicFetcher) Visit(ctx context.Context, targetURL string, id models.Identity, fn func(Probe) error) error {
	opts := df.base
	opts.UserAgent = id.UserAgent
	opts.Headers = id.Headers
	opts.Proxy = id.Proxy

	return WithSession(ctx, opts, func(s *Session) error {
		if err := s.Navigate(targetURL); err != nil {
			return err
		}
		if err := s.ClearState(); err != nil {
			utils.Debugf("clear page state: %v", err)
		}

		return fn(func(context.Context) (string, error) {
			return s.HTML()
		})
	})
}
