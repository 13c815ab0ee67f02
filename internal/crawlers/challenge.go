package crawlers

import (
	"context"
	"strings"
	"time"

	"github.com/RecoveryAshes/legiscrape/internal/models"
	"github.com/RecoveryAshes/legiscrape/internal/stealth"
	"github.com/RecoveryAshes/legiscrape/internal/utils"
)

// ChallengeMarkers are substrings of the interstitials served instead of real content.
var ChallengeMarkers = []string{
	"You are being rate limited",
	"Please complete the security check",
}

// Probe reads the current document content.
type Probe func(ctx context.Context) (string, error)

// DetectChallenge returns the first marker found in content.
func DetectChallenge(content string) (string, bool) {
	for _, marker := range ChallengeMarkers {
		if strings.Contains(content, marker) {
			return marker, true
		}
	}
	return "", false
}

// AwaitClearance inspects the page, and on a challenge sleeps cooldown exactly once and
// inspects again. A challenge that survives the cooldown is ErrChallengeBlocked.
func AwaitClearance(ctx context.Context, probe Probe, cooldown time.Duration, sleep stealth.Sleeper) (string, error) {
	content, err := probe(ctx)
	if err != nil {
		return "", err
	}

	marker, found := DetectChallenge(content)
	if !found {
		return content, nil
	}

	utils.Warnf("🛑 challenge detected (%q), cooling down %s", marker, cooldown)
	if err := sleep(ctx, cooldown); err != nil {
		return "", err
	}

	content, err = probe(ctx)
	if err != nil {
		return "", err
	}
	if marker, found := DetectChallenge(content); found {
		utils.Errorf("challenge still present after cooldown (%q)", marker)
		return "", models.ErrChallengeBlocked
	}

	utils.Infof("✅ challenge cleared after cooldown")
	return content, nil
}
