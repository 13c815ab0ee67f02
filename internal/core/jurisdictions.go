package core

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultJurisdiction is scraped when nothing else is requested.
const DefaultJurisdiction = "AK"

// AllJurisdictions is the 50 states, the District of Columbia and the federal Congress.
var AllJurisdictions = []string{
	"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "FL", "GA",
	"HI", "ID", "IL", "IN", "IA", "KS", "KY", "LA", "ME", "MD",
	"MA", "MI", "MN", "MS", "MO", "MT", "NE", "NV", "NH", "NJ",
	"NM", "NY", "NC", "ND", "OH", "OK", "OR", "PA", "RI", "SC",
	"SD", "TN", "TX", "UT", "VT", "VA", "WA", "WV", "WI", "WY",
	"DC", "US",
}

var jurisdictionCode = regexp.MustCompile(`^[A-Z]{2}$`)

// ParseJurisdictions resolves the dashboard selection flags into an ordered, de-duplicated list.
// all wins over list, list wins over single.
func ParseJurisdictions(single, list string, all bool) ([]string, error) {
	if all {
		return append([]string(nil), AllJurisdictions...), nil
	}

	raw := []string{single}
	if strings.TrimSpace(list) != "" {
		raw = strings.Split(list, ",")
	}

	seen := make(map[string]bool)
	var codes []string
	for _, c := range raw {
		code := strings.ToUpper(strings.TrimSpace(c))
		if code == "" {
			continue
		}
		if !jurisdictionCode.MatchString(code) {
			return nil, fmt.Errorf("invalid jurisdiction code %q", c)
		}
		if !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}

	if len(codes) == 0 {
		codes = []string{DefaultJurisdiction}
	}
	return codes, nil
}
