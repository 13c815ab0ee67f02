package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJurisdictions(t *testing.T) {
	tests := []struct {
		name   string
		single string
		list   string
		all    bool
		want   []string
	}{
		{"default", "", "", false, []string{"AK"}},
		{"single lower case", "tx", "", false, []string{"TX"}},
		{"list wins over single", "TX", "ca, ny ,CA", false, []string{"CA", "NY"}},
		{"blank list falls back to single", "WA", "  ", false, []string{"WA"}},
		{"empty entries dropped", "", "CA,,NY,", false, []string{"CA", "NY"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseJurisdictions(tt.single, tt.list, tt.all)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseJurisdictionsAll(t *testing.T) {
	got, err := ParseJurisdictions("TX", "CA", true)
	require.NoError(t, err)
	assert.Len(t, got, 52)
	assert.Equal(t, "AL", got[0])
	assert.Equal(t, "US", got[len(got)-1])

	got[0] = "ZZ"
	assert.Equal(t, "AL", AllJurisdictions[0])
}

func TestParseJurisdictionsInvalid(t *testing.T) {
	for _, in := range []string{"Texas", "T1", "C"} {
		_, err := ParseJurisdictions("", in, false)
		assert.Error(t, err, in)
	}
}
