package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"", false},
		{"html", false},
		{"pdf", false},
		{"docx", true},
		{"HTML", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			err := ValidateFormat(tt.format)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateMode(t *testing.T) {
	assert.NoError(t, ValidateMode("static"))
	assert.NoError(t, ValidateMode("dynamic"))
	assert.Error(t, ValidateMode("all"))
}

func TestValidateBillURL(t *testing.T) {
	assert.NoError(t, ValidateBillURL("https://legiscan.com/TX/bill/HB1/2025"))
	assert.Error(t, ValidateBillURL("legiscan.com/TX/bill/HB1/2025"))
	assert.Error(t, ValidateBillURL("ftp://legiscan.com/file"))
}

func TestLoadProxies(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "proxies.txt")
	require.NoError(t, os.WriteFile(path, []byte("# pool\n10.0.0.1:3128\n\nhttp://10.0.0.2:8080\n"), 0o644))

	t.Run("disabled", func(t *testing.T) {
		assert.Nil(t, LoadProxies(false, path))
	})
	t.Run("enabled", func(t *testing.T) {
		assert.Equal(t, []string{"10.0.0.1:3128", "http://10.0.0.2:8080"}, LoadProxies(true, path))
	})
	t.Run("missing file falls back to direct", func(t *testing.T) {
		assert.Empty(t, LoadProxies(true, filepath.Join(dir, "absent.txt")))
	})
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}
