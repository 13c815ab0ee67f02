// Package config owns the extra-header file layered between the built-in browser headers
// and --header flags.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/RecoveryAshes/legiscrape/internal/models"
	"github.com/RecoveryAshes/legiscrape/internal/utils"
)

const (
	// DefaultHeadersFile is created from the embedded template on first use.
	DefaultHeadersFile = "configs/headers.yaml"

	// MaxConfigFileSize 1MB
	MaxConfigFileSize = 1 << 20
)

//go:embed headers_template.yaml
var headerTemplate []byte

// HeaderConfigLoader reads the headers file sent with every LegiScan page fetch.
type HeaderConfigLoader struct {
	path string
}

func NewHeaderConfigLoader(path string) *HeaderConfigLoader {
	if path == "" {
		path = DefaultHeadersFile
	}
	return &HeaderConfigLoader{path: path}
}

func (l *HeaderConfigLoader) Path() string { return l.path }

// EnsureConfigExists writes the commented template when the file is missing.
func (l *HeaderConfigLoader) EnsureConfigExists() error {
	if _, err := os.Stat(l.path); !errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return &models.ConfigError{FilePath: l.path, Cause: err}
	}
	if err := os.WriteFile(l.path, headerTemplate, 0o644); err != nil {
		return &models.ConfigError{FilePath: l.path, Cause: err}
	}
	utils.Infof("📝 created header template: %s", l.path)
	return nil
}

// LoadConfig decodes the file, creating it first if needed. Names come back lower-cased.
func (l *HeaderConfigLoader) LoadConfig() (*models.HeaderConfig, error) {
	if err := l.EnsureConfigExists(); err != nil {
		return nil, err
	}

	info, err := os.Stat(l.path)
	if err != nil {
		return nil, &models.ConfigError{FilePath: l.path, Cause: err}
	}
	if info.Size() > MaxConfigFileSize {
		return nil, &models.ConfigError{
			FilePath: l.path,
			Cause:    fmt.Errorf("file is %d bytes (max %d)", info.Size(), MaxConfigFileSize),
		}
	}

	v := viper.New()
	v.SetConfigFile(l.path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, &models.ConfigError{FilePath: l.path, Cause: err}
	}

	var cfg models.HeaderConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &models.ConfigError{FilePath: l.path, Cause: fmt.Errorf("decode headers: %w", err)}
	}
	// "headers:" with only comments under it decodes to nil
	if cfg.Headers == nil {
		cfg.Headers = make(map[string]string)
	}
	return &cfg, nil
}
