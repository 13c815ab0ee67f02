package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/RecoveryAshes/legiscrape/internal/stealth"
	"github.com/RecoveryAshes/legiscrape/internal/utils"
	"github.com/spf13/viper"
)

// Fetch modes for dashboard pages.
const (
	ModeStatic  = "static"
	ModeDynamic = "dynamic"
)

// Config is the application configuration.
type Config struct {
	Site        SiteConfig    `mapstructure:"site"`
	Fetch       FetchConfig   `mapstructure:"fetch"`
	Delay       DelayConfig   `mapstructure:"delay"`
	Output      OutputConfig  `mapstructure:"output"`
	Logging     LoggingConfig `mapstructure:"logging"`
	HeadersFile string        `mapstructure:"headers_file"`
}

// SiteConfig names the site family being scraped.
type SiteConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// FetchConfig controls both fetch back ends and the bill-text browser.
type FetchConfig struct {
	Mode              string        `mapstructure:"mode"` // static | dynamic, dashboard pages only
	Headless          bool          `mapstructure:"headless"`
	BrowserBin        string        `mapstructure:"browser_bin"`
	PageLoadTimeout   time.Duration `mapstructure:"page_load_timeout"`
	ElementWait       time.Duration `mapstructure:"element_wait"`
	LinkWait          time.Duration `mapstructure:"link_wait"`
	ChallengeCooldown time.Duration `mapstructure:"challenge_cooldown"`
	DownloadTimeout   time.Duration `mapstructure:"download_timeout"`
	DownloadPoll      time.Duration `mapstructure:"download_poll"`
	MinFreeMemoryMB   uint64        `mapstructure:"min_free_memory_mb"`
}

// DelayConfig groups the delay policies by call site.
type DelayConfig struct {
	Request             stealth.DelayConfig `mapstructure:"request"`
	JurisdictionBrowser stealth.DelayConfig `mapstructure:"jurisdiction_browser"`
	JurisdictionLight   stealth.DelayConfig `mapstructure:"jurisdiction_light"`
	Batch               stealth.DelayConfig `mapstructure:"batch"`
}

// JurisdictionPacing picks the inter-jurisdiction range for the fetch mode.
func (d DelayConfig) JurisdictionPacing(mode string) stealth.DelayConfig {
	if mode == ModeDynamic {
		return d.JurisdictionBrowser
	}
	return d.JurisdictionLight
}

// OutputConfig holds the default output roots per entry point.
type OutputConfig struct {
	DashboardDir string `mapstructure:"dashboard_dir"`
	BillDir      string `mapstructure:"bill_dir"`
	BatchDir     string `mapstructure:"batch_dir"`
	Report       bool   `mapstructure:"report"`
	Progress     bool   `mapstructure:"progress"`
}

// LoggingConfig mirrors utils.LogConfig.
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig is passed to lumberjack.
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// LogConfig adapts the logging section for utils.InitLogger.
func (l LoggingConfig) LogConfig() utils.LogConfig {
	return utils.LogConfig{
		Level:      l.Level,
		LogDir:     l.LogDir,
		MaxSize:    l.Rotation.MaxSize,
		MaxBackups: l.Rotation.MaxBackups,
		MaxAge:     l.Rotation.MaxAge,
		Compress:   l.Rotation.Compress,
	}
}

// LoadConfig reads configPath, or config.yaml from ./configs, . and ~/.legiscrape.
// A missing file is not an error; defaults apply. LEGISCRAPE_* env vars override both.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".legiscrape"))
		}
	}

	v.SetEnvPrefix("LEGISCRAPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects values that would make the pipeline misbehave.
func (c *Config) Validate() error {
	if c.Fetch.Mode != ModeStatic && c.Fetch.Mode != ModeDynamic {
		return fmt.Errorf("fetch.mode must be %q or %q, got %q", ModeStatic, ModeDynamic, c.Fetch.Mode)
	}
	if err := utils.ValidateURL(c.Site.BaseURL); err != nil {
		return fmt.Errorf("site.base_url: %w", err)
	}
	if c.Fetch.PageLoadTimeout <= 0 {
		return fmt.Errorf("fetch.page_load_timeout must be positive")
	}
	if c.Fetch.DownloadPoll <= 0 || c.Fetch.DownloadTimeout < c.Fetch.DownloadPoll {
		return fmt.Errorf("fetch.download_timeout must be at least fetch.download_poll")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("site.base_url", "https://legiscan.com")

	v.SetDefault("fetch.mode", ModeStatic)
	v.SetDefault("fetch.headless", true)
	v.SetDefault("fetch.browser_bin", "")
	v.SetDefault("fetch.page_load_timeout", 30*time.Second)
	v.SetDefault("fetch.element_wait", 5*time.Second)
	v.SetDefault("fetch.link_wait", 8*time.Second)
	v.SetDefault("fetch.challenge_cooldown", 20*time.Second)
	v.SetDefault("fetch.download_timeout", 45*time.Second)
	v.SetDefault("fetch.download_poll", time.Second)
	v.SetDefault("fetch.min_free_memory_mb", 512)

	setDelayDefaults(v, "delay.request", stealth.HumanLike())
	setDelayDefaults(v, "delay.jurisdiction_browser", stealth.Uniform(10, 25))
	setDelayDefaults(v, "delay.jurisdiction_light", stealth.Uniform(5, 15))
	setDelayDefaults(v, "delay.batch", stealth.Uniform(5, 15))

	v.SetDefault("output.dashboard_dir", "legiscan_data")
	v.SetDefault("output.bill_dir", "legiscan_bills")
	v.SetDefault("output.batch_dir", "batch_scraped_bills")
	v.SetDefault("output.report", true)
	v.SetDefault("output.progress", true)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)

	v.SetDefault("headers_file", "configs/headers.yaml")
}

func setDelayDefaults(v *viper.Viper, prefix string, d stealth.DelayConfig) {
	v.SetDefault(prefix+".low", d.Low)
	v.SetDefault(prefix+".high", d.High)
	v.SetDefault(prefix+".long_tail_probability", d.LongTailProbability)
	v.SetDefault(prefix+".long_tail_low", d.LongTailLow)
	v.SetDefault(prefix+".long_tail_high", d.LongTailHigh)
	v.SetDefault(prefix+".jitter_spread", d.JitterSpread)
	v.SetDefault(prefix+".floor", d.Floor)
}
