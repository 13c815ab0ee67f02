package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/RecoveryAshes/legiscrape/internal/core"
	"github.com/RecoveryAshes/legiscrape/internal/stealth"
	"github.com/RecoveryAshes/legiscrape/internal/utils"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// global flags
var (
	configFile     string
	verbose        bool
	logLevel       string
	headers        []string
	validateConfig bool
)

// appConfig is loaded once in PersistentPreRunE.
var appConfig *core.Config

// errRetrievalFailed makes the process exit 1 without a second error line.
var errRetrievalFailed = errors.New("bill text retrieval failed")

var rootCmd = &cobra.Command{
	Use:   "legiscrape",
	Short: "LegiScan dashboard and bill text scraper",
	Long: `legiscrape - scrape LegiScan jurisdiction dashboards and bill texts

Entry points:
  • dashboard  five listings per jurisdiction into CSV files and a workbook
  • billtext   the full text of one bill, HTML or PDF, saved as plain text
  • batch      bill texts for every URL column value in a directory of CSV files

Extra request headers:
  # from configs/headers.yaml
  legiscrape dashboard --state TX

  # from the command line
  legiscrape dashboard --states CA,NY -H "Accept-Language: en-GB"

  # check the header configuration
  legiscrape --validate-config

Version: ` + Version + `
Build time: ` + BuildTime,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		appConfig = config

		logConfig := config.Logging.LogConfig()
		if verbose {
			logConfig.Level = "debug"
		}
		if logLevel != "" {
			logConfig.Level = logLevel
		}

		if err := utils.InitLogger(logConfig); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		if verbose {
			utils.Debug("verbose mode enabled")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if !validateConfig {
			return cmd.Help()
		}

		hm, err := newHeaderManager()
		if err != nil {
			return err
		}

		utils.Info("🔍 validating header configuration...")
		safeHeaders := hm.GetSafeHeaders()
		utils.Info("✅ header configuration is valid")
		utils.Infof("effective headers (%d):", len(safeHeaders))
		for name, value := range safeHeaders {
			utils.Infof("  %s: %s", name, value)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("legiscrape %s\n", Version)
		fmt.Printf("Build time: %s\n", BuildTime)
	},
}

// newHeaderManager loads, validates and returns the identity source for all fetches.
func newHeaderManager() (*core.HeaderManager, error) {
	hm, err := core.NewHeaderManager(appConfig.HeadersFile, headers, stealth.NewRotator())
	if err != nil {
		return nil, fmt.Errorf("parse --header: %w", err)
	}
	if err := hm.LoadConfig(); err != nil {
		return nil, fmt.Errorf("load headers: %w", err)
	}
	if err := hm.Validate(); err != nil {
		return nil, fmt.Errorf("invalid headers: %w", err)
	}
	return hm, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().StringSliceVarP(&headers, "header", "H", []string{}, "extra request header 'Name: Value', repeatable")
	rootCmd.Flags().BoolVar(&validateConfig, "validate-config", false, "validate the header configuration and exit")

	rootCmd.AddCommand(dashboardCmd, billtextCmd, batchCmd, versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errRetrievalFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}
