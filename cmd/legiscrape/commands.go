package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/RecoveryAshes/legiscrape/internal/billtext"
	"github.com/RecoveryAshes/legiscrape/internal/core"
	"github.com/RecoveryAshes/legiscrape/internal/crawlers"
	"github.com/RecoveryAshes/legiscrape/internal/extract"
	"github.com/RecoveryAshes/legiscrape/internal/models"
	"github.com/RecoveryAshes/legiscrape/internal/stealth"
	"github.com/RecoveryAshes/legiscrape/internal/utils"
)

// dashboard flags
var (
	state      string
	states     string
	allStates  bool
	snapshot   string
	dashOutput string
	fetchMode  string
)

// billtext and batch flags; the proxy pair is shared with dashboard
var (
	textOutput string
	textFormat string
	useProxy   bool
	proxyFile  string
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Scrape jurisdiction dashboards into CSV files and a workbook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		codes, err := core.ParseJurisdictions(state, states, allStates)
		if err != nil {
			return err
		}

		mode := fetchMode
		if mode == "" {
			mode = appConfig.Fetch.Mode
		}
		if err := ValidateMode(mode); err != nil {
			return err
		}
		source, err := SnapshotOption(snapshot, cmd.InOrStdin())
		if err != nil {
			return err
		}

		outDir := firstNonEmpty(dashOutput, appConfig.Output.DashboardDir)

		hm, err := newHeaderManager()
		if err != nil {
			return err
		}
		extractor, err := extract.New(appConfig.Site.BaseURL)
		if err != nil {
			return err
		}

		var live crawlers.LiveFetcher
		if mode == core.ModeDynamic {
			live = crawlers.NewDynamicFetcher(sessionOptions())
		} else {
			live = crawlers.NewStaticFetcher(appConfig.Fetch.PageLoadTimeout)
		}
		fetcher := crawlers.NewPageFetcher(live, hm, stealth.NewDelayPolicy(appConfig.Delay.Request), appConfig.Fetch.ChallengeCooldown,
			DashboardFetchOptions(LoadProxies(useProxy, proxyFile))...)

		scraper := core.NewDashboardScraper(
			fetcher,
			extractor,
			stealth.NewDelayPolicy(appConfig.Delay.JurisdictionPacing(mode)),
			appConfig.Site.BaseURL,
			outDir,
			source,
			core.WithProgress(appConfig.Output.Progress),
		)

		summary := scraper.Run(cmd.Context(), codes)
		report(summary, outDir)
		utils.Info("✨ dashboard sweep finished")
		return nil
	},
}

var billtextCmd = &cobra.Command{
	Use:   "billtext <url>",
	Short: "Retrieve the full text of one bill",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := args[0]
		if err := ValidateBillURL(target); err != nil {
			return err
		}
		if err := ValidateFormat(textFormat); err != nil {
			return err
		}

		retriever, proxies, err := newRetriever()
		if err != nil {
			return err
		}

		key := billtext.DeriveBillKey(target)
		outDir := filepath.Join(firstNonEmpty(textOutput, appConfig.Output.BillDir), key)
		utils.Infof("🚀 retrieving %s into %s", key, outDir)

		artifact, err := retriever.Retrieve(cmd.Context(), billtext.Request{
			URL:     target,
			OutDir:  outDir,
			Prefer:  textFormat,
			Proxies: proxies,
		})
		if err != nil {
			utils.Errorf("❌ FAILED: %v", err)
			return errRetrievalFailed
		}

		utils.Infof("✅ SUCCESS: bill text saved to %s", artifact.Path)
		return nil
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch <input_dir> <url_column>",
	Short: "Retrieve bill texts for every URL in a directory of CSV files",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputDir, column := args[0], args[1]
		if err := ValidateFormat(textFormat); err != nil {
			return err
		}

		retriever, proxies, err := newRetriever()
		if err != nil {
			return err
		}

		outDir := firstNonEmpty(textOutput, appConfig.Output.BatchDir)
		batch := core.NewBillBatch(retriever, stealth.NewDelayPolicy(appConfig.Delay.Batch), outDir, textFormat, proxies)

		summary, err := batch.Run(cmd.Context(), inputDir, column)
		if err != nil {
			return err
		}
		report(summary, outDir)
		utils.Info("✨ batch finished")
		return nil
	},
}

func newRetriever() (*billtext.Retriever, []string, error) {
	hm, err := newHeaderManager()
	if err != nil {
		return nil, nil, err
	}

	proxies := LoadProxies(useProxy, proxyFile)

	opts := billtext.Options{
		Session:           sessionOptions(),
		LinkWait:          appConfig.Fetch.LinkWait,
		ElementWait:       appConfig.Fetch.ElementWait,
		ChallengeCooldown: appConfig.Fetch.ChallengeCooldown,
		DownloadTimeout:   appConfig.Fetch.DownloadTimeout,
		DownloadPoll:      appConfig.Fetch.DownloadPoll,
	}
	return billtext.NewRetriever(opts, hm, stealth.NewDelayPolicy(appConfig.Delay.Request)), proxies, nil
}

func sessionOptions() crawlers.SessionOptions {
	return crawlers.SessionOptions{
		Headless:        appConfig.Fetch.Headless,
		BrowserBin:      appConfig.Fetch.BrowserBin,
		PageLoadTimeout: appConfig.Fetch.PageLoadTimeout,
		Guard:           crawlers.NewResourceGuard(appConfig.Fetch.MinFreeMemoryMB),
	}
}

// report prints the summary table and, when enabled, saves run_summary.json under outDir.
func report(summary *models.ScrapeRunSummary, outDir string) {
	reporter := utils.NewReporter(outDir, os.Stdout)
	reporter.PrintSummary(summary)

	if !appConfig.Output.Report {
		return
	}
	path, err := reporter.SaveSummary(summary)
	if err != nil {
		utils.Warnf("could not save run summary: %v", err)
		return
	}
	utils.Infof("📝 run summary: %s", path)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	dashboardCmd.Flags().StringVar(&state, "state", core.DefaultJurisdiction, "jurisdiction code")
	dashboardCmd.Flags().StringVar(&states, "states", "", "comma separated jurisdiction codes")
	dashboardCmd.Flags().BoolVar(&allStates, "all", false, "every state plus DC and US")
	dashboardCmd.Flags().StringVar(&snapshot, "file", "", "saved dashboard HTML to parse instead of fetching (- reads stdin)")
	dashboardCmd.Flags().StringVar(&dashOutput, "output_dir", "", "output root (default from config)")
	dashboardCmd.Flags().StringVar(&fetchMode, "mode", "", "fetch mode (static|dynamic, default from config)")

	dashboardCmd.Flags().BoolVarP(&useProxy, "use-proxy", "p", false, "fetch dashboards through the first proxy in the proxy file")
	dashboardCmd.Flags().StringVar(&proxyFile, "proxy-file", "proxies.txt", "proxy list, one per line")

	for _, cmd := range []*cobra.Command{billtextCmd, batchCmd} {
		cmd.Flags().StringVarP(&textOutput, "output", "o", "", "output root (default from config)")
		cmd.Flags().StringVarP(&textFormat, "format", "f", "", "preferred text format (html|pdf)")
		cmd.Flags().BoolVarP(&useProxy, "use-proxy", "p", false, "rotate through the proxy file, one attempt per proxy")
		cmd.Flags().StringVar(&proxyFile, "proxy-file", "proxies.txt", "proxy list, one per line")
	}
}
