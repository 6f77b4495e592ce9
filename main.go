package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"shopscrape/internal/batch"
	"shopscrape/internal/browser"
	"shopscrape/internal/config"
	"shopscrape/internal/formatter"
	"shopscrape/internal/metrics"
	"shopscrape/internal/output"
	"shopscrape/internal/politeness"
	"shopscrape/internal/scraper"
	_ "shopscrape/internal/sites/webscraper"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	outputDir     string
	outputFormat  string
	site          string
	showUI        bool
	proxyURL      string
	browserBin    string
	noSandbox     bool
	timeout       time.Duration
	clickTimeout  time.Duration
	settleTimeout time.Duration
	delay         time.Duration
	respectRobots bool
	userAgent     string
	metricsFile   string
	logLevel      string
	listSites     bool
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	var rootCmd = &cobra.Command{
		Use:     "shopscrape [TARGETS_FILE]",
		Short:   "Scrape product listings that paginate with a \"load more\" button",
		Version: version,
		Long: `shopscrape opens each listing page in a headless browser, clicks the
"load more" control until no more products appear, then extracts every product
(title, description, price, rating, review count) into one file per listing.

Without TARGETS_FILE the built-in listings of the selected site are scraped.
TARGETS_FILE is YAML, either a url: file mapping or a "targets" list.`,
		Example: `  # Scrape the webscraper.io test shop into ./out
  shopscrape -o out

  # Scrape your own listing table, one request per host every 2 seconds
  shopscrape --delay 2s targets.yaml

  # Write JSON instead of CSV and keep metrics for node-exporter
  shopscrape -f json --metrics-file /var/lib/node_exporter/shopscrape.prom`,
		Args:         cobra.MaximumNArgs(1),
		RunE:         run,
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "o", cfg.OutputDir, "Directory the output files are written to")
	rootCmd.Flags().StringVarP(&outputFormat, "format", "f", cfg.Format, "Output format ("+strings.Join(formatter.Formats, ", ")+"), auto infers it from each file extension")
	rootCmd.Flags().StringVar(&site, "site", cfg.Site, "Site profile (see --list-sites)")
	rootCmd.Flags().BoolVar(&showUI, "showui", cfg.ShowUI, "Show browser UI (disable headless mode)")
	rootCmd.Flags().StringVarP(&proxyURL, "proxy", "p", cfg.ProxyURL, "Proxy URL (e.g. http://127.0.0.1:7890), defaults to SHOPSCRAPE_PROXY env var")
	rootCmd.Flags().StringVar(&browserBin, "browser-bin", cfg.BrowserBin, "Chromium binary to use instead of the downloaded one")
	rootCmd.Flags().BoolVar(&noSandbox, "no-sandbox", cfg.NoSandbox, "Disable the Chromium sandbox (containers)")
	rootCmd.Flags().DurationVarP(&timeout, "timeout", "t", cfg.NavTimeout, "Page load timeout")
	rootCmd.Flags().DurationVar(&clickTimeout, "click-timeout", cfg.ClickTimeout, "Time a load-more control has to become clickable")
	rootCmd.Flags().DurationVar(&settleTimeout, "settle-timeout", cfg.SettleTimeout, "Maximum wait for the network to go idle after a click")
	rootCmd.Flags().DurationVar(&delay, "delay", cfg.Delay, "Minimum delay between two pages of the same host")
	rootCmd.Flags().BoolVar(&respectRobots, "respect-robots", cfg.RespectRobots, "Skip the batch when robots.txt disallows a listing")
	rootCmd.Flags().StringVar(&userAgent, "user-agent", cfg.UserAgent, "User agent of the browser and the robots.txt check")
	rootCmd.Flags().StringVar(&metricsFile, "metrics-file", cfg.MetricsFile, "Write Prometheus metrics to this file when the run ends")
	rootCmd.Flags().StringVar(&logLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&listSites, "list-sites", false, "List the available site profiles and exit")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if listSites {
		for _, name := range scraper.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	}

	log, err := newLogger(logLevel)
	if err != nil {
		return err
	}

	if !formatter.Valid(outputFormat) {
		return fmt.Errorf("invalid output format: %s", outputFormat)
	}

	s, ok := scraper.Get(site)
	if !ok {
		return fmt.Errorf("unknown site: %s", site)
	}
	if ps, ok := s.(*scraper.ProfileScraper); ok {
		s = ps.WithOptions(scraper.WithLogger(log))
	}

	targets, err := loadTargets(s, args)
	if err != nil {
		return err
	}
	if err := targets.Validate(); err != nil {
		return fmt.Errorf("invalid targets: %w", err)
	}
	for _, u := range targets.DuplicateURLs() {
		log.WithField("url", u).Warn("url listed more than once, it will be scraped for each file")
	}

	recorder := metrics.NewRecorder()
	if metricsFile != "" {
		defer func() {
			if err := recorder.WriteTextfile(metricsFile); err != nil {
				log.WithError(err).Error("failed to write metrics")
			}
		}()
	}

	b, err := browser.New(browser.Config{
		ProxyURL:  proxyURL,
		Headless:  !showUI,
		Bin:       browserBin,
		NoSandbox: noSandbox,
	})
	if err != nil {
		return fmt.Errorf("failed to create browser: %w", err)
	}
	defer b.Close()
	log.WithFields(logrus.Fields{"headless": !showUI, "proxy": b.GetProxyURL()}).Debug("browser started")

	session, err := b.NewSession(browser.SessionConfig{
		NavTimeout:    timeout,
		ClickTimeout:  clickTimeout,
		SettleTimeout: settleTimeout,
		UserAgent:     userAgent,
	})
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	defer session.Close()

	gate := politeness.NewManager(politeness.Config{
		Delay:         delay,
		RespectRobots: respectRobots,
		UserAgent:     userAgent,
		Logger:        log,
	})

	runner := batch.NewRunner(s,
		batch.WithSink(&output.FileSink{Dir: outputDir, Format: outputFormat}),
		batch.WithGate(gate),
		batch.WithRecorder(recorder),
		batch.WithLogger(log),
	)

	results, err := runner.Run(cmd.Context(), session, targets)
	if err != nil {
		return err
	}

	total := 0
	for _, products := range results {
		total += len(products)
	}
	log.WithFields(logrus.Fields{
		"files":    len(results),
		"products": total,
		"dir":      outputDir,
	}).Info("all listings written")
	return nil
}

func newLogger(level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetLevel(lvl)
	return log, nil
}

// loadTargets reads the targets file when given, otherwise asks the site for its listings
func loadTargets(s scraper.Scraper, args []string) (config.Targets, error) {
	if len(args) == 1 {
		targets, err := config.LoadTargets(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to load targets: %w", err)
		}
		return targets, nil
	}

	tp, ok := s.(scraper.TargetProvider)
	if !ok {
		return nil, fmt.Errorf("site %s has no default listings, pass a targets file", s.Name())
	}
	return tp.DefaultTargets(), nil
}
