package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

// DefaultUserAgent is sent by the browser and by the robots.txt fetcher
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Config holds the run settings. Every field maps to a SHOPSCRAPE_* variable
// and provides the default of the matching command-line flag.
type Config struct {
	OutputDir string `envconfig:"OUTPUT_DIR" default:"."`
	Format    string `envconfig:"FORMAT" default:"auto"`
	Site      string `envconfig:"SITE" default:"webscraper"`

	ProxyURL   string `envconfig:"PROXY"`
	BrowserBin string `envconfig:"BROWSER_BIN"`
	ShowUI     bool   `envconfig:"SHOW_UI" default:"false"`
	NoSandbox  bool   `envconfig:"NO_SANDBOX" default:"false"`
	UserAgent  string `envconfig:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"`

	NavTimeout    time.Duration `envconfig:"NAV_TIMEOUT" default:"30s"`
	ClickTimeout  time.Duration `envconfig:"CLICK_TIMEOUT" default:"5s"`
	SettleTimeout time.Duration `envconfig:"SETTLE_TIMEOUT" default:"2s"`

	// Delay is the minimum time between two navigations to the same host.
	Delay         time.Duration `envconfig:"DELAY" default:"0s"`
	RespectRobots bool          `envconfig:"RESPECT_ROBOTS" default:"false"`

	MetricsFile string `envconfig:"METRICS_FILE"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads an optional .env file, then the SHOPSCRAPE_* environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// a missing .env is the normal case
		if _, statErr := os.Stat(".env"); statErr == nil {
			logrus.Warnf(".env file found but could not be loaded: %v", err)
		}
	}

	var cfg Config
	if err := envconfig.Process("shopscrape", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
