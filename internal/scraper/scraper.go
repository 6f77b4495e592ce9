package scraper

import (
	"context"

	"shopscrape/internal/config"
	"shopscrape/internal/expander"
	"shopscrape/internal/extractor"
	"shopscrape/internal/product"
)

// Driver is the browser session a Scraper works in
type Driver interface {
	expander.Driver
	HTML(ctx context.Context) (string, error)
}

type Scraper interface {
	Name() string
	Scrape(ctx context.Context, d Driver, target string) (*Page, error)
}

// Content renders scraped products in the supported output formats
type Content interface {
	ToHTML() (string, error)
	ToText() (string, error)
	ToMarkdown() (string, error)
	ToJSON() ([]byte, error)
	ToCSV() (string, error)
}

// Page is the outcome of scraping one listing URL
type Page struct {
	URL      string
	Clicks   int
	Products []product.Product
}

// Profile describes the markup of one shop
type Profile struct {
	Name         string
	MoreSelector string // "load more" control
	Selectors    extractor.Selectors
	Targets      config.Targets // default batch when no targets file is given
}

// TargetProvider is implemented by scrapers that know their shop's listings
type TargetProvider interface {
	DefaultTargets() config.Targets
}
