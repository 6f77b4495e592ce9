package webscraper

import (
	"shopscrape/internal/config"
	"shopscrape/internal/extractor"
	"shopscrape/internal/scraper"
)

const baseURL = "https://webscraper.io/test-sites/e-commerce/more"

// MoreSelector matches the "More" button of the webscraper.io test shop
const MoreSelector = ".ecomerce-items-scroll-more"

func init() {
	scraper.Register(scraper.NewProfileScraper(Profile()))
}

// Profile describes the webscraper.io e-commerce test site with a "More" button
func Profile() scraper.Profile {
	return scraper.Profile{
		Name:         "webscraper",
		MoreSelector: MoreSelector,
		Selectors:    extractor.DefaultSelectors(),
		Targets:      DefaultTargets(),
	}
}

// DefaultTargets lists every category of the test shop
func DefaultTargets() config.Targets {
	return config.Targets{
		{URL: baseURL + "/", File: "home.csv"},
		{URL: baseURL + "/computers", File: "computers.csv"},
		{URL: baseURL + "/computers/laptops", File: "laptops.csv"},
		{URL: baseURL + "/computers/tablets", File: "tablets.csv"},
		{URL: baseURL + "/phones", File: "phones.csv"},
		{URL: baseURL + "/phones/touch", File: "touch.csv"},
	}
}
