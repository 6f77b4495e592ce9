package scraper

import (
	"context"
	"fmt"

	"shopscrape/internal/config"
	"shopscrape/internal/expander"
	"shopscrape/internal/extractor"

	"github.com/sirupsen/logrus"
)

// ProfileScraper scrapes any shop described by a Profile: expand the listing,
// then extract products from the final DOM.
type ProfileScraper struct {
	profile   Profile
	extractor *extractor.Extractor
	log       logrus.FieldLogger
}

// Option configures a ProfileScraper
type Option func(*ProfileScraper)

// WithLogger sets the logger passed down to the expander
func WithLogger(log logrus.FieldLogger) Option {
	return func(p *ProfileScraper) {
		p.log = log
	}
}

// NewProfileScraper creates a scraper for profile
func NewProfileScraper(profile Profile, opts ...Option) *ProfileScraper {
	p := &ProfileScraper{
		profile:   profile,
		extractor: extractor.NewExtractor(profile.Selectors),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the profile name
func (p *ProfileScraper) Name() string {
	return p.profile.Name
}

// DefaultTargets returns a copy of the profile's listing table
func (p *ProfileScraper) DefaultTargets() config.Targets {
	return append(config.Targets(nil), p.profile.Targets...)
}

// WithOptions returns a copy of the scraper with opts applied
func (p *ProfileScraper) WithOptions(opts ...Option) *ProfileScraper {
	cp := *p
	for _, opt := range opts {
		opt(&cp)
	}
	return &cp
}

// Scrape expands target in d and extracts its products
func (p *ProfileScraper) Scrape(ctx context.Context, d Driver, target string) (*Page, error) {
	res, err := expander.New(p.profile.MoreSelector, p.log).Expand(ctx, d, target)
	if err != nil {
		return nil, fmt.Errorf("failed to expand page: %w", err)
	}

	html, err := d.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read page: %w", err)
	}

	products, err := p.extractor.ExtractHTML(html)
	if err != nil {
		return nil, fmt.Errorf("failed to extract products: %w", err)
	}

	return &Page{URL: target, Clicks: res.Clicks, Products: products}, nil
}
