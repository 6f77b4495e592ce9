package batch

import (
	"context"
	"fmt"
	"io"
	"time"

	"shopscrape/internal/browser"
	"shopscrape/internal/config"
	"shopscrape/internal/product"
	"shopscrape/internal/scraper"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Sink persists the products of one finished target
type Sink interface {
	Save(file string, products []product.Product) error
}

// Gate decides when, and whether, a target may be opened
type Gate interface {
	Admit(ctx context.Context, url string) error
}

// Recorder receives per-target metrics
type Recorder interface {
	RecordPage(file string, clicks, products int, duration time.Duration)
	RecordFailure(duration time.Duration)
}

// Runner scrapes targets one after another in a single browser session
type Runner struct {
	scraper  scraper.Scraper
	sink     Sink
	gate     Gate
	recorder Recorder
	log      logrus.FieldLogger
}

// Option configures a Runner
type Option func(*Runner)

// WithSink saves each entry as soon as it is scraped
func WithSink(s Sink) Option {
	return func(r *Runner) { r.sink = s }
}

// WithGate sets the politeness gate consulted before each navigation
func WithGate(g Gate) Option {
	return func(r *Runner) { r.gate = g }
}

// WithRecorder sets the metrics recorder
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) { r.recorder = rec }
}

// WithLogger sets the run logger
func WithLogger(log logrus.FieldLogger) Option {
	return func(r *Runner) { r.log = log }
}

// NewRunner creates a new Runner instance
func NewRunner(s scraper.Scraper, opts ...Option) *Runner {
	r := &Runner{scraper: s}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		r.log = l
	}
	return r
}

// Run processes targets in order and returns the products of each file.
// It stops at the first failure; entries saved before it stay saved.
func (r *Runner) Run(ctx context.Context, d scraper.Driver, targets config.Targets) (map[string][]product.Product, error) {
	if d == nil {
		return nil, browser.ErrNoSession
	}

	log := r.log.WithField("run_id", uuid.NewString())
	log.WithField("targets", len(targets)).Info("batch started")

	results := make(map[string][]product.Product, len(targets))
	for i, target := range targets {
		entryLog := log.WithFields(logrus.Fields{
			"url":  target.URL,
			"file": target.File,
		})

		start := time.Now()
		page, err := r.runOne(ctx, d, target)
		if err != nil {
			if r.recorder != nil {
				r.recorder.RecordFailure(time.Since(start))
			}
			entryLog.WithError(err).Error("target failed")
			return results, fmt.Errorf("target %d (%s -> %s): %w", i, target.URL, target.File, err)
		}

		results[target.File] = page.Products
		if r.recorder != nil {
			r.recorder.RecordPage(target.File, page.Clicks, len(page.Products), time.Since(start))
		}
		entryLog.WithFields(logrus.Fields{
			"clicks":   page.Clicks,
			"products": len(page.Products),
		}).Info("target done")
	}

	log.WithField("files", len(results)).Info("batch finished")
	return results, nil
}

func (r *Runner) runOne(ctx context.Context, d scraper.Driver, target config.Target) (*scraper.Page, error) {
	if r.gate != nil {
		if err := r.gate.Admit(ctx, target.URL); err != nil {
			return nil, fmt.Errorf("failed to admit target: %w", err)
		}
	}

	page, err := r.scraper.Scrape(ctx, d, target.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to scrape: %w", err)
	}

	if r.sink != nil {
		if err := r.sink.Save(target.File, page.Products); err != nil {
			return nil, fmt.Errorf("failed to save: %w", err)
		}
	}
	return page, nil
}
