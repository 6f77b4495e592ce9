package expander

import (
	"context"
	"fmt"
	"io"

	"shopscrape/internal/browser"

	"github.com/sirupsen/logrus"
)

// Driver is the part of a browser session the expander needs
type Driver interface {
	Navigate(ctx context.Context, url string) error
	Click(ctx context.Context, selector string) (browser.ClickOutcome, error)
}

// Result describes how a page was expanded
type Result struct {
	Clicks int                 // successful activations
	Stop   browser.ClickOutcome // outcome that ended the loop
}

// Expander keeps clicking a "load more" control until it is gone or refuses clicks
type Expander struct {
	selector string
	log      logrus.FieldLogger
}

// New creates an Expander for the control matched by selector
func New(selector string, log logrus.FieldLogger) *Expander {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Expander{selector: selector, log: log}
}

// Expand navigates to url and activates the control until an attempt does not
// succeed. There is no iteration bound; only ctx stops a page that never runs out.
func (e *Expander) Expand(ctx context.Context, d Driver, url string) (Result, error) {
	if d == nil {
		return Result{}, browser.ErrNoSession
	}

	if err := d.Navigate(ctx, url); err != nil {
		return Result{}, fmt.Errorf("failed to open %s: %w", url, err)
	}

	var res Result
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		outcome, err := d.Click(ctx, e.selector)
		if err != nil {
			return res, fmt.Errorf("failed to activate %q after %d clicks: %w", e.selector, res.Clicks, err)
		}
		if outcome != browser.Clicked {
			res.Stop = outcome
			e.log.WithFields(logrus.Fields{
				"url":    url,
				"clicks": res.Clicks,
				"stop":   outcome.String(),
			}).Debug("pagination complete")
			return res, nil
		}

		res.Clicks++
		e.log.WithFields(logrus.Fields{"url": url, "clicks": res.Clicks}).Debug("load more")
	}
}
