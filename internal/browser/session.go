package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// ErrNoSession is returned when a page operation runs without a browser session
var ErrNoSession = errors.New("no browser session")

// ClickOutcome is the result of one attempt to activate a control
type ClickOutcome int

const (
	Clicked       ClickOutcome = iota // control found and activated
	NoMoreControl                     // control not present
	ClickBlocked                      // control present but could not be activated
)

func (o ClickOutcome) String() string {
	switch o {
	case Clicked:
		return "clicked"
	case NoMoreControl:
		return "no-more-control"
	case ClickBlocked:
		return "click-blocked"
	default:
		return fmt.Sprintf("ClickOutcome(%d)", int(o))
	}
}

// SessionConfig holds the per-page timings
type SessionConfig struct {
	NavTimeout    time.Duration // navigation and load
	ClickTimeout  time.Duration // waiting for a found control to become interactable
	SettleTimeout time.Duration // upper bound on waiting for network idle after a click
	UserAgent     string
}

func (c SessionConfig) withDefaults() SessionConfig {
	if c.NavTimeout <= 0 {
		c.NavTimeout = 30 * time.Second
	}
	if c.ClickTimeout <= 0 {
		c.ClickTimeout = 5 * time.Second
	}
	if c.SettleTimeout <= 0 {
		c.SettleTimeout = 2 * time.Second
	}
	return c
}

// requests for these resources do not delay the idle wait after a click
var settleExcluded = []proto.NetworkResourceType{
	proto.NetworkResourceTypeImage,
	proto.NetworkResourceTypeMedia,
	proto.NetworkResourceTypeFont,
}

// Session is a single page reused for every target of a batch
type Session struct {
	page *rod.Page
	cfg  SessionConfig
}

func (s *Session) live() error {
	if s == nil || s.page == nil {
		return ErrNoSession
	}
	return nil
}

// Navigate opens url in the session page and waits for the load event
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.live(); err != nil {
		return err
	}

	page := s.page.Context(ctx).Timeout(s.cfg.NavTimeout)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("failed to wait for page load: %w", err)
	}
	return nil
}

// Click looks the control up once, without waiting for it to appear, and
// clicks it. Only a dead session or a cancelled ctx produce an error; a missing
// or unclickable control is reported through the outcome.
func (s *Session) Click(ctx context.Context, selector string) (ClickOutcome, error) {
	if err := s.live(); err != nil {
		return NoMoreControl, err
	}

	page := s.page.Context(ctx)
	has, el, err := page.Has(selector)
	if err != nil {
		if ctx.Err() != nil {
			return NoMoreControl, ctx.Err()
		}
		return NoMoreControl, fmt.Errorf("failed to look up %q: %w", selector, err)
	}
	if !has {
		return NoMoreControl, nil
	}

	wait := page.Timeout(s.cfg.SettleTimeout).WaitRequestIdle(300*time.Millisecond, nil, nil, settleExcluded)

	el = el.Timeout(s.cfg.ClickTimeout)
	err = el.ScrollIntoView()
	if err == nil {
		err = el.Click(proto.InputMouseButtonLeft, 1)
	}
	if err != nil {
		if ctx.Err() != nil {
			return ClickBlocked, ctx.Err()
		}
		return classifyClickError(err), nil
	}

	wait()
	return Clicked, nil
}

// classifyClickError maps a failed activation to an outcome. A node detached
// between lookup and click means the control is gone; anything else (covered,
// invisible, not interactable, timed out) is a blocked click.
func classifyClickError(err error) ClickOutcome {
	var detached *rod.ObjectNotFoundError
	var notFound *rod.ElementNotFoundError
	if errors.As(err, &detached) || errors.As(err, &notFound) {
		return NoMoreControl
	}
	return ClickBlocked
}

// HTML returns the serialized current DOM of the session page
func (s *Session) HTML(ctx context.Context) (string, error) {
	if err := s.live(); err != nil {
		return "", err
	}

	result, err := s.page.Context(ctx).Timeout(10 * time.Second).Eval(`() => {
		return document.documentElement.outerHTML;
	}`)
	if err != nil {
		return "", fmt.Errorf("failed to get page HTML: %w", err)
	}
	return result.Value.Str(), nil
}

// Close closes the session page
func (s *Session) Close() error {
	if err := s.live(); err != nil {
		return nil
	}
	err := s.page.Close()
	s.page = nil
	return err
}
