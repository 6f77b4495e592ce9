package politeness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/temoto/robotstxt"
	"golang.org/x/time/rate"
)

// ErrDisallowed is returned when robots.txt forbids a target
var ErrDisallowed = errors.New("disallowed by robots.txt")

// Config controls the per-host gate
type Config struct {
	// Delay is the minimum interval between two navigations to one host. Zero disables it.
	Delay         time.Duration
	RespectRobots bool
	UserAgent     string
	Client        *http.Client
	Logger        logrus.FieldLogger
}

// Manager rate-limits navigations and checks robots.txt per host
type Manager struct {
	cfg Config

	mu          sync.Mutex
	limiters    map[string]*rate.Limiter
	robotsCache map[string]*robotstxt.Group
}

// NewManager creates a new Manager instance
func NewManager(cfg Config) *Manager {
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		cfg.Logger = l
	}
	return &Manager{
		cfg:         cfg,
		limiters:    make(map[string]*rate.Limiter),
		robotsCache: make(map[string]*robotstxt.Group),
	}
}

// Admit waits for the host's turn, then checks robots.txt
func (m *Manager) Admit(ctx context.Context, targetURL string) error {
	if err := m.Wait(ctx, targetURL); err != nil {
		return err
	}
	ok, err := m.Allowed(ctx, targetURL)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w", targetURL, ErrDisallowed)
	}
	return nil
}

// Wait blocks until the host limiter lets the next navigation through
func (m *Manager) Wait(ctx context.Context, targetURL string) error {
	u, err := url.Parse(targetURL)
	if err != nil {
		return fmt.Errorf("failed to parse url: %w", err)
	}

	m.mu.Lock()
	limiter, exists := m.limiters[u.Host]
	if !exists {
		limit := rate.Inf
		if m.cfg.Delay > 0 {
			limit = rate.Every(m.cfg.Delay)
		}
		// burst 1: the first navigation goes through immediately
		limiter = rate.NewLimiter(limit, 1)
		m.limiters[u.Host] = limiter
	}
	m.mu.Unlock()

	return limiter.Wait(ctx)
}

// Allowed reports whether robots.txt lets the configured user agent fetch targetURL.
// It always allows when robots checking is off. A robots.txt that cannot be fetched or
// parsed allows everything.
func (m *Manager) Allowed(ctx context.Context, targetURL string) (bool, error) {
	if !m.cfg.RespectRobots {
		return true, nil
	}

	u, err := url.Parse(targetURL)
	if err != nil {
		return false, fmt.Errorf("failed to parse url: %w", err)
	}

	m.mu.Lock()
	group, exists := m.robotsCache[u.Host]
	m.mu.Unlock()

	if !exists {
		group = m.fetchGroup(ctx, u)
		if err := ctx.Err(); err != nil {
			return false, err
		}
		m.mu.Lock()
		m.robotsCache[u.Host] = group
		m.mu.Unlock()
	}

	if group == nil {
		return true, nil
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return group.Test(path), nil
}

func (m *Manager) fetchGroup(ctx context.Context, u *url.URL) *robotstxt.Group {
	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"
	log := m.cfg.Logger.WithField("robots", robotsURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		log.WithError(err).Debug("robots.txt request failed, allowing")
		return nil
	}
	if m.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", m.cfg.UserAgent)
	}

	resp, err := m.cfg.Client.Do(req)
	if err != nil {
		log.WithError(err).Debug("robots.txt fetch failed, allowing")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.WithField("status", resp.StatusCode).Debug("no robots.txt, allowing")
		return nil
	}

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		log.WithError(err).Debug("robots.txt unparsable, allowing")
		return nil
	}
	return data.FindGroup(m.cfg.UserAgent)
}
