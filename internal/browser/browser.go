package browser

import (
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Config controls how the browser process is launched
type Config struct {
	Headless  bool
	ProxyURL  string
	Bin       string // browser executable, empty to let the launcher find or download one
	NoSandbox bool
}

// Browser wraps a launched rod.Browser
type Browser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	proxyURL string
}

// New launches a browser process and connects to it
func New(cfg Config) (*Browser, error) {
	l := launcher.New().Headless(cfg.Headless)

	if cfg.ProxyURL != "" {
		l = l.Proxy(cfg.ProxyURL)
	}
	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}
	if cfg.NoSandbox {
		l = l.NoSandbox(true)
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return &Browser{
		browser:  browser,
		launcher: l,
		proxyURL: cfg.ProxyURL,
	}, nil
}

// GetProxyURL returns the proxy the browser was launched with
func (b *Browser) GetProxyURL() string {
	return b.proxyURL
}

// NewPage creates a blank page
func (b *Browser) NewPage() (*rod.Page, error) {
	page, err := b.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}
	return page, nil
}

// NewSession opens the page that a whole batch navigates in
func (b *Browser) NewSession(cfg SessionConfig) (*Session, error) {
	page, err := b.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	if cfg.UserAgent != "" {
		err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: cfg.UserAgent})
		if err != nil {
			_ = page.Close()
			return nil, fmt.Errorf("failed to set user agent: %w", err)
		}
	}

	return &Session{page: page, cfg: cfg.withDefaults()}, nil
}

// Close closes the browser and kills the launched process, even when closing
// the connection fails
func (b *Browser) Close() error {
	var err error
	if b.browser != nil {
		err = b.browser.Close()
	}
	if b.launcher != nil {
		b.launcher.Kill()
	}
	return err
}
