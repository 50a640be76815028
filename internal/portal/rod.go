package portal

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// actionTimeout bounds every single element interaction so a vanished element
// fails fast instead of blocking the run.
const actionTimeout = 10 * time.Second

// pollInterval paces the visibility polling loops.
const pollInterval = 250 * time.Millisecond

// Browser owns the Chrome process for one run.
type Browser struct {
	browser *rod.Browser
	lnch    *launcher.Launcher
	logger  *slog.Logger
}

// OpenBrowser launches a local Chrome and connects to it.
func OpenBrowser(headless bool, logger *slog.Logger) (*Browser, error) {
	if logger == nil {
		logger = slog.Default()
	}

	l := launcher.New().
		Headless(headless).
		Set("disable-blink-features", "AutomationControlled")

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("portal: launch browser: %w", err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("portal: connect browser: %w", err)
	}

	// The portal lives on an intranet host with an internal CA.
	if err := b.IgnoreCertErrors(true); err != nil {
		logger.Warn("portal: ignore cert errors failed", "error", err)
	}

	logger.Info("portal: browser launched", "headless", headless)
	return &Browser{browser: b, lnch: l, logger: logger}, nil
}

// NewPage opens a stealth tab.
func (b *Browser) NewPage() (Page, error) {
	page, err := stealth.Page(b.browser)
	if err != nil {
		return nil, fmt.Errorf("portal: create page: %w", err)
	}
	return &rodPage{page: page, logger: b.logger}, nil
}

func (b *Browser) Close() {
	if b.browser != nil {
		_ = b.browser.Close()
	}
	if b.lnch != nil {
		b.lnch.Cleanup()
	}
}

type rodPage struct {
	page   *rod.Page
	logger *slog.Logger
}

func (p *rodPage) Goto(url string) error {
	if err := p.page.Navigate(url); err != nil {
		return fmt.Errorf("portal: navigate %s: %w", url, err)
	}
	if err := p.page.Timeout(actionTimeout * 3).WaitLoad(); err != nil {
		p.logger.Warn("portal: wait load timeout", "url", url, "error", err)
	}
	return nil
}

func (p *rodPage) WaitAny(timeout time.Duration, selectors ...string) (string, error) {
	deadline := time.Now().Add(timeout)
	for {
		for _, sel := range selectors {
			if p.Visible(sel) {
				return sel, nil
			}
		}
		if time.Now().After(deadline) {
			return "", fmt.Errorf("portal: none of %v appeared within %s", selectors, timeout)
		}
		time.Sleep(pollInterval)
	}
}

func (p *rodPage) WaitVisible(selector string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if p.Visible(selector) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("portal: %s not visible within %s", selector, timeout)
		}
		time.Sleep(pollInterval)
	}
}

func (p *rodPage) WaitContains(selector, substr string, timeout time.Duration) error {
	pattern := regexp.QuoteMeta(substr)
	deadline := time.Now().Add(timeout)
	for {
		has, el, err := p.page.HasR(selector, pattern)
		if err == nil && has {
			if visible, err := el.Visible(); err == nil && visible {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("portal: no %s containing %q within %s", selector, substr, timeout)
		}
		time.Sleep(pollInterval)
	}
}

func (p *rodPage) Visible(selector string) bool {
	has, el, err := p.page.Has(selector)
	if err != nil || !has {
		return false
	}
	visible, err := el.Visible()
	return err == nil && visible
}

func (p *rodPage) Fill(selector, text string) error {
	el, err := p.element(selector)
	if err != nil {
		return err
	}
	_ = el.SelectAllText()
	if err := el.Input(text); err != nil {
		return fmt.Errorf("portal: fill %s: %w", selector, err)
	}
	return nil
}

func (p *rodPage) Click(selector string) error {
	el, err := p.element(selector)
	if err != nil {
		return err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("portal: click %s: %w", selector, err)
	}
	return nil
}

func (p *rodPage) ClickByText(selector, text string) (bool, error) {
	els, err := p.page.Timeout(actionTimeout).Elements(selector)
	if err != nil {
		return false, fmt.Errorf("portal: find %s: %w", selector, err)
	}
	for _, el := range els {
		t, err := el.Text()
		if err != nil || strings.TrimSpace(t) != text {
			continue
		}
		visible, err := el.Visible()
		if err != nil || !visible {
			continue
		}
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return false, fmt.Errorf("portal: click %s %q: %w", selector, text, err)
		}
		return true, nil
	}
	return false, nil
}

func (p *rodPage) DoubleClickContains(selector, substr string) error {
	el, err := p.page.Timeout(actionTimeout).ElementR(selector, regexp.QuoteMeta(substr))
	if err != nil {
		return fmt.Errorf("portal: find %s containing %q: %w", selector, substr, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 2); err != nil {
		return fmt.Errorf("portal: double click: %w", err)
	}
	return nil
}

func (p *rodPage) PressEnter() error {
	if err := p.page.Keyboard.Press(input.Enter); err != nil {
		return fmt.Errorf("portal: press enter: %w", err)
	}
	return nil
}

func (p *rodPage) InputValue(selector string) (string, error) {
	el, err := p.element(selector)
	if err != nil {
		return "", err
	}
	v, err := el.Property("value")
	if err != nil {
		return "", fmt.Errorf("portal: read value of %s: %w", selector, err)
	}
	return v.Str(), nil
}

func (p *rodPage) Attribute(selector, name string) (*string, error) {
	el, err := p.element(selector)
	if err != nil {
		return nil, err
	}
	v, err := el.Attribute(name)
	if err != nil {
		return nil, fmt.Errorf("portal: read attribute %s of %s: %w", name, selector, err)
	}
	return v, nil
}

func (p *rodPage) FirstRowCells(selector string) ([]string, error) {
	row, err := p.element(selector)
	if err != nil {
		return nil, err
	}
	tds, err := row.Elements("td")
	if err != nil {
		return nil, fmt.Errorf("portal: cells of %s: %w", selector, err)
	}
	out := make([]string, 0, len(tds))
	for _, td := range tds {
		t, err := td.Text()
		if err != nil {
			return nil, fmt.Errorf("portal: cell text: %w", err)
		}
		out = append(out, t)
	}
	return out, nil
}

func (p *rodPage) HTML() (string, error) {
	return p.page.HTML()
}

func (p *rodPage) Screenshot(path string) error {
	bin, err := p.page.Screenshot(false, nil)
	if err != nil {
		return fmt.Errorf("portal: screenshot: %w", err)
	}
	return os.WriteFile(path, bin, 0o644)
}

func (p *rodPage) element(selector string) (*rod.Element, error) {
	el, err := p.page.Timeout(actionTimeout).Element(selector)
	if err != nil {
		return nil, fmt.Errorf("portal: element %s: %w", selector, err)
	}
	return el, nil
}
