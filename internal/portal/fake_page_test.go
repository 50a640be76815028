package portal

import (
	"fmt"
	"strings"
	"time"
)

// fakePage is a map-driven Page for tests. It never sleeps: waits resolve
// immediately from the configured state.
type fakePage struct {
	visible map[string]bool
	values  map[string]string   // "value" property by selector
	attrs   map[string]string   // selector + "|" + attribute name
	rows    map[string][]string // FirstRowCells by selector
	entries map[string][]string // element texts by selector
	html    string

	filled map[string]string
	clicks []string
	gotos  []string
	enters int

	onClick func(p *fakePage, selector string)
	onGoto  func(p *fakePage, url string)
}

func newFakePage() *fakePage {
	return &fakePage{
		visible: map[string]bool{},
		values:  map[string]string{},
		attrs:   map[string]string{},
		rows:    map[string][]string{},
		entries: map[string][]string{},
		filled:  map[string]string{},
	}
}

func (p *fakePage) Goto(url string) error {
	p.gotos = append(p.gotos, url)
	if p.onGoto != nil {
		p.onGoto(p, url)
	}
	return nil
}

func (p *fakePage) WaitAny(_ time.Duration, selectors ...string) (string, error) {
	for _, sel := range selectors {
		if p.visible[sel] {
			return sel, nil
		}
	}
	return "", fmt.Errorf("fake: none of %v visible", selectors)
}

func (p *fakePage) WaitVisible(selector string, _ time.Duration) error {
	if p.visible[selector] {
		return nil
	}
	return fmt.Errorf("fake: %s not visible", selector)
}

func (p *fakePage) WaitContains(selector, substr string, _ time.Duration) error {
	for _, text := range p.entries[selector] {
		if strings.Contains(text, substr) {
			return nil
		}
	}
	return fmt.Errorf("fake: no %s containing %q", selector, substr)
}

func (p *fakePage) Visible(selector string) bool {
	return p.visible[selector]
}

func (p *fakePage) Fill(selector, text string) error {
	p.filled[selector] = text
	return nil
}

func (p *fakePage) Click(selector string) error {
	p.clicks = append(p.clicks, selector)
	if p.onClick != nil {
		p.onClick(p, selector)
	}
	return nil
}

func (p *fakePage) ClickByText(selector, text string) (bool, error) {
	for _, candidate := range p.entries[selector] {
		if strings.TrimSpace(candidate) == text {
			p.clicks = append(p.clicks, selector+":"+text)
			if p.onClick != nil {
				p.onClick(p, selector)
			}
			return true, nil
		}
	}
	return false, nil
}

func (p *fakePage) DoubleClickContains(selector, substr string) error {
	if err := p.WaitContains(selector, substr, 0); err != nil {
		return err
	}
	p.clicks = append(p.clicks, "dblclick:"+selector)
	return nil
}

func (p *fakePage) PressEnter() error {
	p.enters++
	return nil
}

func (p *fakePage) InputValue(selector string) (string, error) {
	return p.values[selector], nil
}

func (p *fakePage) Attribute(selector, name string) (*string, error) {
	v, ok := p.attrs[selector+"|"+name]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (p *fakePage) FirstRowCells(selector string) ([]string, error) {
	return p.rows[selector], nil
}

func (p *fakePage) HTML() (string, error) {
	return p.html, nil
}

func (p *fakePage) Screenshot(string) error {
	return nil
}
