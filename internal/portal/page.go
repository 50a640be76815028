// Package portal drives the GCE web portal: authentication, the current
// agreements listing, and the per-item detail view. Everything talks to the
// browser through the Page capability so the pipeline can run against a fake.
package portal

import (
	"errors"
	"time"
)

var (
	// ErrLoginRejected means the portal kept showing the login form after a
	// submit. Terminal for the run; there is no point retrying with the same
	// credentials.
	ErrLoginRejected = errors.New("portal: login rejected")

	// ErrNotFound means a searched item never showed up in the result list
	// within the bounded wait. Non-fatal; callers skip the item.
	ErrNotFound = errors.New("portal: item not found")
)

// Credentials are the three portal login fields.
type Credentials struct {
	Org          string
	Registration string
	Password     string
}

// Page is the minimal automation surface the portal flows need. The rod
// adapter implements it against a real browser; tests substitute a fake.
type Page interface {
	Goto(url string) error
	// WaitAny blocks until one of the selectors is visible and returns it.
	WaitAny(timeout time.Duration, selectors ...string) (string, error)
	WaitVisible(selector string, timeout time.Duration) error
	// WaitContains blocks until an element matching selector whose text
	// contains substr is visible.
	WaitContains(selector, substr string, timeout time.Duration) error
	Visible(selector string) bool
	Fill(selector, text string) error
	Click(selector string) error
	// ClickByText clicks the first visible element matching selector whose
	// trimmed text equals text; reports whether one was found.
	ClickByText(selector, text string) (bool, error)
	DoubleClickContains(selector, substr string) error
	PressEnter() error
	InputValue(selector string) (string, error)
	Attribute(selector, name string) (*string, error)
	// FirstRowCells returns the td texts of the first element matching
	// selector.
	FirstRowCells(selector string) ([]string, error)
	HTML() (string, error)
	Screenshot(path string) error
}
