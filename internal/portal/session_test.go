package portal

import (
	"errors"
	"testing"
)

func testCreds() Credentials {
	return Credentials{Org: "SES", Registration: "12345", Password: "secret"}
}

func TestSessionReuse(t *testing.T) {
	page := newFakePage()
	page.visible[searchMarker] = true

	s := NewSession(page, testCreds(), "https://portal/entry")
	s.SubmitSettle = 0

	if err := s.EnsureAuthenticated(); err != nil {
		t.Fatal(err)
	}
	if s.State() != Authenticated {
		t.Fatalf("state = %v", s.State())
	}
	if len(page.filled) != 0 {
		t.Fatalf("login form touched on an authenticated session: %v", page.filled)
	}
	if !s.Valid() {
		t.Fatal("session should be valid")
	}
}

func TestSessionLogin(t *testing.T) {
	page := newFakePage()
	page.visible[loginMarker] = true
	page.visible[passwordInput] = true
	page.onClick = func(p *fakePage, selector string) {
		if selector == loginButton {
			p.visible[loginMarker] = false
		}
	}

	s := NewSession(page, testCreds(), "https://portal/entry")
	s.SubmitSettle = 0

	if err := s.EnsureAuthenticated(); err != nil {
		t.Fatal(err)
	}
	if page.filled[orgInput] != "SES" || page.filled[registrationInput] != "12345" || page.filled[passwordInput] != "secret" {
		t.Fatalf("credentials not filled: %v", page.filled)
	}
	if s.State() != Authenticated || !s.Valid() {
		t.Fatal("expected authenticated session")
	}
}

func TestSessionLoginRejected(t *testing.T) {
	page := newFakePage()
	page.visible[loginMarker] = true
	page.visible[passwordInput] = true
	// No onClick: the login form stays up after submit.

	s := NewSession(page, testCreds(), "https://portal/entry")
	s.SubmitSettle = 0

	err := s.EnsureAuthenticated()
	if !errors.Is(err, ErrLoginRejected) {
		t.Fatalf("err = %v, want ErrLoginRejected", err)
	}
	if s.State() != Unauthenticated || s.Valid() {
		t.Fatal("rejected session must not be valid")
	}
}

func TestSessionExpiryDetection(t *testing.T) {
	page := newFakePage()
	page.visible[searchMarker] = true

	s := NewSession(page, testCreds(), "https://portal/entry")
	if err := s.EnsureAuthenticated(); err != nil {
		t.Fatal(err)
	}

	// The portal bounced back to the login view.
	page.visible[loginMarker] = true
	if s.Valid() {
		t.Fatal("session with a visible login form must read as expired")
	}
}
