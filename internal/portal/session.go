package portal

import (
	"fmt"
	"time"
)

// Portal selectors. The login inputs need the placeholder qualifier: the GCE
// login screen reuses the same ids across its login variants.
const (
	loginMarker  = "#login"
	searchMarker = "#textoPesquisaItem"

	orgInput          = `input#login[placeholder="Organização"]`
	registrationInput = `input#matricula[placeholder="Matrícula"]`
	passwordInput     = `input#password[placeholder="Senha"]`
	loginButton       = "#btnLogin"
)

// State tracks where the session is in its lifecycle.
type State int

const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
)

// Session owns authentication against the portal. It is the only component
// that submits the login form, and it must not be used concurrently.
type Session struct {
	page     Page
	creds    Credentials
	entryURL string

	// MarkerWait bounds the wait for either the login form or an
	// authenticated-only marker after navigation.
	MarkerWait time.Duration
	// FieldWait bounds the wait for the password input.
	FieldWait time.Duration
	// SubmitSettle is a fixed delay after submitting the form; the server-side
	// redirect exposes no observable condition to wait on.
	SubmitSettle time.Duration

	state State
}

func NewSession(page Page, creds Credentials, entryURL string) *Session {
	return &Session{
		page:         page,
		creds:        creds,
		entryURL:     entryURL,
		MarkerWait:   30 * time.Second,
		FieldWait:    10 * time.Second,
		SubmitSettle: 5 * time.Second,
	}
}

func (s *Session) State() State { return s.state }

// Valid reports whether the session still looks authenticated. Navigators
// query this between operations; when it turns false they call
// EnsureAuthenticated again instead of failing.
func (s *Session) Valid() bool {
	return s.state == Authenticated && !s.page.Visible(loginMarker)
}

// EnsureAuthenticated navigates to the entry URL and logs in if the portal
// asks for it. Seeing the authenticated-only marker straight away means the
// session was reused and no form is submitted.
func (s *Session) EnsureAuthenticated() error {
	s.state = Authenticating

	if err := s.page.Goto(s.entryURL); err != nil {
		s.state = Unauthenticated
		return err
	}

	marker, err := s.page.WaitAny(s.MarkerWait, loginMarker, searchMarker)
	if err != nil {
		s.state = Unauthenticated
		return fmt.Errorf("portal: page never settled: %w", err)
	}

	if marker == loginMarker {
		if err := s.login(); err != nil {
			s.state = Unauthenticated
			return err
		}
	}

	s.state = Authenticated
	return nil
}

func (s *Session) login() error {
	if err := s.page.Fill(orgInput, s.creds.Org); err != nil {
		return err
	}
	if err := s.page.Fill(registrationInput, s.creds.Registration); err != nil {
		return err
	}
	if err := s.page.WaitVisible(passwordInput, s.FieldWait); err != nil {
		return fmt.Errorf("portal: password field: %w", err)
	}
	if err := s.page.Fill(passwordInput, s.creds.Password); err != nil {
		return err
	}
	if err := s.page.Click(loginButton); err != nil {
		return err
	}

	time.Sleep(s.SubmitSettle)

	if s.page.Visible(loginMarker) {
		return ErrLoginRejected
	}
	return nil
}
