// Package pipeline composes session, navigation, classification and the
// store into the two run modes: the bulk listing sweep and the per-item
// refresh.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gcesync/internal/classify"
	"gcesync/internal/config"
	"gcesync/internal/portal"
)

// SweepStore is the slice of the store the listing sweep writes through.
type SweepStore interface {
	UpdateAgreementByCode(code, ata, validade string, valor *float64) (int64, error)
}

// SweepService paginates the current-agreements listing and reconciles every
// candidate row into the store by external code.
type SweepService struct {
	db  SweepStore
	cfg config.Config
}

func NewSweepService(db SweepStore, cfg config.Config) *SweepService {
	return &SweepService{db: db, cfg: cfg}
}

type SweepResult struct {
	Pages   int
	Rows    int
	Updated int
	Skipped int
	Failed  int
}

// Run opens a browser session for the whole sweep and tears it down on every
// exit path. Missing credentials abort before any session is opened.
func (s *SweepService) Run(ctx context.Context) (SweepResult, error) {
	if err := s.cfg.RequireCredentials(); err != nil {
		return SweepResult{}, err
	}

	browser, err := portal.OpenBrowser(s.cfg.Headless, slog.Default())
	if err != nil {
		return SweepResult{}, err
	}
	defer browser.Close()

	page, err := browser.NewPage()
	if err != nil {
		return SweepResult{}, err
	}

	return s.RunWithPage(ctx, page)
}

// RunWithPage drives the sweep against an already-open page capability.
func (s *SweepService) RunWithPage(ctx context.Context, page portal.Page) (SweepResult, error) {
	result := SweepResult{}

	session := portal.NewSession(page, s.credentials(), s.cfg.ListingURL)
	if s.cfg.LoginWaitSec > 0 {
		session.MarkerWait = time.Duration(s.cfg.LoginWaitSec) * time.Second
	}
	if err := session.EnsureAuthenticated(); err != nil {
		return result, err
	}

	listing := portal.NewListing(page, s.cfg.ListingURL, s.cfg.SweepMaxPages)
	diag := portal.NewDiagnostics(page, s.cfg.DebugDir)
	if err := listing.Open(); err != nil {
		return result, err
	}

	for pageNo := 1; ; pageNo++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		rows, err := listing.ReadRows()
		if err != nil {
			// A broken page stops the pagination, not the run: everything
			// reconciled so far is already committed.
			fmt.Printf("sweep: page %d failed: %v\n", pageNo, err)
			diag.Capture(fmt.Sprintf("page_%d", pageNo))
			break
		}
		result.Pages++
		fmt.Printf("sweep: page %d rows=%d\n", pageNo, len(rows))

		for _, cells := range rows {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			s.reconcileRow(cells, &result)
		}

		advanced, err := listing.NextPage(pageNo)
		if err != nil {
			fmt.Printf("sweep: pagination failed after page %d: %v\n", pageNo, err)
			break
		}
		if !advanced {
			break
		}
	}

	fmt.Printf("sweep done pages=%d rows=%d updated=%d skipped=%d failed=%d\n",
		result.Pages, result.Rows, result.Updated, result.Skipped, result.Failed)
	return result, nil
}

func (s *SweepService) reconcileRow(cells []string, result *SweepResult) {
	rec := classify.Classify(cells)
	if rec.Identifier == "" {
		// Not a candidate record; headers and filler rows land here.
		return
	}
	result.Rows++

	// All-or-nothing gate: without both an agreement reference and a parsable
	// validity date the row is skipped entirely rather than half-written.
	if rec.Tag == nil || rec.Validity() == nil {
		result.Skipped++
		return
	}

	affected, err := s.db.UpdateAgreementByCode(rec.Identifier, *rec.Tag, *rec.Validity(), rec.Price())
	if err != nil {
		fmt.Printf("sweep: store error for %s: %v\n", rec.Identifier, err)
		result.Failed++
		return
	}
	if affected > 0 {
		result.Updated++
	}
}

func (s *SweepService) credentials() portal.Credentials {
	return portal.Credentials{
		Org:          s.cfg.Org,
		Registration: s.cfg.Registration,
		Password:     s.cfg.Password,
	}
}
