package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gcesync/internal"
	"gcesync/internal/classify"
	"gcesync/internal/config"
	"gcesync/internal/portal"
)

// RefreshStore is the slice of the store the per-item refresh needs.
type RefreshStore interface {
	ListItems() ([]internal.ItemRef, error)
	UpdateItemDetail(id int, detail internal.ItemDetail) (int64, error)
}

// RefreshService looks every stored item up on the portal and rewrites its
// agreement and reference-price fields from the detail view.
type RefreshService struct {
	db  RefreshStore
	cfg config.Config
}

func NewRefreshService(db RefreshStore, cfg config.Config) *RefreshService {
	return &RefreshService{db: db, cfg: cfg}
}

type RefreshResult struct {
	Checked  int
	Updated  int
	Skipped  int
	NotFound int
	Failed   int
}

func (s *RefreshService) Run(ctx context.Context) (RefreshResult, error) {
	if err := s.cfg.RequireCredentials(); err != nil {
		return RefreshResult{}, err
	}

	browser, err := portal.OpenBrowser(s.cfg.Headless, slog.Default())
	if err != nil {
		return RefreshResult{}, err
	}
	defer browser.Close()

	page, err := browser.NewPage()
	if err != nil {
		return RefreshResult{}, err
	}

	return s.RunWithPage(ctx, page)
}

// RunWithPage drives the refresh against an already-open page capability.
// Per-item failures are isolated: only a rejected login stops the loop.
func (s *RefreshService) RunWithPage(ctx context.Context, page portal.Page) (RefreshResult, error) {
	result := RefreshResult{}

	items, err := s.db.ListItems()
	if err != nil {
		return result, err
	}
	fmt.Printf("refresh: %d items to check\n", len(items))

	creds := portal.Credentials{Org: s.cfg.Org, Registration: s.cfg.Registration, Password: s.cfg.Password}
	session := portal.NewSession(page, creds, s.cfg.SearchURL)
	if s.cfg.LoginWaitSec > 0 {
		session.MarkerWait = time.Duration(s.cfg.LoginWaitSec) * time.Second
	}
	if err := session.EnsureAuthenticated(); err != nil {
		return result, err
	}

	lookup := portal.NewLookup(page, s.cfg.SearchURL)
	if s.cfg.SearchWaitSec > 0 {
		lookup.ResultWait = time.Duration(s.cfg.SearchWaitSec) * time.Second
	}
	diag := portal.NewDiagnostics(page, s.cfg.DebugDir)

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		// Malformed codes never reach the portal.
		if !classify.IsExternalCode(item.ExternalCode) {
			fmt.Printf("refresh: skipping %q: malformed code\n", item.ExternalCode)
			result.Skipped++
			continue
		}

		// A session that expired mid-run bounces back to the login view;
		// recover by authenticating again rather than failing the item.
		if !session.Valid() {
			if err := session.EnsureAuthenticated(); err != nil {
				return result, err
			}
		}

		detail, err := lookup.Fetch(item.ExternalCode)
		if errors.Is(err, portal.ErrNotFound) {
			fmt.Printf("refresh: %s not found on portal\n", item.ExternalCode)
			result.NotFound++
			continue
		}
		if err != nil {
			fmt.Printf("refresh: %s failed: %v\n", item.ExternalCode, err)
			diag.Capture(item.ExternalCode)
			result.Failed++
			continue
		}

		affected, err := s.db.UpdateItemDetail(item.ID, detail)
		if err != nil {
			fmt.Printf("refresh: store error for %s: %v\n", item.ExternalCode, err)
			result.Failed++
			continue
		}
		result.Checked++
		if affected > 0 {
			result.Updated++
		}
	}

	fmt.Printf("refresh done checked=%d updated=%d skipped=%d notFound=%d failed=%d\n",
		result.Checked, result.Updated, result.Skipped, result.NotFound, result.Failed)
	return result, nil
}
