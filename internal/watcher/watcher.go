// Package watcher runs the refresh pipeline on a fixed interval so stored
// records track the portal's live state unattended.
package watcher

import (
	"context"
	"fmt"
	"time"

	"gcesync/internal/config"
	"gcesync/internal/pipeline"
	"gcesync/internal/storage"
)

type Service struct {
	db  *storage.DB
	cfg config.Config
}

func NewService(db *storage.DB, cfg config.Config) *Service {
	return &Service{db: db, cfg: cfg}
}

// Run loops until the context is cancelled. Each cycle is an independent
// browser session; a failed cycle is logged and the next one starts fresh.
func (s *Service) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.WatchInterval) * time.Minute
	for {
		if err := s.runCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Printf("watch cycle error: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	refresh := pipeline.NewRefreshService(s.db, s.cfg)
	result, err := refresh.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("watch cycle done checked=%d updated=%d failed=%d\n",
		result.Checked, result.Updated, result.Failed)
	return nil
}
