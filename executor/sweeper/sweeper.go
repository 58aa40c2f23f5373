// Package sweeper removes job workspaces, both right after a job finishes
// and periodically for directories orphaned by a crashed worker.
package sweeper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/to404hanga/online_judge_engine/executor/workspace"
	"github.com/to404hanga/pkg404/logger"
	loggerv2 "github.com/to404hanga/pkg404/logger/v2"
)

const (
	DefaultMaxAge   = 24 * time.Hour
	DefaultInterval = time.Hour
)

type Sweeper struct {
	log      loggerv2.Logger
	manager  *workspace.Manager
	maxAge   time.Duration
	interval time.Duration
}

func New(log loggerv2.Logger, manager *workspace.Manager, maxAge, interval time.Duration) *Sweeper {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sweeper{
		log:      log,
		manager:  manager,
		maxAge:   maxAge,
		interval: interval,
	}
}

// CleanupNow removes one workspace, given either its absolute path or its
// job id. Cleaning up a workspace that no longer exists succeeds.
func (s *Sweeper) CleanupNow(idOrPath string) error {
	if idOrPath == "" {
		return nil
	}
	path := idOrPath
	if !filepath.IsAbs(idOrPath) {
		var err error
		if path, err = s.manager.Resolve(idOrPath); err != nil {
			return err
		}
	}
	return s.manager.Destroy(path)
}

// Sweep removes every entry of the workspace root last modified more than
// maxAge ago and reports how many were removed.
func (s *Sweeper) Sweep(maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		maxAge = s.maxAge
	}
	entries, err := os.ReadDir(s.manager.Root())
	if err != nil {
		return 0, fmt.Errorf("read workspace root: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	var errs []error
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			// removed concurrently
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := s.manager.Destroy(filepath.Join(s.manager.Root(), entry.Name())); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}

// Start sweeps once immediately, then every interval until ctx is done.
func (s *Sweeper) Start(ctx context.Context) {
	s.sweep(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	removed, err := s.Sweep(s.maxAge)
	if err != nil {
		s.log.ErrorContext(ctx, "sweep workspaces failed", logger.Error(err))
	}
	if removed > 0 {
		s.log.InfoContext(ctx, "swept stale workspaces", logger.Any("removed", removed), logger.String("root", s.manager.Root()))
	}
}
