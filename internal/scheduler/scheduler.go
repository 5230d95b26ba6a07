// Package scheduler provides periodic playlist regeneration for m3u-filter.
// Each enabled rule set with a sync interval gets its own cron entry.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/lunnlew/m3u-filter/internal/models"
	"github.com/lunnlew/m3u-filter/internal/repository"
)

// RunFunc regenerates one rule set. The scheduler does not care what
// happens to the output; the caller decides where content goes.
type RunFunc func(ctx context.Context, ruleSetID models.ULID) error

// Scheduler manages cron entries for scheduled rule set regeneration.
type Scheduler struct {
	mu sync.Mutex

	ruleSets repository.RuleSetRepository
	run      RunFunc
	logger   *slog.Logger

	cron    *cron.Cron
	entries map[models.ULID]cron.EntryID

	ctx    context.Context
	cancel context.CancelFunc

	defaultInterval int
}

// NewScheduler creates a new scheduler.
func NewScheduler(ruleSets repository.RuleSetRepository, run RunFunc, defaultInterval int) *Scheduler {
	if defaultInterval < 1 {
		defaultInterval = 6
	}
	return &Scheduler{
		ruleSets:        ruleSets,
		run:             run,
		logger:          slog.Default(),
		cron:            cron.New(),
		entries:         make(map[models.ULID]cron.EntryID),
		defaultInterval: defaultInterval,
	}
}

// WithLogger sets a custom logger.
func (s *Scheduler) WithLogger(logger *slog.Logger) *Scheduler {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Start loads the current schedules and begins running them.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx != nil {
		return fmt.Errorf("scheduler already started")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)

	if err := s.refreshLocked(); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", slog.Int("entries", len(s.entries)))
	return nil
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx == nil {
		return
	}
	s.cancel()
	<-s.cron.Stop().Done()
	s.ctx = nil
	s.logger.Info("scheduler stopped")
}

// Refresh re-reads rule set schedules from storage, adding, removing and
// rescheduling entries as needed. Call after rule set changes.
func (s *Scheduler) Refresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked()
}

func (s *Scheduler) refreshLocked() error {
	sets, err := s.ruleSets.GetEnabled(context.Background())
	if err != nil {
		return fmt.Errorf("loading rule sets: %w", err)
	}

	seen := make(map[models.ULID]bool, len(sets))
	for _, set := range sets {
		interval := set.SyncInterval
		if interval < 1 {
			interval = s.defaultInterval
		}
		seen[set.ID] = true

		// Reschedule by replacing the entry; cron has no in-place update.
		if entryID, ok := s.entries[set.ID]; ok {
			s.cron.Remove(entryID)
		}

		id := set.ID
		name := set.Name
		entryID, err := s.cron.AddFunc(fmt.Sprintf("@every %dh", interval), func() {
			s.runOne(id, name)
		})
		if err != nil {
			return fmt.Errorf("scheduling rule set %q: %w", name, err)
		}
		s.entries[set.ID] = entryID
	}

	for id, entryID := range s.entries {
		if !seen[id] {
			s.cron.Remove(entryID)
			delete(s.entries, id)
		}
	}
	return nil
}

// runOne executes one scheduled regeneration.
func (s *Scheduler) runOne(ruleSetID models.ULID, name string) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}

	logger := s.logger.With(
		slog.String("rule_set_id", ruleSetID.String()),
		slog.String("rule_set_name", name),
	)
	logger.Info("scheduled regeneration starting")

	if err := s.run(ctx, ruleSetID); err != nil {
		logger.Error("scheduled regeneration failed", slog.String("error", err.Error()))
		return
	}
	logger.Info("scheduled regeneration completed")
}

// Entries returns the number of scheduled rule sets (for testing).
func (s *Scheduler) Entries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
