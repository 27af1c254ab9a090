package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/report"
)

// TempGrace is how long a temp_* part may live before it is treated as
// left behind by an interrupted generation.
const TempGrace = 30 * time.Minute

// FileRemover deletes one file
type FileRemover interface {
	Remove(fullPath string) error
}

// SweepStats summarises one sweep
type SweepStats struct {
	Removed int
	Kept    int
	Failed  int
}

// ReportSweeper periodically deletes generated reports older than the
// retention window, and orphaned temporary parts older than TempGrace.
// A zero retention keeps finished reports forever.
type ReportSweeper struct {
	dir       string
	schedule  string
	retention time.Duration
	remover   FileRemover
	now       func() time.Time
	logger    *zap.Logger

	mu        sync.Mutex
	cron      *cron.Cron
	isRunning bool
}

// NewReportSweeper creates a sweeper for dir running on a cron schedule
// (seconds field optional).
func NewReportSweeper(dir, schedule string, retention time.Duration, remover FileRemover, logger *zap.Logger) *ReportSweeper {
	return &ReportSweeper{
		dir:       dir,
		schedule:  schedule,
		retention: retention,
		remover:   remover,
		now:       time.Now,
		logger:    logger,
	}
}

// Name implements Worker
func (s *ReportSweeper) Name() string { return "report-sweeper" }

// Start schedules the sweep and runs one immediately
func (s *ReportSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("report sweeper is already running")
	}

	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := cron.New(cron.WithParser(parser), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(s.schedule, func() { s.sweepLogged() }); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}

	s.sweepLogged()
	c.Start()
	s.cron = c
	s.isRunning = true

	s.logger.Info("ReportSweeper started",
		zap.String("dir", s.dir),
		zap.String("schedule", s.schedule),
		zap.Duration("retention", s.retention))
	return nil
}

// Stop waits for a running sweep to finish and halts the schedule
func (s *ReportSweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	<-s.cron.Stop().Done()
	s.isRunning = false
}

// Sweep removes expired files once
func (s *ReportSweeper) Sweep() (SweepStats, error) {
	var stats SweepStats

	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return stats, nil
	}
	if err != nil {
		return stats, fmt.Errorf("failed to list reports: %w", err)
	}

	now := s.now()
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}

		if !s.expired(e.Name(), now.Sub(info.ModTime())) {
			stats.Kept++
			continue
		}

		path := filepath.Join(s.dir, e.Name())
		if err := s.remover.Remove(path); err != nil {
			stats.Failed++
			s.logger.Warn("Failed to remove expired report",
				zap.String("path", path),
				zap.Error(err))
			continue
		}
		stats.Removed++
		s.logger.Debug("Removed expired report", zap.String("path", path))
	}
	return stats, nil
}

func (s *ReportSweeper) expired(name string, age time.Duration) bool {
	if report.IsTempArtifact(name) {
		return age > TempGrace
	}
	return s.retention > 0 && age > s.retention
}

func (s *ReportSweeper) sweepLogged() {
	stats, err := s.Sweep()
	if err != nil {
		s.logger.Error("Report sweep failed", zap.Error(err))
		return
	}
	s.logger.Info("Report sweep finished",
		zap.Int("removed", stats.Removed),
		zap.Int("kept", stats.Kept),
		zap.Int("failed", stats.Failed))
}
