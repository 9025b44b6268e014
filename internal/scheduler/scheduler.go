package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/majorossy/phreshfoods.com-sub003/internal/service"
)

const syncJobName = "sheet_sync_job"

// Refresher is satisfied by service.DirectoryService.
type Refresher interface {
	Refresh(ctx context.Context) (service.RefreshSummary, error)
}

// Syncer periodically pulls the upstream sheet into the store.
type Syncer struct {
	refresher Refresher
	interval  time.Duration
	logger    *log.Logger
	scheduler gocron.Scheduler
}

// NewSyncer creates a syncer running every interval. A zero interval disables
// the periodic job; Start and Shutdown then do nothing.
func NewSyncer(refresher Refresher, interval time.Duration, logger *log.Logger) (*Syncer, error) {
	if refresher == nil {
		return nil, errors.New("refresher must not be nil")
	}
	if interval < 0 {
		return nil, fmt.Errorf("invalid sync interval: %s", interval)
	}
	if logger == nil {
		logger = log.Default()
	}

	s := &Syncer{refresher: refresher, interval: interval, logger: logger}
	if interval == 0 {
		return s, nil
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	s.scheduler = scheduler
	return s, nil
}

// Start registers the sync job, runs it once immediately and starts the scheduler.
func (s *Syncer) Start(ctx context.Context) error {
	if s.scheduler == nil {
		s.logger.Printf("sheet sync disabled interval=%s", s.interval)
		return nil
	}

	_, err := s.scheduler.NewJob(gocron.DurationJob(s.interval),
		gocron.NewTask(s.sync),
		gocron.WithContext(ctx),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithName(syncJobName),
	)
	if err != nil {
		return fmt.Errorf("failed to create sheet sync job: %w", err)
	}

	s.scheduler.Start()
	s.logger.Printf("sheet sync started interval=%s", s.interval)
	return nil
}

// Shutdown stops the scheduler and waits for a running sync to finish.
func (s *Syncer) Shutdown() error {
	if s.scheduler == nil {
		return nil
	}
	return s.scheduler.Shutdown()
}

func (s *Syncer) sync(ctx context.Context) {
	start := time.Now()
	summary, err := s.refresher.Refresh(ctx)
	if err != nil {
		s.logger.Printf("sheet sync error=%v", err)
		return
	}
	if summary.SourceError != "" {
		s.logger.Printf("sheet sync kept previous snapshot source_error=%q", summary.SourceError)
		return
	}
	s.logger.Printf("sheet sync fetched=%d stored=%d removed=%d latency=%s",
		summary.Fetched, summary.Stored, summary.Removed, time.Since(start))
}
