package maintenance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doctrina/internal/common"
	"github.com/ternarybob/doctrina/internal/interfaces"
)

// Service runs periodic housekeeping: pruning idle chat sessions and
// compacting the badger value log.
type Service struct {
	storage    interfaces.StorageManager
	cron       *cron.Cron
	schedule   string
	historyTTL time.Duration
	logger     arbor.ILogger

	mu      sync.Mutex
	running bool
}

func NewService(storage interfaces.StorageManager, cfg *common.Config, logger arbor.ILogger) (*Service, error) {
	ttl, err := time.ParseDuration(cfg.Chat.HistoryTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid history TTL %q: %w", cfg.Chat.HistoryTTL, err)
	}

	return &Service{
		storage:    storage,
		cron:       cron.New(cron.WithSeconds()),
		schedule:   cfg.Maintenance.Schedule,
		historyTTL: ttl,
		logger:     logger,
	}, nil
}

// Start schedules the maintenance job. Returns an error when the cron
// expression is invalid or the service is already running.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("maintenance already running")
	}

	if _, err := s.cron.AddFunc(s.schedule, s.runMaintenance); err != nil {
		return fmt.Errorf("failed to schedule maintenance: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("schedule", s.schedule).
		Str("history_ttl", s.historyTTL.String()).
		Msg("Maintenance scheduler started")
	return nil
}

// Stop halts the scheduler, waiting for a running job to finish
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info().Msg("Maintenance scheduler stopped")
}

func (s *Service) runMaintenance() {
	if err := s.RunOnce(context.Background()); err != nil {
		s.logger.Warn().Err(err).Msg("Maintenance run failed")
	}
}

// RunOnce executes one maintenance pass immediately
func (s *Service) RunOnce(ctx context.Context) error {
	cutoff := time.Now().Add(-s.historyTTL)
	pruned, err := s.storage.ChatStorage().DeleteIdleSince(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune idle sessions: %w", err)
	}

	if err := s.storage.RunGC(); err != nil {
		return fmt.Errorf("value log GC failed: %w", err)
	}

	s.logger.Info().
		Int("sessions_pruned", pruned).
		Msg("Maintenance pass complete")
	return nil
}
