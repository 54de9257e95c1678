package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"eldrix/admin/internal/metrics"
	"eldrix/admin/internal/models"
)

type StatusCounter interface {
	CountByStatus(ctx context.Context) (map[models.SessionStatus]int, error)
}

// Scheduler runs periodic housekeeping. Today that is refreshing the
// per-status session gauge.
type Scheduler struct {
	cron     *cron.Cron
	sessions StatusCounter
	spec     string
	log      zerolog.Logger
}

func NewScheduler(sessions StatusCounter, spec string, log zerolog.Logger) *Scheduler {
	if spec == "" {
		spec = "@every 1m"
	}
	return &Scheduler{
		cron:     cron.New(),
		sessions: sessions,
		spec:     spec,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if s.sessions == nil {
		return nil
	}

	if _, err := s.cron.AddFunc(s.spec, s.refreshSessionStats); err != nil {
		return err
	}

	s.refreshSessionStats()
	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) refreshSessionStats() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	counts, err := s.sessions.CountByStatus(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("refresh session stats failed")
		return
	}
	metrics.SetSessionCounts(counts)
}
