package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// TokenPurger removes refresh tokens that can no longer be used
type TokenPurger interface {
	PurgeStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// DraftCounter counts applications left unsubmitted
type DraftCounter interface {
	CountStaleDrafts(ctx context.Context, cutoff time.Time) (int64, error)
}

// MaintenanceConfig controls the maintenance job
type MaintenanceConfig struct {
	Interval      time.Duration
	StaleDraftAge time.Duration
	Timeout       time.Duration
}

// Maintenance purges dead refresh tokens and reports stale drafts
type Maintenance struct {
	cfg    MaintenanceConfig
	tokens TokenPurger
	drafts DraftCounter
	logger zerolog.Logger
	now    func() time.Time
}

// NewMaintenance creates the job, filling in defaults for zero durations
func NewMaintenance(cfg MaintenanceConfig, tokens TokenPurger, drafts DraftCounter, logger zerolog.Logger) *Maintenance {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.StaleDraftAge <= 0 {
		cfg.StaleDraftAge = 7 * 24 * time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Maintenance{cfg: cfg, tokens: tokens, drafts: drafts, logger: logger, now: time.Now}
}

// Start runs the job on every tick until ctx is cancelled
func (m *Maintenance) Start(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.Interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.RunOnce(ctx)
			}
		}
	}()
	m.logger.Info().Dur("interval", m.cfg.Interval).Msg("Maintenance job started")
}

// RunOnce performs a single maintenance pass
func (m *Maintenance) RunOnce(ctx context.Context) {
	tickCtx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	now := m.now().UTC()

	purged, err := m.tokens.PurgeStale(tickCtx, now)
	if err != nil {
		m.logger.Error().Err(err).Msg("Maintenance: token purge failed")
	} else if purged > 0 {
		m.logger.Info().Int64("purged", purged).Msg("Maintenance: purged refresh tokens")
	}

	stale, err := m.drafts.CountStaleDrafts(tickCtx, now.Add(-m.cfg.StaleDraftAge))
	if err != nil {
		m.logger.Error().Err(err).Msg("Maintenance: stale draft count failed")
		return
	}
	if stale > 0 {
		m.logger.Warn().
			Int64("count", stale).
			Dur("olderThan", m.cfg.StaleDraftAge).
			Msg("Maintenance: applications left in draft")
	}
}
