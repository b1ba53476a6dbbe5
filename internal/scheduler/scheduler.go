// Package scheduler reloads the rate table configuration on a cron schedule
// and hands rebuilt calculators to whoever is serving requests.
package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mortgagepulse/refinance-engine/internal/config"
	"github.com/mortgagepulse/refinance-engine/pkg/rates"
	"github.com/mortgagepulse/refinance-engine/pkg/scenarios"
)

// Scheduler periodically re-reads the configuration file and rebuilds the
// scenario calculator. A reload that fails validation keeps the previous
// calculator in place.
type Scheduler struct {
	logger     *zap.Logger
	cron       *cron.Cron
	configPath string
	apply      func(*scenarios.Calculator)
}

// New creates a scheduler that reloads configPath on the given cron spec and
// passes each successfully rebuilt calculator to apply.
func New(logger *zap.Logger, configPath, cronSpec string, apply func(*scenarios.Calculator)) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if apply == nil {
		return nil, fmt.Errorf("apply callback must not be nil")
	}

	s := &Scheduler{
		logger:     logger,
		cron:       cron.New(),
		configPath: configPath,
		apply:      apply,
	}

	if _, err := s.cron.AddFunc(cronSpec, s.reload); err != nil {
		return nil, fmt.Errorf("invalid cron spec %q: %w", cronSpec, err)
	}

	return s, nil
}

// Start begins running the reload schedule in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("rates reload schedule started",
		zap.String("op", "scheduler.Start"),
		zap.String("configPath", s.configPath),
	)
}

// Stop halts the schedule. A reload already in flight runs to completion.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("rates reload schedule stopped",
		zap.String("op", "scheduler.Stop"),
	)
}

func (s *Scheduler) reload() {
	cfg, err := config.LoadConfiguration(s.configPath)
	if err != nil {
		s.logger.Error("failed to reload configuration, keeping current rates",
			zap.String("op", "scheduler.reload"),
			zap.String("configPath", s.configPath),
			zap.Error(err),
		)
		return
	}

	model, err := rates.NewModel(cfg.Rates)
	if err != nil {
		s.logger.Error("reloaded rate table failed validation, keeping current rates",
			zap.String("op", "scheduler.reload"),
			zap.Error(err),
		)
		return
	}

	s.apply(scenarios.NewCalculator(model, cfg.Scenario, s.logger))
	s.logger.Info("rate table reloaded",
		zap.String("op", "scheduler.reload"),
		zap.String("configPath", s.configPath),
	)
}
