package commands

import (
	"context"
	"fmt"

	"github.com/wonny/clv/internal/brain"
	"github.com/wonny/clv/internal/s0_load"
	"github.com/wonny/clv/internal/s1_prepare"
	"github.com/wonny/clv/internal/s2_summary"
	"github.com/wonny/clv/internal/s3_model"
	"github.com/wonny/clv/internal/selection"
	"github.com/wonny/clv/pkg/config"
	"github.com/wonny/clv/pkg/logger"
)

// deps wired pipeline shared by all commands
type deps struct {
	cfg          *config.Config
	log          *logger.Logger
	loader       *s0_load.CachedLoader
	orchestrator *brain.Orchestrator
	close        func()
}

// setup loads config, opens the source and wires S0..S4
func setup(ctx context.Context, gridStep int) (*deps, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// Override from flags
	if dataPath != "" {
		cfg.Data.Path = dataPath
	}
	if sourceKind != "" {
		cfg.Data.Source = sourceKind
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Open source
	source, closeSource, err := s0_load.OpenSource(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	loader := s0_load.NewCachedLoader(source, log)

	// 4. Wire stages
	orchestrator := brain.NewOrchestrator(
		loader,
		s1_prepare.NewPreprocessor(log),
		s2_summary.NewAggregator(log),
		s3_model.NewPipeline(log, s3_model.Options{GridStep: gridStep}),
		selection.NewRanker(log),
		log,
	)

	log.WithFields(map[string]interface{}{
		"source": source.Name(),
		"env":    cfg.Env,
	}).Debug("Pipeline wired")

	return &deps{
		cfg:          cfg,
		log:          log,
		loader:       loader,
		orchestrator: orchestrator,
		close:        closeSource,
	}, nil
}
