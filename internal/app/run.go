package app

import (
	"context"
	"os/signal"
	"syscall"

	"fx-rates-pipeline/internal/pipeline"
)

// Run executes the selected pipeline stage for the target date.
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	stage, err := pipeline.ParseStage(opts.Stage)
	if err != nil {
		return err
	}

	a.Logger.Info().
		Str("stage", string(stage)).
		Str("target_date", opts.Date).
		Msg("starting pipeline run")

	if err := a.newPipeline().Run(ctx, stage, opts.Date); err != nil {
		a.Logger.Error().Err(err).Msg("pipeline run failed")
		return err
	}

	a.Logger.Info().Msg("pipeline run completed")
	return nil
}
