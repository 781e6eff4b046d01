package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fx-rates-pipeline/internal/model"
	"fx-rates-pipeline/internal/pipeline"
)

// BackfillOptions configure reprocessing of a historical date range.
type BackfillOptions struct {
	From  string
	To    string
	Stage string
}

// Backfill re-runs a stage for every date in [From, To]. Dates whose
// predecessor output is missing are skipped rather than failing the whole
// range; any other failure is counted and reported at the end.
func (a *App) Backfill(ctx context.Context, opts BackfillOptions) error {
	stage, err := pipeline.ParseStage(opts.Stage)
	if err != nil {
		return err
	}
	if stage == pipeline.StageIngest || stage == pipeline.StageAll {
		return errors.New("backfill reprocesses stored data; only transform, load or insight can run per date")
	}

	from, err := time.Parse(model.DateLayout, opts.From)
	if err != nil {
		return fmt.Errorf("invalid --from value: %w", err)
	}
	to, err := time.Parse(model.DateLayout, opts.To)
	if err != nil {
		return fmt.Errorf("invalid --to value: %w", err)
	}
	if to.Before(from) {
		return errors.New("--from must not be after --to")
	}

	p := a.newPipeline()

	processed, skipped, failed := 0, 0, 0
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		date := day.Format(model.DateLayout)
		err := p.Run(ctx, stage, date)
		switch {
		case err == nil:
			processed++
		case errors.Is(err, pipeline.ErrMissingPredecessor):
			skipped++
			a.Logger.Warn().Str("date", date).Msg("no stored input for date; skipping")
		default:
			failed++
			a.Logger.Error().Err(err).Str("date", date).Msg("backfill date failed")
		}
	}

	a.Logger.Info().
		Int("processed", processed).
		Int("skipped", skipped).
		Int("failed", failed).
		Msg("backfill finished")

	if failed > 0 {
		return fmt.Errorf("backfill completed with %d failed dates", failed)
	}
	return nil
}
