package pipeline

import (
	"context"
	"log/slog"
	"time"

	"subforge/internal/logging"
	"subforge/internal/services"
)

// runStage executes fn with the stage name attached to the context and logs
// its start, completion and failure.
func runStage(ctx context.Context, logger *slog.Logger, name string, fn func(context.Context, *slog.Logger) error) error {
	stageCtx := services.WithStage(ctx, name)
	stageLogger := logging.WithContext(stageCtx, logger)

	stageLogger.Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))
	start := time.Now()

	if err := fn(stageCtx, stageLogger); err != nil {
		logging.ErrorWithContext(stageLogger, "stage failed", "stage_failure", err,
			logging.Duration("elapsed", time.Since(start)),
		)
		return err
	}

	stageLogger.Debug("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", time.Since(start)),
	)
	return nil
}
