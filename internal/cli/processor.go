package cli

import (
	"context"

	"github.com/fapiao-tools/invoice-recon/internal/common"
	processor "github.com/fapiao-tools/invoice-recon/internal/pipeline"
	"github.com/fapiao-tools/invoice-recon/internal/repository"
)

// newProcessor wires the processor and, when configured, the history store.
// A history store that fails to open only logs a warning: reconciliation
// works without it.
func newProcessor(ctx context.Context, cfg common.Config) (*processor.Processor, func(), error) {
	var history *repository.Store
	if cfg.HistoryDSN != "" {
		var err error
		history, err = repository.Open(ctx, cfg.HistoryDSN, logger)
		if err != nil {
			logger.Warn("history.db.unavailable", "error", err)
			history = nil
		}
	}

	closeHistory := func() {
		if history != nil {
			if err := history.Close(); err != nil {
				logger.Warn("history.db.close_failed", "error", err)
			}
		}
	}
	return processor.NewProcessor(cfg, history, logger), closeHistory, nil
}
