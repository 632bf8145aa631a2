package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/Amund211/blacksmith/internal/domain"
	"github.com/Amund211/blacksmith/internal/logging"
)

const ledgerWriteTimeout = 2 * time.Second

type craftLedger interface {
	RecordCraft(ctx context.Context, record domain.CraftRecord) error
	RecordDay(ctx context.Context, record domain.DayRecord) error
}

// BuildLedgerHooks writes finished crafts and days to the ledger
//
// Ledger failures are logged and otherwise ignored, the game goes on.
func BuildLedgerHooks(ledger craftLedger) GameHooks {
	return GameHooks{
		OnItemCrafted: func(ctx context.Context, record domain.CraftRecord) {
			storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ledgerWriteTimeout)
			defer cancel()

			err := ledger.RecordCraft(storeCtx, record)
			if err != nil {
				// NOTE: craftLedger implementations handle their own error reporting
				logging.FromContext(ctx).ErrorContext(ctx, "Failed to record craft", slog.String("error", err.Error()))
			}
		},
		OnDayClosed: func(ctx context.Context, record domain.DayRecord) {
			storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ledgerWriteTimeout)
			defer cancel()

			err := ledger.RecordDay(storeCtx, record)
			if err != nil {
				// NOTE: craftLedger implementations handle their own error reporting
				logging.FromContext(ctx).ErrorContext(ctx, "Failed to record day", slog.String("error", err.Error()))
			}
		},
	}
}
