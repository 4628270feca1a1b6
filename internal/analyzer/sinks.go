package analyzer

import (
	"context"

	"github.com/Vodeneev/valuebet/internal/calculator"
	"github.com/Vodeneev/valuebet/internal/pkg/storage"
)

// SignalSink persists the flagged signals of each report.
type SignalSink struct {
	store storage.SignalStorage
}

func NewSignalSink(store storage.SignalStorage) *SignalSink {
	return &SignalSink{store: store}
}

func (s *SignalSink) Publish(ctx context.Context, r *calculator.Report) error {
	flagged := r.Flagged()
	if len(flagged) == 0 {
		return nil
	}
	return s.store.StoreSignals(ctx, flagged)
}

var (
	_ Sink = (*SignalSink)(nil)
	_ Sink = (*calculator.TelegramNotifier)(nil)
)
