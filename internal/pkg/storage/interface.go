package storage

import (
	"context"

	"github.com/Vodeneev/valuebet/internal/pkg/models"
)

// SignalStorage persists flagged value signals.
type SignalStorage interface {
	StoreSignals(ctx context.Context, signals []models.ValueSignal) error
	Close() error
}

// RatingsCache stores xG tables keyed by venue ("H" or "A").
type RatingsCache interface {
	GetTable(ctx context.Context, venue string) (models.RatingTable, bool, error)
	SetTable(ctx context.Context, venue string, table models.RatingTable) error
}

var _ RatingsCache = (*RedisRatingsCache)(nil)
