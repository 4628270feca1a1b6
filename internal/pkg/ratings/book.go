package ratings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Vodeneev/valuebet/internal/pkg/models"
	"github.com/Vodeneev/valuebet/internal/pkg/parserutil"
	"github.com/Vodeneev/valuebet/internal/pkg/storage"
)

// ErrNoRatings means neither table could be read, usually because the site banned us.
var ErrNoRatings = errors.New("no xG data available")

// Book holds the home and away rating tables for one batch.
type Book struct {
	home models.RatingTable
	away models.RatingTable
}

func NewBook(home, away models.RatingTable) *Book {
	return &Book{home: home, away: away}
}

// Load fetches both tables concurrently. A failure of one table leaves it
// empty; if both fail or come back empty, ErrNoRatings is returned.
func Load(ctx context.Context, src Source, timeout time.Duration) (*Book, error) {
	var home, away models.RatingTable
	errs := parserutil.RunTasks(ctx,
		parserutil.Task{Name: "xg_home", Timeout: timeout, Run: func(ctx context.Context) (err error) {
			home, err = src.FetchTable(ctx, VenueHome)
			return err
		}},
		parserutil.Task{Name: "xg_away", Timeout: timeout, Run: func(ctx context.Context) (err error) {
			away, err = src.FetchTable(ctx, VenueAway)
			return err
		}},
	)
	if len(home) == 0 && len(away) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNoRatings, errors.Join(errs...))
	}
	slog.Info("xG tables loaded", "home_teams", len(home), "away_teams", len(away))
	return NewBook(home, away), nil
}

// Apply fills the snapshot teams' ratings: the home team from home games, the
// away team from away games. Names are matched loosely (see models.TeamKey).
// Unknown teams keep zero ratings.
func (b *Book) Apply(snap *models.MatchSnapshot) {
	if r, ok := b.home.Lookup(snap.Home.Name); ok {
		snap.Home.XGF, snap.Home.XGA = r.XGF, r.XGA
	}
	if r, ok := b.away.Lookup(snap.Away.Name); ok {
		snap.Away.XGF, snap.Away.XGA = r.XGF, r.XGA
	}
}

// CachedSource serves tables from a cache, falling back to the wrapped source.
type CachedSource struct {
	src   Source
	cache storage.RatingsCache
}

func NewCachedSource(src Source, cache storage.RatingsCache) *CachedSource {
	return &CachedSource{src: src, cache: cache}
}

func (c *CachedSource) FetchTable(ctx context.Context, venue Venue) (models.RatingTable, error) {
	table, ok, err := c.cache.GetTable(ctx, string(venue))
	if err != nil {
		slog.Warn("Ratings cache read failed", "venue", venue, "error", err)
	} else if ok {
		slog.Debug("Ratings cache hit", "venue", venue, "teams", len(table))
		return table, nil
	}

	table, err = c.src.FetchTable(ctx, venue)
	if err != nil {
		return nil, err
	}
	if len(table) > 0 {
		if err := c.cache.SetTable(ctx, string(venue), table); err != nil {
			slog.Warn("Ratings cache write failed", "venue", venue, "error", err)
		}
	}
	return table, nil
}
