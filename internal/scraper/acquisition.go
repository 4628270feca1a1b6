package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Vodeneev/valuebet/internal/pkg/config"
	"github.com/Vodeneev/valuebet/internal/pkg/line"
	"github.com/Vodeneev/valuebet/internal/pkg/models"
	"github.com/Vodeneev/valuebet/internal/pkg/parserutil"
)

// Acquirer builds a MatchSnapshot from a match URL.
type Acquirer struct {
	fetcher        Fetcher
	settings       line.Settings
	handicapSuffix string
	totalsSuffix   string
	subTimeout     time.Duration
	now            func() time.Time
}

func NewAcquirer(fetcher Fetcher, cfg *config.ScraperConfig) *Acquirer {
	return &Acquirer{
		fetcher:        fetcher,
		settings:       line.Settings{Bookmakers: cfg.Bookmakers, MinOdds: cfg.MinOdds},
		handicapSuffix: cfg.HandicapSuffix,
		totalsSuffix:   cfg.TotalsSuffix,
		subTimeout:     cfg.PageTimeout,
		now:            time.Now,
	}
}

// Acquire loads the match page, then the handicap and totals pages
// concurrently. Only a failure of the match page is an error (ErrScrapeFailed);
// failed line pages leave their market empty.
func (a *Acquirer) Acquire(ctx context.Context, url string) (*models.MatchSnapshot, error) {
	page, err := a.fetcher.FetchMatchPage(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrScrapeFailed, url, err)
	}
	home, away, ok := ParseTeams(page.Title)
	if !ok {
		return nil, fmt.Errorf("%w: %s: teams not found in %q", ErrScrapeFailed, url, page.Title)
	}

	snap := &models.MatchSnapshot{
		Kickoff:   ParseKickoff(page.KickoffText, a.now()),
		Home:      models.Team{Name: home},
		Away:      models.Team{Name: away},
		URL:       url,
		Moneyline: line.SelectMoneyline(page.Moneyline, a.settings.Bookmakers),
	}

	var handicaps []models.HandicapQuote
	var totals []models.TotalQuote
	parserutil.RunTasks(ctx,
		parserutil.Task{Name: "handicaps", Timeout: a.subTimeout, Run: func(ctx context.Context) error {
			rows, err := a.fetcher.FetchLineRows(ctx, WithSuffix(url, a.handicapSuffix))
			if err != nil {
				return err
			}
			handicaps = line.Handicaps(rows, a.settings)
			return nil
		}},
		parserutil.Task{Name: "totals", Timeout: a.subTimeout, Run: func(ctx context.Context) error {
			rows, err := a.fetcher.FetchLineRows(ctx, WithSuffix(url, a.totalsSuffix))
			if err != nil {
				return err
			}
			totals = line.Totals(rows, a.settings)
			return nil
		}},
	)
	snap.Handicaps = handicaps
	snap.Totals = totals

	slog.Info("Match acquired",
		"match", snap.Name(),
		"kickoff", snap.Kickoff.Format("2006-01-02 15:04"),
		"moneyline", snap.Moneyline != nil,
		"handicaps", len(snap.Handicaps),
		"totals", len(snap.Totals))
	return snap, nil
}
