// Package analyzer runs the batch: list matches, acquire each one, attach
// ratings, price it with the fair-odds model and look for value.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Vodeneev/valuebet/internal/calculator"
	"github.com/Vodeneev/valuebet/internal/pkg/models"
	"github.com/Vodeneev/valuebet/internal/pkg/poisson"
)

// ErrWrongURL is returned for a match URL outside the configured league.
var ErrWrongURL = errors.New("url does not belong to the configured league")

// Outcome is how the analysis of one match ended.
type Outcome string

const (
	OutcomeAnalyzed     Outcome = "analyzed"
	OutcomeNoLines      Outcome = "no lines"
	OutcomeNoRatings    Outcome = "no ratings"
	OutcomeScrapeFailed Outcome = "scrape failed"
)

type Snapshotter interface {
	Acquire(ctx context.Context, url string) (*models.MatchSnapshot, error)
}

type Lister interface {
	UpcomingMatchURLs(ctx context.Context) ([]string, error)
}

// RatingsLookup fills in the xG ratings of both teams.
type RatingsLookup interface {
	Apply(snap *models.MatchSnapshot)
}

// FairModel prices a match from the two teams' scoring qualities.
type FairModel func(homeQuality, awayQuality float64) *models.FairPriceSet

type Detector interface {
	Detect(ctx context.Context, snap *models.MatchSnapshot, fair *models.FairPriceSet) (*calculator.Report, error)
}

// Sink receives every detector report. Sinks decide themselves what to keep.
type Sink interface {
	Publish(ctx context.Context, r *calculator.Report) error
}

// Result is the outcome of one match.
type Result struct {
	URL     string
	Match   string
	Outcome Outcome
	Report  *calculator.Report
	// Err is set for scrape failures and for non-fatal errors of an analyzed match.
	Err error
}

// Summary aggregates a batch run.
type Summary struct {
	Results  []Result
	Flagged  int
	Duration time.Duration
}

// Count returns the number of matches that ended with o.
func (s *Summary) Count(o Outcome) int {
	n := 0
	for _, r := range s.Results {
		if r.Outcome == o {
			n++
		}
	}
	return n
}

type Deps struct {
	LeagueURL string
	Lister    Lister
	Acquirer  Snapshotter
	Ratings   RatingsLookup
	Model     FairModel
	Detector  Detector
	Sinks     []Sink
}

type Analyzer struct {
	leagueURL string
	lister    Lister
	acquirer  Snapshotter
	ratings   RatingsLookup
	model     FairModel
	detector  Detector
	sinks     []Sink
}

func New(d Deps) *Analyzer {
	model := d.Model
	if model == nil {
		model = poisson.FairPrices
	}
	return &Analyzer{
		leagueURL: d.LeagueURL,
		lister:    d.Lister,
		acquirer:  d.Acquirer,
		ratings:   d.Ratings,
		model:     model,
		detector:  d.Detector,
		sinks:     d.Sinks,
	}
}

// AnalyzeURL analyzes one match given by the user.
func (a *Analyzer) AnalyzeURL(ctx context.Context, url string) (*Result, error) {
	url = strings.TrimSpace(url)
	if a.leagueURL != "" && !strings.HasPrefix(url, a.leagueURL) {
		return nil, fmt.Errorf("%w: %s", ErrWrongURL, url)
	}
	res := a.analyze(ctx, url)
	return &res, nil
}

// AnalyzeAll analyzes every upcoming match one after another. A failed match
// is recorded and skipped; only a failed listing aborts the batch.
func (a *Analyzer) AnalyzeAll(ctx context.Context) (*Summary, error) {
	start := time.Now()
	urls, err := a.lister.UpcomingMatchURLs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list upcoming matches: %w", err)
	}
	slog.Info("Upcoming matches found", "count", len(urls))

	sum := &Summary{}
	for i, url := range urls {
		if ctx.Err() != nil {
			slog.Warn("Batch interrupted", "done", i, "total", len(urls))
			break
		}
		res := a.analyze(ctx, url)
		if res.Report != nil {
			sum.Flagged += len(res.Report.Flagged())
		}
		sum.Results = append(sum.Results, res)
	}
	sum.Duration = time.Since(start)

	slog.Info("Batch finished",
		"matches", len(sum.Results),
		"analyzed", sum.Count(OutcomeAnalyzed),
		"no_lines", sum.Count(OutcomeNoLines),
		"no_ratings", sum.Count(OutcomeNoRatings),
		"scrape_failed", sum.Count(OutcomeScrapeFailed),
		"flagged", sum.Flagged,
		"duration", sum.Duration)
	return sum, ctx.Err()
}

func (a *Analyzer) analyze(ctx context.Context, url string) Result {
	res := Result{URL: url}

	snap, err := a.acquirer.Acquire(ctx, url)
	if err != nil {
		slog.Warn("Match skipped", "url", url, "error", err)
		res.Outcome = OutcomeScrapeFailed
		res.Err = err
		return res
	}
	res.Match = snap.Name()
	slog.Info("Analyzing match", "match", snap.String())

	if !snap.HasLines() {
		slog.Info("There are no lines for this match", "match", res.Match)
		res.Outcome = OutcomeNoLines
		return res
	}

	if a.ratings != nil {
		a.ratings.Apply(snap)
	}
	if !snap.Home.HasRatings() || !snap.Away.HasRatings() {
		if !snap.Home.HasRatings() {
			slog.Info("There is no xG data for home team", "team", snap.Home.Name)
		}
		if !snap.Away.HasRatings() {
			slog.Info("There is no xG data for away team", "team", snap.Away.Name)
		}
		res.Outcome = OutcomeNoRatings
		return res
	}

	homeQ := poisson.Quality(snap.Home.XGF, snap.Away.XGA)
	awayQ := poisson.Quality(snap.Away.XGF, snap.Home.XGA)
	fair := a.model(homeQ, awayQ)

	report, err := a.detector.Detect(ctx, snap, fair)
	res.Outcome = OutcomeAnalyzed
	res.Report = report
	res.Err = err
	if report == nil {
		return res
	}

	for _, s := range a.sinks {
		if err := s.Publish(ctx, report); err != nil {
			slog.Error("Failed to publish report", "match", res.Match, "error", err)
		}
	}
	return res
}
