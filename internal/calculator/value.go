package calculator

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/Vodeneev/valuebet/internal/pkg/models"
)

// ValueMarker is logged after every flagged report line.
const ValueMarker = "*****There is probably the value!*****"

// Difference returns how much the market price exceeds the fair price, in
// percent rounded to 3 places. Positive means the market pays more than fair.
func Difference(fair, market float64) float64 {
	if fair <= 0 {
		return 0
	}
	return math.Round((market/fair-1)*100*1000) / 1000
}

// StatsAppender receives the text block of every report with flagged lines.
type StatsAppender interface {
	AppendBlock(ctx context.Context, block string) error
}

// Detector compares snapshots against fair prices and keeps the stats log.
type Detector struct {
	threshold int
	stats     StatsAppender
	now       func() time.Time
}

// NewDetector creates a detector flagging deviations >= threshold percent.
// stats may be nil.
func NewDetector(threshold int, stats StatsAppender) *Detector {
	return &Detector{threshold: threshold, stats: stats, now: time.Now}
}

func (d *Detector) Threshold() int {
	return d.threshold
}

// Detect compares and, when anything is flagged, appends the stats block.
// A failed append is returned together with the report, which stays valid.
func (d *Detector) Detect(ctx context.Context, snap *models.MatchSnapshot, fair *models.FairPriceSet) (*Report, error) {
	report := Compare(snap, fair, d.threshold, d.now())

	for _, mr := range report.Markets() {
		if mr.Outcome != OutcomeCompared {
			slog.Info("Market skipped", "match", snap.Name(), "market", mr.Kind, "reason", string(mr.Outcome))
			continue
		}
		for _, s := range mr.Signals {
			slog.Info(s.Detail, "match", snap.Name())
			if s.Flagged {
				slog.Info(ValueMarker, "match", snap.Name(), "market", s.Market)
			}
		}
		for _, l := range mr.Unmodeled {
			slog.Debug("Line has no fair price", "match", snap.Name(), "market", models.MarketID(mr.Kind, l))
		}
	}

	flagged := report.Flagged()
	if len(flagged) == 0 || d.stats == nil {
		return report, nil
	}
	if err := d.stats.AppendBlock(ctx, report.StatsBlock()); err != nil {
		slog.Error("Failed to append stats block", "match", snap.Name(), "error", err)
		return report, fmt.Errorf("append stats block: %w", err)
	}
	slog.Info("Value written to stats", "match", snap.Name(), "flagged", len(flagged))
	return report, nil
}

// Compare evaluates every market of snap against fair. It performs no I/O.
func Compare(snap *models.MatchSnapshot, fair *models.FairPriceSet, threshold int, at time.Time) *Report {
	if fair == nil {
		fair = &models.FairPriceSet{}
	}
	r := &Report{
		MatchName: snap.Name(),
		MatchURL:  snap.URL,
		Kickoff:   snap.Kickoff,
		Threshold: threshold,
	}
	base := models.ValueSignal{
		MatchName:  r.MatchName,
		MatchURL:   r.MatchURL,
		Kickoff:    r.Kickoff,
		DetectedAt: at,
	}
	limit := float64(threshold)

	r.Moneyline = MarketReport{Kind: models.MarketMoneyline, Outcome: OutcomeNoMoneyline}
	if snap.Moneyline != nil {
		r.Moneyline.Outcome = OutcomeCompared
		m, f := *snap.Moneyline, fair.Moneyline
		s := base
		s.Market = models.MarketID(models.MarketMoneyline, 0)
		s.Kind = models.MarketMoneyline
		s.Sides = []models.SideComparison{
			side("home", m.Home, f.Home),
			side("draw", m.Draw, f.Draw),
			side("away", m.Away, f.Away),
		}
		s.Flagged = anyFlagged(s.Sides, limit)
		s.Detail = fmt.Sprintf("%s || Poisson: %s - %s - %s => Value = (%s %%) - (%s %%) - (%s %%)",
			m, formatNum(f.Home), formatNum(f.Draw), formatNum(f.Away),
			formatNum(s.Sides[0].Deviation), formatNum(s.Sides[1].Deviation), formatNum(s.Sides[2].Deviation))
		r.Moneyline.Signals = []models.ValueSignal{s}
	}

	r.Handicaps = MarketReport{Kind: models.MarketHandicap, Outcome: OutcomeNoHandicaps}
	if len(snap.Handicaps) > 0 {
		r.Handicaps.Outcome = OutcomeCompared
		for _, q := range snap.Handicaps {
			f, ok := fair.Handicaps[q.Line]
			if !ok {
				r.Handicaps.Unmodeled = append(r.Handicaps.Unmodeled, q.Line)
				continue
			}
			s := twoWay(base, models.MarketHandicap, q.Line, q.String(),
				side("home", q.Home, f.Home), side("away", q.Away, f.Away), limit)
			r.Handicaps.Signals = append(r.Handicaps.Signals, s)
		}
	}

	r.Totals = MarketReport{Kind: models.MarketTotal, Outcome: OutcomeNoTotals}
	if len(snap.Totals) > 0 {
		r.Totals.Outcome = OutcomeCompared
		for _, q := range snap.Totals {
			f, ok := fair.Totals[q.Line]
			if !ok {
				r.Totals.Unmodeled = append(r.Totals.Unmodeled, q.Line)
				continue
			}
			s := twoWay(base, models.MarketTotal, q.Line, q.String(),
				side("over", q.Over, f.Over), side("under", q.Under, f.Under), limit)
			r.Totals.Signals = append(r.Totals.Signals, s)
		}
	}
	return r
}

func twoWay(base models.ValueSignal, kind models.MarketKind, line float64, quote string, a, b models.SideComparison, limit float64) models.ValueSignal {
	s := base
	s.Market = models.MarketID(kind, line)
	s.Kind = kind
	s.Line = line
	s.Sides = []models.SideComparison{a, b}
	s.Flagged = anyFlagged(s.Sides, limit)
	s.Detail = fmt.Sprintf("%s || Poisson: %s / %s => Value = %s %% / %s %%",
		quote, formatNum(a.FairOdds), formatNum(b.FairOdds), formatNum(a.Deviation), formatNum(b.Deviation))
	return s
}

func side(name string, market, fair float64) models.SideComparison {
	return models.SideComparison{Side: name, MarketOdds: market, FairOdds: fair, Deviation: Difference(fair, market)}
}

func anyFlagged(sides []models.SideComparison, limit float64) bool {
	for _, s := range sides {
		if s.Deviation >= limit {
			return true
		}
	}
	return false
}

func formatNum(v float64) string {
	return models.FormatLine(v)
}
