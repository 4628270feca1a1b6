package calculator

import (
	"strings"
	"time"

	"github.com/Vodeneev/valuebet/internal/pkg/models"
)

// MarketOutcome says whether a market could be compared at all.
type MarketOutcome string

const (
	OutcomeCompared    MarketOutcome = "compared"
	OutcomeNoMoneyline MarketOutcome = "no moneyline"
	OutcomeNoHandicaps MarketOutcome = "no handicaps"
	OutcomeNoTotals    MarketOutcome = "no totals"
)

// MarketReport is the result for one market of one match.
type MarketReport struct {
	Kind    models.MarketKind
	Outcome MarketOutcome
	Signals []models.ValueSignal
	// Unmodeled lists quoted lines the fair price set has no entry for.
	Unmodeled []float64
}

// Report is the detector output for one match.
type Report struct {
	MatchName string
	MatchURL  string
	Kickoff   time.Time
	Threshold int

	Moneyline MarketReport
	Handicaps MarketReport
	Totals    MarketReport
}

// Markets returns the three market reports in display order.
func (r *Report) Markets() []MarketReport {
	return []MarketReport{r.Moneyline, r.Handicaps, r.Totals}
}

// Signals returns every comparison, flagged or not.
func (r *Report) Signals() []models.ValueSignal {
	var out []models.ValueSignal
	for _, mr := range r.Markets() {
		out = append(out, mr.Signals...)
	}
	return out
}

// Flagged returns the signals at or above the threshold.
func (r *Report) Flagged() []models.ValueSignal {
	var out []models.ValueSignal
	for _, s := range r.Signals() {
		if s.Flagged {
			out = append(out, s)
		}
	}
	return out
}

func (r *Report) header() string {
	return r.Kickoff.Format("2006-01-02 15:04") + " " + r.MatchName + " " + r.MatchURL
}

// String renders the full human-readable report.
func (r *Report) String() string {
	var b strings.Builder
	b.WriteString(r.header())
	b.WriteString("\n")
	for _, mr := range r.Markets() {
		if mr.Outcome != OutcomeCompared {
			b.WriteString(string(mr.Outcome))
			b.WriteString("\n")
			continue
		}
		for _, s := range mr.Signals {
			b.WriteString(s.Detail)
			b.WriteString("\n")
			if s.Flagged {
				b.WriteString(ValueMarker)
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

// StatsBlock renders the match header and flagged lines only. Empty when
// nothing is flagged.
func (r *Report) StatsBlock() string {
	flagged := r.Flagged()
	if len(flagged) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(r.header())
	for _, s := range flagged {
		b.WriteString("\n")
		b.WriteString(s.Detail)
	}
	return b.String()
}
