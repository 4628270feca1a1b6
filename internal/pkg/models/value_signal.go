package models

import "time"

// MarketKind identifies which market a signal belongs to.
type MarketKind string

const (
	MarketMoneyline MarketKind = "moneyline"
	MarketHandicap  MarketKind = "handicap"
	MarketTotal     MarketKind = "total"
)

// SideComparison is one outcome of a market priced by the bookmaker and by the model.
type SideComparison struct {
	Side       string  `json:"side"` // home, draw, away, over, under
	MarketOdds float64 `json:"market_odds"`
	FairOdds   float64 `json:"fair_odds"`
	Deviation  float64 `json:"deviation"` // percent, rounded to 3 places
}

// ValueSignal is the comparison of one market (or one line of a market) against fair odds.
type ValueSignal struct {
	Market  string           `json:"market"` // "moneyline", "handicap:-1.5", "total:5.5"
	Kind    MarketKind       `json:"kind"`
	Line    float64          `json:"line"`
	Sides   []SideComparison `json:"sides"`
	Flagged bool             `json:"flagged"`
	Detail  string           `json:"detail"` // human-readable report line

	MatchName  string    `json:"match_name"`
	MatchURL   string    `json:"match_url"`
	Kickoff    time.Time `json:"kickoff"`
	DetectedAt time.Time `json:"detected_at"`
}

// MarketID builds the market identifier used in ValueSignal.Market.
func MarketID(kind MarketKind, line float64) string {
	if kind == MarketMoneyline {
		return string(kind)
	}
	return string(kind) + ":" + FormatLine(line)
}
