// Package line turns raw per-bookmaker rows scraped from an odds page into one
// trusted, deduplicated list of lines per market.
package line

// RawRow is one bookmaker row from a handicap or total odds page.
// OddsA is home/over, OddsB is away/under.
type RawRow struct {
	Bookmaker string
	LineText  string
	OddsA     float64
	OddsB     float64
}

// MoneylineRow is one bookmaker row from the 1X2 table of a match page.
type MoneylineRow struct {
	Bookmaker string
	Home      float64
	Draw      float64
	Away      float64
}

// Quote is a consolidated two-way line.
type Quote struct {
	Line  float64
	OddsA float64
	OddsB float64
}

// Settings holds what consolidation needs from configuration.
type Settings struct {
	// Bookmakers in priority order, highest first.
	Bookmakers []string
	// MinOdds drops rows where either price is below it (suspended or unreliable lines).
	MinOdds float64
}
