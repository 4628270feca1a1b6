package models

// FairPriceSet is the fair-odds model output for one match. Handicap and total
// maps are keyed by the exact line value a bookmaker quotes.
type FairPriceSet struct {
	Moneyline MoneylineQuote            `json:"moneyline"`
	Handicaps map[float64]HandicapQuote `json:"handicaps"`
	Totals    map[float64]TotalQuote    `json:"totals"`
}

// TeamRating is one row of the expected-goals table.
type TeamRating struct {
	GamesPlayed int     `json:"games_played"`
	XGF         float64 `json:"xgf"`
	XGA         float64 `json:"xga"`
}

// RatingTable maps a team name to its rating for one venue (home or away games).
type RatingTable map[string]TeamRating
