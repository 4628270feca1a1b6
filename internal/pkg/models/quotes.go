package models

import (
	"fmt"
	"strconv"
)

// MoneylineQuote is a three-way match result price.
type MoneylineQuote struct {
	Home float64 `json:"home"`
	Draw float64 `json:"draw"`
	Away float64 `json:"away"`
}

func (q MoneylineQuote) String() string {
	return fmt.Sprintf("Moneyline: %s - %s - %s", FormatOdds(q.Home), FormatOdds(q.Draw), FormatOdds(q.Away))
}

// HandicapQuote is a goal-spread line with home/away prices. Line is from the home side.
type HandicapQuote struct {
	Line float64 `json:"line"`
	Home float64 `json:"home"`
	Away float64 `json:"away"`
}

func (q HandicapQuote) String() string {
	return fmt.Sprintf("Handicap %s: %s / %s", FormatLine(q.Line), FormatOdds(q.Home), FormatOdds(q.Away))
}

// TotalQuote is a total-goals line with over/under prices.
type TotalQuote struct {
	Line  float64 `json:"line"`
	Over  float64 `json:"over"`
	Under float64 `json:"under"`
}

func (q TotalQuote) String() string {
	return fmt.Sprintf("Total %s: %s / %s", FormatLine(q.Line), FormatOdds(q.Over), FormatOdds(q.Under))
}

// FormatOdds prints odds with two decimals, the way bookmakers show them.
func FormatOdds(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatLine prints a line value in its shortest exact form ("-1.5", "5.5", "0").
func FormatLine(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
