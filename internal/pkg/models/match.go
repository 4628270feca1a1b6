package models

import (
	"fmt"
	"time"
)

// Team is one side of a match. XGF/XGA stay 0 until a ratings lookup fills them in.
type Team struct {
	Name string  `json:"name"`
	XGF  float64 `json:"xgf"`
	XGA  float64 `json:"xga"`
}

// HasRatings reports whether both expected-goals ratings are known.
func (t Team) HasRatings() bool {
	return t.XGF > 0 && t.XGA > 0
}

// MatchSnapshot is everything scraped for one match: teams, kickoff and the
// consolidated bookmaker lines. Handicaps and Totals are line-unique and
// sorted ascending by line.
type MatchSnapshot struct {
	Kickoff   time.Time       `json:"kickoff"`
	Home      Team            `json:"home"`
	Away      Team            `json:"away"`
	URL       string          `json:"url"`
	Moneyline *MoneylineQuote `json:"moneyline,omitempty"`
	Handicaps []HandicapQuote `json:"handicaps"`
	Totals    []TotalQuote    `json:"totals"`
}

// Name returns "Home - Away".
func (m *MatchSnapshot) Name() string {
	return m.Home.Name + " - " + m.Away.Name
}

// HasLines reports whether any market was scraped at all.
func (m *MatchSnapshot) HasLines() bool {
	return m.Moneyline != nil || len(m.Handicaps) > 0 || len(m.Totals) > 0
}

func (m *MatchSnapshot) String() string {
	ml := "no moneyline"
	if m.Moneyline != nil {
		ml = m.Moneyline.String()
	}
	return fmt.Sprintf("%s | %s | %s | handicaps: %d, totals: %d | %s",
		m.Kickoff.Format("2006-01-02 15:04"), m.Name(), ml, len(m.Handicaps), len(m.Totals), m.URL)
}
