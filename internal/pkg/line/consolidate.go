package line

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/Vodeneev/valuebet/internal/pkg/models"
)

// ParseLineValue parses the free-text line cell of a row.
// Header and other non-data rows fail to parse; ok is false for them.
func ParseLineValue(text string) (float64, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Consolidate selects the quotes of the highest-priority bookmaker present in
// rows, keeps the first row seen for each line value and returns them sorted
// ascending by line. An empty result means no usable lines.
func Consolidate(rows []RawRow, s Settings) []Quote {
	grouped := make(map[string][]Quote)
	for _, r := range rows {
		if r.OddsA < s.MinOdds || r.OddsB < s.MinOdds {
			continue
		}
		v, ok := ParseLineValue(r.LineText)
		if !ok {
			continue
		}
		grouped[r.Bookmaker] = append(grouped[r.Bookmaker], Quote{Line: v, OddsA: r.OddsA, OddsB: r.OddsB})
	}

	var selected []Quote
	for _, bk := range s.Bookmakers {
		if q, ok := grouped[bk]; ok {
			selected = q
			break
		}
	}
	if len(selected) == 0 {
		return nil
	}

	seen := make(map[float64]struct{}, len(selected))
	out := make([]Quote, 0, len(selected))
	for _, q := range selected {
		if _, dup := seen[q.Line]; dup {
			continue
		}
		seen[q.Line] = struct{}{}
		out = append(out, q)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Line < out[j].Line })
	return out
}

// Handicaps consolidates handicap page rows.
func Handicaps(rows []RawRow, s Settings) []models.HandicapQuote {
	quotes := Consolidate(rows, s)
	if len(quotes) == 0 {
		return nil
	}
	out := make([]models.HandicapQuote, len(quotes))
	for i, q := range quotes {
		out[i] = models.HandicapQuote{Line: q.Line, Home: q.OddsA, Away: q.OddsB}
	}
	return out
}

// Totals consolidates total page rows.
func Totals(rows []RawRow, s Settings) []models.TotalQuote {
	quotes := Consolidate(rows, s)
	if len(quotes) == 0 {
		return nil
	}
	out := make([]models.TotalQuote, len(quotes))
	for i, q := range quotes {
		out[i] = models.TotalQuote{Line: q.Line, Over: q.OddsA, Under: q.OddsB}
	}
	return out
}

// SelectMoneyline returns the 1X2 quote of the highest-priority bookmaker, or nil.
// No minimum-odds filter applies here: the 1X2 market is used whatever its prices.
func SelectMoneyline(rows []MoneylineRow, bookmakers []string) *models.MoneylineQuote {
	byBookmaker := make(map[string]models.MoneylineQuote, len(rows))
	for _, r := range rows {
		if _, ok := byBookmaker[r.Bookmaker]; ok {
			continue
		}
		byBookmaker[r.Bookmaker] = models.MoneylineQuote{Home: r.Home, Draw: r.Draw, Away: r.Away}
	}
	for _, bk := range bookmakers {
		if q, ok := byBookmaker[bk]; ok {
			return &q
		}
	}
	return nil
}
