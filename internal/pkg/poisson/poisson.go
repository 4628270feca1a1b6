// Package poisson prices a match from two scoring rates with independent
// Poisson distributions. It produces the fair odds the value detector compares
// bookmaker lines against.
package poisson

import (
	"math"

	"github.com/Vodeneev/valuebet/internal/pkg/models"
)

const (
	maxGoals = 15

	// Handicap lines run from -maxHandicapSteps/2 to +maxHandicapSteps/2 in 0.5 steps.
	maxHandicapSteps = 8
	// Total lines run from 0.5 to maxTotalSteps/2 in 0.5 steps.
	maxTotalSteps = 21
)

// Quality is a team's expected scoring rate against a given opponent:
// the mean of its own xGF and the opponent's xGA.
func Quality(xgf, opponentXGA float64) float64 {
	return (xgf + opponentXGA) / 2
}

// Model is a score matrix for one match.
type Model struct {
	matrix [maxGoals + 1][maxGoals + 1]float64
}

// New builds the score matrix for home and away scoring rates.
func New(homeRate, awayRate float64) *Model {
	ph := pmf(homeRate)
	pa := pmf(awayRate)

	m := &Model{}
	total := 0.0
	for i := 0; i <= maxGoals; i++ {
		for j := 0; j <= maxGoals; j++ {
			m.matrix[i][j] = ph[i] * pa[j]
			total += m.matrix[i][j]
		}
	}
	if total > 0 {
		for i := range m.matrix {
			for j := range m.matrix[i] {
				m.matrix[i][j] /= total
			}
		}
	}
	return m
}

func pmf(rate float64) [maxGoals + 1]float64 {
	var out [maxGoals + 1]float64
	if rate <= 0 {
		out[0] = 1
		return out
	}
	out[0] = math.Exp(-rate)
	for k := 1; k <= maxGoals; k++ {
		out[k] = out[k-1] * rate / float64(k)
	}
	return out
}

// Probabilities returns P(home win), P(draw), P(away win).
func (m *Model) Probabilities() (home, draw, away float64) {
	for i := 0; i <= maxGoals; i++ {
		for j := 0; j <= maxGoals; j++ {
			switch {
			case i > j:
				home += m.matrix[i][j]
			case i == j:
				draw += m.matrix[i][j]
			default:
				away += m.matrix[i][j]
			}
		}
	}
	return home, draw, away
}

func (m *Model) Moneyline() models.MoneylineQuote {
	h, d, a := m.Probabilities()
	return models.MoneylineQuote{Home: fairOdds(h), Draw: fairOdds(d), Away: fairOdds(a)}
}

// Handicaps prices whole and half goal spreads from the home side. Whole lines
// refund on a push, which the two-way price accounts for.
func (m *Model) Handicaps() map[float64]models.HandicapQuote {
	out := make(map[float64]models.HandicapQuote)
	for step := -maxHandicapSteps; step <= maxHandicapSteps; step++ {
		line := float64(step) / 2
		var win, lose float64
		for i := 0; i <= maxGoals; i++ {
			for j := 0; j <= maxGoals; j++ {
				adj := float64(i-j) + line
				switch {
				case adj > 0:
					win += m.matrix[i][j]
				case adj < 0:
					lose += m.matrix[i][j]
				}
			}
		}
		home, away, ok := twoWay(win, lose)
		if !ok {
			continue
		}
		out[line] = models.HandicapQuote{Line: line, Home: home, Away: away}
	}
	return out
}

// Totals prices total-goals lines from 0.5 upward.
func (m *Model) Totals() map[float64]models.TotalQuote {
	out := make(map[float64]models.TotalQuote)
	for step := 1; step <= maxTotalSteps; step++ {
		line := float64(step) / 2
		var over, under float64
		for i := 0; i <= maxGoals; i++ {
			for j := 0; j <= maxGoals; j++ {
				goals := float64(i + j)
				switch {
				case goals > line:
					over += m.matrix[i][j]
				case goals < line:
					under += m.matrix[i][j]
				}
			}
		}
		o, u, ok := twoWay(over, under)
		if !ok {
			continue
		}
		out[line] = models.TotalQuote{Line: line, Over: o, Under: u}
	}
	return out
}

// FairPrices bundles all markets.
func (m *Model) FairPrices() *models.FairPriceSet {
	return &models.FairPriceSet{
		Moneyline: m.Moneyline(),
		Handicaps: m.Handicaps(),
		Totals:    m.Totals(),
	}
}

// FairPrices prices a match straight from the two team qualities.
func FairPrices(homeQuality, awayQuality float64) *models.FairPriceSet {
	return New(homeQuality, awayQuality).FairPrices()
}

// twoWay returns zero-margin prices for a two-outcome market with refunds on push.
func twoWay(pa, pb float64) (float64, float64, bool) {
	if pa <= 0 || pb <= 0 {
		return 0, 0, false
	}
	settled := pa + pb
	return round3(settled / pa), round3(settled / pb), true
}

func fairOdds(p float64) float64 {
	if p <= 0 {
		return math.Inf(1)
	}
	return round3(1 / p)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
