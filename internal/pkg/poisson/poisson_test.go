package poisson

import (
	"math"
	"testing"
)

func TestProbabilitiesSumToOne(t *testing.T) {
	m := New(3.1, 2.7)
	h, d, a := m.Probabilities()
	if sum := h + d + a; math.Abs(sum-1) > 1e-9 {
		t.Errorf("probabilities sum to %v", sum)
	}
	if h <= a {
		t.Errorf("stronger home side should be favourite: home=%v away=%v", h, a)
	}
}

func TestSymmetricMatch(t *testing.T) {
	fp := FairPrices(2.8, 2.8)
	if fp.Moneyline.Home != fp.Moneyline.Away {
		t.Errorf("symmetric moneyline: %+v", fp.Moneyline)
	}
	h0, ok := fp.Handicaps[0]
	if !ok {
		t.Fatal("missing handicap line 0")
	}
	if h0.Home != h0.Away || math.Abs(h0.Home-2) > 1e-9 {
		t.Errorf("level handicap should be 2.0 / 2.0, got %+v", h0)
	}
	minus, plus := fp.Handicaps[-1.5], fp.Handicaps[1.5]
	if minus.Home != plus.Away || minus.Away != plus.Home {
		t.Errorf("mirrored lines differ: -1.5=%+v +1.5=%+v", minus, plus)
	}
}

func TestLinesAreExactKeys(t *testing.T) {
	fp := FairPrices(3.2, 2.6)
	for _, line := range []float64{-1.5, -0.5, 0.5, 1.5} {
		if _, ok := fp.Handicaps[line]; !ok {
			t.Errorf("missing handicap %v", line)
		}
	}
	for _, line := range []float64{4.5, 5.5, 6.5} {
		q, ok := fp.Totals[line]
		if !ok {
			t.Errorf("missing total %v", line)
			continue
		}
		// Half lines have no push: implied probabilities add up to one.
		if s := 1/q.Over + 1/q.Under; math.Abs(s-1) > 0.01 {
			t.Errorf("total %v implied sum %v", line, s)
		}
	}
	if _, ok := fp.Handicaps[0.25]; ok {
		t.Error("quarter lines are not priced")
	}
}

func TestQuality(t *testing.T) {
	if got := Quality(3.0, 2.0); got != 2.5 {
		t.Errorf("Quality = %v", got)
	}
}
