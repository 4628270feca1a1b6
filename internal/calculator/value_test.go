package calculator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Vodeneev/valuebet/internal/pkg/models"
)

type fakeStats struct {
	blocks []string
	err    error
}

func (f *fakeStats) AppendBlock(ctx context.Context, block string) error {
	if f.err != nil {
		return f.err
	}
	f.blocks = append(f.blocks, block)
	return nil
}

func testSnapshot() *models.MatchSnapshot {
	return &models.MatchSnapshot{
		Kickoff: time.Date(2026, 10, 17, 19, 0, 0, 0, time.UTC),
		Home:    models.Team{Name: "Boston Bruins", XGF: 3.1, XGA: 2.6},
		Away:    models.Team{Name: "Toronto Maple Leafs", XGF: 2.9, XGA: 2.8},
		URL:     "https://www.betexplorer.com/hockey/usa/nhl/bruins-leafs/abc123/",
	}
}

func TestDifference(t *testing.T) {
	tests := []struct {
		fair, market, want float64
	}{
		{2.00, 2.30, 15.0},
		{3.50, 3.50, 0.0},
		{3.80, 3.60, -5.263},
		{2.00, 1.00, -50.0},
		{0, 2.0, 0},
		{-1, 2.0, 0},
	}
	for _, tt := range tests {
		if got := Difference(tt.fair, tt.market); got != tt.want {
			t.Errorf("Difference(%v, %v) = %v, want %v", tt.fair, tt.market, got, tt.want)
		}
	}
}

func TestDifference_Monotonic(t *testing.T) {
	for _, fair := range []float64{1.01, 1.5, 2.0, 3.33, 7.5, 21} {
		if d := Difference(fair, fair); d != 0 {
			t.Errorf("Difference(%v, %v) = %v, want 0", fair, fair, d)
		}
		prev := Difference(fair, 1.0)
		for m := 1.01; m < 30; m += 0.01 {
			d := Difference(fair, m)
			if d < prev {
				t.Fatalf("not monotonic at fair=%v market=%v: %v < %v", fair, m, d, prev)
			}
			prev = d
		}
	}
}

func TestCompare_Moneyline(t *testing.T) {
	snap := testSnapshot()
	snap.Moneyline = &models.MoneylineQuote{Home: 2.30, Draw: 3.50, Away: 3.60}
	fair := &models.FairPriceSet{Moneyline: models.MoneylineQuote{Home: 2.00, Draw: 3.50, Away: 3.80}}

	r := Compare(snap, fair, 10, time.Now())
	if r.Moneyline.Outcome != OutcomeCompared || len(r.Moneyline.Signals) != 1 {
		t.Fatalf("moneyline report = %+v", r.Moneyline)
	}
	s := r.Moneyline.Signals[0]
	if s.Market != "moneyline" || !s.Flagged {
		t.Errorf("signal = %+v", s)
	}
	want := []float64{15.0, 0.0, -5.263}
	for i, side := range s.Sides {
		if side.Deviation != want[i] {
			t.Errorf("side %s deviation = %v, want %v", side.Side, side.Deviation, want[i])
		}
	}
	wantDetail := "Moneyline: 2.30 - 3.50 - 3.60 || Poisson: 2 - 3.5 - 3.8 => Value = (15 %) - (0 %) - (-5.263 %)"
	if s.Detail != wantDetail {
		t.Errorf("detail = %q, want %q", s.Detail, wantDetail)
	}
	if r.Handicaps.Outcome != OutcomeNoHandicaps || r.Totals.Outcome != OutcomeNoTotals {
		t.Errorf("outcomes = %q / %q", r.Handicaps.Outcome, r.Totals.Outcome)
	}
}

func TestCompare_ThresholdIsInclusive(t *testing.T) {
	snap := testSnapshot()
	snap.Moneyline = &models.MoneylineQuote{Home: 2.20, Draw: 3.0, Away: 3.0}
	fair := &models.FairPriceSet{Moneyline: models.MoneylineQuote{Home: 2.00, Draw: 3.50, Away: 3.80}}

	if r := Compare(snap, fair, 10, time.Now()); !r.Moneyline.Signals[0].Flagged {
		t.Error("deviation equal to threshold should be flagged")
	}
	if r := Compare(snap, fair, 11, time.Now()); r.Moneyline.Signals[0].Flagged {
		t.Error("deviation below threshold should not be flagged")
	}
}

func TestCompare_NoTotals(t *testing.T) {
	snap := testSnapshot()
	fair := &models.FairPriceSet{
		Totals: map[float64]models.TotalQuote{5.5: {Line: 5.5, Over: 1.9, Under: 2.1}},
	}
	r := Compare(snap, fair, 10, time.Now())
	if r.Totals.Outcome != OutcomeNoTotals {
		t.Errorf("totals outcome = %q", r.Totals.Outcome)
	}
	if len(r.Totals.Signals) != 0 || len(r.Signals()) != 0 {
		t.Errorf("expected no signals, got %+v", r.Signals())
	}
}

func TestCompare_UnmodeledLineSkipped(t *testing.T) {
	snap := testSnapshot()
	snap.Handicaps = []models.HandicapQuote{
		{Line: -1.5, Home: 2.60, Away: 1.55},
		{Line: 0.5, Home: 1.70, Away: 2.20},
		{Line: 1.5, Home: 1.50, Away: 2.70},
	}
	fair := &models.FairPriceSet{
		Handicaps: map[float64]models.HandicapQuote{
			-1.5: {Line: -1.5, Home: 2.50, Away: 1.667},
			1.5:  {Line: 1.5, Home: 1.40, Away: 3.50},
		},
	}
	r := Compare(snap, fair, 5, time.Now())
	if len(r.Handicaps.Signals) != 2 {
		t.Fatalf("signals = %+v", r.Handicaps.Signals)
	}
	for _, s := range r.Handicaps.Signals {
		if s.Line == 0.5 {
			t.Errorf("line 0.5 should be skipped: %+v", s)
		}
	}
	if len(r.Handicaps.Unmodeled) != 1 || r.Handicaps.Unmodeled[0] != 0.5 {
		t.Errorf("unmodeled = %v", r.Handicaps.Unmodeled)
	}

	first := r.Handicaps.Signals[0]
	if first.Market != "handicap:-1.5" || first.Sides[0].Deviation != 4.0 || first.Flagged {
		t.Errorf("first = %+v", first)
	}
	second := r.Handicaps.Signals[1]
	if second.Sides[0].Deviation != 7.143 || !second.Flagged {
		t.Errorf("second = %+v", second)
	}
	wantDetail := "Handicap 1.5: 1.50 / 2.70 || Poisson: 1.4 / 3.5 => Value = 7.143 % / -22.857 %"
	if second.Detail != wantDetail {
		t.Errorf("detail = %q, want %q", second.Detail, wantDetail)
	}
}

func TestCompare_TotalsOverUnder(t *testing.T) {
	snap := testSnapshot()
	snap.Totals = []models.TotalQuote{{Line: 5.5, Over: 1.80, Under: 2.30}}
	fair := &models.FairPriceSet{
		Totals: map[float64]models.TotalQuote{5.5: {Line: 5.5, Over: 2.0, Under: 2.0}},
	}
	r := Compare(snap, fair, 10, time.Now())
	s := r.Totals.Signals[0]
	if s.Market != "total:5.5" || s.Sides[0].Side != "over" || s.Sides[1].Deviation != 15.0 || !s.Flagged {
		t.Errorf("signal = %+v", s)
	}
}

func TestDetect_AppendsOnlyFlagged(t *testing.T) {
	stats := &fakeStats{}
	d := NewDetector(10, stats)

	snap := testSnapshot()
	snap.Moneyline = &models.MoneylineQuote{Home: 2.0, Draw: 3.5, Away: 3.8}
	fair := &models.FairPriceSet{Moneyline: models.MoneylineQuote{Home: 2.0, Draw: 3.5, Away: 3.8}}

	r, err := d.Detect(context.Background(), snap, fair)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(r.Flagged()) != 0 || len(stats.blocks) != 0 {
		t.Fatalf("unexpected append: %v", stats.blocks)
	}
	if r.StatsBlock() != "" {
		t.Errorf("StatsBlock = %q", r.StatsBlock())
	}

	snap.Moneyline = &models.MoneylineQuote{Home: 2.3, Draw: 3.5, Away: 3.6}
	snap.Totals = []models.TotalQuote{{Line: 5.5, Over: 1.9, Under: 1.9}}
	fair.Totals = map[float64]models.TotalQuote{5.5: {Line: 5.5, Over: 1.9, Under: 1.9}}
	r, err = d.Detect(context.Background(), snap, fair)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(stats.blocks) != 1 {
		t.Fatalf("blocks = %v", stats.blocks)
	}
	block := stats.blocks[0]
	if !strings.HasPrefix(block, "2026-10-17 19:00 Boston Bruins - Toronto Maple Leafs https://") {
		t.Errorf("block header = %q", block)
	}
	if !strings.Contains(block, "Moneyline: 2.30 - 3.50 - 3.60") {
		t.Errorf("block misses flagged moneyline: %q", block)
	}
	if strings.Contains(block, "Total 5.5") {
		t.Errorf("block contains unflagged total: %q", block)
	}
	if !strings.Contains(r.String(), ValueMarker) || !strings.Contains(r.String(), "no handicaps") {
		t.Errorf("report = %q", r.String())
	}
}

func TestDetect_LogFailureKeepsReport(t *testing.T) {
	stats := &fakeStats{err: errors.New("disk full")}
	d := NewDetector(10, stats)

	snap := testSnapshot()
	snap.Moneyline = &models.MoneylineQuote{Home: 2.3, Draw: 3.5, Away: 3.6}
	fair := &models.FairPriceSet{Moneyline: models.MoneylineQuote{Home: 2.0, Draw: 3.5, Away: 3.8}}

	r, err := d.Detect(context.Background(), snap, fair)
	if err == nil {
		t.Fatal("expected append error")
	}
	if r == nil || len(r.Flagged()) != 1 {
		t.Fatalf("report lost on append failure: %+v", r)
	}
}

func TestDetect_NilStats(t *testing.T) {
	d := NewDetector(10, nil)
	snap := testSnapshot()
	snap.Moneyline = &models.MoneylineQuote{Home: 2.3, Draw: 3.5, Away: 3.6}
	fair := &models.FairPriceSet{Moneyline: models.MoneylineQuote{Home: 2.0, Draw: 3.5, Away: 3.8}}
	if _, err := d.Detect(context.Background(), snap, fair); err != nil {
		t.Fatalf("Detect: %v", err)
	}
}
