package analyzer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Vodeneev/valuebet/internal/calculator"
	"github.com/Vodeneev/valuebet/internal/pkg/models"
	"github.com/Vodeneev/valuebet/internal/pkg/ratings"
	"github.com/Vodeneev/valuebet/internal/scraper"
)

const league = "https://www.betexplorer.com/hockey/usa/nhl/"

type fakeAcquirer struct {
	snaps    map[string]*models.MatchSnapshot
	acquired []string
}

func (f *fakeAcquirer) Acquire(ctx context.Context, url string) (*models.MatchSnapshot, error) {
	f.acquired = append(f.acquired, url)
	snap, ok := f.snaps[url]
	if !ok {
		return nil, fmt.Errorf("%w: %s", scraper.ErrScrapeFailed, url)
	}
	cp := *snap
	return &cp, nil
}

type fakeLister struct {
	urls []string
	err  error
}

func (f fakeLister) UpcomingMatchURLs(ctx context.Context) ([]string, error) {
	return f.urls, f.err
}

type recordingSink struct {
	reports []*calculator.Report
	err     error
}

func (s *recordingSink) Publish(ctx context.Context, r *calculator.Report) error {
	s.reports = append(s.reports, r)
	return s.err
}

type memoryStore struct {
	stored []models.ValueSignal
}

func (m *memoryStore) StoreSignals(ctx context.Context, signals []models.ValueSignal) error {
	m.stored = append(m.stored, signals...)
	return nil
}

func (m *memoryStore) Close() error { return nil }

func snapshot(home, away string) *models.MatchSnapshot {
	return &models.MatchSnapshot{
		Kickoff:   time.Date(2026, 10, 17, 19, 0, 0, 0, time.UTC),
		Home:      models.Team{Name: home},
		Away:      models.Team{Name: away},
		Moneyline: &models.MoneylineQuote{Home: 2.30, Draw: 3.50, Away: 3.60},
	}
}

func fixedModel(homeQ, awayQ float64) *models.FairPriceSet {
	return &models.FairPriceSet{Moneyline: models.MoneylineQuote{Home: 2.00, Draw: 3.50, Away: 3.80}}
}

func testBook() *ratings.Book {
	home := models.RatingTable{
		"Boston Bruins": {GamesPlayed: 10, XGF: 3.1, XGA: 2.5},
		"Utah Mammoth":  {GamesPlayed: 10, XGF: 2.8, XGA: 3.0},
		"Dallas Stars":  {GamesPlayed: 10, XGF: 3.0, XGA: 2.4},
	}
	away := models.RatingTable{
		"Toronto Maple Leafs": {GamesPlayed: 10, XGF: 2.9, XGA: 2.7},
		"Dallas Stars":        {GamesPlayed: 10, XGF: 2.6, XGA: 2.9},
	}
	return ratings.NewBook(home, away)
}

func TestAnalyzeAll_MixedOutcomes(t *testing.T) {
	thin := snapshot("Dallas Stars", "Boston Bruins")
	thin.Moneyline = nil

	acq := &fakeAcquirer{snaps: map[string]*models.MatchSnapshot{
		league + "bos-tor/1/": snapshot("Boston Bruins", "Toronto Maple Leafs"),
		league + "uta-sea/2/": snapshot("Utah Mammoth", "Seattle Kraken"),
		league + "dal-bos/3/": thin,
	}}
	urls := []string{league + "bos-tor/1/", league + "broken/9/", league + "uta-sea/2/", league + "dal-bos/3/"}

	sink := &recordingSink{err: errors.New("telegram down")}
	store := &memoryStore{}
	a := New(Deps{
		LeagueURL: league,
		Lister:    fakeLister{urls: urls},
		Acquirer:  acq,
		Ratings:   testBook(),
		Model:     fixedModel,
		Detector:  calculator.NewDetector(10, nil),
		Sinks:     []Sink{sink, NewSignalSink(store)},
	})

	sum, err := a.AnalyzeAll(context.Background())
	if err != nil {
		t.Fatalf("AnalyzeAll: %v", err)
	}
	if len(acq.acquired) != len(urls) {
		t.Fatalf("acquired %v, want all of %v", acq.acquired, urls)
	}

	want := []Outcome{OutcomeAnalyzed, OutcomeScrapeFailed, OutcomeNoRatings, OutcomeNoLines}
	for i, r := range sum.Results {
		if r.Outcome != want[i] {
			t.Errorf("result %d (%s) = %q, want %q", i, r.URL, r.Outcome, want[i])
		}
	}
	if !errors.Is(sum.Results[1].Err, scraper.ErrScrapeFailed) {
		t.Errorf("scrape failure err = %v", sum.Results[1].Err)
	}
	if sum.Flagged != 1 {
		t.Errorf("flagged = %d, want 1", sum.Flagged)
	}
	if len(sink.reports) != 1 {
		t.Errorf("sink got %d reports, want 1", len(sink.reports))
	}
	if len(store.stored) != 1 || store.stored[0].Market != "moneyline" {
		t.Errorf("stored = %+v", store.stored)
	}
}

func TestAnalyze_QualitiesFeedModel(t *testing.T) {
	var gotHome, gotAway float64
	model := func(h, a float64) *models.FairPriceSet {
		gotHome, gotAway = h, a
		return fixedModel(h, a)
	}
	acq := &fakeAcquirer{snaps: map[string]*models.MatchSnapshot{
		league + "bos-tor/1/": snapshot("Boston Bruins", "Toronto Maple Leafs"),
	}}
	a := New(Deps{LeagueURL: league, Acquirer: acq, Ratings: testBook(), Model: model, Detector: calculator.NewDetector(10, nil)})

	res, err := a.AnalyzeURL(context.Background(), league+"bos-tor/1/")
	if err != nil {
		t.Fatalf("AnalyzeURL: %v", err)
	}
	if res.Outcome != OutcomeAnalyzed || res.Report == nil {
		t.Fatalf("result = %+v", res)
	}
	// home: mean(3.1, 2.7); away: mean(2.9, 2.5)
	if diff(gotHome, 2.9) || diff(gotAway, 2.7) {
		t.Errorf("qualities = %v / %v, want 2.9 / 2.7", gotHome, gotAway)
	}
}

func TestAnalyzeURL_WrongLeague(t *testing.T) {
	acq := &fakeAcquirer{}
	a := New(Deps{LeagueURL: league, Acquirer: acq, Detector: calculator.NewDetector(10, nil)})

	_, err := a.AnalyzeURL(context.Background(), "https://www.betexplorer.com/football/england/premier-league/x/1/")
	if !errors.Is(err, ErrWrongURL) {
		t.Fatalf("expected ErrWrongURL, got %v", err)
	}
	if len(acq.acquired) != 0 {
		t.Errorf("acquired %v for a rejected url", acq.acquired)
	}
}

func TestAnalyzeAll_ListingFailure(t *testing.T) {
	a := New(Deps{Lister: fakeLister{err: errors.New("timeout")}, Acquirer: &fakeAcquirer{}})
	if _, err := a.AnalyzeAll(context.Background()); err == nil {
		t.Fatal("expected listing error")
	}
}

func TestAnalyzeAll_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	acq := &fakeAcquirer{}
	a := New(Deps{Lister: fakeLister{urls: []string{league + "a/1/", league + "b/2/"}}, Acquirer: acq})

	sum, err := a.AnalyzeAll(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if sum == nil || len(sum.Results) != 0 || len(acq.acquired) != 0 {
		t.Errorf("matches analyzed after cancel: %+v", acq.acquired)
	}
}

func diff(a, b float64) bool {
	d := a - b
	return d > 1e-9 || d < -1e-9
}
