package scraper

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Vodeneev/valuebet/internal/pkg/line"
)

// ErrScrapeFailed means the match page itself (teams, kickoff) could not be read.
var ErrScrapeFailed = errors.New("scrape failed")

// MatchPage is the raw content of a match's main page.
type MatchPage struct {
	Title       string // "Home - Away"
	KickoffText string // "17.10.2026 - 19:00"
	Moneyline   []line.MoneylineRow
}

// Fetcher loads raw rows from the odds site.
type Fetcher interface {
	FetchMatchPage(ctx context.Context, url string) (*MatchPage, error)
	FetchLineRows(ctx context.Context, url string) ([]line.RawRow, error)
}

// Lister finds match pages worth analysing.
type Lister interface {
	UpcomingMatchURLs(ctx context.Context) ([]string, error)
}

// ParseTeams splits a "Home - Away" title.
func ParseTeams(title string) (home, away string, ok bool) {
	parts := strings.Split(title, " - ")
	if len(parts) < 2 {
		return "", "", false
	}
	home = strings.TrimSpace(parts[0])
	away = strings.TrimSpace(parts[len(parts)-1])
	if home == "" || away == "" {
		return "", "", false
	}
	return home, away, true
}

// ParseKickoff reads "DD.MM.YYYY - HH:MM" in now's location. When the text is
// malformed it falls back to now, truncated to the minute.
func ParseKickoff(text string, now time.Time) time.Time {
	fallback := now.Truncate(time.Minute)

	datePart, timePart, found := strings.Cut(text, "-")
	if !found {
		return fallback
	}
	dmy := strings.Split(strings.TrimSpace(datePart), ".")
	hm := strings.Split(strings.TrimSpace(timePart), ":")
	if len(dmy) != 3 || len(hm) < 2 {
		return fallback
	}
	nums := make([]int, 0, 5)
	for _, s := range []string{dmy[2], dmy[1], dmy[0], hm[0], hm[1]} {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fallback
		}
		nums = append(nums, n)
	}
	year, month, day, hour, minute := nums[0], nums[1], nums[2], nums[3], nums[4]
	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 {
		return fallback
	}
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, now.Location())
}

// WithSuffix appends a page-view suffix ("#ah", "#ou") to a match URL.
func WithSuffix(url, suffix string) string {
	if strings.HasSuffix(url, "/") {
		return url + suffix
	}
	return url + "/" + suffix
}
