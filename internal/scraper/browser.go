package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/Vodeneev/valuebet/internal/pkg/config"
	"github.com/Vodeneev/valuebet/internal/pkg/line"
)

// Browser fetches odds pages with headless Chrome. Every call gets its own
// browser process, so the handicap and totals pages of a match can load at
// the same time.
type Browser struct {
	userAgent string
	timeout   time.Duration
	wait      time.Duration
	leagueURL string
}

func NewBrowser(cfg *config.ScraperConfig) *Browser {
	return &Browser{
		userAgent: cfg.UserAgent,
		timeout:   cfg.PageTimeout,
		wait:      cfg.Wait,
		leagueURL: cfg.LeagueURL,
	}
}

var (
	_ Fetcher = (*Browser)(nil)
	_ Lister  = (*Browser)(nil)
)

// run opens a fresh headless browser, loads url and evaluates js into out.
func (b *Browser) run(ctx context.Context, url, js string, out interface{}) error {
	chromeDir, err := os.MkdirTemp("", "valuebet_chrome_")
	if err != nil {
		return fmt.Errorf("create chrome temp dir: %w", err)
	}
	defer os.RemoveAll(chromeDir)

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserDataDir(chromeDir),
		chromedp.UserAgent(b.userAgent),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	ctx, cancel = chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, v ...interface{}) {
		slog.Debug("chromedp", "message", fmt.Sprintf(format, v...))
	}))
	defer cancel()

	start := time.Now()
	err = chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(b.wait),
		chromedp.Evaluate(js, out),
	)
	if err != nil {
		return fmt.Errorf("chromedp %s: %w", url, err)
	}
	slog.Debug("Page scraped", "url", url, "duration", time.Since(start))
	return nil
}

const upcomingJS = `(() => {
	const out = [];
	const rows = Array.from(document.querySelectorAll('table.table-main--leaguefixtures tbody tr')).slice(1);
	for (const row of rows) {
		if (!row.querySelector('td.table-main__odds button')) continue;
		const a = row.querySelector('td:nth-child(2) a.in-match');
		if (a && a.href) out.push(a.href);
	}
	return out;
})()`

// UpcomingMatchURLs lists fixtures on the league page that already have odds.
func (b *Browser) UpcomingMatchURLs(ctx context.Context) ([]string, error) {
	var urls []string
	if err := b.run(ctx, b.leagueURL, upcomingJS, &urls); err != nil {
		return nil, err
	}
	return urls, nil
}

const matchPageJS = `(() => {
	const text = (el) => el ? el.textContent.trim() : '';
	const res = {
		title: text(document.querySelector('span.list-breadcrumb__item__in')),
		date: text(document.querySelector('p.list-details__item__date')),
		moneyline: [],
	};
	const rows = document.querySelectorAll('table.table-main.sortable tbody tr[data-originid="1"]');
	for (const row of rows) {
		const tds = row.querySelectorAll('td');
		if (tds.length < 3) continue;
		res.moneyline.push({
			bookmaker: text(row.querySelector('td.h-text-left.over-s-only a')),
			home: tds[tds.length - 3].getAttribute('data-odd') || '',
			draw: tds[tds.length - 2].getAttribute('data-odd') || '',
			away: tds[tds.length - 1].getAttribute('data-odd') || '',
		});
	}
	return res;
})()`

type matchPageResult struct {
	Title     string `json:"title"`
	Date      string `json:"date"`
	Moneyline []struct {
		Bookmaker string `json:"bookmaker"`
		Home      string `json:"home"`
		Draw      string `json:"draw"`
		Away      string `json:"away"`
	} `json:"moneyline"`
}

func (b *Browser) FetchMatchPage(ctx context.Context, url string) (*MatchPage, error) {
	var res matchPageResult
	if err := b.run(ctx, url, matchPageJS, &res); err != nil {
		return nil, err
	}
	page := &MatchPage{Title: res.Title, KickoffText: res.Date}
	for _, r := range res.Moneyline {
		h, err1 := parseOdds(r.Home)
		d, err2 := parseOdds(r.Draw)
		a, err3 := parseOdds(r.Away)
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		page.Moneyline = append(page.Moneyline, line.MoneylineRow{Bookmaker: r.Bookmaker, Home: h, Draw: d, Away: a})
	}
	return page, nil
}

// Each block on the handicap/totals page is one line: the line cell sits on
// the first row and applies to every bookmaker row of the block.
const lineRowsJS = `(() => {
	const text = (el) => el ? el.textContent.trim() : '';
	const out = [];
	const blocks = document.querySelectorAll('#odds-content > .box-overflow > div');
	for (const block of blocks) {
		const rows = block.querySelectorAll('table tbody tr');
		if (rows.length === 0) continue;
		const lineText = text(rows[0].querySelector('td.table-main__doubleparameter'));
		for (const row of rows) {
			const tds = row.querySelectorAll('td');
			if (tds.length < 2) continue;
			out.push({
				bookmaker: text(row.querySelector('td.h-text-left.over-s-only a')),
				line: lineText,
				a: tds[tds.length - 2].getAttribute('data-odd') || '',
				b: tds[tds.length - 1].getAttribute('data-odd') || '',
			});
		}
	}
	return out;
})()`

type lineRowResult struct {
	Bookmaker string `json:"bookmaker"`
	Line      string `json:"line"`
	A         string `json:"a"`
	B         string `json:"b"`
}

func (b *Browser) FetchLineRows(ctx context.Context, url string) ([]line.RawRow, error) {
	var res []lineRowResult
	if err := b.run(ctx, url, lineRowsJS, &res); err != nil {
		return nil, err
	}
	rows := make([]line.RawRow, 0, len(res))
	for _, r := range res {
		a, err1 := parseOdds(r.A)
		bOdds, err2 := parseOdds(r.B)
		if err1 != nil || err2 != nil {
			continue
		}
		rows = append(rows, line.RawRow{Bookmaker: r.Bookmaker, LineText: r.Line, OddsA: a, OddsB: bOdds})
	}
	return rows, nil
}

func parseOdds(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
