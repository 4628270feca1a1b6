// Package ratings looks up team expected-goals ratings. Tables are fetched once
// per batch and injected into the analysis as a Book.
package ratings

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/Vodeneev/valuebet/internal/pkg/config"
	"github.com/Vodeneev/valuebet/internal/pkg/models"
)

// Venue selects the home-games or away-games table.
type Venue string

const (
	VenueHome Venue = "H"
	VenueAway Venue = "A"
)

// Source fetches one rating table.
type Source interface {
	FetchTable(ctx context.Context, venue Venue) (models.RatingTable, error)
}

// HTTPSource reads the team table page over plain HTTP; the page is static.
type HTTPSource struct {
	baseURL    string
	userAgent  string
	minMatches int
	httpClient *http.Client
}

func NewHTTPSource(cfg *config.RatingsConfig) (*HTTPSource, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("parse ratings proxy: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSource{
		baseURL:    cfg.URL,
		userAgent:  cfg.UserAgent,
		minMatches: cfg.MinimalMatchesToCount,
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
	}, nil
}

func (s *HTTPSource) FetchTable(ctx context.Context, venue Venue) (models.RatingTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+string(venue), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br, zstd")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s table: %w", venue, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s table: unexpected status %d", venue, resp.StatusCode)
	}

	body, err := decodeBody(resp)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return ParseTeamTable(body, s.minMatches)
}

// decodeBody unwraps the response body according to Content-Encoding.
func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "br":
		return io.NopCloser(brotli.NewReader(resp.Body)), nil
	case "gzip":
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		return zr, nil
	case "zstd":
		zr, err := zstd.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		return zr.IOReadCloser(), nil
	case "deflate":
		return flate.NewReader(resp.Body), nil
	default:
		return io.NopCloser(resp.Body), nil
	}
}
