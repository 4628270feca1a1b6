package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Vodeneev/valuebet/internal/analyzer"
	"github.com/Vodeneev/valuebet/internal/calculator"
	"github.com/Vodeneev/valuebet/internal/pkg/config"
	"github.com/Vodeneev/valuebet/internal/pkg/logging"
	"github.com/Vodeneev/valuebet/internal/pkg/poisson"
	"github.com/Vodeneev/valuebet/internal/pkg/ratings"
	"github.com/Vodeneev/valuebet/internal/pkg/storage"
	"github.com/Vodeneev/valuebet/internal/scraper"
)

const (
	defaultConfigPath = "configs/settings.yaml"
)

func main() {
	var configPath, envFile, matchURL string

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = defaultConfigPath
	}

	flag.StringVar(&configPath, "config", defaultConfig, "Path to config file (can be set via CONFIG_PATH env var)")
	flag.StringVar(&envFile, "env", ".env", "Path to .env file with secrets")
	flag.StringVar(&matchURL, "url", "", "Analyze a single match instead of all upcoming ones")
	flag.Parse()

	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	_, closeLog, err := logging.SetupLogger(&cfg.Logging, "analyzer")
	if err != nil {
		log.Printf("Warning: failed to setup logging: %v, continuing with default logger", err)
	} else {
		defer func() {
			if err := closeLog(); err != nil {
				log.Printf("Warning: failed to close log file: %v", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, matchURL); err != nil {
		slog.Error("Analyzer failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, matchURL string) error {
	var src ratings.Source
	httpSource, err := ratings.NewHTTPSource(&cfg.Ratings)
	if err != nil {
		return err
	}
	src = httpSource

	if cfg.Redis.Addr != "" {
		cache, err := storage.NewRedisRatingsCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Ratings.CacheTTL)
		if err != nil {
			slog.Warn("Redis unavailable, ratings will not be cached", "addr", cfg.Redis.Addr, "error", err)
		} else {
			defer cache.Close()
			src = ratings.NewCachedSource(httpSource, cache)
		}
	}

	slog.Info("Loading xG ratings", "url", cfg.Ratings.URL, "min_matches", cfg.Ratings.MinimalMatchesToCount)
	book, err := ratings.Load(ctx, src, cfg.Ratings.Timeout)
	if err != nil {
		if errors.Is(err, ratings.ErrNoRatings) {
			slog.Error("There is no xG data, possibly the ratings site banned us; try another proxy")
		}
		return err
	}

	browser := scraper.NewBrowser(&cfg.Scraper)
	stats := storage.NewStatsLog(cfg.Value.StatsFile)
	detector := calculator.NewDetector(cfg.Value.ModelValueDifference, stats)

	var sinks []analyzer.Sink
	if cfg.Postgres.DSN != "" {
		pg, err := storage.NewPostgresSignalStorage(&cfg.Postgres)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer pg.Close()
		sinks = append(sinks, analyzer.NewSignalSink(pg))
	}
	if cfg.Telegram.BotToken != "" {
		notifier, err := calculator.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			slog.Error("Telegram notifications disabled", "error", err)
		} else {
			defer notifier.Stop()
			sinks = append(sinks, notifier)
		}
	}

	a := analyzer.New(analyzer.Deps{
		LeagueURL: cfg.Scraper.LeagueURL,
		Lister:    browser,
		Acquirer:  scraper.NewAcquirer(browser, &cfg.Scraper),
		Ratings:   book,
		Model:     poisson.FairPrices,
		Detector:  detector,
		Sinks:     sinks,
	})

	if matchURL != "" {
		res, err := a.AnalyzeURL(ctx, matchURL)
		if err != nil {
			return err
		}
		if res.Report != nil {
			fmt.Print(res.Report.String())
		} else {
			fmt.Printf("%s: %s\n", res.URL, res.Outcome)
		}
		return res.Err
	}

	sum, err := a.AnalyzeAll(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Analyzed %d of %d matches, %d lines with value (see %s)\n",
		sum.Count(analyzer.OutcomeAnalyzed), len(sum.Results), sum.Flagged, stats.Path())
	return nil
}
