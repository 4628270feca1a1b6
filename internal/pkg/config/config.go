package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a required setting is missing or malformed.
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Value    ValueConfig    `yaml:"value"`
	Ratings  RatingsConfig  `yaml:"ratings"`
	Scraper  ScraperConfig  `yaml:"scraper"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
	Telegram TelegramConfig `yaml:"telegram"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ValueConfig struct {
	ModelValueDifference int    `yaml:"model_value_difference"` // threshold in percent, shared by all markets
	StatsFile            string `yaml:"stats_file"`
}

type RatingsConfig struct {
	URL                   string        `yaml:"url"` // venue letter (H/A) is appended
	MinimalMatchesToCount int           `yaml:"minimal_matches_to_count"`
	Proxy                 string        `yaml:"proxy"`
	UserAgent             string        `yaml:"user_agent"`
	Timeout               time.Duration `yaml:"timeout"`
	CacheTTL              time.Duration `yaml:"cache_ttl"`
}

type ScraperConfig struct {
	LeagueURL      string        `yaml:"league_url"`
	Bookmakers     []string      `yaml:"bookmakers"` // priority order, highest first
	MinOdds        float64       `yaml:"min_odds"`
	HandicapSuffix string        `yaml:"handicap_suffix"`
	TotalsSuffix   string        `yaml:"totals_suffix"`
	PageTimeout    time.Duration `yaml:"page_timeout"`
	Wait           time.Duration `yaml:"wait"` // time given to the page scripts to render odds tables
	UserAgent      string        `yaml:"user_agent"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // optional JSON log file
}

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/132.0.0.0 Safari/537.36"
	defaultLeagueURL = "https://www.betexplorer.com/hockey/usa/nhl/"
	defaultRatings   = "https://www.naturalstattrick.com/teamtable.php?sit=5v5&score=all&rate=y&team=all&loc="
)

// Load reads the YAML config, overlays environment variables (optionally from
// envFile) and validates the result.
func Load(configPath, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config file: %v", ErrInvalidConfig, err)
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: TELEGRAM_CHAT_ID: %v", ErrInvalidConfig, err)
		}
		c.Telegram.ChatID = id
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("XG_PROXY"); v != "" {
		c.Ratings.Proxy = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Value.StatsFile == "" {
		c.Value.StatsFile = "stats.txt"
	}
	if c.Ratings.URL == "" {
		c.Ratings.URL = defaultRatings
	}
	if c.Ratings.UserAgent == "" {
		c.Ratings.UserAgent = defaultUserAgent
	}
	if c.Ratings.Timeout <= 0 {
		c.Ratings.Timeout = 30 * time.Second
	}
	if c.Ratings.CacheTTL <= 0 {
		c.Ratings.CacheTTL = 6 * time.Hour
	}
	if c.Scraper.LeagueURL == "" {
		c.Scraper.LeagueURL = defaultLeagueURL
	}
	if len(c.Scraper.Bookmakers) == 0 {
		c.Scraper.Bookmakers = []string{"Pinnacle", "1xBet", "BetVictor"}
	}
	if c.Scraper.MinOdds == 0 {
		c.Scraper.MinOdds = 1.50
	}
	if c.Scraper.HandicapSuffix == "" {
		c.Scraper.HandicapSuffix = "#ah"
	}
	if c.Scraper.TotalsSuffix == "" {
		c.Scraper.TotalsSuffix = "#ou"
	}
	if c.Scraper.PageTimeout <= 0 {
		c.Scraper.PageTimeout = 60 * time.Second
	}
	if c.Scraper.Wait <= 0 {
		c.Scraper.Wait = 5 * time.Second
	}
	if c.Scraper.UserAgent == "" {
		c.Scraper.UserAgent = defaultUserAgent
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks the settings the analysis cannot run without.
func (c *Config) Validate() error {
	if c.Value.ModelValueDifference <= 0 {
		return fmt.Errorf("%w: value.model_value_difference must be a positive integer", ErrInvalidConfig)
	}
	if c.Ratings.MinimalMatchesToCount <= 0 {
		return fmt.Errorf("%w: ratings.minimal_matches_to_count must be a positive integer", ErrInvalidConfig)
	}
	if c.Scraper.MinOdds < 1 {
		return fmt.Errorf("%w: scraper.min_odds must be at least 1.0", ErrInvalidConfig)
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == 0 {
		return fmt.Errorf("%w: telegram.chat_id is required when bot_token is set", ErrInvalidConfig)
	}
	return nil
}
