// check-proxies tests proxies against the xG ratings site: each one must
// return a non-empty home-games table. Use it when the analyzer reports that
// there is no xG data.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/Vodeneev/valuebet/internal/pkg/config"
	"github.com/Vodeneev/valuebet/internal/pkg/parserutil"
	"github.com/Vodeneev/valuebet/internal/pkg/ratings"
)

const timeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "configs/settings.yaml", "Path to YAML config")
	envFile := flag.String("env", ".env", "Path to .env file")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// Proxies from arguments plus the configured one; "" means a direct connection.
	seen := make(map[string]struct{})
	var list []string
	for _, p := range append(flag.Args(), cfg.Ratings.Proxy) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			list = append(list, p)
		}
	}

	fmt.Printf("Checking %d proxies (timeout %s, ratings URL %s)...\n\n", len(list), timeout, cfg.Ratings.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	teams := make([]int, len(list))
	tasks := make([]parserutil.Task, len(list))
	for i, proxyURL := range list {
		rc := cfg.Ratings
		rc.Proxy = proxyURL
		tasks[i] = parserutil.Task{Name: maskProxy(proxyURL), Timeout: timeout, Run: func(ctx context.Context) error {
			src, err := ratings.NewHTTPSource(&rc)
			if err != nil {
				return err
			}
			table, err := src.FetchTable(ctx, ratings.VenueHome)
			if err != nil {
				return err
			}
			if len(table) == 0 {
				return ratings.ErrNoRatings
			}
			teams[i] = len(table)
			return nil
		}}
	}
	errs := parserutil.RunTasks(ctx, tasks...)

	okCount := 0
	for i, err := range errs {
		if err == nil {
			okCount++
			fmt.Printf("[OK] %s -> %d teams\n", maskProxy(list[i]), teams[i])
		} else {
			fmt.Printf("[FAIL] %s -> %v\n", maskProxy(list[i]), err)
		}
	}

	fmt.Printf("\n--- Summary: %d OK, %d FAIL (total %d)\n", okCount, len(list)-okCount, len(list))
	if okCount == 0 {
		fmt.Println("All proxies failed. Possible causes: ban by the ratings site, expired payment, wrong credentials.")
		os.Exit(1)
	}
}

func maskProxy(proxyURL string) string {
	if proxyURL == "" {
		return "direct"
	}
	u, err := url.Parse(proxyURL)
	if err != nil {
		return proxyURL
	}
	if u.User != nil {
		u.User = url.User(u.User.Username())
	}
	return u.String()
}
