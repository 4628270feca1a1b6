package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// StatsSeparator terminates every block in the stats log.
var StatsSeparator = strings.Repeat("=", 100)

// StatsLog is the append-only, human-readable audit trail of flagged value.
type StatsLog struct {
	path string
	mu   sync.Mutex
}

func NewStatsLog(path string) *StatsLog {
	return &StatsLog{path: path}
}

func (s *StatsLog) Path() string {
	return s.path
}

// AppendBlock writes block followed by the separator line.
func (s *StatsLog) AppendBlock(ctx context.Context, block string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create stats dir: %w", err)
		}
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open stats file: %w", err)
	}

	block = strings.TrimRight(block, "\n")
	_, werr := fmt.Fprintf(f, "%s\n%s\n", block, StatsSeparator)
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("append stats block: %w", werr)
	}
	if cerr != nil {
		return fmt.Errorf("close stats file: %w", cerr)
	}
	return nil
}
