package s0_load

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/wonny/clv/internal/contracts"
	"github.com/wonny/clv/pkg/logger"
)

// Source reads raw transactions from one backing store
type Source interface {
	Name() string
	Read(ctx context.Context) ([]contracts.RawTransaction, error)
}

// CachedLoader implements S0: memoises the first successful read for the life of the process
// ⭐ SSOT: 소스 캐시는 여기서만 (실패는 캐시하지 않음, Reset 으로만 무효화)
type CachedLoader struct {
	source Source
	logger *logger.Logger

	mu       sync.Mutex
	rows     []contracts.RawTransaction
	loaded   bool
	loadedAt time.Time
}

// NewCachedLoader wraps a source with process-lifetime memoisation
func NewCachedLoader(source Source, log *logger.Logger) *CachedLoader {
	return &CachedLoader{
		source: source,
		logger: log.Component("s0_load"),
	}
}

// Load returns the raw rows, reading the source only on the first successful call.
// The returned slice is a copy; callers may not affect the cache.
func (l *CachedLoader) Load(ctx context.Context) ([]contracts.RawTransaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.loaded {
		l.logger.WithFields(map[string]interface{}{
			"source":    l.source.Name(),
			"rows":      len(l.rows),
			"loaded_at": l.loadedAt.Format(time.RFC3339),
		}).Debug("serving cached transaction log")
		return slices.Clone(l.rows), nil
	}

	start := time.Now()
	rows, err := l.source.Read(ctx)
	if err != nil {
		if !errors.Is(err, contracts.ErrDataLoad) && ctx.Err() == nil {
			err = &contracts.DataLoadError{Source: l.source.Name(), Reason: "read", Err: err}
		}
		return nil, err
	}

	l.rows = rows
	l.loaded = true
	l.loadedAt = time.Now()

	l.logger.WithFields(map[string]interface{}{
		"source":   l.source.Name(),
		"rows":     len(rows),
		"duration": time.Since(start).String(),
	}).Info("transaction log loaded")

	return slices.Clone(rows), nil
}

// Sample returns the first n raw rows (display "sample data")
func (l *CachedLoader) Sample(ctx context.Context, n int) ([]contracts.RawTransaction, error) {
	rows, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	if n < len(rows) {
		rows = rows[:n]
	}
	return rows, nil
}

// Reset drops the cached rows so the next Load re-reads the source
func (l *CachedLoader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.rows = nil
	l.loaded = false
	l.loadedAt = time.Time{}
	l.logger.WithField("source", l.source.Name()).Info("transaction log cache reset")
}

// Cached reports whether a successful read is memoised
func (l *CachedLoader) Cached() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

// SourceName returns the wrapped source name
func (l *CachedLoader) SourceName() string {
	return l.source.Name()
}
