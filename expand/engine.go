// Package expand provides a bounded occurrence-expansion engine on top
// of the recurrence package, with memoization of query results. It is
// meant for callers such as calendar-query handlers that evaluate the
// same recurrence against overlapping time ranges over and over.
package expand

import (
	"crypto/sha256"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cyp0633/librecur/recurrence"
)

// Config controls engine behavior.
type Config struct {
	// CacheEnabled turns result memoization on.
	CacheEnabled bool
	Cache        CacheConfig

	// MaxOccurrences caps a single expansion. 0 means no cap.
	MaxOccurrences int

	// Logger receives expansion diagnostics. Nil discards them.
	Logger *slog.Logger
}

// DefaultConfig provides sensible defaults for production use.
var DefaultConfig = Config{
	CacheEnabled:   true,
	Cache:          DefaultCacheConfig,
	MaxOccurrences: 1000,
}

// HighPerformanceConfig trades result freshness for throughput.
var HighPerformanceConfig = Config{
	CacheEnabled: true,
	Cache: CacheConfig{
		TTL:             30 * time.Minute,
		MaxEntries:      5000,
		CleanupInterval: 10 * time.Minute,
	},
	MaxOccurrences: 500,
}

// DisabledCacheConfig turns memoization off entirely.
var DisabledCacheConfig = Config{
	CacheEnabled:   false,
	MaxOccurrences: 1000,
}

// Engine expands recurrences within time ranges, optionally memoizing
// results. An Engine may be registered as an observer of a Recurrence to
// drop stale results as soon as it mutates.
type Engine struct {
	cache  *Cache
	config Config
	logger *slog.Logger
}

// New creates an engine with DefaultConfig.
func New() *Engine {
	return NewWithConfig(DefaultConfig)
}

// NewWithConfig creates an engine with custom configuration.
func NewWithConfig(config Config) *Engine {
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	e := &Engine{
		config: config,
		logger: config.Logger,
	}
	if config.CacheEnabled {
		e.cache = NewCache(config.Cache)
	}
	return e
}

// Occurrences returns every occurrence of rec within [from, to],
// truncated to the configured cap.
func (e *Engine) Occurrences(rec *recurrence.Recurrence, from, to time.Time) []time.Time {
	key := fingerprint(rec, "occurrences", from, to)
	if e.cache != nil {
		if v, ok := e.cache.Get(key); ok {
			return v.([]time.Time)
		}
	}

	occurrences := rec.OccurrencesBetween(from, to)
	if e.config.MaxOccurrences > 0 && len(occurrences) > e.config.MaxOccurrences {
		e.logger.Warn("expansion truncated",
			"from", from,
			"to", to,
			"cap", e.config.MaxOccurrences,
			"total", len(occurrences))
		occurrences = occurrences[:e.config.MaxOccurrences]
	}

	if e.cache != nil {
		e.cache.Set(key, occurrences)
	}
	return occurrences
}

// HasOccurrenceBetween reports whether rec has at least one occurrence
// within [from, to]. It uses nearest-neighbor search rather than full
// expansion, so the cost is independent of the range length.
func (e *Engine) HasOccurrenceBetween(rec *recurrence.Recurrence, from, to time.Time) bool {
	key := fingerprint(rec, "has-occurrence", from, to)
	if e.cache != nil {
		if v, ok := e.cache.Get(key); ok {
			return v.(bool)
		}
	}

	next, found := rec.NextOccurrence(from.Add(-time.Nanosecond)).Get()
	has := found && !next.After(to)

	if e.cache != nil {
		e.cache.Set(key, has)
	}
	return has
}

// RecurrenceUpdated implements recurrence.Observer: any mutation drops
// the memoized results, which may describe the old occurrence set.
func (e *Engine) RecurrenceUpdated(*recurrence.Recurrence) {
	if e.cache != nil {
		e.cache.Purge()
	}
}

// Close releases the engine's cache resources.
func (e *Engine) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}

// fingerprint derives a cache key from the recurrence's observable state
// and the query parameters.
func fingerprint(rec *recurrence.Recurrence, op string, from, to time.Time) string {
	h := sha256.New()
	io.WriteString(h, op)
	io.WriteString(h, from.Format(time.RFC3339Nano))
	io.WriteString(h, to.Format(time.RFC3339Nano))
	io.WriteString(h, rec.Start().Format(time.RFC3339Nano))
	fmt.Fprintf(h, "%t", rec.Floating())
	for _, rule := range rec.RRules() {
		io.WriteString(h, "r"+rule.String())
	}
	for _, rule := range rec.ExRules() {
		io.WriteString(h, "x"+rule.String())
	}
	for _, d := range rec.RDates() {
		io.WriteString(h, "rd"+d.Format(time.RFC3339Nano))
	}
	for _, t := range rec.RDateTimes() {
		io.WriteString(h, "rt"+t.Format(time.RFC3339Nano))
	}
	for _, d := range rec.ExDates() {
		io.WriteString(h, "xd"+d.Format(time.RFC3339Nano))
	}
	for _, t := range rec.ExDateTimes() {
		io.WriteString(h, "xt"+t.Format(time.RFC3339Nano))
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
