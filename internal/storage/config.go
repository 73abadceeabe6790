package storage

import (
	"log/slog"
	"time"
)

// Config controls residency and eviction of a MemoryStorage.
type Config struct {
	// CacheDir is the directory holding cache files. Template expansion
	// ("{cache}") happens in the configuration layer, not here.
	CacheDir string `json:"cacheDir"`

	// MaxCount is the number of disk-backed items kept in memory.
	// 0 means unbounded.
	MaxCount int `json:"maxCount"`

	// MinExpiration is how long an item stays resident after its last use,
	// regardless of any other pressure.
	MinExpiration time.Duration `json:"minExpiration"`

	// Timer is the period of the background cleanup. 0 disables the timer.
	Timer time.Duration `json:"timer"`

	// CleanupAfter evicts items unused for this long. Requires Timer > 0,
	// otherwise it is ignored.
	CleanupAfter time.Duration `json:"cleanupAfter"`

	// AsyncRead reads cache files on a separate goroutine instead of the
	// goroutine that requested the item.
	AsyncRead bool `json:"asyncRead"`
}

// DefaultConfig returns the configuration used by the server unless
// overridden by flags.
func DefaultConfig() Config {
	return Config{
		CacheDir:      "{cache}/storage",
		MaxCount:      100,
		MinExpiration: 20 * time.Second,
		Timer:         time.Minute,
		AsyncRead:     true,
	}
}

// cleanupAfter returns the effective time-based policy.
func (c Config) cleanupAfter() time.Duration {
	if c.Timer <= 0 || c.CleanupAfter <= 0 {
		return 0
	}
	return c.CleanupAfter
}

// evicts reports whether any eviction policy is active. Without one, items
// are never written to disk.
func (c Config) evicts() bool {
	return c.MaxCount > 0 || c.cleanupAfter() > 0
}

// LogValue implements slog.LogValuer.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("dir", c.CacheDir),
		slog.Int("maxCount", c.MaxCount),
		slog.Duration("minExpiration", c.MinExpiration),
		slog.Duration("timer", c.Timer),
		slog.Duration("cleanupAfter", c.CleanupAfter),
		slog.Bool("asyncRead", c.AsyncRead),
	)
}

// Option customizes a MemoryStorage.
type Option func(*settings)

type settings struct {
	logger *slog.Logger
	now    func() time.Time
}

// WithLogger sets the logger used for I/O failures and evictions.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithClock replaces time.Now. Used by tests to drive expiration.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		s.now = now
	}
}
