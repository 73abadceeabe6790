package registry

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"
)

// File status values reported by the Reloader.
const (
	StatusUnknown = "unknown"
	StatusLoaded  = "loaded"
	StatusFailed  = "failed"
)

// FileStatus tracks one icon set file watched by a Reloader.
type FileStatus struct {
	Path             string    `json:"path"`
	Prefix           string    `json:"prefix,omitempty"`
	Status           string    `json:"status"`
	ModTime          time.Time `json:"modTime"`
	LastCheck        time.Time `json:"lastCheck"`
	LastLoaded       time.Time `json:"lastLoaded,omitempty"`
	ConsecutiveFails int       `json:"consecutiveFails,omitempty"`
}

// Reloader keeps the registry in sync with a directory of icon set files.
// Every interval it re-imports files that are new or changed and
// unregisters the prefixes of files that disappeared.
//
// A file that fails to import is retried on every scan until it has failed
// MaxFailures times in a row. After that it is left alone until its
// modification time changes.
//
// Thread-safe: all methods may be called concurrently.
type Reloader struct {
	importer *Importer
	dir      string
	interval time.Duration
	logger   *slog.Logger

	// MaxFailures is the number of failed imports after which a file is
	// marked failed. Defaults to 3.
	MaxFailures int

	// OnFailure is called without locks held when a file becomes failed.
	OnFailure func(path string, err error)

	mu    sync.RWMutex
	files map[string]*FileStatus

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewReloader creates a reloader for the *.json files in dir.
func NewReloader(importer *Importer, dir string, interval time.Duration, logger *slog.Logger) *Reloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reloader{
		importer:    importer,
		dir:         dir,
		interval:    interval,
		logger:      logger.With("component", "reloader"),
		MaxFailures: 3,
		files:       make(map[string]*FileStatus),
	}
}

// Start scans the directory every interval until ctx is cancelled or Stop
// is called. It does not scan immediately; call Scan first for that.
func (r *Reloader) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()

	r.wg.Add(1)
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reloader started", "dir", r.dir, "interval", r.interval)
	for {
		select {
		case <-ticker.C:
			if err := r.Scan(ctx); err != nil {
				r.logger.Warn("scan failed", "dir", r.dir, "err", err)
			}
		case <-ctx.Done():
			r.logger.Info("reloader stopped")
			return
		}
	}
}

// Stop halts a running Start and waits for it to return.
func (r *Reloader) Stop() {
	r.mu.RLock()
	cancel := r.cancel
	r.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
}

// Scan runs one synchronization pass.
func (r *Reloader) Scan(ctx context.Context) error {
	paths, err := listDir(r.dir)
	if err != nil {
		return err
	}

	now := time.Now()
	present := make(map[string]bool, len(paths))
	var changed []string

	r.mu.Lock()
	for _, path := range paths {
		present[path] = true
		info, err := os.Stat(path)
		if err != nil {
			continue
		}

		file, ok := r.files[path]
		if !ok {
			file = &FileStatus{Path: path, Status: StatusUnknown}
			r.files[path] = file
		}
		file.LastCheck = now

		switch {
		case !info.ModTime().Equal(file.ModTime):
			file.ModTime = info.ModTime()
			file.Status = StatusUnknown
			file.ConsecutiveFails = 0
			changed = append(changed, path)
		case file.Status == StatusUnknown:
			// Still failing, but below MaxFailures.
			changed = append(changed, path)
		}
	}

	var removed []string
	for path, file := range r.files {
		if present[path] {
			continue
		}
		delete(r.files, path)
		if file.Prefix != "" {
			removed = append(removed, file.Prefix)
		}
	}
	r.mu.Unlock()

	for _, prefix := range removed {
		// Another file may have taken over the prefix.
		if r.ownedBy(prefix) {
			continue
		}
		r.importer.registry.Remove(prefix)
		r.logger.Info("removed icon set", "prefix", prefix)
	}

	if len(changed) == 0 {
		r.updateGauges()
		return nil
	}

	results := r.importer.loadPaths(ctx, changed)

	type failure struct {
		path string
		err  error
	}
	var failed []failure

	r.mu.Lock()
	for path, res := range results {
		file, ok := r.files[path]
		if !ok {
			continue
		}
		if res.err != nil {
			file.ConsecutiveFails++
			if file.ConsecutiveFails >= r.MaxFailures && file.Status != StatusFailed {
				file.Status = StatusFailed
				failed = append(failed, failure{path: path, err: res.err})
			}
			continue
		}
		file.Status = StatusLoaded
		file.Prefix = res.stored.Common.Prefix
		file.LastLoaded = time.Now()
		file.ConsecutiveFails = 0
	}
	r.mu.Unlock()

	for _, f := range failed {
		r.logger.Error("giving up on icon set file", "path", f.path, "err", f.err)
		if r.OnFailure != nil {
			r.OnFailure(f.path, f.err)
		}
	}
	r.updateGauges()
	return nil
}

func (r *Reloader) ownedBy(prefix string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, file := range r.files {
		if file.Prefix == prefix {
			return true
		}
	}
	return false
}

func (r *Reloader) updateGauges() {
	counts := map[string]int{StatusUnknown: 0, StatusLoaded: 0, StatusFailed: 0}

	r.mu.RLock()
	for _, file := range r.files {
		counts[file.Status]++
	}
	r.mu.RUnlock()

	for status, n := range counts {
		watchedFiles.WithLabelValues(status).Set(float64(n))
	}
}

// Files returns a copy of the status of every watched file.
func (r *Reloader) Files() []FileStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]FileStatus, 0, len(r.files))
	for _, file := range r.files {
		out = append(out, *file)
	}
	return out
}

// File returns the status of path, or nil if it is not watched.
func (r *Reloader) File(path string) *FileStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	file, ok := r.files[path]
	if !ok {
		return nil
	}
	copied := *file
	return &copied
}
