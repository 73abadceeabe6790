package registry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/dreamware/iconshard/internal/iconset"
	"github.com/dreamware/iconshard/internal/shard"
)

// Report lists the outcome of a directory import.
type Report struct {
	Loaded []string         // prefixes, sorted
	Failed map[string]error // path -> error
}

// Importer parses icon set files, stores them through a Splitter and
// registers the result.
type Importer struct {
	registry *Registry
	splitter *shard.Splitter
	logger   *slog.Logger
	group    singleflight.Group

	// Parallelism limits concurrent imports in LoadDir. Defaults to
	// GOMAXPROCS.
	Parallelism int
}

// NewImporter creates an importer that registers icon sets in registry.
func NewImporter(registry *Registry, splitter *shard.Splitter, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		registry: registry,
		splitter: splitter,
		logger:   logger.With("component", "importer"),
	}
}

// Import stores set and registers it, replacing any previous set with the
// same prefix.
func (im *Importer) Import(ctx context.Context, set *iconset.IconSet) (*shard.StoredIconSet, error) {
	stored, err := im.splitter.Store(ctx, set, iconset.NewIndex(set))
	if err != nil {
		return nil, err
	}

	if previous, replaced := im.registry.Put(stored); replaced {
		im.logger.Info("replaced icon set",
			"prefix", set.Prefix,
			"version", stored.Version,
			"previousVersion", previous.Version,
		)
	}
	return stored, nil
}

// LoadFile imports the icon set stored in the JSON file at path.
// Concurrent calls for the same path share one import.
func (im *Importer) LoadFile(ctx context.Context, path string) (*shard.StoredIconSet, error) {
	v, err, shared := im.group.Do(path, func() (any, error) {
		start := time.Now()
		set, err := readFile(path)
		if err != nil {
			imports.WithLabelValues("error").Inc()
			return nil, err
		}

		stored, err := im.Import(ctx, set)
		if err != nil {
			imports.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("import %s: %w", path, err)
		}

		imports.WithLabelValues("ok").Inc()
		im.logger.Debug("imported icon set",
			"path", path,
			"prefix", set.Prefix,
			"duration", time.Since(start),
		)
		return stored, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		im.logger.Debug("joined running import", "path", path)
	}
	return v.(*shard.StoredIconSet), nil
}

func readFile(path string) (*iconset.IconSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open icon set: %w", err)
	}
	defer f.Close()

	set, err := iconset.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// LoadDir imports every *.json file in dir in parallel. A file that fails to
// import is reported in Report.Failed and does not stop the others; the
// returned error covers only problems listing dir.
func (im *Importer) LoadDir(ctx context.Context, dir string) (Report, error) {
	paths, err := listDir(dir)
	if err != nil {
		return Report{}, err
	}

	loaded := map[string]struct{}{}
	report := Report{Failed: map[string]error{}}
	for path, res := range im.loadPaths(ctx, paths) {
		if res.err != nil {
			report.Failed[path] = res.err
			continue
		}
		loaded[res.stored.Common.Prefix] = struct{}{}
	}

	report.Loaded = maps.Keys(loaded)
	slices.Sort(report.Loaded)
	im.logger.Info("imported icon sets",
		"dir", dir,
		"loaded", len(report.Loaded),
		"failed", len(report.Failed),
	)
	return report, nil
}

func listDir(dir string) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("list icon sets: %w", err)
	}
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list icon sets: %w", err)
	}
	return paths, nil
}

type loadResult struct {
	stored *shard.StoredIconSet
	err    error
}

// loadPaths imports paths with at most Parallelism imports running at once.
func (im *Importer) loadPaths(ctx context.Context, paths []string) map[string]loadResult {
	limit := im.Parallelism
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	var mu sync.Mutex
	results := make(map[string]loadResult, len(paths))

	var g errgroup.Group
	g.SetLimit(limit)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			stored, err := im.LoadFile(ctx, path)
			if err != nil {
				im.logger.Warn("failed to import icon set", "path", path, "err", err)
			}

			mu.Lock()
			results[path] = loadResult{stored: stored, err: err}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}
