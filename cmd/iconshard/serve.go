package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	cli "github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/dreamware/iconshard/internal/iconset"
	"github.com/dreamware/iconshard/internal/registry"
	"github.com/dreamware/iconshard/internal/server"
	"github.com/dreamware/iconshard/internal/shard"
	"github.com/dreamware/iconshard/internal/storage"
)

var splitFlags = []cli.Flag{
	&cli.IntFlag{
		Name:    "chunk-size",
		Usage:   "target chunk size in bytes of icon bodies; 0 disables splitting",
		Value:   shard.DefaultSplitConfig().ChunkSize,
		EnvVars: []string{"ICONSHARD_CHUNK_SIZE"},
	},
	&cli.IntFlag{
		Name:    "min-icons-per-chunk",
		Usage:   "smallest number of icons worth a chunk",
		Value:   shard.DefaultSplitConfig().MinIconsPerChunk,
		EnvVars: []string{"ICONSHARD_MIN_ICONS_PER_CHUNK"},
	},
}

func splitConfig(cctx *cli.Context) shard.SplitConfig {
	cfg := shard.DefaultSplitConfig()
	cfg.ChunkSize = cctx.Int("chunk-size")
	cfg.MinIconsPerChunk = cctx.Int("min-icons-per-chunk")
	if cctx.IsSet("auto-cleanup") {
		cfg.AutoCleanup = cctx.Bool("auto-cleanup")
	}
	return cfg
}

var serveCmd = &cli.Command{
	Name:  "serve",
	Usage: "run the icon API daemon",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:    "bind",
			Usage:   "local IP/port to bind the API to",
			Value:   ":3000",
			EnvVars: []string{"ICONSHARD_BIND"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs",
			Value:   ":3989",
			EnvVars: []string{"ICONSHARD_METRICS_LISTEN"},
		},
		&cli.StringFlag{
			Name:     "icons-dir",
			Usage:    "directory of icon set JSON files to serve",
			Required: true,
			EnvVars:  []string{"ICONSHARD_ICONS_DIR"},
		},
		&cli.StringFlag{
			Name:    "cache-dir",
			Usage:   "base directory substituted for {cache}",
			Value:   filepath.Join(os.TempDir(), "iconshard"),
			EnvVars: []string{"ICONSHARD_CACHE_DIR"},
		},
		&cli.StringFlag{
			Name:    "storage-dir",
			Usage:   "directory for chunk cache files, may contain {cache}",
			Value:   storage.DefaultConfig().CacheDir,
			EnvVars: []string{"ICONSHARD_STORAGE_DIR"},
		},
		&cli.BoolFlag{
			Name:    "purge-cache",
			Usage:   "delete chunk cache files left by a previous run",
			Value:   true,
			EnvVars: []string{"ICONSHARD_PURGE_CACHE"},
		},
		&cli.IntFlag{
			Name:    "max-count",
			Usage:   "disk-backed chunks kept in memory; 0 means unbounded",
			Value:   storage.DefaultConfig().MaxCount,
			EnvVars: []string{"ICONSHARD_MAX_COUNT"},
		},
		&cli.DurationFlag{
			Name:    "min-expiration",
			Usage:   "time a chunk stays in memory after use regardless of pressure",
			Value:   storage.DefaultConfig().MinExpiration,
			EnvVars: []string{"ICONSHARD_MIN_EXPIRATION"},
		},
		&cli.DurationFlag{
			Name:    "cleanup-timer",
			Usage:   "period of the background cleanup; 0 disables it",
			Value:   storage.DefaultConfig().Timer,
			EnvVars: []string{"ICONSHARD_CLEANUP_TIMER"},
		},
		&cli.DurationFlag{
			Name:    "cleanup-after",
			Usage:   "evict chunks unused for this long; needs --cleanup-timer",
			EnvVars: []string{"ICONSHARD_CLEANUP_AFTER"},
		},
		&cli.BoolFlag{
			Name:    "async-read",
			Usage:   "read cache files on a separate goroutine",
			Value:   storage.DefaultConfig().AsyncRead,
			EnvVars: []string{"ICONSHARD_ASYNC_READ"},
		},
		&cli.BoolFlag{
			Name:    "auto-cleanup",
			Usage:   "drop chunks from memory right after they are written",
			Value:   shard.DefaultSplitConfig().AutoCleanup,
			EnvVars: []string{"ICONSHARD_AUTO_CLEANUP"},
		},
		&cli.IntFlag{
			Name:    "response-cache-size",
			Usage:   "icon batch responses kept in memory; 0 disables the cache",
			Value:   1000,
			EnvVars: []string{"ICONSHARD_RESPONSE_CACHE_SIZE"},
		},
		&cli.DurationFlag{
			Name:    "reload-interval",
			Usage:   "re-import changed icon set files this often; 0 disables reloading",
			EnvVars: []string{"ICONSHARD_RELOAD_INTERVAL"},
		},
		&cli.StringSliceFlag{
			Name:    "cors-origins",
			Usage:   "allowed CORS origins; empty allows any",
			EnvVars: []string{"ICONSHARD_CORS_ORIGINS"},
		},
	}, splitFlags...),
	Action: runServe,
}

func storageConfig(cctx *cli.Context) (storage.Config, error) {
	dir, err := expandCacheDir(cctx.String("storage-dir"), cctx.String("cache-dir"))
	if err != nil {
		return storage.Config{}, err
	}
	return storage.Config{
		CacheDir:      dir,
		MaxCount:      cctx.Int("max-count"),
		MinExpiration: cctx.Duration("min-expiration"),
		Timer:         cctx.Duration("cleanup-timer"),
		CleanupAfter:  cctx.Duration("cleanup-after"),
		AsyncRead:     cctx.Bool("async-read"),
	}, nil
}

func runServe(cctx *cli.Context) error {
	logger := configLogger(cctx, os.Stdout)

	storeCfg, err := storageConfig(cctx)
	if err != nil {
		return err
	}
	if storeCfg.CleanupAfter > 0 && storeCfg.Timer <= 0 {
		logger.Warn("cleanup-after has no effect without cleanup-timer")
	}
	logger.Info("storage configured", "config", storeCfg)

	if cctx.Bool("purge-cache") {
		removed, err := storage.PurgeDir(storeCfg.CacheDir)
		if err != nil {
			logger.Warn("failed to purge cache dir", "dir", storeCfg.CacheDir, "err", err)
		} else if removed > 0 {
			logger.Info("purged stale cache files", "dir", storeCfg.CacheDir, "count", removed)
		}
	}

	store := storage.New[iconset.IconMap](storeCfg, storage.WithLogger(logger))
	defer store.Stop()

	reg := registry.New()
	importer := registry.NewImporter(reg, shard.NewSplitter(store, splitConfig(cctx), logger), logger)

	ctx, stop := signal.NotifyContext(cctx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	iconsDir := cctx.String("icons-dir")
	var reloader *registry.Reloader
	if interval := cctx.Duration("reload-interval"); interval > 0 {
		reloader = registry.NewReloader(importer, iconsDir, interval, logger)
		if err := reloader.Scan(ctx); err != nil {
			return fmt.Errorf("initial import: %w", err)
		}
	} else {
		report, err := importer.LoadDir(ctx, iconsDir)
		if err != nil {
			return fmt.Errorf("initial import: %w", err)
		}
		for path, err := range report.Failed {
			logger.Error("skipped icon set", "path", path, "err", err)
		}
	}
	if reg.Len() == 0 {
		logger.Warn("no icon sets loaded", "dir", iconsDir)
	}

	srv, err := server.New(reg, store, server.Config{
		Logger:       logger,
		Bind:         cctx.String("bind"),
		CacheSize:    cctx.Int("response-cache-size"),
		AllowOrigins: cctx.StringSlice("cors-origins"),
		Version:      versioninfo.Short(),
	})
	if err != nil {
		return fmt.Errorf("failed to construct server: %w", err)
	}
	if reloader != nil {
		srv.SetReloader(reloader)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		return runMetrics(gctx, cctx.String("metrics-listen"), logger)
	})
	if reloader != nil {
		g.Go(func() error {
			reloader.Start(gctx)
			return nil
		})
	}

	err = g.Wait()
	logger.Info("graceful shutdown complete")
	return err
}

// runMetrics serves /metrics until ctx is cancelled.
func runMetrics(ctx context.Context, listen string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	httpd := &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpd.Shutdown(shutdownCtx)
	}()

	logger.Info("starting metrics endpoint", "listen", listen)
	if err := httpd.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics endpoint: %w", err)
	}
	return nil
}
