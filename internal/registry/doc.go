// Package registry keeps track of the icon sets served by this process and
// loads them from disk.
//
// # Overview
//
// The Registry maps a prefix to the shard.StoredIconSet currently serving
// it. Request handlers only ever read from it; the Importer and the
// Reloader write to it.
//
//	┌──────────────┐    ┌──────────────┐    ┌──────────────┐
//	│  *.json file │───▶│   Importer   │───▶│   Registry   │
//	└──────────────┘    │ decode/split │    │ prefix → set │
//	       ▲            └──────────────┘    └──────────────┘
//	       │                                       ▲
//	┌──────────────┐                               │
//	│   Reloader   │───────── remove ──────────────┘
//	└──────────────┘
//
// # Importing
//
// Importer.LoadFile decodes one icon set file, splits it into storage
// chunks and registers it. Concurrent imports of the same path are
// coalesced with singleflight: the second caller gets the first caller's
// result. Importer.LoadDir imports a whole directory with a bounded errgroup
// and collects per-file failures instead of stopping at the first one.
//
// Re-importing a prefix replaces the registered set atomically. Chunks of the
// replaced set use different cache keys (see package shard) and simply age
// out of storage.
//
// # Reloading
//
// The Reloader polls the directory. New and modified files are imported,
// prefixes of deleted files are unregistered. A file that keeps failing is
// retried MaxFailures times and then parked until it changes again.
//
// # Metrics
//
//   - iconshard_registry_icon_sets
//   - iconshard_registry_imports_total{status}
//   - iconshard_registry_watched_files{status}
package registry
