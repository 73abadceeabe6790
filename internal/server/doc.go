// Package server exposes registered icon sets over HTTP using echo.
//
// Routes:
//
//	GET /:prefix.json?icons=a,b     batch lookup (lookup.GetIcons)
//	GET /:prefix/:name.json         one resolved icon (lookup.GetIcon)
//	GET /:prefix/:name.svg          the same icon rendered as SVG
//	GET /collections                registered icon sets
//	GET /_health                    status, version and storage counters
//
// Unknown prefixes and icons answer 404 with a GenericStatus body. Batch
// responses are cached in an LRU keyed by prefix, icon set version and the
// sorted name list, so a re-import never serves stale data.
package server
