// Package http serves the blog pages.
//
// Routes mount under the configured base path (default /blog):
//   - Listing: GET {base}, HTML or JSON ({"posts": [...]}) via Accept or ?format=json
//   - Post: GET {base}/{slug}
//   - Docs: GET /docs/{slug...}?ref=<ref>, defaulting to the latest branch
//   - Probes: GET /healthz, GET /metrics when metrics are enabled
//
// Host applications can register the handlers on their own mux.
package http
