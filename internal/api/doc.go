// Package api hosts the operations HTTP server of a scrape run. Routes:
//   - GET /healthz and /readyz for probes.
//   - GET /metrics for Prometheus scraping.
//   - GET /v1/runs/last for the summary of the last finished run.
package api
