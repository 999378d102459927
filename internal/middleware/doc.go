// Package middleware provides HTTP middleware for the gallery server.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics with bounded label cardinality
//   - Gzip compression for manifest and JSON responses
//   - Configurable filtering for tile traffic and health checks
package middleware
