// Package middleware provides HTTP middleware for the SKU renamer server.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Response compression (gzip) for JSON and SVG bodies
//   - Prometheus request metrics with normalized paths
//   - Request body size limits
package middleware
