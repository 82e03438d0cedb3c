// Package server runs the gin HTTP server behind an h2c handler so HTTP/2
// clients can hold many SSE streams over one connection.
//
// Middleware (server/middleware): recovery, request id, CORS, body size
// limit, request logging, OpenTelemetry request metrics and tenant cookie
// resolution.
//
// Endpoints (server/endpoint): /health, /info and /metrics.
package server
