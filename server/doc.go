// Package server provides the gin-based HTTP server that hosts the authkit
// router, with HTTP/2 cleartext support and component lifecycle management.
//
// # Middleware
//
// Server-level middleware (server/middleware) wraps every mounted handler:
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: request id generation and propagation into the logger
//   - CORS: cross-origin configuration for cookie-carrying clients
//   - BodySizeLimit: request body size limits
//   - RequestLogger: request logging with duration tracking
package server
