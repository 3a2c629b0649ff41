// Package component manages the lifecycle of infrastructure pieces such as
// the database, the redis client and the HTTP server.
//
// Components start in registration order and stop in reverse order, so
// register dependencies first.
package component
