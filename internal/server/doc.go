// Package server exposes the HTTP API over the application services. Routing
// is gin-based; every response body is JSON. Sessions are identified by the
// X-Session-Key header, minted by the server on first contact.
package server
