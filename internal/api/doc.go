// Package api exposes the application services the HTTP layer and CLI build
// on. Services wrap the library store behind narrow interfaces and return
// transport-friendly DTOs rather than storage models.
package api
