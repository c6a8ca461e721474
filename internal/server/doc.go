// Package server runs the HTTP listener of the status endpoint as a
// background worker with graceful shutdown.
package server
