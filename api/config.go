// Package api provides a read-only HTTP API over the answer archive.
package api

// DefaultListenAddr is used when Config.ListenAddr is empty.
const DefaultListenAddr = ":8089"

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8089")
	ListenAddr string
}
