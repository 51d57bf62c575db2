package providers

import "time"

const (
	// shutdownTimeout is the maximum time to wait for graceful shutdown of services.
	shutdownTimeout = 30 * time.Second

	// loadTimeout bounds the initial hydration of each state manager.
	loadTimeout = 15 * time.Second
)
