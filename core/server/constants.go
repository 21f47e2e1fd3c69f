package server

import "time"

const (
	// DefaultReadTimeout bounds the time between bytes of a partially received request.
	DefaultReadTimeout = 15 * time.Second

	// DefaultWriteTimeout is the default timeout for writing the response.
	DefaultWriteTimeout = 15 * time.Second

	// DefaultIdleTimeout bounds how long a keep-alive connection waits for the next request.
	DefaultIdleTimeout = 60 * time.Second

	// DefaultShutdownTimeout is the default timeout for graceful shutdown.
	DefaultShutdownTimeout = 30 * time.Second

	// DefaultMaxHeaderBytes is the default maximum size of the request line plus headers.
	DefaultMaxHeaderBytes = 1 << 20 // 1 MB

	// DefaultMaxBodyBytes is the default maximum accepted Content-Length.
	DefaultMaxBodyBytes = 10 << 20 // 10 MB

	// DefaultReadBufferSize is the initial per-connection read buffer size.
	DefaultReadBufferSize = 4 << 10 // 4 KB
)
