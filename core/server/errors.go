package server

import "errors"

var (
	// Configuration errors
	ErrMissingAddress = errors.New("server address is required")
	ErrMissingRouter  = errors.New("server router is required")

	// Server lifecycle errors
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrListen               = errors.New("listen error")
	ErrAccept               = errors.New("accept error")
	ErrShutdownTimeout      = errors.New("shutdown timed out with open connections")
)
