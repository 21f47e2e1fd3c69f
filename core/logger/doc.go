// Package logger builds slog loggers and provides attribute helpers shared by
// the parser, server and middleware packages.
//
// # Construction
//
//	log := logger.New(
//		logger.WithProduction("tinyhttp"),
//		logger.WithLevel(slog.LevelDebug),
//	)
//
//	devLog := logger.New(logger.WithDevelopment("tinyhttp"))
//
//	testLog := logger.New(
//		logger.WithJSONFormatter(),
//		logger.WithOutput(&buf),
//	)
//
// Components that accept a logger default to Discard when none is given.
//
// # Context extractors
//
// Extractors add attributes from the context passed to the *Context log methods.
// The middleware package ships one for request ids:
//
//	log := logger.New(
//		logger.WithProduction("tinyhttp"),
//		logger.WithContextExtractors(middleware.RequestIDExtractor),
//	)
//	log.InfoContext(req.Context(), "handled")
//
// # Attributes
//
// Helpers such as Error, RequestID and Reason return an empty slog.Attr for nil
// or empty input, which slog drops:
//
//	log.Warn("invalid request",
//		logger.State(pc.State().String()),
//		logger.Error(err),
//	)
package logger
