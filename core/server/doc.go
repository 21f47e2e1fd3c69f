// Package server accepts TCP connections and runs each received request through
// the parser, the middleware chain and the router, writing the response back on
// the same connection.
//
// # Key Features
//
//   - Incremental parsing with one parser.Context per connection
//   - Keep-alive and pipelined requests answered in order
//   - Graceful shutdown with configurable timeout
//   - Panic recovery around middleware and handlers
//   - Structured logging integration
//   - Simple configuration via functional options or environment
//
// # Basic Usage
//
//	r := router.New()
//	r.Get("/hello", func(req *request.Request, resp *response.Response) {
//		resp.String(response.StatusOK, "Hello, World!")
//	})
//
//	if err := server.Run(ctx, ":8080", r); err != nil {
//		log.Fatal(err)
//	}
//
// # Server Configuration
//
//	srv := server.New(":8080",
//		server.WithShutdownTimeout(60*time.Second),
//		server.WithLogger(logger.New(logger.WithProduction("api"))),
//		server.WithMiddleware(middleware.RequestID(), middleware.SecurityHeaders()),
//	)
//
// Or from the environment:
//
//	var cfg server.Config
//	config.MustLoad(&cfg)
//	srv, err := server.NewFromConfig(cfg)
//
// # Request Dispatch
//
// For each complete request the server runs the chain's Before hooks, then the
// router unless a middleware called request.Reject, then the After hooks in
// reverse order. A request no route accepts gets 404, a rejected request gets
// the rejection status, and a panic anywhere gets 500. A response whose status
// was never set is sent as 200.
//
// Requests the parser refuses get 400, or 413 when a size limit was exceeded,
// and the connection is closed.
//
// # Graceful Shutdown
//
// Stop closes the listener, lets in-flight requests finish and closes idle
// connections. Connections still open after the shutdown timeout are closed
// forcibly and Stop returns ErrShutdownTimeout.
//
// Run returns a function compatible with errgroup:
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, r))
//	if err := g.Wait(); err != nil {
//		log.Fatal(err)
//	}
package server
