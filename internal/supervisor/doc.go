// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package supervisor runs the server's long-lived services under a suture v4
supervisor tree.

# Layout

	marquee
	├── data-layer
	│   └── CacheSweeper
	└── api-layer
	    └── HTTPServerService

Each layer restarts its own children. A sweeper that keeps failing backs off
inside data-layer while the HTTP listener keeps serving.

# Usage

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewCacheSweeper(rc, badgerStore, services.CacheSweeperConfig{}, logger))
	tree.AddAPIService(services.NewHTTPServerService(srv, 10*time.Second))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		// handle
	}

Supervisor events (restarts, backoff, timeouts) are logged through
sutureslog into the process slog logger, which is bridged to zerolog.
*/
package supervisor
