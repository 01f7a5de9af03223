// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package services adapts long-running components to suture.Service.

  - HTTPServerService: ListenAndServe with graceful Shutdown on cancellation
  - CacheSweeper: periodic removal of response cache entries past their
    stale retention, followed by Badger value log GC

Each wrapper implements fmt.Stringer so supervisor events name the service.
*/
package services
