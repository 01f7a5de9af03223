// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package catalog

import (
	"context"

	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/marquee/internal/metrics"
)

// Deduplicator collapses concurrent identical upstream calls into one.
// All callers sharing a signature receive the same payload or error. The
// entry is released when the call settles, so a later call starts fresh.
type Deduplicator struct {
	group singleflight.Group
}

// Do runs fn once per in-flight key. fn receives a context detached from
// any single caller so one caller cancelling does not fail the others. A
// caller whose own ctx ends stops waiting and gets ctx.Err(). joined
// reports whether this caller received another caller's outcome; only
// joiners are counted in UpstreamDedupShared.
func (d *Deduplicator) Do(ctx context.Context, key string, fn func(ctx context.Context) (json.RawMessage, error)) (payload json.RawMessage, joined bool, err error) {
	detached := context.WithoutCancel(ctx)
	// Written only by the leader's fn, which happens before the result
	// is delivered on ch.
	led := false
	ch := d.group.DoChan(key, func() (interface{}, error) {
		led = true
		return fn(detached)
	})

	select {
	case res := <-ch:
		joined = res.Shared && !led
		if joined {
			metrics.UpstreamDedupShared.Inc()
		}
		if res.Err != nil {
			return nil, joined, res.Err
		}
		payload, _ = res.Val.(json.RawMessage)
		return payload, joined, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}
