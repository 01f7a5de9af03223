// Marquee - Movie and TV Catalog Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import "github.com/goccy/go-json"

// merger accumulates candidates in order, dropping repeats by item ID.
type merger struct {
	max      int
	seen     map[int64]struct{}
	out      []Candidate
	bySource map[Strategy]int
}

func newMerger(limit int) *merger {
	return &merger{
		max:      limit,
		seen:     make(map[int64]struct{}),
		bySource: make(map[Strategy]int),
	}
}

// add takes up to s.limit unseen candidates from s, scanning all of them.
func (m *merger) add(s section) {
	taken := 0
	for _, c := range s.candidates {
		if taken >= s.limit || len(m.out) >= m.max {
			return
		}
		if _, dup := m.seen[c.ItemID]; dup {
			continue
		}
		m.seen[c.ItemID] = struct{}{}
		m.out = append(m.out, c)
		m.bySource[c.Source]++
		taken++
	}
}

func (m *merger) count() int { return len(m.out) }

func (m *merger) items() []json.RawMessage {
	items := make([]json.RawMessage, len(m.out))
	for i, c := range m.out {
		items[i] = c.Item
	}
	return items
}
