// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package complication

import "time"

// timeline is a slot's payload state: the base payload delivered by the
// host plus the decoded variants, if the delivery carried any.
type timeline struct {
	base    Payload
	entries []TimelineEntry
}

// set installs a new base payload, decoding an embedded timeline when the
// payload carries one. Previous entries are always discarded: a delivery
// without a timeline clears any earlier schedule.
func (t *timeline) set(p Payload) {
	t.base = p
	t.entries = nil
	if c, ok := p.(TimelineCarrier); ok {
		t.entries = c.TimelineEntries()
	}
}

// selectAt returns the payload active at the given instant.
//
// A candidate qualifies when its interval contains the instant. Among
// qualifying candidates the one with the smallest duration wins, on the
// grounds that a more specific (shorter) override was scheduled inside a
// broader one. Ties resolve to the earliest-declared candidate. With no
// qualifying candidate the base payload is active.
func (t *timeline) selectAt(at time.Time) Payload {
	var best *TimelineEntry
	for i := range t.entries {
		e := &t.entries[i]
		if !e.Contains(at) {
			continue
		}
		if best == nil || e.Duration() < best.Duration() {
			best = e
		}
	}
	if best == nil {
		return t.base
	}
	return best.Payload
}

// nextBoundary returns the first instant strictly after the given one at
// which the active selection may change: the nearest entry edge (start or
// end) plus the currently active payload's own content boundary. The
// second result is false when no future boundary exists.
func (t *timeline) nextBoundary(after time.Time) (time.Time, bool) {
	var next time.Time
	found := false
	consider := func(at time.Time) {
		if !at.After(after) {
			return
		}
		if !found || at.Before(next) {
			next = at
			found = true
		}
	}
	for i := range t.entries {
		consider(t.entries[i].Start)
		consider(t.entries[i].End)
	}
	if active := t.selectAt(after); active != nil {
		if b, ok := active.NextBoundary(after); ok {
			consider(b)
		}
	}
	return next, found
}
