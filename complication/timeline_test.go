// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package complication

import (
	"testing"
	"time"
)

// tickingPayload reports a content boundary at a fixed instant, like a
// countdown rolling over.
type tickingPayload struct {
	text string
	tick time.Time
}

func (p *tickingPayload) Type() PayloadType { return TypeShortText }

func (p *tickingPayload) Equal(other Payload) bool {
	q, ok := other.(*tickingPayload)
	return ok && q.text == p.text && q.tick.Equal(p.tick)
}

func (p *tickingPayload) NextBoundary(after time.Time) (time.Time, bool) {
	if p.tick.After(after) {
		return p.tick, true
	}
	return time.Time{}, false
}

func at(sec int64) time.Time { return time.Unix(sec, 0) }

func entry(start, end int64, text string) TimelineEntry {
	return TimelineEntry{
		Start:   at(start),
		End:     at(end),
		Payload: &TextPayload{Kind: TypeShortText, Text: text},
	}
}

// TestTimelineBaseFallback tests the canonical selection scenario: base
// payload P0 with one entry P1 valid on [100,200).
func TestTimelineBaseFallback(t *testing.T) {
	var tl timeline
	tl.set(&TextPayload{
		Kind:    TypeShortText,
		Text:    "P0",
		Entries: []TimelineEntry{entry(100, 200, "P1")},
	})

	cases := []struct {
		sec  int64
		want string
	}{
		{50, "P0"},
		{100, "P1"},
		{150, "P1"},
		{199, "P1"},
		{200, "P0"},
		{250, "P0"},
	}
	for _, c := range cases {
		got := tl.selectAt(at(c.sec)).(*TextPayload)
		if got.Text != c.want {
			t.Errorf("selectAt(%d) = %q, want %q", c.sec, got.Text, c.want)
		}
	}
}

// TestTimelineMinimalDurationWins tests that among overlapping entries
// containing the instant, the strictly shortest one is selected.
func TestTimelineMinimalDurationWins(t *testing.T) {
	var tl timeline
	tl.set(&TextPayload{
		Kind: TypeShortText,
		Text: "base",
		Entries: []TimelineEntry{
			entry(0, 1000, "broad"),
			entry(100, 300, "narrow"),
			entry(50, 900, "mid"),
		},
	})

	if got := tl.selectAt(at(150)).(*TextPayload); got.Text != "narrow" {
		t.Errorf("selectAt(150) = %q, want narrow", got.Text)
	}
	if got := tl.selectAt(at(500)).(*TextPayload); got.Text != "mid" {
		t.Errorf("selectAt(500) = %q, want mid", got.Text)
	}
	if got := tl.selectAt(at(950)).(*TextPayload); got.Text != "broad" {
		t.Errorf("selectAt(950) = %q, want broad", got.Text)
	}
}

// TestTimelineDurationTie tests that equal-duration overlapping entries
// resolve to the earliest-declared one.
func TestTimelineDurationTie(t *testing.T) {
	var tl timeline
	tl.set(&TextPayload{
		Kind: TypeShortText,
		Text: "base",
		Entries: []TimelineEntry{
			entry(100, 200, "first"),
			entry(150, 250, "second"),
		},
	})

	if got := tl.selectAt(at(175)).(*TextPayload); got.Text != "first" {
		t.Errorf("selectAt(175) = %q, want first (earliest declared)", got.Text)
	}
}

// TestTimelineSetClearsEntries tests that a delivery without a timeline
// discards any earlier schedule.
func TestTimelineSetClearsEntries(t *testing.T) {
	var tl timeline
	tl.set(&TextPayload{
		Kind:    TypeShortText,
		Text:    "old",
		Entries: []TimelineEntry{entry(100, 200, "scheduled")},
	})
	tl.set(&TextPayload{Kind: TypeShortText, Text: "new"})

	if got := tl.selectAt(at(150)).(*TextPayload); got.Text != "new" {
		t.Errorf("selectAt(150) = %q, want new", got.Text)
	}
}

// TestTimelineNextBoundary tests boundary discovery over entry edges.
func TestTimelineNextBoundary(t *testing.T) {
	var tl timeline
	tl.set(&TextPayload{
		Kind:    TypeShortText,
		Text:    "base",
		Entries: []TimelineEntry{entry(100, 200, "P1")},
	})

	cases := []struct {
		sec   int64
		want  int64
		found bool
	}{
		{0, 100, true},
		{100, 200, true},
		{150, 200, true},
		{200, 0, false},
		{500, 0, false},
	}
	for _, c := range cases {
		got, found := tl.nextBoundary(at(c.sec))
		if found != c.found {
			t.Errorf("nextBoundary(%d): found = %v, want %v", c.sec, found, c.found)
			continue
		}
		if found && !got.Equal(at(c.want)) {
			t.Errorf("nextBoundary(%d) = %v, want %v", c.sec, got, at(c.want))
		}
	}
}

// TestTimelinePayloadOwnBoundary tests that the active payload's own
// content boundary participates in nextBoundary.
func TestTimelinePayloadOwnBoundary(t *testing.T) {
	var tl timeline
	tl.set(&tickingPayload{text: "countdown", tick: at(60)})

	got, found := tl.nextBoundary(at(0))
	if !found || !got.Equal(at(60)) {
		t.Errorf("nextBoundary(0) = %v,%v, want %v,true", got, found, at(60))
	}

	_, found = tl.nextBoundary(at(60))
	if found {
		t.Error("nextBoundary(60) found a boundary; tick is not strictly after")
	}
}

// TestEntryContains tests the half-open interval semantics.
func TestEntryContains(t *testing.T) {
	e := entry(100, 200, "x")
	if e.Contains(at(99)) {
		t.Error("Contains(99) = true before start")
	}
	if !e.Contains(at(100)) {
		t.Error("Contains(100) = false at inclusive start")
	}
	if e.Contains(at(200)) {
		t.Error("Contains(200) = true at exclusive end")
	}
}
