// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package complication

import (
	"image"
	"sort"

	"golang.org/x/text/language"
)

// Label is one accessibility label region: a screen rectangle plus the
// text a screen reader should speak for it. The engine assembles label
// regions; speech synthesis is the host's concern.
type Label struct {
	// SlotID is the originating slot, or -1 for labels supplied by the
	// face itself (time, status text).
	SlotID int

	// Bounds is the spoken region in screen coordinates.
	Bounds image.Rectangle

	// Text is the label text.
	Text string

	// Lang tags the text's language so the host can pick a voice.
	// The zero tag (language.Und) leaves the choice to the host.
	Lang language.Tag

	// TraversalIndex orders labels for sequential reading. Lower values
	// are read first; ties fall back to slot id order.
	TraversalIndex int
}

// Labels assembles the ordered label regions for all enabled slots,
// merged with the externally supplied extra labels. Slots contribute
// their name as label text at their current bounds and traversal index.
// The result is sorted by traversal index, then slot id.
func (e *Engine) Labels(extra ...Label) []Label {
	e.mu.Lock()
	labels := make([]Label, 0, len(e.order)+len(extra))
	for _, id := range e.order {
		s := e.slots[id]
		if !s.enabled || s.name == "" {
			continue
		}
		labels = append(labels, Label{
			SlotID:         id,
			Bounds:         s.bounds,
			Text:           s.name,
			TraversalIndex: s.accessibilityIndex,
		})
	}
	e.mu.Unlock()

	labels = append(labels, extra...)
	sort.SliceStable(labels, func(i, j int) bool {
		if labels[i].TraversalIndex != labels[j].TraversalIndex {
			return labels[i].TraversalIndex < labels[j].TraversalIndex
		}
		return labels[i].SlotID < labels[j].SlotID
	})
	return labels
}
