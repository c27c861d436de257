// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

// DrawMode is the rendering intent for a frame.
type DrawMode uint8

const (
	// ModeInteractive is full-fidelity rendering while the display is on
	// and interactive.
	ModeInteractive DrawMode = iota

	// ModeAmbient is the always-on/low-power mode: reduced color depth
	// and dimmed output.
	ModeAmbient
)

// String returns the mode name.
func (m DrawMode) String() string {
	if m == ModeAmbient {
		return "ambient"
	}
	return "interactive"
}

// LayerSet selects which layers a frame composites. Bits combine with
// bitwise OR.
type LayerSet uint8

const (
	// LayerBase is the normal face layer.
	LayerBase LayerSet = 1 << iota

	// LayerHighlight is the overlay pass indicating a selected element,
	// alpha-composited on top of the base layer. Requested without
	// LayerBase, the frame renders only the highlight layer.
	LayerHighlight
)

// Has reports whether the set contains all layers in the mask.
func (s LayerSet) Has(mask LayerSet) bool { return s&mask == mask }

// Params are the current render parameters for a surface. Writes to a
// manager's params are diff-checked: storing an equal value triggers no
// downstream notification.
type Params struct {
	// Mode is the rendering intent.
	Mode DrawMode

	// Layers selects the composited layers.
	Layers LayerSet

	// HighlightedSlot is the slot id the highlight layer should indicate,
	// or -1 for a whole-face highlight.
	HighlightedSlot int
}

// DefaultParams returns interactive-mode parameters drawing the base
// layer only.
func DefaultParams() Params {
	return Params{
		Mode:            ModeInteractive,
		Layers:          LayerBase,
		HighlightedSlot: -1,
	}
}
