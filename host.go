package facekit

import (
	"image/color"

	"github.com/gogpu/facekit/complication"
)

// ColorScheme is the host-resolved color set applied to a face. A nil
// *ColorScheme passed to Host.OnColorsChanged means the scheme was cleared
// and the face should fall back to its built-in colors.
type ColorScheme struct {
	Primary   color.RGBA
	Secondary color.RGBA
	Tertiary  color.RGBA
}

// Host is the callback interface the runtime uses to talk back to its
// embedder. facekit calls these methods; it never implements them.
//
// Invalidate must be called from the foreground thread. PostInvalidate is
// callable from any goroutine and schedules a redraw on the foreground
// thread. The remaining methods are invoked from whichever goroutine runs
// complication reconciliation (typically the foreground thread).
type Host interface {
	// Invalidate schedules a redraw of the face. Foreground thread only.
	Invalidate()

	// PostInvalidate schedules a redraw from any goroutine.
	PostInvalidate()

	// UpdateContentDescriptionLabels tells the host that the set of
	// accessibility label regions changed and should be re-read.
	UpdateContentDescriptionLabels()

	// SetActiveSlots announces the currently enabled slot ids.
	SetActiveSlots(ids []int)

	// SetDefaultSourcePolicy announces a slot's default data-source policy.
	SetDefaultSourcePolicy(slotID int, policy complication.DefaultSourcePolicy)

	// OnColorsChanged reports a new color scheme, or nil when cleared.
	OnColorsChanged(colors *ColorScheme)

	// SendPreviewUpdateRequest asks the host to refresh any cached preview
	// image of this face.
	SendPreviewUpdateRequest()
}
