// Package facekit is a host-driven rendering runtime for small always-on
// display surfaces ("faces") composed of a primary drawing area and a fixed
// set of pluggable data slots ("complications").
//
// # Overview
//
// facekit does not draw anything itself. The host supplies the drawing
// delegate, the draw target, and the callback channel; facekit owns the
// machinery around them:
//
//   - render: the rendering-surface lifecycle. Two thread-affined GPU
//     contexts per renderer kind, shared across concurrently-alive face
//     instances through a process-wide refcounted pool, with a two-phase
//     init handshake that must complete before the first frame.
//   - complication: per-slot payload state with optional timelines of
//     time-bounded variants, batched dirty-bit reconciliation, and
//     two-pass spatial hit testing.
//   - registry: the process-wide refcounted directory of live face
//     instances, including the handoff protocol for creation requests
//     that race with local engine construction.
//
// # Quick Start
//
//	import "github.com/gogpu/facekit"
//
//	inst, err := facekit.NewInstance("watchface.analog", host, target,
//		facekit.WithRenderer(myRenderer),
//		facekit.WithSlots(slots...),
//	)
//	if err != nil {
//		// GPU/display construction failed; no instance was registered.
//	}
//
// # Threading Model
//
// Each instance cooperates with two host threads: a background thread for
// heavy one-time setup and a foreground thread for all per-frame work.
// Thread affinity is enforced with explicit render.Token values rather
// than ambient thread identity. Registry operations are safe from any
// goroutine.
//
// # Logging
//
// facekit produces no log output by default. Call SetLogger to enable it.
package facekit

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0-alpha.1"
)
