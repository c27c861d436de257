// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package render owns the rendering-surface lifecycle for face instances.
//
// Each SurfaceManager drives one draw target through a two-phase init
// handshake: heavy one-time setup on the background thread, then surface
// creation on the foreground (presentation) thread. No frame is produced
// before both phases complete.
//
// Rendering contexts are not per-instance. A process-wide pool keys one
// entry per renderer Kind, holding the display handle, the chosen
// configuration, a background-thread context, a lazily created foreground
// context linked to it, and the kind's shared immutable assets. The first
// instance of a kind constructs the entry; the last releaser tears it
// down in strict reverse-creation order.
//
// Thread affinity is enforced with explicit Token values instead of
// ambient thread identity: every thread-affined operation takes the
// caller's token and fails with a contract violation on mismatch. All
// backend command issue funnels through an exclusive bind → execute →
// unbind section guarded by one mutex per context role, so at most one
// goroutine process-wide talks to a given context at a time.
package render
