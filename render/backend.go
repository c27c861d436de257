// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"image"

	"github.com/gogpu/gputypes"
)

// Backend creates and destroys the platform rendering objects for one
// renderer Kind. Implementations form a small closed set: the in-package
// software backend and the GPU backend in backend/wgpu. The pool calls
// Backend methods; instances never do directly.
//
// Any creation failure is fatal to instance construction; no partial,
// silently broken instance is ever returned.
type Backend interface {
	// Kind identifies the renderer kind this backend serves.
	Kind() Kind

	// NewDisplay opens the backend's display handle.
	NewDisplay() (Display, error)

	// ChooseConfig selects a framebuffer configuration for the display.
	ChooseConfig(d Display) (Config, error)

	// NewContext creates a rendering context on the display. A non-nil
	// share links the new context to an existing one so that resources
	// constructed on either are usable from both.
	NewContext(d Display, cfg Config, share Context) (Context, error)

	// NewSurface creates the presentable surface for the draw target,
	// sized to the given dimensions. Called with the foreground context
	// bound.
	NewSurface(ctx Context, target DrawTarget, width, height int) (Surface, error)

	// NewAssets constructs the kind's shared immutable assets. Called at
	// most once per pool entry, with the background context bound. Kinds
	// without shared assets return (nil, nil).
	NewAssets(ctx Context) (SharedAssets, error)

	// FlippedReadback reports whether the backend's pixel read-back
	// origin is bottom-left, requiring a vertical flip into image
	// convention during screenshots.
	FlippedReadback() bool
}

// Display is an opened display handle.
type Display interface {
	// Close releases the display. Called exactly once, after both
	// contexts are destroyed.
	Close() error
}

// Config is a chosen framebuffer configuration.
type Config interface {
	// Format returns the pixel format frames are produced in.
	Format() gputypes.TextureFormat
}

// Context is a rendering context. A context must be bound before any
// backend command is issued on it and unbound afterwards; BoundContext
// enforces that discipline, so code outside this package never calls
// Bind or Unbind directly.
type Context interface {
	// Bind makes the context current on the calling thread.
	Bind() error

	// Unbind releases the context from the calling thread.
	Unbind()

	// Destroy releases the context. The context must not be bound.
	Destroy()
}

// Surface is the presentable surface tied to a draw target.
type Surface interface {
	// Present pushes a completed frame to the draw target. The frame
	// buffer is owned by the caller and valid only for the duration of
	// the call.
	Present(frame *image.RGBA) error

	// Destroy releases the surface.
	Destroy()
}

// LayerPresenter is implemented by surfaces that composite the highlight
// layer over the base layer themselves during present, using the pool
// entry's shared assets (the hardware-shared kind dispatches its
// compositing pipeline here). Surfaces without it receive frames already
// composited on the CPU through Present.
type LayerPresenter interface {
	// PresentLayers uploads both layers and blends highlight over base
	// before presenting. Both images have the surface's dimensions and
	// are valid only for the duration of the call.
	PresentLayers(assets SharedAssets, base, highlight *image.RGBA) error
}

// SharedAssets is the immutable per-kind asset bundle (compiled shader
// programs, decoded images) shared by every instance of a kind.
type SharedAssets interface {
	// Destroy releases the assets. Called exactly once, at pool-entry
	// teardown.
	Destroy()
}

// DrawTarget supplies the destination the surface presents into. The
// provider notifies the SurfaceManager of geometry changes through
// SurfaceManager.OnTargetResized and OnTargetDestroyed.
type DrawTarget interface {
	// Bounds returns the target's current bounds in pixels.
	Bounds() image.Rectangle
}

// PixelReceiver is implemented by draw targets that accept CPU frames.
// The software kind requires it; hardware kinds ignore it.
type PixelReceiver interface {
	// ReceiveFrame delivers a presented frame. The image is only valid
	// for the duration of the call.
	ReceiveFrame(frame *image.RGBA)
}

// Invalidater is the redraw-scheduling slice of the host callback
// interface. Invalidate must be called on the foreground thread;
// PostInvalidate is callable from any goroutine.
type Invalidater interface {
	Invalidate()
	PostInvalidate()
}
