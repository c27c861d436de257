// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"time"

	"github.com/gogpu/facekit/internal/logging"
)

// InitState tracks the two-phase init handshake. It only progresses
// forward: Uninitialized → BackgroundReady → ForegroundReady.
type InitState uint8

const (
	// StateUninitialized means neither init phase has run.
	StateUninitialized InitState = iota

	// StateBackgroundReady means the background phase completed: the pool
	// entry is acquired and one-time setup ran under the background
	// context.
	StateBackgroundReady

	// StateForegroundReady means both phases completed and frames may be
	// requested.
	StateForegroundReady
)

// String returns the state name.
func (s InitState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateBackgroundReady:
		return "background-ready"
	case StateForegroundReady:
		return "foreground-ready"
	default:
		return fmt.Sprintf("InitState(%d)", uint8(s))
	}
}

// ErrNoSurface is returned by Render after the draw target was destroyed
// and no presentable surface exists.
var ErrNoSurface = errors.New("render: draw target destroyed")

// FrameRenderer is the caller-supplied drawing delegate. The pixels drawn
// are the face author's concern; the manager only orchestrates layers,
// compositing, and presentation.
//
// Both methods run with the foreground context bound and are called from
// the foreground thread only.
type FrameRenderer interface {
	// RenderFrame draws the normal layer into dst for the given instant.
	RenderFrame(dst *image.RGBA, at time.Time, params Params) error

	// RenderHighlight draws the highlight layer into dst, whose pixels
	// are fully transparent on entry. The layer is alpha-composited over
	// the normal layer, or rendered alone when only LayerHighlight is
	// requested.
	RenderHighlight(dst *image.RGBA, at time.Time, params Params) error
}

// SurfaceManager owns one draw target, its presentable surface, and the
// per-instance view of the shared context pool. It enforces the two-phase
// init handshake and thread affinity for every rendering entry point.
type SurfaceManager struct {
	backend  Backend
	target   DrawTarget
	renderer FrameRenderer
	host     Invalidater

	mu        sync.Mutex
	entry     *PoolEntry
	fg        *BoundContext
	surf      Surface
	params    Params
	state     InitState
	destroyed bool
	centerX   float64
	centerY   float64

	// ready is closed when the foreground phase completes. Callers await
	// it cooperatively before requesting the first frame.
	ready chan struct{}

	// frame and highlight are composition scratch buffers, touched only
	// under the foreground bound section.
	frame     *image.RGBA
	highlight *image.RGBA
}

// NewSurfaceManager creates a manager for the draw target. No platform
// resources are created; those belong to the two init phases.
func NewSurfaceManager(backend Backend, target DrawTarget, renderer FrameRenderer, host Invalidater) (*SurfaceManager, error) {
	if backend == nil {
		return nil, errors.New("render: nil backend")
	}
	if target == nil {
		return nil, errors.New("render: nil draw target")
	}
	if renderer == nil {
		return nil, errors.New("render: nil frame renderer")
	}
	m := &SurfaceManager{
		backend:  backend,
		target:   target,
		renderer: renderer,
		host:     host,
		params:   DefaultParams(),
		ready:    make(chan struct{}),
	}
	m.recomputeCenter()
	return m, nil
}

// State returns the current init state.
func (m *SurfaceManager) State() InitState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Ready returns a channel closed when both init phases have completed.
// Await it before the first Render call.
func (m *SurfaceManager) Ready() <-chan struct{} { return m.ready }

// Center returns the draw target's center point.
func (m *SurfaceManager) Center() (x, y float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.centerX, m.centerY
}

// Params returns the current render parameters.
func (m *SurfaceManager) Params() Params {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.params
}

// SetParams stores new render parameters. The write is diff-checked: a
// no-op write triggers no redraw. Callable from any goroutine.
func (m *SurfaceManager) SetParams(p Params) {
	m.mu.Lock()
	if m.params == p {
		m.mu.Unlock()
		return
	}
	m.params = p
	host := m.host
	m.mu.Unlock()
	if host != nil {
		host.PostInvalidate()
	}
}

// InitBackground runs the background init phase: acquire (or create) the
// pool entry for this renderer kind, then bind the background context and
// run the caller's one-time setup. Must be invoked off the presentation
// thread with a background token, exactly once.
//
// Any display, configuration, or context creation failure is fatal: the
// manager stays uninitialized and holds no pool reference.
func (m *SurfaceManager) InitBackground(tok Token, setup func(Context) error) error {
	m.mu.Lock()
	if m.destroyed || m.state != StateUninitialized {
		m.mu.Unlock()
		return &NotReadyError{Op: "InitBackground", State: m.state}
	}
	m.mu.Unlock()

	entry, err := pool.acquire(m.backend)
	if err != nil {
		return err
	}

	err = entry.background.Run(tok, "InitBackground", func(ctx Context) error {
		if _, err := pool.ensureAssets(entry, m.backend, ctx); err != nil {
			return err
		}
		if setup != nil {
			return setup(ctx)
		}
		return nil
	})
	if err != nil {
		pool.release(entry)
		return err
	}

	m.mu.Lock()
	m.entry = entry
	m.state = StateBackgroundReady
	m.mu.Unlock()
	return nil
}

// InitForeground runs the foreground init phase: create the foreground
// context linked to the background one if this kind does not have one
// yet, bind it, create the presentable surface sized to the draw target,
// and run the caller's one-time setup. Must be invoked on the
// presentation thread with a foreground token, after InitBackground.
func (m *SurfaceManager) InitForeground(tok Token, setup func(Context) error) error {
	m.mu.Lock()
	if m.destroyed || m.state != StateBackgroundReady {
		m.mu.Unlock()
		return &NotReadyError{Op: "InitForeground", State: m.state}
	}
	entry := m.entry
	m.mu.Unlock()

	fg, err := pool.ensureForeground(entry, m.backend)
	if err != nil {
		return err
	}

	var surf Surface
	err = fg.Run(tok, "InitForeground", func(ctx Context) error {
		b := m.target.Bounds()
		s, err := m.backend.NewSurface(ctx, m.target, b.Dx(), b.Dy())
		if err != nil {
			return fmt.Errorf("render: create surface: %w", err)
		}
		surf = s
		if setup != nil {
			if err := setup(ctx); err != nil {
				s.Destroy()
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.fg = fg
	m.surf = surf
	m.state = StateForegroundReady
	m.mu.Unlock()
	close(m.ready)
	return nil
}

// Render produces one frame for the given instant and presents it.
// Requesting a frame before both init phases complete is a contract
// violation. Renderer failures are contained within the frame: the frame
// degrades to solid black rather than leaving the target undefined.
func (m *SurfaceManager) Render(tok Token, at time.Time) error {
	m.mu.Lock()
	if m.destroyed || m.state != StateForegroundReady {
		state := m.state
		m.mu.Unlock()
		return &NotReadyError{Op: "Render", State: state}
	}
	if m.surf == nil {
		m.mu.Unlock()
		return ErrNoSurface
	}
	fg, surf, entry, params := m.fg, m.surf, m.entry, m.params
	m.mu.Unlock()

	return fg.Run(tok, "Render", func(Context) error {
		if lp, ok := surf.(LayerPresenter); ok && entry != nil && params.Layers.Has(LayerBase) && params.Layers.Has(LayerHighlight) {
			if assets := entry.Assets(); assets != nil {
				base, highlight, err := m.composeLayers(at, params)
				if err == nil {
					return lp.PresentLayers(assets, base, highlight)
				}
				m.blankFrame(err)
				return surf.Present(m.frame)
			}
		}
		frame := m.compose(at, params)
		return surf.Present(frame)
	})
}

// compose renders the requested layers into the cached frame buffer.
// Foreground bound section only.
func (m *SurfaceManager) compose(at time.Time, params Params) *image.RGBA {
	b := m.target.Bounds()
	m.frame = ensureBuffer(m.frame, b)
	clearBuffer(m.frame)

	// A highlight request without a visible-layer request renders only
	// the highlight layer.
	if params.Layers.Has(LayerHighlight) && !params.Layers.Has(LayerBase) {
		if err := m.renderer.RenderHighlight(m.frame, at, params); err != nil {
			m.blankFrame(err)
		}
		return m.frame
	}

	if err := m.renderer.RenderFrame(m.frame, at, params); err != nil {
		m.blankFrame(err)
		return m.frame
	}
	if params.Layers.Has(LayerHighlight) {
		m.highlight = ensureBuffer(m.highlight, b)
		clearBuffer(m.highlight)
		if err := m.renderer.RenderHighlight(m.highlight, at, params); err != nil {
			m.blankFrame(err)
			return m.frame
		}
		draw.Draw(m.frame, m.frame.Bounds(), m.highlight, b.Min, draw.Over)
	}
	return m.frame
}

// composeLayers renders the base and highlight layers into separate
// buffers without blending, for surfaces that composite during present.
// Foreground bound section only.
func (m *SurfaceManager) composeLayers(at time.Time, params Params) (base, highlight *image.RGBA, err error) {
	b := m.target.Bounds()
	m.frame = ensureBuffer(m.frame, b)
	clearBuffer(m.frame)
	if err := m.renderer.RenderFrame(m.frame, at, params); err != nil {
		return nil, nil, err
	}
	m.highlight = ensureBuffer(m.highlight, b)
	clearBuffer(m.highlight)
	if err := m.renderer.RenderHighlight(m.highlight, at, params); err != nil {
		return nil, nil, err
	}
	return m.frame, m.highlight, nil
}

// blankFrame logs a contained per-frame failure and fills the frame
// solid black so the draw target never shows undefined content.
func (m *SurfaceManager) blankFrame(err error) {
	logging.Get().Warn("render: frame degraded to blank", "kind", m.backend.Kind().String(), "err", err)
	draw.Draw(m.frame, m.frame.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
}

// RunUnderContext is the only sanctioned way to issue backend calls
// outside the init, render, and screenshot paths. It binds the requested
// context exclusively, executes fn, and unbinds. Calling it for a context
// that does not exist yet, or with a token asserting the wrong role, is a
// contract violation.
func (m *SurfaceManager) RunUnderContext(tok Token, role Role, fn func(Context) error) error {
	m.mu.Lock()
	var bc *BoundContext
	switch {
	case m.destroyed:
		// fall through with nil
	case role == RoleBackground && m.entry != nil:
		bc = m.entry.background
	case role == RoleForeground:
		bc = m.fg
	}
	state := m.state
	m.mu.Unlock()

	if bc == nil {
		return &NotReadyError{Op: "RunUnderContext", State: state}
	}
	return bc.Run(tok, "RunUnderContext", fn)
}

// OnTargetResized reacts to a draw-target geometry change: the center
// point is recomputed and, once the foreground phase has run, the
// presentable surface is recreated at the new size. The draw-target
// provider calls this from the presentation thread.
func (m *SurfaceManager) OnTargetResized(tok Token) error {
	m.mu.Lock()
	m.recomputeCenterLocked()
	if m.destroyed || m.state != StateForegroundReady {
		m.mu.Unlock()
		return nil
	}
	fg, old := m.fg, m.surf
	m.mu.Unlock()

	var surf Surface
	err := fg.Run(tok, "OnTargetResized", func(ctx Context) error {
		if old != nil {
			old.Destroy()
		}
		b := m.target.Bounds()
		s, err := m.backend.NewSurface(ctx, m.target, b.Dx(), b.Dy())
		if err != nil {
			return fmt.Errorf("render: recreate surface: %w", err)
		}
		surf = s
		return nil
	})

	m.mu.Lock()
	m.surf = surf
	host := m.host
	m.mu.Unlock()
	if err == nil && host != nil {
		host.PostInvalidate()
	}
	return err
}

// OnTargetDestroyed reacts to the draw target going away: the presentable
// surface is destroyed. The manager itself stays alive; a later resize
// notification recreates the surface.
func (m *SurfaceManager) OnTargetDestroyed(tok Token) error {
	m.mu.Lock()
	fg, surf := m.fg, m.surf
	m.surf = nil
	m.mu.Unlock()

	if fg == nil || surf == nil {
		return nil
	}
	return fg.Run(tok, "OnTargetDestroyed", func(Context) error {
		surf.Destroy()
		return nil
	})
}

// Destroy releases the manager's resources: the presentable surface
// first, then the instance's reference on the shared pool entry. The last
// instance of a kind tears the pool entry down. Callers must not invoke
// Destroy concurrently with an in-flight Render.
func (m *SurfaceManager) Destroy(tok Token) {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return
	}
	m.destroyed = true
	fg, surf, entry := m.fg, m.surf, m.entry
	m.surf, m.fg, m.entry = nil, nil, nil
	m.mu.Unlock()

	if fg != nil && surf != nil {
		err := fg.Run(tok, "Destroy", func(Context) error {
			surf.Destroy()
			return nil
		})
		if err != nil {
			logging.Get().Warn("render: surface destroy failed", "err", err)
		}
	}
	if entry != nil {
		pool.release(entry)
	}
}

// recomputeCenter recomputes the cached center point from the target.
func (m *SurfaceManager) recomputeCenter() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recomputeCenterLocked()
}

func (m *SurfaceManager) recomputeCenterLocked() {
	b := m.target.Bounds()
	m.centerX = float64(b.Min.X) + float64(b.Dx())/2
	m.centerY = float64(b.Min.Y) + float64(b.Dy())/2
}

// ensureBuffer returns buf if it matches the bounds, or a fresh buffer.
func ensureBuffer(buf *image.RGBA, b image.Rectangle) *image.RGBA {
	if buf != nil && buf.Bounds() == b {
		return buf
	}
	return image.NewRGBA(b)
}

// clearBuffer resets every pixel to transparent black.
func clearBuffer(buf *image.RGBA) {
	for i := range buf.Pix {
		buf.Pix[i] = 0
	}
}
