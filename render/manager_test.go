// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"
	"time"
)

// fakeTarget is a draw target accepting CPU frames.
type fakeTarget struct {
	bounds image.Rectangle
	frames []*image.RGBA
}

func (t *fakeTarget) Bounds() image.Rectangle { return t.bounds }

func (t *fakeTarget) ReceiveFrame(frame *image.RGBA) {
	t.frames = append(t.frames, cloneRGBA(frame))
}

// fakeHost counts redraw requests.
type fakeHost struct {
	invalidates     int
	postInvalidates int
}

func (h *fakeHost) Invalidate()     { h.invalidates++ }
func (h *fakeHost) PostInvalidate() { h.postInvalidates++ }

// solidRenderer fills the base layer with one color and the highlight
// layer with another.
type solidRenderer struct {
	base      color.RGBA
	highlight color.RGBA
}

func (r *solidRenderer) RenderFrame(dst *image.RGBA, _ time.Time, _ Params) error {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(r.base), image.Point{}, draw.Src)
	return nil
}

func (r *solidRenderer) RenderHighlight(dst *image.RGBA, _ time.Time, _ Params) error {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(r.highlight), image.Point{}, draw.Src)
	return nil
}

// failingRenderer simulates resource exhaustion mid-frame.
type failingRenderer struct{}

func (failingRenderer) RenderFrame(*image.RGBA, time.Time, Params) error {
	return errors.New("out of texture memory")
}

func (failingRenderer) RenderHighlight(*image.RGBA, time.Time, Params) error {
	return errors.New("out of texture memory")
}

var (
	bgTok = NewToken(RoleBackground)
	fgTok = NewToken(RoleForeground)
)

// newReadyManager runs both init phases against the software backend.
func newReadyManager(t *testing.T, target *fakeTarget, renderer FrameRenderer, host Invalidater) *SurfaceManager {
	t.Helper()
	m, err := NewSurfaceManager(NewSoftwareBackend(), target, renderer, host)
	if err != nil {
		t.Fatalf("NewSurfaceManager: %v", err)
	}
	if err := m.InitBackground(bgTok, nil); err != nil {
		t.Fatalf("InitBackground: %v", err)
	}
	if err := m.InitForeground(fgTok, nil); err != nil {
		t.Fatalf("InitForeground: %v", err)
	}
	return m
}

// TestInitHandshakeOrder tests that every out-of-order call in the
// two-phase handshake is a contract violation.
func TestInitHandshakeOrder(t *testing.T) {
	target := &fakeTarget{bounds: image.Rect(0, 0, 8, 8)}
	m, err := NewSurfaceManager(NewSoftwareBackend(), target, &solidRenderer{}, nil)
	if err != nil {
		t.Fatalf("NewSurfaceManager: %v", err)
	}
	defer m.Destroy(fgTok)

	if err := m.Render(fgTok, time.Now()); !errors.Is(err, ErrContractViolation) {
		t.Errorf("Render before init: err = %v, want contract violation", err)
	}
	if err := m.InitForeground(fgTok, nil); !errors.Is(err, ErrContractViolation) {
		t.Errorf("InitForeground before InitBackground: err = %v, want contract violation", err)
	}
	if err := m.InitBackground(fgTok, nil); !errors.Is(err, ErrContractViolation) {
		t.Errorf("InitBackground with foreground token: err = %v, want contract violation", err)
	}

	if err := m.InitBackground(bgTok, nil); err != nil {
		t.Fatalf("InitBackground: %v", err)
	}
	if err := m.InitBackground(bgTok, nil); !errors.Is(err, ErrContractViolation) {
		t.Errorf("second InitBackground: err = %v, want contract violation", err)
	}
	if err := m.Render(fgTok, time.Now()); !errors.Is(err, ErrContractViolation) {
		t.Errorf("Render before InitForeground: err = %v, want contract violation", err)
	}

	select {
	case <-m.Ready():
		t.Fatal("Ready closed before foreground phase")
	default:
	}

	if err := m.InitForeground(bgTok, nil); !errors.Is(err, ErrContractViolation) {
		t.Errorf("InitForeground with background token: err = %v, want contract violation", err)
	}
	if err := m.InitForeground(fgTok, nil); err != nil {
		t.Fatalf("InitForeground: %v", err)
	}

	select {
	case <-m.Ready():
	default:
		t.Error("Ready not closed after foreground phase")
	}
	if m.State() != StateForegroundReady {
		t.Errorf("State = %v, want %v", m.State(), StateForegroundReady)
	}
}

// TestRenderPresentsFrame tests a full frame round trip to the target.
func TestRenderPresentsFrame(t *testing.T) {
	target := &fakeTarget{bounds: image.Rect(0, 0, 4, 4)}
	red := color.RGBA{R: 255, A: 255}
	m := newReadyManager(t, target, &solidRenderer{base: red}, nil)
	defer m.Destroy(fgTok)

	if err := m.Render(fgTok, time.Now()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(target.frames) != 1 {
		t.Fatalf("frames presented = %d, want 1", len(target.frames))
	}
	frame := target.frames[0]
	if got := frame.Bounds().Size(); got != image.Pt(4, 4) {
		t.Fatalf("frame size = %v, want (4,4)", got)
	}
	if got := frame.RGBAAt(2, 2); got != red {
		t.Errorf("pixel (2,2) = %v, want %v", got, red)
	}

	if err := m.Render(bgTok, time.Now()); !errors.Is(err, ErrContractViolation) {
		t.Errorf("Render with background token: err = %v, want contract violation", err)
	}
}

// TestRenderDegradesToBlank tests per-frame failure containment: a
// renderer error produces a black frame, not an error and not a stale
// target.
func TestRenderDegradesToBlank(t *testing.T) {
	target := &fakeTarget{bounds: image.Rect(0, 0, 4, 4)}
	m := newReadyManager(t, target, failingRenderer{}, nil)
	defer m.Destroy(fgTok)

	if err := m.Render(fgTok, time.Now()); err != nil {
		t.Fatalf("Render: %v, want contained failure", err)
	}
	if len(target.frames) != 1 {
		t.Fatalf("frames presented = %d, want 1", len(target.frames))
	}
	black := color.RGBA{A: 255}
	if got := target.frames[0].RGBAAt(1, 1); got != black {
		t.Errorf("pixel (1,1) = %v, want opaque black", got)
	}
}

// TestHighlightCompositing tests the layer selection rules.
func TestHighlightCompositing(t *testing.T) {
	target := &fakeTarget{bounds: image.Rect(0, 0, 4, 4)}
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}
	m := newReadyManager(t, target, &solidRenderer{base: red, highlight: blue}, nil)
	defer m.Destroy(fgTok)

	// Base and highlight: opaque highlight wins the blend.
	m.SetParams(Params{Mode: ModeInteractive, Layers: LayerBase | LayerHighlight, HighlightedSlot: -1})
	if err := m.Render(fgTok, time.Now()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := target.frames[0].RGBAAt(1, 1); got != blue {
		t.Errorf("composited pixel = %v, want %v", got, blue)
	}

	// Highlight only: the base layer is not drawn at all.
	m.SetParams(Params{Mode: ModeInteractive, Layers: LayerHighlight, HighlightedSlot: -1})
	if err := m.Render(fgTok, time.Now()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := target.frames[1].RGBAAt(1, 1); got != blue {
		t.Errorf("highlight-only pixel = %v, want %v", got, blue)
	}
}

// TestSetParamsDiffCheck tests that equal parameter writes schedule no
// redraw.
func TestSetParamsDiffCheck(t *testing.T) {
	host := &fakeHost{}
	target := &fakeTarget{bounds: image.Rect(0, 0, 4, 4)}
	m := newReadyManager(t, target, &solidRenderer{}, host)
	defer m.Destroy(fgTok)

	m.SetParams(m.Params())
	if host.postInvalidates != 0 {
		t.Errorf("postInvalidates = %d after no-op write, want 0", host.postInvalidates)
	}

	p := m.Params()
	p.Mode = ModeAmbient
	m.SetParams(p)
	if host.postInvalidates != 1 {
		t.Errorf("postInvalidates = %d after change, want 1", host.postInvalidates)
	}
	if m.Params() != p {
		t.Errorf("Params = %v, want %v", m.Params(), p)
	}
}

// TestRunUnderContext tests the exclusive-access helper's contracts.
func TestRunUnderContext(t *testing.T) {
	target := &fakeTarget{bounds: image.Rect(0, 0, 4, 4)}
	m, err := NewSurfaceManager(NewSoftwareBackend(), target, &solidRenderer{}, nil)
	if err != nil {
		t.Fatalf("NewSurfaceManager: %v", err)
	}
	defer m.Destroy(fgTok)

	err = m.RunUnderContext(bgTok, RoleBackground, func(Context) error { return nil })
	if !errors.Is(err, ErrContractViolation) {
		t.Errorf("RunUnderContext before init: err = %v, want contract violation", err)
	}

	if err := m.InitBackground(bgTok, nil); err != nil {
		t.Fatalf("InitBackground: %v", err)
	}

	ran := false
	err = m.RunUnderContext(bgTok, RoleBackground, func(ctx Context) error {
		if ctx == nil {
			t.Error("nil context inside bound section")
		}
		ran = true
		return nil
	})
	if err != nil || !ran {
		t.Errorf("RunUnderContext = %v, ran = %v", err, ran)
	}

	err = m.RunUnderContext(fgTok, RoleBackground, func(Context) error { return nil })
	if !errors.Is(err, ErrContractViolation) {
		t.Errorf("wrong token role: err = %v, want contract violation", err)
	}
}

// TestOnTargetResized tests center recomputation and surface recreation.
func TestOnTargetResized(t *testing.T) {
	host := &fakeHost{}
	target := &fakeTarget{bounds: image.Rect(0, 0, 4, 4)}
	m := newReadyManager(t, target, &solidRenderer{base: color.RGBA{G: 255, A: 255}}, host)
	defer m.Destroy(fgTok)

	target.bounds = image.Rect(0, 0, 8, 8)
	if err := m.OnTargetResized(fgTok); err != nil {
		t.Fatalf("OnTargetResized: %v", err)
	}
	if x, y := m.Center(); x != 4 || y != 4 {
		t.Errorf("Center = (%v,%v), want (4,4)", x, y)
	}
	if host.postInvalidates == 0 {
		t.Error("no redraw scheduled after resize")
	}

	if err := m.Render(fgTok, time.Now()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	got := target.frames[len(target.frames)-1].Bounds().Size()
	if got != image.Pt(8, 8) {
		t.Errorf("frame size after resize = %v, want (8,8)", got)
	}
}

// TestOnTargetDestroyed tests that rendering without a surface fails
// with ErrNoSurface and that a resize restores it.
func TestOnTargetDestroyed(t *testing.T) {
	target := &fakeTarget{bounds: image.Rect(0, 0, 4, 4)}
	m := newReadyManager(t, target, &solidRenderer{}, nil)
	defer m.Destroy(fgTok)

	if err := m.OnTargetDestroyed(fgTok); err != nil {
		t.Fatalf("OnTargetDestroyed: %v", err)
	}
	if err := m.Render(fgTok, time.Now()); !errors.Is(err, ErrNoSurface) {
		t.Errorf("Render without surface: err = %v, want ErrNoSurface", err)
	}

	if err := m.OnTargetResized(fgTok); err != nil {
		t.Fatalf("OnTargetResized: %v", err)
	}
	if err := m.Render(fgTok, time.Now()); err != nil {
		t.Errorf("Render after surface recreation: %v", err)
	}
}

// TestDestroyIdempotent tests that double destruction releases the pool
// reference only once.
func TestDestroyIdempotent(t *testing.T) {
	target := &fakeTarget{bounds: image.Rect(0, 0, 4, 4)}
	m := newReadyManager(t, target, &solidRenderer{}, nil)

	m.Destroy(fgTok)
	if got := pool.entryCount(); got != 0 {
		t.Fatalf("pool entries after destroy = %d, want 0", got)
	}
	m.Destroy(fgTok)
	if got := pool.entryCount(); got != 0 {
		t.Errorf("pool entries after second destroy = %d, want 0", got)
	}

	if err := m.Render(fgTok, time.Now()); !errors.Is(err, ErrContractViolation) {
		t.Errorf("Render after destroy: err = %v, want contract violation", err)
	}
}
