// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package facekit

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/facekit/complication"
	"github.com/gogpu/facekit/internal/logging"
	"github.com/gogpu/facekit/registry"
	"github.com/gogpu/facekit/render"
)

// Style is the decoded face style carried by creation requests. All
// fields are optional; zero values mean "leave the current value".
type Style struct {
	// Colors is the host-resolved color scheme, or nil to clear it.
	Colors *ColorScheme

	// Settings holds free-form style settings keyed by option id.
	Settings map[string]string
}

// FaceInstance binds one face's rendering surface, complication engine,
// and registry entry together. Construct with NewInstance; tear down
// through the registry (Release or Delete), never by calling Destroy
// directly while the instance is registered.
type FaceInstance struct {
	id      string
	host    Host
	manager *render.SurfaceManager
	engine  *complication.Engine
	reg     *registry.Registry

	mu       sync.Mutex
	fgToken  render.Token
	hasToken bool
	settings map[string]string
}

// NewInstance constructs a face instance and registers it under id with
// refcount 1. Construction failures register nothing and propagate to
// the caller. The id may be empty, in which case a provisional one is
// minted.
func NewInstance(id string, host Host, target render.DrawTarget, opts ...Option) (*FaceInstance, error) {
	if host == nil {
		return nil, errors.New("facekit: nil host")
	}
	if target == nil {
		return nil, errors.New("facekit: nil draw target")
	}

	o := defaultInstanceOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.renderer == nil {
		return nil, errors.New("facekit: no frame renderer configured")
	}
	if id == "" {
		id = registry.NewProvisionalID()
	}

	manager, err := render.NewSurfaceManager(o.backend, target, o.renderer, host)
	if err != nil {
		return nil, fmt.Errorf("facekit: new surface manager: %w", err)
	}

	engine, err := complication.NewEngine(host, target.Bounds(), o.slots...)
	if err != nil {
		return nil, fmt.Errorf("facekit: new complication engine: %w", err)
	}

	inst := &FaceInstance{
		id:      id,
		host:    host,
		manager: manager,
		engine:  engine,
		reg:     o.registry,
	}
	if err := o.registry.Add(id, inst); err != nil {
		return nil, err
	}
	return inst, nil
}

// ID returns the id the instance was registered under.
func (f *FaceInstance) ID() string { return f.id }

// Surface returns the rendering-surface manager.
func (f *FaceInstance) Surface() *render.SurfaceManager { return f.manager }

// Center returns the draw target's center point in face coordinates.
// Recomputed on every target resize; analog faces anchor hands here.
func (f *FaceInstance) Center() Point {
	x, y := f.manager.Center()
	return Pt(x, y)
}

// Complications returns the complication engine.
func (f *FaceInstance) Complications() *complication.Engine { return f.engine }

// InitBackground runs the background init phase. See
// render.SurfaceManager.InitBackground.
func (f *FaceInstance) InitBackground(tok render.Token, setup func(render.Context) error) error {
	return f.manager.InitBackground(tok, setup)
}

// InitForeground runs the foreground init phase and records the token
// for teardown. See render.SurfaceManager.InitForeground.
func (f *FaceInstance) InitForeground(tok render.Token, setup func(render.Context) error) error {
	if err := f.manager.InitForeground(tok, setup); err != nil {
		return err
	}
	f.mu.Lock()
	f.fgToken = tok
	f.hasToken = true
	f.mu.Unlock()
	return nil
}

// Render produces one frame. See render.SurfaceManager.Render.
func (f *FaceInstance) Render(tok render.Token, at time.Time) error {
	return f.manager.Render(tok, at)
}

// ApplyStyle reconciles the instance with a style delivered by a
// creation request. Unknown style values are logged and skipped.
func (f *FaceInstance) ApplyStyle(style any) {
	if style == nil {
		return
	}
	s, ok := style.(*Style)
	if !ok {
		logging.Get().Warn("unsupported style payload", "id", f.id, "type", fmt.Sprintf("%T", style))
		return
	}

	f.mu.Lock()
	if s.Settings != nil {
		f.settings = s.Settings
	}
	f.mu.Unlock()

	f.host.OnColorsChanged(s.Colors)
	f.host.SendPreviewUpdateRequest()
	f.host.PostInvalidate()
}

// Setting returns the current value for a style setting key.
func (f *FaceInstance) Setting(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.settings[key]
	return v, ok
}

// Destroy releases the rendering surface and its pool reference. The
// registry calls this exactly once, when the last reference is released
// or on force-delete; it must run on the foreground thread the instance
// was initialized on.
func (f *FaceInstance) Destroy() {
	f.mu.Lock()
	tok, ok := f.fgToken, f.hasToken
	f.hasToken = false
	f.mu.Unlock()

	if !ok {
		// Foreground init never ran; there is nothing bound to tear down.
		tok = render.NewToken(render.RoleForeground)
	}
	f.manager.Destroy(tok)
}
