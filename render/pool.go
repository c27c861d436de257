// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"fmt"
	"sync"

	"github.com/gogpu/facekit/internal/logging"
)

// BoundContext pairs a context with its role and serializes all access to
// it. Run is the only sanctioned way to issue backend commands: it checks
// the caller's token, binds the context under an exclusive critical
// section, executes, and unbinds. One mutex per context role means at
// most one goroutine process-wide executes backend commands on a given
// context at a time, independent of which instance asked.
type BoundContext struct {
	role Role
	mu   sync.Mutex
	ctx  Context
}

// Role returns the thread role the context is affined to.
func (b *BoundContext) Role() Role { return b.role }

// Run binds the context exclusively, executes fn, and unbinds. It returns
// a contract violation if the token asserts the wrong role, and the bind
// error if binding fails.
func (b *BoundContext) Run(tok Token, op string, fn func(Context) error) error {
	if tok.Role() != b.role {
		return &WrongThreadError{Op: op, Want: b.role, Got: tok.Role()}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.ctx.Bind(); err != nil {
		return fmt.Errorf("render: %s: bind %s context: %w", op, b.role, err)
	}
	defer b.ctx.Unbind()
	return fn(b.ctx)
}

// destroy tears down the underlying context. Pool teardown only.
func (b *BoundContext) destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ctx.Destroy()
}

// PoolEntry is one shared rendering stack: display, configuration, the
// two role-affined contexts, and the kind's shared assets. At most one
// entry exists per Kind; it is created by the first instance of the kind
// and destroyed when the last one releases it.
type PoolEntry struct {
	kind       Kind
	display    Display
	config     Config
	background *BoundContext

	// foreground is created lazily during the first instance's
	// foreground init phase, linked to the background context so
	// resources constructed on one are usable from the other.
	// Guarded by the pool mutex.
	foreground *BoundContext

	// assets is constructed at most once per entry: the first instance
	// to need it constructs, later instances reuse. Guarded by the pool
	// mutex; the value itself is immutable once set.
	assets    SharedAssets
	hasAssets bool

	refs int
}

// Kind returns the renderer kind the entry serves.
func (e *PoolEntry) Kind() Kind { return e.kind }

// Config returns the chosen framebuffer configuration.
func (e *PoolEntry) Config() Config { return e.config }

// Background returns the background-role context.
func (e *PoolEntry) Background() *BoundContext { return e.background }

// Foreground returns the foreground-role context, or nil before the first
// foreground init phase of the kind completes.
func (e *PoolEntry) Foreground() *BoundContext {
	pool.mu.Lock()
	defer pool.mu.Unlock()
	return e.foreground
}

// Assets returns the shared assets, or nil for kinds without any (or
// before the first background init phase constructs them).
func (e *PoolEntry) Assets() SharedAssets {
	pool.mu.Lock()
	defer pool.mu.Unlock()
	return e.assets
}

// contextPool is the process-wide cache of linked rendering contexts,
// keyed by renderer kind. A single mutex serializes lookup, insert,
// refcounting, and lazy completion, so first-creation races between
// concurrently constructed instances collapse into one entry.
type contextPool struct {
	mu      sync.Mutex
	entries map[Kind]*PoolEntry
}

var pool = &contextPool{entries: make(map[Kind]*PoolEntry)}

// acquire returns the entry for the backend's kind, constructing display,
// configuration, and background context on first use. Construction
// failures leave no entry behind.
func (p *contextPool) acquire(b Backend) (*PoolEntry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e, ok := p.entries[b.Kind()]; ok {
		e.refs++
		return e, nil
	}

	display, err := b.NewDisplay()
	if err != nil {
		return nil, fmt.Errorf("render: open display for %s: %w", b.Kind(), err)
	}
	config, err := b.ChooseConfig(display)
	if err != nil {
		_ = display.Close()
		return nil, fmt.Errorf("render: choose config for %s: %w", b.Kind(), err)
	}
	ctx, err := b.NewContext(display, config, nil)
	if err != nil {
		_ = display.Close()
		return nil, fmt.Errorf("render: create background context for %s: %w", b.Kind(), err)
	}

	e := &PoolEntry{
		kind:       b.Kind(),
		display:    display,
		config:     config,
		background: &BoundContext{role: RoleBackground, ctx: ctx},
		refs:       1,
	}
	p.entries[b.Kind()] = e
	logging.Get().Info("render: context pool entry created", "kind", b.Kind().String())
	return e, nil
}

// ensureForeground creates the foreground context linked to the
// background one, if the entry does not have one yet.
func (p *contextPool) ensureForeground(e *PoolEntry, b Backend) (*BoundContext, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e.foreground != nil {
		return e.foreground, nil
	}
	ctx, err := b.NewContext(e.display, e.config, e.background.ctx)
	if err != nil {
		return nil, fmt.Errorf("render: create foreground context for %s: %w", e.kind, err)
	}
	e.foreground = &BoundContext{role: RoleForeground, ctx: ctx}
	return e.foreground, nil
}

// ensureAssets constructs the entry's shared assets on first need. Must
// be called with the background context bound; the backend receives that
// context.
func (p *contextPool) ensureAssets(e *PoolEntry, b Backend, ctx Context) (SharedAssets, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e.hasAssets {
		return e.assets, nil
	}
	assets, err := b.NewAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("render: build shared assets for %s: %w", e.kind, err)
	}
	e.assets = assets
	e.hasAssets = true
	return assets, nil
}

// release decrements the entry's refcount. The last releaser tears down
// the foreground context, shared assets, background context, and display
// in strict reverse-creation order; concurrent instances of the same kind
// are unaffected until then.
func (p *contextPool) release(e *PoolEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e.refs--
	if e.refs > 0 {
		return
	}

	if e.foreground != nil {
		e.foreground.destroy()
		e.foreground = nil
	}
	if e.assets != nil {
		e.assets.Destroy()
		e.assets = nil
	}
	e.hasAssets = false
	e.background.destroy()
	if err := e.display.Close(); err != nil {
		logging.Get().Warn("render: display close failed", "kind", e.kind.String(), "err", err)
	}
	delete(p.entries, e.kind)
	logging.Get().Info("render: context pool entry destroyed", "kind", e.kind.String())
}

// entryCount reports the number of live pool entries. Tests only.
func (p *contextPool) entryCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}
