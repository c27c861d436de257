// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package registry tracks live face instances by id.
//
// The registry is the single source of truth for which instances are
// alive. It is safe to call from any goroutine, including ones serving
// cross-process creation requests; every operation is serialized under
// one mutex, and the mutex is never held across an instance's
// destruction hook.
package registry

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/gogpu/facekit/internal/logging"
)

// Instance is a registered face instance. The registry invokes Destroy
// exactly once, when the entry's refcount reaches zero or when the
// entry is force-deleted. ApplyStyle reconciles state drift when a
// creation request names an instance that is already alive.
type Instance interface {
	Destroy()
	ApplyStyle(style any)
}

// Request is a creation request for a face instance, typically arriving
// over a cross-process channel before any local engine exists to host
// it. Style is the opaque decoded face style carried by the request.
type Request struct {
	ID    string
	Style any
}

// Engine receives a creation request once a host-side engine reports
// ready. AttachRequest is called outside the registry lock, at most
// once per readiness report.
type Engine interface {
	AttachRequest(req Request)
}

// Errors.
var (
	// ErrContractViolation is the sentinel wrapped by every registry
	// misuse error: duplicate add, missing or colliding rename, and
	// double handoff registration. These are caller bugs and are
	// raised, never swallowed.
	ErrContractViolation = errors.New("registry: contract violation")
)

// DuplicateIDError indicates Add was called with an id that is already
// registered.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return "registry: instance id already registered: " + e.ID
}

func (e *DuplicateIDError) Unwrap() error { return ErrContractViolation }

// NotFoundError indicates an operation referenced an id with no entry.
type NotFoundError struct {
	Op string
	ID string
}

func (e *NotFoundError) Error() string {
	return "registry: " + e.Op + ": no instance with id: " + e.ID
}

func (e *NotFoundError) Unwrap() error { return ErrContractViolation }

// HandoffConflictError indicates a waiting engine and a pending request
// would coexist. The registry holds at most one of the two at a time;
// the existing one must be consumed before the other may be set.
type HandoffConflictError struct {
	Op string
}

func (e *HandoffConflictError) Error() string {
	return "registry: " + e.Op + ": waiting engine and pending request are mutually exclusive"
}

func (e *HandoffConflictError) Unwrap() error { return ErrContractViolation }

type entry struct {
	inst Instance
	refs int
}

// Registry is a refcounted directory of live instances plus the
// pending-creation handoff slots. The zero value is ready to use.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry

	// At most one of the two is non-nil at any time.
	waiting Engine
	pending *Request
}

// globalRegistry is the process-wide default.
var globalRegistry = &Registry{}

// Default returns the process-wide registry shared by all instances.
func Default() *Registry { return globalRegistry }

// NewRegistry creates an empty registry. Most code should use Default;
// separate registries exist for tests.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// NewProvisionalID mints a unique instance id for a creation request
// that arrived without one.
func NewProvisionalID() string {
	return "face-" + uuid.NewString()
}

// Add registers an instance under id with refcount 1.
// Adding an id that already exists is a contract violation.
func (r *Registry) Add(id string, inst Instance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries == nil {
		r.entries = make(map[string]*entry)
	}
	if _, ok := r.entries[id]; ok {
		return &DuplicateIDError{ID: id}
	}
	r.entries[id] = &entry{inst: inst, refs: 1}
	return nil
}

// GetAndRetain returns the instance registered under id and increments
// its refcount, or nil if the id is absent. Every successful call must
// be paired with a Release.
func (r *Registry) GetAndRetain(id string) Instance {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return nil
	}
	e.refs++
	return e.inst
}

// Release decrements the refcount of the instance registered under id.
// At zero the entry is removed and the instance's destruction hook runs,
// outside the registry lock. Releasing an absent id is a logged no-op.
func (r *Registry) Release(id string) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		r.mu.Unlock()
		logging.Get().Warn("release of unknown instance", "id", id)
		return
	}
	e.refs--
	if e.refs > 0 {
		r.mu.Unlock()
		return
	}
	delete(r.entries, id)
	r.mu.Unlock()

	e.inst.Destroy()
}

// Delete removes the instance registered under id and destroys it
// unconditionally, regardless of outstanding retains. This is the
// administrative force-delete path; callers holding retained references
// must not assume the instance outlives it.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		r.mu.Unlock()
		return &NotFoundError{Op: "delete", ID: id}
	}
	delete(r.entries, id)
	r.mu.Unlock()

	e.inst.Destroy()
	return nil
}

// Rename moves the entry registered under oldID to newID, preserving
// its refcount. A missing oldID or an already-registered newID is a
// contract violation and leaves the registry unchanged.
func (r *Registry) Rename(oldID, newID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[oldID]
	if !ok {
		return &NotFoundError{Op: "rename", ID: oldID}
	}
	if _, ok := r.entries[newID]; ok {
		return &DuplicateIDError{ID: newID}
	}
	delete(r.entries, oldID)
	r.entries[newID] = e
	return nil
}

// HandleRequest routes a creation request.
//
// If a live instance matches the request id, the request's style is
// applied to it directly and the instance is returned. Otherwise, if an
// engine is waiting, the request is handed to it and the waiting slot
// cleared. Otherwise the request is stored as the sole pending request;
// storing a second one is a contract violation.
func (r *Registry) HandleRequest(req Request) (Instance, error) {
	r.mu.Lock()

	if e, ok := r.entries[req.ID]; ok {
		inst := e.inst
		r.mu.Unlock()
		inst.ApplyStyle(req.Style)
		return inst, nil
	}

	if r.waiting != nil {
		eng := r.waiting
		r.waiting = nil
		r.mu.Unlock()
		eng.AttachRequest(req)
		return nil, nil
	}

	if r.pending != nil {
		r.mu.Unlock()
		return nil, &HandoffConflictError{Op: "handle request"}
	}
	stored := req
	r.pending = &stored
	r.mu.Unlock()
	return nil, nil
}

// EngineReady reports that a host-side engine can accept a creation
// request. If a pending request exists it is consumed and delivered to
// the engine; otherwise the engine is recorded as the sole waiting
// engine. Registering a second waiting engine is a contract violation.
func (r *Registry) EngineReady(eng Engine) error {
	r.mu.Lock()

	if r.pending != nil {
		req := *r.pending
		r.pending = nil
		r.mu.Unlock()
		eng.AttachRequest(req)
		return nil
	}

	if r.waiting != nil {
		r.mu.Unlock()
		return &HandoffConflictError{Op: "engine ready"}
	}
	r.waiting = eng
	r.mu.Unlock()
	return nil
}

// ClearWaiting drops the waiting engine, if any. Engines call this when
// they shut down before a request arrives.
func (r *Registry) ClearWaiting() {
	r.mu.Lock()
	r.waiting = nil
	r.mu.Unlock()
}

// Len reports the number of live entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
