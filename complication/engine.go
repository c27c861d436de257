// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package complication

import (
	"errors"
	"image"
	"sort"
	"sync"
	"time"

	"github.com/gogpu/facekit/internal/logging"
)

// Host is the narrow callback surface the engine announces changes on.
// The embedding runtime implements it; the engine never does.
type Host interface {
	// SetActiveSlots announces the currently enabled slot ids.
	SetActiveSlots(ids []int)

	// UpdateContentDescriptionLabels tells the host the accessibility
	// label regions changed.
	UpdateContentDescriptionLabels()

	// SetDefaultSourcePolicy announces a slot's default-source policy.
	SetDefaultSourcePolicy(slotID int, policy DefaultSourcePolicy)
}

// ErrDuplicateSlot is returned by NewEngine when two slot configs share an id.
var ErrDuplicateSlot = errors.New("complication: duplicate slot id")

// ErrNoSupportedTypes is returned by NewEngine when a slot config declares
// no supported payload types.
var ErrNoSupportedTypes = errors.New("complication: slot supports no payload types")

// Engine owns a face's complication slots: payload state and timelines,
// batched dirty tracking, and spatial hit tests.
//
// All mutating operations and Reconcile serialize on an internal mutex, so
// the engine is safe to touch from the background thread during setup and
// the foreground thread per frame. Reconcile runs host callbacks on the
// calling goroutine; that call is the serialization point between payload
// updates and host-visible change notifications.
type Engine struct {
	mu     sync.Mutex
	host   Host
	screen image.Rectangle

	slots map[int]*Slot
	order []int // ascending slot ids, fixed at construction
}

// NewEngine creates an engine with the given fixed slot set. The slot set
// cannot change for the engine's lifetime; only slot state can.
func NewEngine(host Host, screen image.Rectangle, cfgs ...SlotConfig) (*Engine, error) {
	e := &Engine{
		host:   host,
		screen: screen,
		slots:  make(map[int]*Slot, len(cfgs)),
	}
	for _, cfg := range cfgs {
		if len(cfg.Supported) == 0 {
			return nil, ErrNoSupportedTypes
		}
		if _, dup := e.slots[cfg.ID]; dup {
			return nil, ErrDuplicateSlot
		}
		e.slots[cfg.ID] = newSlot(cfg, screen)
		e.order = append(e.order, cfg.ID)
	}
	sort.Ints(e.order)
	return e, nil
}

// slot returns the slot for the id, logging and reporting absence.
// Operations on unknown ids are non-fatal no-ops by contract.
func (e *Engine) slot(id int, op string) (*Slot, bool) {
	s, ok := e.slots[id]
	if !ok {
		logging.Get().Warn("complication: unknown slot id", "op", op, "slot", id)
	}
	return s, ok
}

// SetPayload stores the payload as the slot's base value, decodes any
// embedded timeline, and immediately recomputes the active selection for
// the given instant. Unknown slot ids are logged and ignored.
func (e *Engine) SetPayload(slotID int, p Payload, at time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.slot(slotID, "SetPayload")
	if !ok {
		return
	}
	if p == nil {
		p = EmptyPayload{}
	}
	s.tl.set(p)
	s.setActive(s.tl.selectAt(at), false)
}

// SelectForInstant returns the payload that is active for the slot at the
// given instant, without mutating any state. Unknown slot ids return nil.
func (e *Engine) SelectForInstant(slotID int, at time.Time) Payload {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.slot(slotID, "SelectForInstant")
	if !ok {
		return nil
	}
	return s.tl.selectAt(at)
}

// UpdateSelections recomputes every slot's active payload for the given
// instant. Writes are suppressed for slots whose selection is unchanged
// unless force is set. Reports whether any slot's active payload changed,
// in which case the caller should schedule a redraw.
func (e *Engine) UpdateSelections(at time.Time, force bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	changed := false
	for _, id := range e.order {
		s := e.slots[id]
		if s.setActive(s.tl.selectAt(at), force) {
			changed = true
		}
	}
	return changed
}

// SetBounds updates a slot's bounds. The background slot's bounds are
// pinned to the screen; attempts to move it are logged and ignored.
func (e *Engine) SetBounds(slotID int, r image.Rectangle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.slot(slotID, "SetBounds")
	if !ok {
		return
	}
	if s.boundsType == BoundsBackground {
		logging.Get().Warn("complication: background slot bounds are fixed", "slot", slotID)
		return
	}
	if s.bounds == r {
		return
	}
	s.bounds = r
	s.dirty |= dirtyBounds
}

// SetEnabled updates a slot's enablement.
func (e *Engine) SetEnabled(slotID int, enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.slot(slotID, "SetEnabled")
	if !ok || s.enabled == enabled {
		return
	}
	s.enabled = enabled
	s.dirty |= dirtyEnabled
}

// SetAccessibilityIndex updates a slot's label traversal position.
func (e *Engine) SetAccessibilityIndex(slotID, index int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.slot(slotID, "SetAccessibilityIndex")
	if !ok || s.accessibilityIndex == index {
		return
	}
	s.accessibilityIndex = index
	s.dirty |= dirtyAccessibility
}

// SetDefaultSourcePolicy updates a slot's default-source policy.
func (e *Engine) SetDefaultSourcePolicy(slotID int, policy DefaultSourcePolicy) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.slot(slotID, "SetDefaultSourcePolicy")
	if !ok || s.policy.Equal(policy) {
		return
	}
	s.policy = policy
	s.dirty |= dirtyDefaultPolicy
}

// SetName updates a slot's human-readable name.
func (e *Engine) SetName(slotID int, name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.slot(slotID, "SetName")
	if !ok || s.name == name {
		return
	}
	s.name = name
	s.dirty |= dirtyName
}

// Slot returns the slot with the given id, or nil if absent. The returned
// slot is a live view; read it only from goroutines that also serialize
// against the engine's mutators.
func (e *Engine) Slot(slotID int) *Slot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.slots[slotID]
}

// EnabledSlotIDs returns the ids of all enabled slots in ascending order.
func (e *Engine) EnabledSlotIDs() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabledIDsLocked()
}

func (e *Engine) enabledIDsLocked() []int {
	ids := make([]int, 0, len(e.order))
	for _, id := range e.order {
		if e.slots[id].enabled {
			ids = append(ids, id)
		}
	}
	return ids
}

// Reconcile runs the batched dirty-bit reconciliation pass:
//
//  1. If any slot's enablement changed, the enabled-slot id set is
//     re-announced to the host.
//  2. If payload, bounds, accessibility order or name changed on any
//     currently enabled slot, or a slot became enabled, the host is told
//     to refresh its content description labels. Changes made while a
//     slot is disabled surface when it is re-enabled.
//  3. Slots with a dirty default-source policy re-announce the policy.
//  4. All inspected bits are cleared, regardless of outcome.
//
// Calling Reconcile twice with no intervening mutation produces no second
// notification. Host callbacks run on the calling goroutine; this is the
// serialization point between payload updates and host-visible change
// notifications.
func (e *Engine) Reconcile() {
	e.mu.Lock()

	enablementChanged := false
	labelsChanged := false
	type policyAnnounce struct {
		id     int
		policy DefaultSourcePolicy
	}
	var policies []policyAnnounce

	for _, id := range e.order {
		s := e.slots[id]
		if s.dirty&dirtyEnabled != 0 {
			enablementChanged = true
		}
		// A freshly enabled slot counts as label-affecting too, so a
		// name or payload changed while the slot was disabled surfaces
		// on re-enable.
		if s.enabled && s.dirty&(dirtyPayload|dirtyBounds|dirtyAccessibility|dirtyName|dirtyEnabled) != 0 {
			labelsChanged = true
		}
		if s.dirty&dirtyDefaultPolicy != 0 {
			policies = append(policies, policyAnnounce{id: id, policy: s.policy})
		}
		s.dirty = 0
	}

	var active []int
	if enablementChanged {
		active = e.enabledIDsLocked()
	}
	host := e.host
	e.mu.Unlock()

	// Callbacks run unlocked so the host may call back into the engine.
	if host == nil {
		return
	}
	if enablementChanged {
		host.SetActiveSlots(active)
	}
	if labelsChanged {
		host.UpdateContentDescriptionLabels()
	}
	for _, p := range policies {
		host.SetDefaultSourcePolicy(p.id, p.policy)
	}
}

// Locate resolves the slot under the point, in two passes. The first pass
// considers only enabled slots at their exact bounds; the second pass,
// run only when the first finds nothing, expands each slot's bounds by
// its tap margin. Within a pass, ties resolve to the lowest slot id.
// The second result is false when no enabled slot matches.
func (e *Engine) Locate(x, y int) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, margined := range [2]bool{false, true} {
		for _, id := range e.order {
			s := e.slots[id]
			if !s.enabled {
				continue
			}
			if s.hit(x, y, margined) {
				return id, true
			}
		}
	}
	return 0, false
}

// Tap routes a tap at the point to the slot under it, if any. Delegate
// failures are transient by contract: they are logged and ignored.
// Reports whether a slot consumed the tap.
func (e *Engine) Tap(x, y int) bool {
	id, ok := e.Locate(x, y)
	if !ok {
		return false
	}
	e.mu.Lock()
	d := e.slots[id].delegate
	e.mu.Unlock()
	if d == nil {
		return false
	}
	if err := d.OnTap(); err != nil {
		logging.Get().Warn("complication: tap dispatch failed", "slot", id, "err", err)
	}
	return true
}

// NextChangeInstant returns the earliest instant strictly after the given
// one at which any enabled slot's content changes, or Forever when no
// enabled slot has a future boundary.
func (e *Engine) NextChangeInstant(after time.Time) time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	next := Forever
	for _, id := range e.order {
		s := e.slots[id]
		if !s.enabled {
			continue
		}
		if b, ok := s.tl.nextBoundary(after); ok && b.Before(next) {
			next = b
		}
	}
	return next
}
