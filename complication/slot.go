// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package complication

import (
	"image"
)

// BoundsType classifies how a slot's bounds behave.
type BoundsType uint8

const (
	// BoundsRect is an ordinary rectangular slot positioned by the face.
	BoundsRect BoundsType = iota

	// BoundsBackground is the distinguished full-screen background slot.
	// Its bounds are pinned to the screen and cannot be mutated.
	BoundsBackground

	// BoundsEdge is a slot rendered along the display edge (e.g. a bezel
	// arc). Hit testing still uses the rectangular bounding box.
	BoundsEdge
)

// String returns the bounds type name.
func (t BoundsType) String() string {
	switch t {
	case BoundsRect:
		return "rect"
	case BoundsBackground:
		return "background"
	case BoundsEdge:
		return "edge"
	default:
		return "unknown"
	}
}

// DefaultSourcePolicy names the data sources a slot should fall back to
// when the user has not chosen one. The engine only relays the policy to
// the host; it never resolves sources itself.
type DefaultSourcePolicy struct {
	// Sources is the ordered list of candidate source identifiers.
	Sources []string

	// SystemFallback is the system-provided source used when no candidate
	// is available.
	SystemFallback string

	// FallbackType is the payload type requested from the fallback source.
	FallbackType PayloadType
}

// Equal reports whether two policies are identical.
func (p DefaultSourcePolicy) Equal(q DefaultSourcePolicy) bool {
	if p.SystemFallback != q.SystemFallback || p.FallbackType != q.FallbackType {
		return false
	}
	if len(p.Sources) != len(q.Sources) {
		return false
	}
	for i := range p.Sources {
		if p.Sources[i] != q.Sources[i] {
			return false
		}
	}
	return true
}

// Delegate is the caller-supplied behavior attached to a slot. Drawing is
// entirely the delegate's concern; the engine only routes taps to it.
type Delegate interface {
	// OnTap reacts to a tap routed to the slot. A non-nil error marks a
	// transient failure (for example the tap target became invalid); the
	// engine logs it and continues.
	OnTap() error
}

// DelegateFactory constructs the drawing delegate for a slot. Called once
// when the slot is created.
type DelegateFactory func(slotID int) Delegate

// Dirty bits, one per independently tracked mutable attribute.
const (
	dirtyPayload uint8 = 1 << iota
	dirtyBounds
	dirtyEnabled
	dirtyAccessibility
	dirtyDefaultPolicy
	dirtyName
)

// SlotConfig describes a slot at creation time. Identity fields are
// immutable for the slot's lifetime.
type SlotConfig struct {
	// ID is the slot identifier, unique within an engine.
	ID int

	// BoundsType classifies the slot's bounds behavior.
	BoundsType BoundsType

	// TapMargin expands the slot's bounds on all sides during the second
	// hit-test pass, making small slots easier to tap. Zero disables the
	// expansion for this slot.
	TapMargin int

	// Supported lists the payload types the slot accepts. Must be
	// non-empty.
	Supported []PayloadType

	// Factory constructs the slot's delegate. May be nil for slots that
	// do not react to taps.
	Factory DelegateFactory

	// Bounds is the initial bounds. Ignored for BoundsBackground, which
	// is always pinned to the screen.
	Bounds image.Rectangle

	// Enabled is the initial enablement state.
	Enabled bool

	// AccessibilityIndex is the initial traversal position for label
	// assembly. Lower indices are read first.
	AccessibilityIndex int

	// Name is the human-readable slot name used in labels.
	Name string
}

// Slot is one complication slot: immutable identity plus independently
// dirty-tracked mutable configuration and payload state. Slots are owned
// and serialized by their Engine; they have no locking of their own.
type Slot struct {
	id         int
	boundsType BoundsType
	tapMargin  int
	supported  []PayloadType
	delegate   Delegate

	bounds             image.Rectangle
	enabled            bool
	accessibilityIndex int
	policy             DefaultSourcePolicy
	name               string

	tl     timeline
	active Payload

	dirty uint8
}

func newSlot(cfg SlotConfig, screen image.Rectangle) *Slot {
	s := &Slot{
		id:                 cfg.ID,
		boundsType:         cfg.BoundsType,
		tapMargin:          cfg.TapMargin,
		supported:          cfg.Supported,
		bounds:             cfg.Bounds,
		enabled:            cfg.Enabled,
		accessibilityIndex: cfg.AccessibilityIndex,
		name:               cfg.Name,
	}
	if cfg.BoundsType == BoundsBackground {
		s.bounds = screen
	}
	if cfg.Factory != nil {
		s.delegate = cfg.Factory(cfg.ID)
	}
	s.tl.set(EmptyPayload{})
	s.active = EmptyPayload{}
	return s
}

// ID returns the slot identifier.
func (s *Slot) ID() int { return s.id }

// BoundsType returns the slot's bounds classification.
func (s *Slot) BoundsType() BoundsType { return s.boundsType }

// Bounds returns the slot's current bounds.
func (s *Slot) Bounds() image.Rectangle { return s.bounds }

// Enabled reports whether the slot is enabled.
func (s *Slot) Enabled() bool { return s.enabled }

// Name returns the slot's human-readable name.
func (s *Slot) Name() string { return s.name }

// AccessibilityIndex returns the slot's label traversal position.
func (s *Slot) AccessibilityIndex() int { return s.accessibilityIndex }

// DefaultSourcePolicy returns the slot's current default-source policy.
func (s *Slot) DefaultSourcePolicy() DefaultSourcePolicy { return s.policy }

// Supported returns the payload types the slot accepts.
func (s *Slot) Supported() []PayloadType { return s.supported }

// Active returns the payload currently selected for display.
func (s *Slot) Active() Payload { return s.active }

// setActive installs a newly selected payload. The write is suppressed
// when the value is Equal to the current one, unless force is set.
// Reports whether the active payload changed.
func (s *Slot) setActive(p Payload, force bool) bool {
	if !force && s.active != nil && p != nil && s.active.Equal(p) {
		return false
	}
	s.active = p
	s.dirty |= dirtyPayload
	return true
}

// hit reports whether the point falls inside the slot's bounds. When
// margined is set, the bounds are first expanded by the slot's tap margin.
func (s *Slot) hit(x, y int, margined bool) bool {
	b := s.bounds
	if margined && s.tapMargin > 0 {
		b = b.Inset(-s.tapMargin)
	}
	return image.Pt(x, y).In(b)
}
