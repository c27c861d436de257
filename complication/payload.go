// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package complication

import (
	"fmt"
	"time"
)

// Forever is the sentinel instant returned by Engine.NextChangeInstant
// when no enabled slot has a future content boundary. It compares after
// any schedulable instant.
var Forever = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

// PayloadType identifies a payload family. Slots declare the set of types
// they support; the set is never empty.
type PayloadType uint8

const (
	// TypeEmpty is the absence of data: the slot renders nothing.
	TypeEmpty PayloadType = iota

	// TypeNoData indicates the data source is active but has produced
	// nothing yet.
	TypeNoData

	// TypeNoPermission indicates the host resolved that the face lacks
	// permission to read the slot's data source. The engine only reacts
	// to this already-resolved state; it never checks permissions itself.
	TypeNoPermission

	// TypeShortText is a short text payload, optionally with a title.
	TypeShortText

	// TypeLongText is a multi-line text payload.
	TypeLongText

	// TypeRangedValue is a value within a [min, max] range.
	TypeRangedValue

	// TypeImage is an image payload.
	TypeImage
)

// String returns the payload type name.
func (t PayloadType) String() string {
	switch t {
	case TypeEmpty:
		return "empty"
	case TypeNoData:
		return "no-data"
	case TypeNoPermission:
		return "no-permission"
	case TypeShortText:
		return "short-text"
	case TypeLongText:
		return "long-text"
	case TypeRangedValue:
		return "ranged-value"
	case TypeImage:
		return "image"
	default:
		return fmt.Sprintf("PayloadType(%d)", uint8(t))
	}
}

// Payload is the decoded, in-memory form of complication data. The wire
// encoding is the transport's concern; the engine consumes only this form.
//
// Implementations must be immutable after construction: the engine shares
// payload values freely between the base slot state, timeline entries,
// and the active selection.
type Payload interface {
	// Type identifies the payload family.
	Type() PayloadType

	// Equal reports whether the other payload would render identically.
	// The engine suppresses downstream notification when a newly selected
	// payload is Equal to the previous one.
	Equal(other Payload) bool

	// NextBoundary returns the first instant strictly after the given one
	// at which the payload's rendered content changes on its own (for
	// example a countdown rolling over), and whether such a boundary
	// exists. Payloads with static content report no boundary.
	NextBoundary(after time.Time) (time.Time, bool)
}

// TimelineEntry is a payload variant valid only during the half-open
// interval [Start, End). Entries pre-schedule future content changes
// without new deliveries.
type TimelineEntry struct {
	Start   time.Time
	End     time.Time
	Payload Payload
}

// Duration returns the length of the entry's validity interval.
func (e TimelineEntry) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Contains reports whether the instant falls inside [Start, End).
func (e TimelineEntry) Contains(at time.Time) bool {
	return !at.Before(e.Start) && at.Before(e.End)
}

// TimelineCarrier is implemented by payloads that embed a timeline of
// future variants. SetPayload decodes the entries once at delivery time.
type TimelineCarrier interface {
	Payload

	// TimelineEntries returns the embedded variants in declaration order.
	// Declaration order breaks duration ties during selection.
	TimelineEntries() []TimelineEntry
}

// EmptyPayload renders nothing.
type EmptyPayload struct{}

// Type returns TypeEmpty.
func (EmptyPayload) Type() PayloadType { return TypeEmpty }

// Equal reports whether other is also empty.
func (EmptyPayload) Equal(other Payload) bool {
	return other != nil && other.Type() == TypeEmpty
}

// NextBoundary reports no boundary: empty content never changes.
func (EmptyPayload) NextBoundary(time.Time) (time.Time, bool) {
	return time.Time{}, false
}

// TextPayload is a short or long text payload.
type TextPayload struct {
	// Kind is TypeShortText or TypeLongText.
	Kind PayloadType

	// Text is the primary text.
	Text string

	// Title is an optional title line.
	Title string

	// Entries is the optional embedded timeline.
	Entries []TimelineEntry
}

// Type returns the text payload kind.
func (p *TextPayload) Type() PayloadType { return p.Kind }

// Equal reports whether other is a text payload with identical content.
// Timeline entries do not participate: they are decoded into slot state
// at delivery and never compared afterwards.
func (p *TextPayload) Equal(other Payload) bool {
	q, ok := other.(*TextPayload)
	return ok && q.Kind == p.Kind && q.Text == p.Text && q.Title == p.Title
}

// NextBoundary reports no boundary: static text never changes on its own.
func (p *TextPayload) NextBoundary(time.Time) (time.Time, bool) {
	return time.Time{}, false
}

// TimelineEntries returns the embedded timeline.
func (p *TextPayload) TimelineEntries() []TimelineEntry { return p.Entries }

// RangedValuePayload is a value within a closed [Min, Max] range, such as
// battery charge or progress toward a goal.
type RangedValuePayload struct {
	Value    float64
	Min, Max float64

	// Entries is the optional embedded timeline.
	Entries []TimelineEntry
}

// Type returns TypeRangedValue.
func (p *RangedValuePayload) Type() PayloadType { return TypeRangedValue }

// Equal reports whether other is a ranged value with identical state.
func (p *RangedValuePayload) Equal(other Payload) bool {
	q, ok := other.(*RangedValuePayload)
	return ok && q.Value == p.Value && q.Min == p.Min && q.Max == p.Max
}

// NextBoundary reports no boundary: the value only changes via delivery.
func (p *RangedValuePayload) NextBoundary(time.Time) (time.Time, bool) {
	return time.Time{}, false
}

// TimelineEntries returns the embedded timeline.
func (p *RangedValuePayload) TimelineEntries() []TimelineEntry { return p.Entries }
