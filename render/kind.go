// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import "fmt"

// Kind identifies a renderer variant. The set is closed: every face
// instance is constructed with exactly one of these, and instances of the
// same kind share one pool entry.
type Kind uint8

const (
	// KindSoftware renders frames on the CPU and hands pixels to the draw
	// target. It still participates in the pool so its lifecycle matches
	// the hardware kinds.
	KindSoftware Kind = iota

	// KindHardware renders through the GPU backend without shared assets.
	KindHardware

	// KindHardwareShared renders through the GPU backend and additionally
	// carries shared immutable assets (compiled shader programs) built
	// once per pool entry and reused by every instance of the kind.
	KindHardwareShared
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindSoftware:
		return "software"
	case KindHardware:
		return "hardware"
	case KindHardwareShared:
		return "hardware-shared"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}
