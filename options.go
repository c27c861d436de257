// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package facekit

import (
	"github.com/gogpu/facekit/complication"
	"github.com/gogpu/facekit/registry"
	"github.com/gogpu/facekit/render"
)

// Option configures a FaceInstance during creation.
//
// Example:
//
//	inst, err := facekit.NewInstance("watchface.analog", host, target,
//		facekit.WithRenderer(myRenderer),
//		facekit.WithSlots(slots...),
//	)
type Option func(*instanceOptions)

// instanceOptions holds optional configuration for instance creation.
type instanceOptions struct {
	backend  render.Backend
	renderer render.FrameRenderer
	slots    []complication.SlotConfig
	registry *registry.Registry
}

func defaultInstanceOptions() instanceOptions {
	return instanceOptions{
		backend:  render.NewSoftwareBackend(),
		registry: registry.Default(),
	}
}

// WithRenderer sets the frame renderer that draws the face's layers.
// Required; NewInstance fails without one.
func WithRenderer(r render.FrameRenderer) Option {
	return func(o *instanceOptions) {
		o.renderer = r
	}
}

// WithBackend selects the rendering backend. Defaults to the software
// backend; pass a wgpu.Backend for hardware rendering.
//
// Example:
//
//	import "github.com/gogpu/facekit/backend/wgpu"
//
//	b := wgpu.New(wgpu.WithSharedAssets())
//	inst, err := facekit.NewInstance(id, host, target,
//		facekit.WithBackend(b),
//		facekit.WithRenderer(myRenderer),
//	)
func WithBackend(b render.Backend) Option {
	return func(o *instanceOptions) {
		o.backend = b
	}
}

// WithSlots declares the face's complication slots.
func WithSlots(cfgs ...complication.SlotConfig) Option {
	return func(o *instanceOptions) {
		o.slots = append(o.slots, cfgs...)
	}
}

// WithRegistry registers the instance in a specific registry instead of
// the process-wide default. Intended for tests.
func WithRegistry(r *registry.Registry) Option {
	return func(o *instanceOptions) {
		o.registry = r
	}
}
