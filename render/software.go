// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"image"

	"github.com/gogpu/gputypes"
)

// SoftwareBackend renders on the CPU and delivers frames to draw targets
// implementing PixelReceiver. It exists so the whole runtime (pool,
// handshake, compositing) is exercisable without a GPU, and it shares
// the exact lifecycle of the hardware kinds.
type SoftwareBackend struct{}

// NewSoftwareBackend creates the CPU backend.
func NewSoftwareBackend() *SoftwareBackend { return &SoftwareBackend{} }

// Kind returns KindSoftware.
func (*SoftwareBackend) Kind() Kind { return KindSoftware }

// NewDisplay opens the no-op software display.
func (*SoftwareBackend) NewDisplay() (Display, error) {
	return softwareDisplay{}, nil
}

// ChooseConfig selects the RGBA8 software configuration.
func (*SoftwareBackend) ChooseConfig(Display) (Config, error) {
	return softwareConfig{}, nil
}

// NewContext creates a software context. Sharing is trivially satisfied:
// all software contexts see the same process memory.
func (*SoftwareBackend) NewContext(Display, Config, Context) (Context, error) {
	return &softwareContext{}, nil
}

// NewSurface creates a surface presenting into the target, which must
// implement PixelReceiver.
func (*SoftwareBackend) NewSurface(_ Context, target DrawTarget, width, height int) (Surface, error) {
	pr, ok := target.(PixelReceiver)
	if !ok {
		return nil, errors.New("render: software draw target must implement PixelReceiver")
	}
	return &softwareSurface{receiver: pr, width: width, height: height}, nil
}

// NewAssets returns no assets: the software kind has none.
func (*SoftwareBackend) NewAssets(Context) (SharedAssets, error) {
	return nil, nil
}

// FlippedReadback reports top-left origin: CPU frames are already in
// image convention.
func (*SoftwareBackend) FlippedReadback() bool { return false }

type softwareDisplay struct{}

func (softwareDisplay) Close() error { return nil }

type softwareConfig struct{}

func (softwareConfig) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// softwareContext tracks binding so the exclusive discipline is honored
// even where there is no real platform context behind it.
type softwareContext struct {
	bound bool
}

func (c *softwareContext) Bind() error {
	if c.bound {
		return errors.New("render: software context already bound")
	}
	c.bound = true
	return nil
}

func (c *softwareContext) Unbind() { c.bound = false }

func (c *softwareContext) Destroy() {}

type softwareSurface struct {
	receiver PixelReceiver
	width    int
	height   int
}

func (s *softwareSurface) Present(frame *image.RGBA) error {
	s.receiver.ReceiveFrame(frame)
	return nil
}

func (s *softwareSurface) Destroy() {}
