// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/facekit/internal/logging"
	"github.com/gogpu/facekit/render"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import the Vulkan HAL backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Errors.
var (
	// ErrNoGPU is returned when no usable GPU backend or adapter exists
	// on this system.
	ErrNoGPU = errors.New("wgpu: no GPU available")
)

// Option configures a Backend during creation.
type Option func(*Backend)

// WithSharedAssets makes the backend carry shared immutable assets
// (compiled compositing shaders) built once per pool entry. The backend
// then reports render.KindHardwareShared.
func WithSharedAssets() Option {
	return func(b *Backend) { b.shared = true }
}

// WithDeviceProvider shares the host application's GPU device instead of
// opening one. The provider must also expose HAL handles through
// HalDevice() any and HalQueue() any; gogpu's context provider does.
func WithDeviceProvider(p gpucontext.DeviceProvider) Option {
	return func(b *Backend) { b.provider = p }
}

// Backend implements render.Backend over the wgpu HAL.
type Backend struct {
	shared   bool
	provider gpucontext.DeviceProvider
}

// New creates a hardware backend.
func New(opts ...Option) *Backend {
	b := &Backend{}
	for _, o := range opts {
		o(b)
	}
	return b
}

var _ render.Backend = (*Backend)(nil)

// Kind returns the renderer kind served by this backend.
func (b *Backend) Kind() render.Kind {
	if b.shared {
		return render.KindHardwareShared
	}
	return render.KindHardware
}

// FlippedReadback reports bottom-left origin: GPU read-back rows arrive
// bottom-up and need flipping into image convention.
func (b *Backend) FlippedReadback() bool { return true }

// display is the opened display handle: the HAL instance plus the
// selected adapter, or nothing at all when the device is host-shared.
type display struct {
	instance hal.Instance
	adapter  *hal.ExposedAdapter
	external bool
}

// Close destroys the HAL instance. Shared displays own nothing.
func (d *display) Close() error {
	if d.external {
		return nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
	return nil
}

// NewDisplay opens the HAL instance and selects an adapter, preferring
// discrete, then integrated GPUs. With a host device provider there is
// nothing to open.
func (b *Backend) NewDisplay() (render.Display, error) {
	if b.provider != nil {
		return &display{external: true}, nil
	}

	halBackend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not registered", ErrNoGPU)
	}
	instance, err := halBackend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %w", ErrNoGPU, err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w: no adapters found", ErrNoGPU)
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	logging.Get().Info("wgpu: adapter selected", "name", selected.Info.Name)
	return &display{instance: instance, adapter: selected}, nil
}

// config is the chosen feature/limit/format combination.
type config struct {
	features gputypes.Features
	limits   gputypes.Limits
	format   gputypes.TextureFormat
}

// Format returns the pixel format frames are produced in.
func (c *config) Format() gputypes.TextureFormat { return c.format }

// ChooseConfig selects default features and limits. With a host device
// provider the surface format follows the host's swapchain.
func (b *Backend) ChooseConfig(render.Display) (render.Config, error) {
	cfg := &config{
		features: gputypes.Features(0),
		limits:   gputypes.DefaultLimits(),
		format:   gputypes.TextureFormatRGBA8Unorm,
	}
	if b.provider != nil {
		if f := b.provider.SurfaceFormat(); f != gputypes.TextureFormatUndefined {
			cfg.format = f
		}
	}
	return cfg, nil
}

// halProvider is the duck interface a device provider must satisfy to
// hand out raw HAL handles.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// context is one role's rendering context. Foreground contexts are
// share-linked: they reuse the background context's device and queue and
// own neither.
type context struct {
	device hal.Device
	queue  hal.Queue
	owned  bool
	bound  bool
}

// Bind makes the context current. The wgpu HAL is internally
// thread-safe; binding enforces the runtime's exclusive-access
// discipline and catches double binds.
func (c *context) Bind() error {
	if c.bound {
		return errors.New("wgpu: context already bound")
	}
	c.bound = true
	return nil
}

// Unbind releases the context.
func (c *context) Unbind() { c.bound = false }

// Destroy releases the device for owned contexts. Share-linked and
// host-provided contexts own nothing.
func (c *context) Destroy() {
	if c.owned && c.device != nil {
		c.device.Destroy()
	}
	c.device = nil
	c.queue = nil
}

// NewContext creates a rendering context. A non-nil share links the new
// context to the existing one by reusing its device and queue.
func (b *Backend) NewContext(d render.Display, cfg render.Config, share render.Context) (render.Context, error) {
	if share != nil {
		sc, ok := share.(*context)
		if !ok {
			return nil, errors.New("wgpu: share context is not a wgpu context")
		}
		return &context{device: sc.device, queue: sc.queue, owned: false}, nil
	}

	if b.provider != nil {
		hp, ok := b.provider.(halProvider)
		if !ok {
			return nil, errors.New("wgpu: device provider does not expose HAL handles")
		}
		device, ok := hp.HalDevice().(hal.Device)
		if !ok || device == nil {
			return nil, errors.New("wgpu: provider HalDevice is not hal.Device")
		}
		queue, ok := hp.HalQueue().(hal.Queue)
		if !ok || queue == nil {
			return nil, errors.New("wgpu: provider HalQueue is not hal.Queue")
		}
		return &context{device: device, queue: queue, owned: false}, nil
	}

	wd, ok := d.(*display)
	if !ok || wd.adapter == nil {
		return nil, errors.New("wgpu: display is not a wgpu display")
	}
	wc, ok := cfg.(*config)
	if !ok {
		return nil, errors.New("wgpu: config is not a wgpu config")
	}
	openDev, err := wd.adapter.Adapter.Open(wc.features, wc.limits)
	if err != nil {
		return nil, fmt.Errorf("wgpu: open device: %w", err)
	}
	return &context{device: openDev.Device, queue: openDev.Queue, owned: true}, nil
}

// NewSurface creates the presentable surface: a GPU frame buffer sized
// to the draw target, refreshed on every present.
func (b *Backend) NewSurface(ctx render.Context, _ render.DrawTarget, width, height int) (render.Surface, error) {
	wc, ok := ctx.(*context)
	if !ok {
		return nil, errors.New("wgpu: context is not a wgpu context")
	}
	return newSurface(wc, width, height)
}

// NewAssets compiles the shared compositing shaders. Backends without
// WithSharedAssets carry none.
func (b *Backend) NewAssets(ctx render.Context) (render.SharedAssets, error) {
	if !b.shared {
		return nil, nil
	}
	wc, ok := ctx.(*context)
	if !ok {
		return nil, errors.New("wgpu: context is not a wgpu context")
	}
	return newAssets(wc)
}
