// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"encoding/binary"
	"fmt"
	"image"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/facekit/render"
)

// compositeTimeout bounds the wait for the composite dispatch fence.
const compositeTimeout = 5 * time.Second

var _ render.LayerPresenter = (*surface)(nil)

// surface is the presentable surface: one GPU storage buffer holding the
// current frame in RGBA8, rewritten on every present. The highlight and
// params buffers exist only after the first layered present.
type surface struct {
	ctx    *context
	buffer hal.Buffer
	width  int
	height int

	highlightBuf hal.Buffer
	paramsBuf    hal.Buffer
}

func newSurface(ctx *context, width, height int) (*surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("wgpu: invalid surface size %dx%d", width, height)
	}
	buf, err := ctx.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "facekit_frame",
		Size:  uint64(width) * uint64(height) * 4,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst | gputypes.BufferUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create frame buffer: %w", err)
	}
	return &surface{ctx: ctx, buffer: buf, width: width, height: height}, nil
}

// Present uploads the composited frame to the GPU frame buffer.
func (s *surface) Present(frame *image.RGBA) error {
	if s.buffer == nil {
		return fmt.Errorf("wgpu: surface already destroyed")
	}
	if err := s.checkSize(frame); err != nil {
		return err
	}
	s.ctx.queue.WriteBuffer(s.buffer, 0, frame.Pix)
	return nil
}

// PresentLayers uploads the base frame and the highlight layer and blends
// them on the GPU with the shared compositing pipeline. The base lands in
// the frame buffer, the highlight in its own storage buffer, and one
// compute dispatch writes the blended result back into the frame buffer.
func (s *surface) PresentLayers(shared render.SharedAssets, base, highlight *image.RGBA) error {
	a, ok := shared.(*assets)
	if !ok || a.pipeline == nil {
		return fmt.Errorf("wgpu: shared assets do not carry a composite pipeline")
	}
	if err := s.Present(base); err != nil {
		return err
	}
	if err := s.checkSize(highlight); err != nil {
		return err
	}
	if err := s.ensureCompositeBuffers(); err != nil {
		return err
	}

	device, queue := s.ctx.device, s.ctx.queue
	queue.WriteBuffer(s.highlightBuf, 0, highlight.Pix)

	var params [16]byte
	binary.LittleEndian.PutUint32(params[0:], uint32(s.width))
	binary.LittleEndian.PutUint32(params[4:], uint32(s.height))
	binary.LittleEndian.PutUint32(params[8:], 1)
	queue.WriteBuffer(s.paramsBuf, 0, params[:])

	pixels := uint64(s.width) * uint64(s.height)
	bindGroup, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "facekit_composite_bindings",
		Layout: a.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: s.paramsBuf.NativeHandle(), Offset: 0, Size: 16}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: s.highlightBuf.NativeHandle(), Offset: 0, Size: pixels * 4}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: s.buffer.NativeHandle(), Offset: 0, Size: pixels * 4}},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create composite bind group: %w", err)
	}
	defer device.DestroyBindGroup(bindGroup)

	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "facekit_composite_encoder"})
	if err != nil {
		return fmt.Errorf("wgpu: create composite encoder: %w", err)
	}
	if err := encoder.BeginEncoding("facekit_composite"); err != nil {
		return fmt.Errorf("wgpu: begin composite encoding: %w", err)
	}

	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "facekit_composite_pass"})
	pass.SetPipeline(a.pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.Dispatch(uint32((pixels+63)/64), 1, 1)
	pass.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: encode composite pass: %w", err)
	}
	defer device.FreeCommandBuffer(cmdBuf)

	fence, err := device.CreateFence()
	if err != nil {
		return fmt.Errorf("wgpu: create composite fence: %w", err)
	}
	defer device.DestroyFence(fence)

	if err := queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("wgpu: submit composite dispatch: %w", err)
	}
	done, err := device.Wait(fence, 1, compositeTimeout)
	if err != nil {
		return fmt.Errorf("wgpu: wait for composite dispatch: %w", err)
	}
	if !done {
		return fmt.Errorf("wgpu: composite dispatch timed out after %v", compositeTimeout)
	}
	return nil
}

// checkSize rejects images that do not match the surface dimensions.
func (s *surface) checkSize(img *image.RGBA) error {
	b := img.Bounds()
	if b.Dx() != s.width || b.Dy() != s.height {
		return fmt.Errorf("wgpu: frame %dx%d does not match surface %dx%d",
			b.Dx(), b.Dy(), s.width, s.height)
	}
	return nil
}

func (s *surface) ensureCompositeBuffers() error {
	if s.highlightBuf == nil {
		buf, err := s.ctx.device.CreateBuffer(&hal.BufferDescriptor{
			Label: "facekit_highlight",
			Size:  uint64(s.width) * uint64(s.height) * 4,
			Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("wgpu: create highlight buffer: %w", err)
		}
		s.highlightBuf = buf
	}
	if s.paramsBuf == nil {
		buf, err := s.ctx.device.CreateBuffer(&hal.BufferDescriptor{
			Label: "facekit_composite_params",
			Size:  16,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("wgpu: create composite params buffer: %w", err)
		}
		s.paramsBuf = buf
	}
	return nil
}

// Destroy releases the GPU buffers.
func (s *surface) Destroy() {
	if s.paramsBuf != nil {
		s.ctx.device.DestroyBuffer(s.paramsBuf)
		s.paramsBuf = nil
	}
	if s.highlightBuf != nil {
		s.ctx.device.DestroyBuffer(s.highlightBuf)
		s.highlightBuf = nil
	}
	if s.buffer != nil {
		s.ctx.device.DestroyBuffer(s.buffer)
		s.buffer = nil
	}
}
