// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/composite.wgsl
var compositeShaderWGSL string

// assets is the shared immutable asset bundle for the hardware-shared
// kind: the compositing shader compiled to SPIR-V and the pipeline built
// from it. Built at most once per pool entry, under the background
// context, and reused by every instance of the kind.
type assets struct {
	device hal.Device

	shaderModule   hal.ShaderModule
	bindLayout     hal.BindGroupLayout
	pipelineLayout hal.PipelineLayout
	pipeline       hal.ComputePipeline
}

func newAssets(ctx *context) (*assets, error) {
	spirv, err := compileToSPIRV(compositeShaderWGSL)
	if err != nil {
		return nil, fmt.Errorf("wgpu: compile composite shader: %w", err)
	}

	a := &assets{device: ctx.device}

	module, err := ctx.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "facekit_composite",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create composite shader module: %w", err)
	}
	a.shaderModule = module

	bindLayout, err := ctx.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "facekit_composite_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		a.Destroy()
		return nil, fmt.Errorf("wgpu: create composite bind group layout: %w", err)
	}
	a.bindLayout = bindLayout

	pipelineLayout, err := ctx.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "facekit_composite_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{bindLayout},
	})
	if err != nil {
		a.Destroy()
		return nil, fmt.Errorf("wgpu: create composite pipeline layout: %w", err)
	}
	a.pipelineLayout = pipelineLayout

	pipeline, err := ctx.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  "facekit_composite_pipeline",
		Layout: pipelineLayout,
		Compute: hal.ComputeState{
			Module:     module,
			EntryPoint: "cs_composite",
		},
	})
	if err != nil {
		a.Destroy()
		return nil, fmt.Errorf("wgpu: create composite pipeline: %w", err)
	}
	a.pipeline = pipeline

	return a, nil
}

// Destroy releases the asset bundle in reverse-creation order.
func (a *assets) Destroy() {
	if a.device == nil {
		return
	}
	if a.pipeline != nil {
		a.device.DestroyComputePipeline(a.pipeline)
		a.pipeline = nil
	}
	if a.pipelineLayout != nil {
		a.device.DestroyPipelineLayout(a.pipelineLayout)
		a.pipelineLayout = nil
	}
	if a.bindLayout != nil {
		a.device.DestroyBindGroupLayout(a.bindLayout)
		a.bindLayout = nil
	}
	if a.shaderModule != nil {
		a.device.DestroyShaderModule(a.shaderModule)
		a.shaderModule = nil
	}
	a.device = nil
}

// compileToSPIRV compiles WGSL source to SPIR-V 32-bit words.
// SPIR-V is little-endian.
func compileToSPIRV(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, err
	}
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}
