// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package program builds the renderable program bound by the presenter:
// a WGSL vertex/fragment shader compiled to SPIR-V with naga, a pipeline
// layout without bind groups and a render pipeline that writes one color
// target in the surface format.
package program

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// TriangleWGSL draws one red triangle from the vertex index alone.
//
//go:embed shaders/triangle.wgsl
var TriangleWGSL string

// Entry points expected in every shader passed to New.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

// Program owns the shader module, pipeline layout and render pipeline.
type Program struct {
	device hal.Device
	format gputypes.TextureFormat

	module   hal.ShaderModule
	layout   hal.PipelineLayout
	pipeline hal.RenderPipeline
}

type config struct {
	source string
	label  string
}

// Option configures New.
type Option func(*config)

// WithSource replaces the built-in triangle shader. The source must define
// VertexEntryPoint and FragmentEntryPoint and take no vertex buffers.
func WithSource(wgsl string) Option {
	return func(c *config) {
		if wgsl != "" {
			c.source = wgsl
		}
	}
}

// WithLabel sets the debug label prefix of the created objects.
func WithLabel(label string) Option {
	return func(c *config) {
		if label != "" {
			c.label = label
		}
	}
}

// New compiles the shader and creates the pipeline for color targets of
// the given format. On error, anything already created is destroyed.
func New(device hal.Device, format gputypes.TextureFormat, opts ...Option) (*Program, error) {
	c := config{source: TriangleWGSL, label: "framepace_triangle"}
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}

	spirv, err := CompileWGSL(c.source)
	if err != nil {
		return nil, err
	}

	p := &Program{device: device, format: format}
	if err := p.build(c.label, spirv); err != nil {
		p.Destroy()
		return nil, err
	}
	return p, nil
}

func (p *Program) build(label string, spirv []uint32) error {
	module, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label + "_shader",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return fmt.Errorf("create shader module: %w", err)
	}
	p.module = module

	layout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: label + "_layout",
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	p.layout = layout

	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  label + "_pipeline",
		Layout: p.layout,
		Vertex: hal.VertexState{
			Module:     p.module,
			EntryPoint: VertexEntryPoint,
		},
		Fragment: &hal.FragmentState{
			Module:     p.module,
			EntryPoint: FragmentEntryPoint,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    p.format,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create render pipeline: %w", err)
	}
	p.pipeline = pipeline
	return nil
}

// Pipeline returns the render pipeline.
func (p *Program) Pipeline() hal.RenderPipeline { return p.pipeline }

// Format returns the color target format the pipeline was built for.
func (p *Program) Format() gputypes.TextureFormat { return p.format }

// Destroy releases the pipeline, the layout and the shader module, in
// that order. Safe to call more than once.
func (p *Program) Destroy() {
	if p.device == nil {
		return
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.layout != nil {
		p.device.DestroyPipelineLayout(p.layout)
		p.layout = nil
	}
	if p.module != nil {
		p.device.DestroyShaderModule(p.module)
		p.module = nil
	}
}

// CompileWGSL compiles WGSL source to little-endian SPIR-V words.
func CompileWGSL(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("compile shader: SPIR-V length %d is not a multiple of 4", len(spirvBytes))
	}

	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}
