package wgpu

import (
	"fmt"
	"math"
	"time"

	"github.com/gogpu/framegraph/debugdraw"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/math/f32"
)

// lineShaderSource transforms line vertices by a view-projection matrix
// and passes the per-vertex color through unmodified.
const lineShaderSource = `
struct Uniforms {
    view_proj: mat4x4<f32>,
};

@group(0) @binding(0) var<uniform> u: Uniforms;

struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) color: vec4<f32>,
};

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec4<f32>,
};

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.position = u.view_proj * vec4<f32>(in.position, 1.0);
    out.color = in.color;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return in.color;
}
`

// lineUniformSize is the byte size of the shader's Uniforms block
// (one mat4x4<f32>).
const lineUniformSize = 64

// gpuSubmitTimeout bounds the fence wait after each submission.
const gpuSubmitTimeout = 5 * time.Second

// compileWGSL compiles WGSL source to SPIR-V words.
func compileWGSL(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}

// lineVertexLayout describes the debugdraw.Vertex buffer layout:
// position vec3 at location 0, color vec4 at location 1.
func lineVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: debugdraw.VertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
				{Format: gputypes.VertexFormatFloat32x4, Offset: 12, ShaderLocation: 1},
			},
		},
	}
}

// packVertices serializes vertices into the little-endian layout the
// vertex shader consumes.
func packVertices(vs []debugdraw.Vertex) []byte {
	out := make([]byte, 0, len(vs)*debugdraw.VertexStride)
	for _, v := range vs {
		out = appendFloat32(out, v.Position[0])
		out = appendFloat32(out, v.Position[1])
		out = appendFloat32(out, v.Position[2])
		out = appendFloat32(out, v.Color[0])
		out = appendFloat32(out, v.Color[1])
		out = appendFloat32(out, v.Color[2])
		out = appendFloat32(out, v.Color[3])
	}
	return out
}

// packMatrix serializes a column-major matrix for the uniform block.
func packMatrix(m f32.Mat4) []byte {
	out := make([]byte, 0, lineUniformSize)
	for _, v := range m {
		out = appendFloat32(out, v)
	}
	return out
}

func appendFloat32(dst []byte, v float32) []byte {
	bits := math.Float32bits(v)
	return append(dst, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
}

// linePipeline renders debug-line draw groups into a color+depth
// attachment pair. One pipeline exists per color target format.
type linePipeline struct {
	device hal.Device
	queue  hal.Queue
	format gputypes.TextureFormat

	shader        hal.ShaderModule
	uniformLayout hal.BindGroupLayout
	pipeLayout    hal.PipelineLayout
	pipeline      hal.RenderPipeline
}

// newLinePipeline compiles the line shader and builds the render
// pipeline targeting the given color format.
func newLinePipeline(device hal.Device, queue hal.Queue, format gputypes.TextureFormat) (*linePipeline, error) {
	p := &linePipeline{device: device, queue: queue, format: format}

	spirv, err := compileWGSL(lineShaderSource)
	if err != nil {
		p.destroy()
		return nil, fmt.Errorf("line shader: %w", err)
	}
	shader, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "debug_lines_shader",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		p.destroy()
		return nil, fmt.Errorf("create line shader module: %w", err)
	}
	p.shader = shader

	uniformLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "debug_lines_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		p.destroy()
		return nil, fmt.Errorf("create line uniform layout: %w", err)
	}
	p.uniformLayout = uniformLayout

	pipeLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "debug_lines_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.uniformLayout},
	})
	if err != nil {
		p.destroy()
		return nil, fmt.Errorf("create line pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "debug_lines_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    lineVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    format,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		DepthStencil: &hal.DepthStencilState{
			Format:            gputypes.TextureFormatDepth24PlusStencil8,
			DepthWriteEnabled: true,
			DepthCompare:      gputypes.CompareFunctionLessEqual,
			StencilFront: hal.StencilFaceState{
				Compare:     gputypes.CompareFunctionAlways,
				FailOp:      hal.StencilOperationKeep,
				DepthFailOp: hal.StencilOperationKeep,
				PassOp:      hal.StencilOperationKeep,
			},
			StencilBack: hal.StencilFaceState{
				Compare:     gputypes.CompareFunctionAlways,
				FailOp:      hal.StencilOperationKeep,
				DepthFailOp: hal.StencilOperationKeep,
				PassOp:      hal.StencilOperationKeep,
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyLineList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		p.destroy()
		return nil, fmt.Errorf("create line pipeline: %w", err)
	}
	p.pipeline = pipeline

	return p, nil
}

// destroy releases pipeline resources in reverse creation order.
// Safe to call on a partially constructed pipeline.
func (p *linePipeline) destroy() {
	if p.device == nil {
		return
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.uniformLayout != nil {
		p.device.DestroyBindGroupLayout(p.uniformLayout)
		p.uniformLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

// groupDraw is one draw group prepared for encoding: a vertex buffer,
// its bind group, and the vertex count.
type groupDraw struct {
	vertBuf    hal.Buffer
	uniformBuf hal.Buffer
	bindGroup  hal.BindGroup
	count      uint32
}

// encode records and submits one render pass drawing the given groups
// into the color and depth views, then blocks until the GPU finishes so
// transient buffers can be released.
func (p *linePipeline) encode(
	colorView, depthView hal.TextureView,
	clearColor gputypes.Color,
	depthClear float32, stencilClear uint32,
	groups []*debugdraw.GroupDesc,
) error {
	draws := make([]groupDraw, 0, len(groups))
	defer func() {
		for _, d := range draws {
			if d.bindGroup != nil {
				p.device.DestroyBindGroup(d.bindGroup)
			}
			if d.uniformBuf != nil {
				p.device.DestroyBuffer(d.uniformBuf)
			}
			if d.vertBuf != nil {
				p.device.DestroyBuffer(d.vertBuf)
			}
		}
	}()

	for _, g := range groups {
		vs := g.Vertices()
		if len(vs) == 0 {
			continue
		}
		d, err := p.prepareGroup(vs, g.ViewProjection())
		if err != nil {
			return err
		}
		draws = append(draws, d)
	}

	encoder, err := p.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "debug_lines_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("debug_lines"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "debug_lines_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       colorView,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: clearColor,
			},
		},
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:              depthView,
			DepthLoadOp:       gputypes.LoadOpClear,
			DepthStoreOp:      gputypes.StoreOpStore,
			DepthClearValue:   depthClear,
			StencilLoadOp:     gputypes.LoadOpClear,
			StencilStoreOp:    gputypes.StoreOpDiscard,
			StencilClearValue: stencilClear,
		},
	})
	rp.SetPipeline(p.pipeline)
	for _, d := range draws {
		rp.SetBindGroup(0, d.bindGroup, nil)
		rp.SetVertexBuffer(0, d.vertBuf, 0)
		rp.Draw(d.count, 1, 0, 0)
	}
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer p.device.FreeCommandBuffer(cmdBuf)

	fence, err := p.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer p.device.DestroyFence(fence)

	if err := p.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := p.device.Wait(fence, 1, gpuSubmitTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}
	return nil
}

// prepareGroup uploads one group's vertices and view-projection matrix.
func (p *linePipeline) prepareGroup(vs []debugdraw.Vertex, viewProj f32.Mat4) (groupDraw, error) {
	var d groupDraw

	vertBuf, err := p.createAndUploadBuffer("debug_lines_verts", packVertices(vs),
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return d, fmt.Errorf("create vertex buffer: %w", err)
	}
	d.vertBuf = vertBuf
	d.count = uint32(len(vs))

	uniformBuf, err := p.createAndUploadBuffer("debug_lines_uniform", packMatrix(viewProj),
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		p.device.DestroyBuffer(d.vertBuf)
		d.vertBuf = nil
		return d, fmt.Errorf("create uniform buffer: %w", err)
	}
	d.uniformBuf = uniformBuf

	bindGroup, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "debug_lines_bind",
		Layout: p.uniformLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniformBuf.NativeHandle(), Offset: 0, Size: lineUniformSize,
			}},
		},
	})
	if err != nil {
		p.device.DestroyBuffer(d.uniformBuf)
		p.device.DestroyBuffer(d.vertBuf)
		d.uniformBuf = nil
		d.vertBuf = nil
		return d, fmt.Errorf("create bind group: %w", err)
	}
	d.bindGroup = bindGroup

	return d, nil
}

// createAndUploadBuffer creates a buffer and writes data into it.
func (p *linePipeline) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	p.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}
