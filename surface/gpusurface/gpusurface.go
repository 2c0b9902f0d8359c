// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package gpusurface

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"time"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/view3d/surface"
)

func init() {
	surface.Register(surface.GPU, surface.PriorityGPU, func(opts surface.Options) (surface.Surface, error) {
		return newGPUSurface(opts)
	}, available)
}

// presentParams is the uniform block of the pack shader. Must match
// Params in present.wgsl (16 bytes).
type presentParams struct {
	Width  uint32
	Height uint32
	Pad0   uint32
	Pad1   uint32
}

// gpuSurface presents frames through a wgpu device: the linear frame is
// packed to sRGB by a compute pass and uploaded to a device texture.
// It renders offscreen; there is no host window.
type gpuSurface struct {
	ctx *deviceContext

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline

	// Sized resources, recreated when the frame size changes.
	sizedW, sizedH int
	texture        hal.Texture
	srcBuf         hal.Buffer // linear float pixels
	dstBuf         hal.Buffer // packed sRGB pixels
	stagingBuf     hal.Buffer // CPU-visible copy of dstBuf
	paramBuf       hal.Buffer
	bindGroup      hal.BindGroup

	width, height int
	x, y          int
	last          *image.RGBA
	closed        bool
}

func newGPUSurface(opts surface.Options) (*gpuSurface, error) {
	ctx, err := acquireDevice()
	if err != nil {
		return nil, err
	}
	w, h := opts.Width, opts.Height
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	s := &gpuSurface{ctx: ctx, width: w, height: h}
	if err := s.createPipeline(); err != nil {
		s.destroyPipeline()
		if ctx.owned {
			ctx.release()
		}
		return nil, err
	}
	return s, nil
}

func (s *gpuSurface) Type() surface.Type { return surface.GPU }

func (s *gpuSurface) Name() string { return "wgpu" }

// Adapter returns the name of the adapter the surface presents through,
// or "shared" when the device came from SetDeviceProvider.
func (s *gpuSurface) Adapter() string { return s.ctx.adapter }

func (s *gpuSurface) Size() (int, int) { return s.width, s.height }

func (s *gpuSurface) SetSize(width, height int) {
	if width > 0 {
		s.width = width
	}
	if height > 0 {
		s.height = height
	}
}

func (s *gpuSurface) Position() (int, int) { return s.x, s.y }

func (s *gpuSurface) SetPosition(x, y int) { s.x, s.y = x, y }

// Present uploads already-packed sRGB pixels straight to the present
// texture. Used when the frame was converted host-side.
func (s *gpuSurface) Present(img *image.RGBA) error {
	if s.closed {
		return errors.New("surface: present on closed gpu surface")
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if err := s.ensureSize(w, h); err != nil {
		return err
	}
	pixels := img.Pix
	if img.Stride != w*4 || b.Min != (image.Point{}) {
		pixels = make([]byte, w*h*4)
		for y := 0; y < h; y++ {
			off := img.PixOffset(b.Min.X, b.Min.Y+y)
			copy(pixels[y*w*4:(y+1)*w*4], img.Pix[off:off+w*4])
		}
	}
	uploadToTexture(s.ctx.queue, s.texture, w, h, pixels)
	s.last = cloneRGBA(img)
	return nil
}

// PresentLinear packs the renderer's linear float frame on the GPU and
// uploads the result to the present texture. One dispatch, one fence.
func (s *gpuSurface) PresentLinear(width, height int, rgba []float32) error {
	if s.closed {
		return errors.New("surface: present on closed gpu surface")
	}
	if len(rgba) < width*height*4 {
		return fmt.Errorf("gpusurface: frame buffer too small: %d floats for %dx%d", len(rgba), width, height)
	}
	if err := s.ensureSize(width, height); err != nil {
		return err
	}

	params := presentParams{Width: uint32(width), Height: uint32(height)}
	s.ctx.queue.WriteBuffer(s.paramBuf, 0, structToBytes(unsafe.Pointer(&params), unsafe.Sizeof(params)))
	s.ctx.queue.WriteBuffer(s.srcBuf, 0, floatsToBytes(rgba[:width*height*4]))

	packed, err := s.dispatchPack(width, height)
	if err != nil {
		return err
	}
	uploadToTexture(s.ctx.queue, s.texture, width, height, packed)

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	copy(out.Pix, packed)
	s.last = out
	return nil
}

// dispatchPack runs the pack shader over the source buffer and reads the
// packed pixels back through the staging buffer.
func (s *gpuSurface) dispatchPack(width, height int) ([]byte, error) {
	dev, queue := s.ctx.device, s.ctx.queue
	packedSize := uint64(width * height * 4)

	encoder, err := dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "present_encoder"})
	if err != nil {
		return nil, fmt.Errorf("gpusurface: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("present_pack"); err != nil {
		return nil, fmt.Errorf("gpusurface: begin encoding: %w", err)
	}

	computePass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "present_pass"})
	computePass.SetPipeline(s.pipeline)
	computePass.SetBindGroup(0, s.bindGroup, nil)
	computePass.Dispatch(uint32((width+7)/8), uint32((height+7)/8), 1)
	computePass.End()

	encoder.CopyBufferToBuffer(s.dstBuf, s.stagingBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: packedSize},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("gpusurface: end encoding: %w", err)
	}
	defer dev.FreeCommandBuffer(cmdBuf)

	fence, err := dev.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("gpusurface: create fence: %w", err)
	}
	defer dev.DestroyFence(fence)
	if err := queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return nil, fmt.Errorf("gpusurface: submit: %w", err)
	}
	fenceOK, err := dev.Wait(fence, 1, 5*time.Second)
	if err != nil || !fenceOK {
		return nil, fmt.Errorf("gpusurface: wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	packed := make([]byte, packedSize)
	if err := queue.ReadBuffer(s.stagingBuf, 0, packed); err != nil {
		return nil, fmt.Errorf("gpusurface: readback: %w", err)
	}
	return packed, nil
}

// Snapshot returns a copy of the last presented frame, nil before the
// first Present.
func (s *gpuSurface) Snapshot() *image.RGBA {
	if s.last == nil {
		return nil
	}
	return cloneRGBA(s.last)
}

func (s *gpuSurface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.last = nil
	s.destroySized()
	s.destroyPipeline()
	if s.ctx.owned {
		s.ctx.release()
	}
	return nil
}

func (s *gpuSurface) createPipeline() error {
	dev := s.ctx.device
	shader, err := createPresentShader(dev)
	if err != nil {
		return fmt.Errorf("gpusurface: create shader module: %w", err)
	}
	s.shader = shader

	bindLayout, err := dev.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "present_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("gpusurface: create bind group layout: %w", err)
	}
	s.bindLayout = bindLayout

	pipeLayout, err := dev.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "present_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{s.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("gpusurface: create pipeline layout: %w", err)
	}
	s.pipeLayout = pipeLayout

	pipeline, err := dev.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "present_pipeline", Layout: s.pipeLayout,
		Compute: hal.ComputeState{Module: s.shader, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("gpusurface: create compute pipeline: %w", err)
	}
	s.pipeline = pipeline
	return nil
}

func (s *gpuSurface) destroyPipeline() {
	dev := s.ctx.device
	if dev == nil {
		return
	}
	if s.pipeline != nil {
		dev.DestroyComputePipeline(s.pipeline)
		s.pipeline = nil
	}
	if s.pipeLayout != nil {
		dev.DestroyPipelineLayout(s.pipeLayout)
		s.pipeLayout = nil
	}
	if s.bindLayout != nil {
		dev.DestroyBindGroupLayout(s.bindLayout)
		s.bindLayout = nil
	}
	if s.shader != nil {
		dev.DestroyShaderModule(s.shader)
		s.shader = nil
	}
}

// ensureSize (re)creates the sized resources when the frame size changes.
// Buffers and the bind group persist across frames of the same size.
func (s *gpuSurface) ensureSize(width, height int) error {
	if width == s.sizedW && height == s.sizedH && s.texture != nil {
		return nil
	}
	s.destroySized()

	dev := s.ctx.device
	srcSize := uint64(width * height * 16)
	packedSize := uint64(width * height * 4)
	paramSize := uint64(unsafe.Sizeof(presentParams{}))

	texture, err := createPresentTexture(dev, width, height)
	if err != nil {
		return err
	}
	s.texture = texture

	srcBuf, err := dev.CreateBuffer(&hal.BufferDescriptor{
		Label: "present_src", Size: srcSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpusurface: create source buffer: %w", err)
	}
	s.srcBuf = srcBuf

	dstBuf, err := dev.CreateBuffer(&hal.BufferDescriptor{
		Label: "present_dst", Size: packedSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpusurface: create packed buffer: %w", err)
	}
	s.dstBuf = dstBuf

	stagingBuf, err := dev.CreateBuffer(&hal.BufferDescriptor{
		Label: "present_staging", Size: packedSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpusurface: create staging buffer: %w", err)
	}
	s.stagingBuf = stagingBuf

	paramBuf, err := dev.CreateBuffer(&hal.BufferDescriptor{
		Label: "present_params", Size: paramSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("gpusurface: create uniform buffer: %w", err)
	}
	s.paramBuf = paramBuf

	bindGroup, err := dev.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "present_bind", Layout: s.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: s.paramBuf.NativeHandle(), Offset: 0, Size: paramSize}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: s.srcBuf.NativeHandle(), Offset: 0, Size: srcSize}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: s.dstBuf.NativeHandle(), Offset: 0, Size: packedSize}},
		},
	})
	if err != nil {
		return fmt.Errorf("gpusurface: create bind group: %w", err)
	}
	s.bindGroup = bindGroup

	s.sizedW, s.sizedH = width, height
	return nil
}

func (s *gpuSurface) destroySized() {
	dev := s.ctx.device
	if dev == nil {
		return
	}
	if s.bindGroup != nil {
		dev.DestroyBindGroup(s.bindGroup)
		s.bindGroup = nil
	}
	if s.paramBuf != nil {
		dev.DestroyBuffer(s.paramBuf)
		s.paramBuf = nil
	}
	if s.stagingBuf != nil {
		dev.DestroyBuffer(s.stagingBuf)
		s.stagingBuf = nil
	}
	if s.dstBuf != nil {
		dev.DestroyBuffer(s.dstBuf)
		s.dstBuf = nil
	}
	if s.srcBuf != nil {
		dev.DestroyBuffer(s.srcBuf)
		s.srcBuf = nil
	}
	if s.texture != nil {
		dev.DestroyTexture(s.texture)
		s.texture = nil
	}
	s.sizedW, s.sizedH = 0, 0
}

func structToBytes(ptr unsafe.Pointer, size uintptr) []byte {
	return unsafe.Slice((*byte)(ptr), size) //nolint:gosec // safe struct serialization
}

func floatsToBytes(f []float32) []byte {
	if len(f) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&f[0])), len(f)*4) //nolint:gosec // safe slice reinterpretation
}

func cloneRGBA(img *image.RGBA) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}
