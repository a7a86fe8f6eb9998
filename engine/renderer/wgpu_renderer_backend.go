package renderer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-fx/engine/scene"
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// bindingKey addresses one binding of one bind group.
type bindingKey struct {
	group   int
	binding int
}

type wgpuMeshBuffers struct {
	vertex *wgpu.Buffer
	index  *wgpu.Buffer
}

type wgpuTexture struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

// wgpuPipelineLayout is the bind group layout set a registered pipeline was created with.
type wgpuPipelineLayout struct {
	layouts     []*wgpu.BindGroupLayout
	descriptors []wgpu.BindGroupLayoutDescriptor
}

// wgpuProgramResources are the GPU objects owned by one program clone: a uniform buffer per
// uniform block and a bind group per group, rebuilt when a texture, sampler or layout changes.
type wgpuProgramResources struct {
	uniforms   map[bindingKey]*wgpu.Buffer
	textures   map[bindingKey]*common.TextureStagingData
	samplers   map[bindingKey]common.SamplerStagingData
	layouts    []*wgpu.BindGroupLayout
	bindGroups []*wgpu.BindGroup
}

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter

	width, height uint32
	colorFormat   wgpu.TextureFormat
	depthFormat   wgpu.TextureFormat
	sampleCount   MSAASampleCount
	clearColor    wgpu.Color

	color                *wgpuTexture
	msaa                 *wgpuTexture
	depth                *wgpuTexture
	renderPassDescriptor *wgpu.RenderPassDescriptor

	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder

	pipelineLayouts map[string]*wgpuPipelineLayout
	meshes          map[*scene.Mesh]*wgpuMeshBuffers
	programs        map[shader.Program]*wgpuProgramResources
	textures        map[*common.TextureStagingData]*wgpuTexture
	samplers        map[common.SamplerStagingData]*wgpu.Sampler
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

// wgpuBackendConfig carries the renderer options the headless backend is created from.
type wgpuBackendConfig struct {
	width, height        uint32
	sampleCount          MSAASampleCount
	forceFallbackAdapter bool
	clearColor           wgpu.Color
}

// newWGPURendererBackend requests an adapter and device without a surface and renders into an
// offscreen color target of the configured size.
func newWGPURendererBackend(cfg wgpuBackendConfig) (*wgpuRendererBackendImpl, error) {
	b := &wgpuRendererBackendImpl{
		mu:              &sync.Mutex{},
		instance:        wgpu.CreateInstance(nil),
		colorFormat:     wgpu.TextureFormatRGBA8Unorm,
		depthFormat:     wgpu.TextureFormatDepth24PlusStencil8,
		sampleCount:     common.Coalesce(cfg.sampleCount, MSAAOff),
		clearColor:      cfg.clearColor,
		pipelineLayouts: make(map[string]*wgpuPipelineLayout),
		meshes:          make(map[*scene.Mesh]*wgpuMeshBuffers),
		programs:        make(map[shader.Program]*wgpuProgramResources),
		textures:        make(map[*common.TextureStagingData]*wgpuTexture),
		samplers:        make(map[common.SamplerStagingData]*wgpu.Sampler),
	}

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: cfg.forceFallbackAdapter,
	})
	if err != nil {
		b.instance.Release()
		return nil, fmt.Errorf("renderer: request adapter: %w", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Headless Device",
	})
	if err != nil {
		b.adapter.Release()
		b.instance.Release()
		return nil, fmt.Errorf("renderer: request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	if err := b.Resize(common.Coalesce(cfg.width, 800), common.Coalesce(cfg.height, 600)); err != nil {
		b.Release()
		return nil, err
	}
	common.Logger().Info("renderer: wgpu backend ready",
		"width", b.width, "height", b.height, "samples", uint32(b.sampleCount))
	return b, nil
}

func (b *wgpuRendererBackendImpl) Type() RendererBackendType {
	return BackendTypeWGPU
}

// createTarget creates a 2D render attachment and its view.
func (b *wgpuRendererBackendImpl) createTarget(label string, format wgpu.TextureFormat, samples uint32, usage wgpu.TextureUsage) (*wgpuTexture, error) {
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              b.width,
			Height:             b.height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, err
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, err
	}
	return &wgpuTexture{texture: tex, view: view}, nil
}

func (t *wgpuTexture) release() {
	if t == nil {
		return
	}
	t.view.Release()
	t.texture.Release()
}

// Resize recreates the offscreen color, MSAA and depth targets at the given size.
//
// Parameters:
//   - width: the target width in pixels
//   - height: the target height in pixels
//
// Returns:
//   - error: an error if a frame is in progress or a target cannot be created
func (b *wgpuRendererBackendImpl) Resize(width, height uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width == 0 || height == 0 {
		return fmt.Errorf("renderer: invalid target size %dx%d", width, height)
	}
	if b.frameEncoder != nil {
		return ErrFrameInProgress
	}
	b.releaseTargets()
	b.width, b.height = width, height

	var err error
	b.color, err = b.createTarget("Color Target", b.colorFormat, 1,
		wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageCopySrc|wgpu.TextureUsageTextureBinding)
	if err != nil {
		return fmt.Errorf("renderer: create color target: %w", err)
	}

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1
	if msaaEnabled {
		// The pass draws into the MSAA texture and resolves into the color target.
		b.msaa, err = b.createTarget("MSAA Target", b.colorFormat, count, wgpu.TextureUsageRenderAttachment)
		if err != nil {
			return fmt.Errorf("renderer: create msaa target: %w", err)
		}
	}

	// Depth sample count must match the color attachment.
	b.depth, err = b.createTarget("Depth Target", b.depthFormat, count, wgpu.TextureUsageRenderAttachment)
	if err != nil {
		return fmt.Errorf("renderer: create depth target: %w", err)
	}

	color := wgpu.RenderPassColorAttachment{
		View:       b.color.view,
		LoadOp:     wgpu.LoadOpClear,
		StoreOp:    wgpu.StoreOpStore,
		ClearValue: b.clearColor,
	}
	if msaaEnabled {
		color.View = b.msaa.view
		color.ResolveTarget = b.color.view
		color.StoreOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{color},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:              b.depth.view,
			DepthLoadOp:       wgpu.LoadOpClear,
			DepthStoreOp:      wgpu.StoreOpDiscard,
			DepthClearValue:   1.0,
			StencilLoadOp:     wgpu.LoadOpClear,
			StencilStoreOp:    wgpu.StoreOpDiscard,
			StencilClearValue: 0,
		},
	}
	return nil
}

func (b *wgpuRendererBackendImpl) releaseTargets() {
	b.color.release()
	b.msaa.release()
	b.depth.release()
	b.color, b.msaa, b.depth = nil, nil, nil
}

// ColorTarget returns the texture the last frame was resolved into.
func (b *wgpuRendererBackendImpl) ColorTarget() *wgpu.Texture {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.color == nil {
		return nil
	}
	return b.color.texture
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline) error {
	program := p.Program()
	if program == nil {
		return errors.New("renderer: pipeline has no program")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	module, err := b.device.CreateShaderModule(program.Module())
	if err != nil {
		return fmt.Errorf("renderer: create shader module %s: %w", program.Label(), err)
	}

	descs := program.BindGroupLayoutDescriptors()
	maxGroup := -1
	for g := range descs {
		if g > maxGroup {
			maxGroup = g
		}
	}
	// Gaps in the group indices get an empty layout.
	layout := &wgpuPipelineLayout{
		layouts:     make([]*wgpu.BindGroupLayout, maxGroup+1),
		descriptors: make([]wgpu.BindGroupLayoutDescriptor, maxGroup+1),
	}
	for g := 0; g <= maxGroup; g++ {
		desc, ok := descs[g]
		if !ok {
			desc = wgpu.BindGroupLayoutDescriptor{Label: fmt.Sprintf("%s group %d", program.Label(), g)}
		}
		bgl, layoutErr := b.device.CreateBindGroupLayout(&desc)
		if layoutErr != nil {
			return fmt.Errorf("renderer: create bind group layout for group %d: %w", g, layoutErr)
		}
		layout.layouts[g] = bgl
		layout.descriptors[g] = desc
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: layout.layouts,
	})
	if err != nil {
		return fmt.Errorf("renderer: create pipeline layout %s: %w", p.PipelineKey(), err)
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: program.VertexEntryPoint(),
			Buffers:    []wgpu.VertexBufferLayout{p.VertexLayout().BufferLayout()},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: program.FragmentEntryPoint(),
			Targets:    []wgpu.ColorTargetState{p.ColorTargetState(b.colorFormat)},
		},
		Primitive: p.PrimitiveState(),
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: p.DepthStencilState(b.depthFormat),
	})
	if err != nil {
		return fmt.Errorf("renderer: create render pipeline %s: %w", p.PipelineKey(), err)
	}

	p.SetRenderPipeline(created)
	b.pipelineLayouts[p.PipelineKey()] = layout
	return nil
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder != nil {
		return ErrFrameInProgress
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("renderer: create command encoder: %w", err)
	}
	b.frameEncoder = encoder
	b.framePass = encoder.BeginRenderPass(b.renderPassDescriptor)
	return nil
}

func (b *wgpuRendererBackendImpl) Draw(call DrawCall) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return ErrNoFrame
	}
	key := call.Pipeline.PipelineKey()
	rp := call.Pipeline.RenderPipeline()
	layout, ok := b.pipelineLayouts[key]
	if rp == nil || !ok {
		return fmt.Errorf("renderer: pipeline %s is not registered", key)
	}

	mesh, err := b.meshBuffers(call.Label, call.Mesh)
	if err != nil {
		return err
	}
	groups, err := b.programBindGroups(call.Program, layout)
	if err != nil {
		return fmt.Errorf("renderer: %s: %w", call.Label, err)
	}

	b.framePass.SetPipeline(rp)
	for i, bg := range groups {
		b.framePass.SetBindGroup(uint32(i), bg, nil)
	}
	b.framePass.SetStencilReference(call.StencilReference)
	b.framePass.SetVertexBuffer(0, mesh.vertex, 0, wgpu.WholeSize)
	if mesh.index != nil {
		b.framePass.SetIndexBuffer(mesh.index, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		b.framePass.DrawIndexed(call.Mesh.IndexCount, 1, call.Mesh.FirstIndex, 0, 0)
	} else {
		b.framePass.Draw(call.Mesh.IndexCount, 1, call.Mesh.FirstIndex, 0)
	}
	return nil
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return ErrNoFrame
	}
	b.framePass.End()

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		b.frameEncoder.Release()
		b.frameEncoder = nil
		b.framePass = nil
		return fmt.Errorf("renderer: finish frame: %w", err)
	}

	b.queue.Submit(commandBuffer)

	commandBuffer.Release()
	b.frameEncoder.Release()
	b.frameEncoder = nil
	b.framePass = nil
	return nil
}

// meshBuffers uploads a mesh on first use. Mesh data is treated as immutable.
func (b *wgpuRendererBackendImpl) meshBuffers(label string, m *scene.Mesh) (*wgpuMeshBuffers, error) {
	if buffers, ok := b.meshes[m]; ok {
		return buffers, nil
	}
	if len(m.Vertices) == 0 {
		return nil, fmt.Errorf("renderer: mesh of %s has no vertices", label)
	}

	buffers := &wgpuMeshBuffers{}
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label + " Vertex Buffer",
		Size:             alignBufferSize(uint64(len(m.Vertices))),
		Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: create vertex buffer for %s: %w", label, err)
	}
	b.queue.WriteBuffer(buf, 0, padToWord(m.Vertices))
	buffers.vertex = buf

	if len(m.Indices) > 0 {
		indexData := make([]byte, 0, len(m.Indices)*4)
		for _, idx := range m.Indices {
			indexData = binary.LittleEndian.AppendUint32(indexData, idx)
		}
		buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            label + " Index Buffer",
			Size:             alignBufferSize(uint64(len(indexData))),
			Usage:            wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			buffers.vertex.Release()
			return nil, fmt.Errorf("renderer: create index buffer for %s: %w", label, err)
		}
		b.queue.WriteBuffer(buf, 0, indexData)
		buffers.index = buf
	}

	b.meshes[m] = buffers
	return buffers, nil
}

// programBindGroups uploads the program's uniform blocks and returns one bind group per group
// of the pipeline layout, creating or rebuilding them as needed.
func (b *wgpuRendererBackendImpl) programBindGroups(program shader.Program, layout *wgpuPipelineLayout) ([]*wgpu.BindGroup, error) {
	res, ok := b.programs[program]
	if !ok {
		res = &wgpuProgramResources{
			uniforms: make(map[bindingKey]*wgpu.Buffer),
			textures: make(map[bindingKey]*common.TextureStagingData),
			samplers: make(map[bindingKey]common.SamplerStagingData),
		}
		b.programs[program] = res
	}

	groupCount := len(layout.layouts)
	dirty := make([]bool, groupCount)
	if len(res.bindGroups) != groupCount {
		res.release()
		res.bindGroups = make([]*wgpu.BindGroup, groupCount)
		res.layouts = make([]*wgpu.BindGroupLayout, groupCount)
	}
	for g := range groupCount {
		if res.layouts[g] != layout.layouts[g] {
			dirty[g] = true
		}
	}

	for _, u := range program.UniformBlocks() {
		key := bindingKey{u.Group, u.Binding}
		buf := res.uniforms[key]
		if buf == nil {
			var err error
			buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
				Label: fmt.Sprintf("%s %s Uniform Buffer", program.Label(), u.Name),
				Size:  alignBufferSize(uint64(len(u.Data))),
				Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
			})
			if err != nil {
				return nil, fmt.Errorf("create uniform buffer %s: %w", u.Name, err)
			}
			res.uniforms[key] = buf
			if u.Group < groupCount {
				dirty[u.Group] = true
			}
		}
		b.queue.WriteBuffer(buf, 0, padToWord(u.Data))
	}

	textures := make(map[bindingKey]shader.TextureBinding)
	samplers := make(map[bindingKey]shader.TextureBinding)
	for _, t := range program.TextureBindings() {
		if t.Texture == nil {
			return nil, fmt.Errorf("texture %s has no data", t.Name)
		}
		key := bindingKey{t.Group, t.Binding}
		textures[key] = t
		if res.textures[key] != t.Texture {
			res.textures[key] = t.Texture
			if t.Group < groupCount {
				dirty[t.Group] = true
			}
		}
		if t.SamplerBinding < 0 {
			continue
		}
		skey := bindingKey{t.Group, t.SamplerBinding}
		samplers[skey] = t
		if prev, ok := res.samplers[skey]; !ok || prev != t.Sampler {
			res.samplers[skey] = t.Sampler
			if t.Group < groupCount {
				dirty[t.Group] = true
			}
		}
	}

	for g := range groupCount {
		if res.bindGroups[g] != nil && !dirty[g] {
			continue
		}
		desc := layout.descriptors[g]
		entries := make([]wgpu.BindGroupEntry, len(desc.Entries))
		for i, entry := range desc.Entries {
			key := bindingKey{g, int(entry.Binding)}

			isTexture := entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined
			isSampler := entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined

			switch {
			case isTexture:
				t, ok := textures[key]
				if !ok {
					return nil, fmt.Errorf("texture binding %d/%d has no texture", g, entry.Binding)
				}
				tex, err := b.textureView(program.Label(), t.Texture)
				if err != nil {
					return nil, err
				}
				entries[i] = wgpu.BindGroupEntry{Binding: entry.Binding, TextureView: tex.view}
			case isSampler:
				t, ok := samplers[key]
				if !ok {
					return nil, fmt.Errorf("sampler binding %d/%d has no texture", g, entry.Binding)
				}
				samp, err := b.sampler(program.Label(), t.Sampler)
				if err != nil {
					return nil, err
				}
				entries[i] = wgpu.BindGroupEntry{Binding: entry.Binding, Sampler: samp}
			default:
				buf, ok := res.uniforms[key]
				if !ok {
					return nil, fmt.Errorf("buffer binding %d/%d has no uniform block", g, entry.Binding)
				}
				entries[i] = wgpu.BindGroupEntry{
					Binding: entry.Binding,
					Buffer:  buf,
					Offset:  0,
					Size:    wgpu.WholeSize,
				}
			}
		}

		bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:   fmt.Sprintf("%s Bind Group %d", program.Label(), g),
			Layout:  layout.layouts[g],
			Entries: entries,
		})
		if err != nil {
			return nil, fmt.Errorf("create bind group %d: %w", g, err)
		}
		if res.bindGroups[g] != nil {
			res.bindGroups[g].Release()
		}
		res.bindGroups[g] = bindGroup
		res.layouts[g] = layout.layouts[g]
	}
	return res.bindGroups, nil
}

func (res *wgpuProgramResources) release() {
	for _, bg := range res.bindGroups {
		if bg != nil {
			bg.Release()
		}
	}
	res.bindGroups = nil
	res.layouts = nil
}

// textureView uploads a staged texture on first use.
func (b *wgpuRendererBackendImpl) textureView(label string, stagingData *common.TextureStagingData) (*wgpuTexture, error) {
	if t, ok := b.textures[stagingData]; ok {
		return t, nil
	}

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     label + " Texture",
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              stagingData.Width,
			Height:             stagingData.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: create texture: %w", err)
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		stagingData.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  stagingData.Width * 4,
			RowsPerImage: stagingData.Height,
		},
		&wgpu.Extent3D{
			Width:              stagingData.Width,
			Height:             stagingData.Height,
			DepthOrArrayLayers: 1,
		},
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("renderer: create texture view: %w", err)
	}
	t := &wgpuTexture{texture: tex, view: view}
	b.textures[stagingData] = t
	return t, nil
}

// sampler returns the sampler for a configuration, creating it on first use. Zero fields take
// the WebGPU defaults.
func (b *wgpuRendererBackendImpl) sampler(label string, samplerStagingData common.SamplerStagingData) (*wgpu.Sampler, error) {
	if samp, ok := b.samplers[samplerStagingData]; ok {
		return samp, nil
	}
	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         label + " Sampler",
		AddressModeU:  common.Coalesce(samplerStagingData.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(samplerStagingData.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(samplerStagingData.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     common.Coalesce(samplerStagingData.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(samplerStagingData.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(samplerStagingData.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   common.Coalesce(samplerStagingData.LodMinClamp, 0.0),
		LodMaxClamp:   common.Coalesce(samplerStagingData.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(samplerStagingData.MaxAnisotropy, 1),
		Compare:       samplerStagingData.Compare,
	})
	if err != nil {
		return nil, fmt.Errorf("renderer: create sampler: %w", err)
	}
	b.samplers[samplerStagingData] = samp
	return samp, nil
}

func (b *wgpuRendererBackendImpl) ReleaseProgram(program shader.Program) {
	b.mu.Lock()
	defer b.mu.Unlock()
	res, ok := b.programs[program]
	if !ok {
		return
	}
	res.release()
	for _, buf := range res.uniforms {
		buf.Release()
	}
	delete(b.programs, program)
}

func (b *wgpuRendererBackendImpl) ReleaseMesh(m *scene.Mesh) {
	b.mu.Lock()
	defer b.mu.Unlock()
	buffers, ok := b.meshes[m]
	if !ok {
		return
	}
	buffers.vertex.Release()
	if buffers.index != nil {
		buffers.index.Release()
	}
	delete(b.meshes, m)
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for program, res := range b.programs {
		res.release()
		for _, buf := range res.uniforms {
			buf.Release()
		}
		delete(b.programs, program)
	}
	for m, buffers := range b.meshes {
		buffers.vertex.Release()
		if buffers.index != nil {
			buffers.index.Release()
		}
		delete(b.meshes, m)
	}
	for k, t := range b.textures {
		t.release()
		delete(b.textures, k)
	}
	for k, s := range b.samplers {
		s.Release()
		delete(b.samplers, k)
	}
	for k, l := range b.pipelineLayouts {
		for _, bgl := range l.layouts {
			bgl.Release()
		}
		delete(b.pipelineLayouts, k)
	}
	b.releaseTargets()
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// alignBufferSize rounds a buffer size up to 16 bytes, the uniform buffer alignment.
func alignBufferSize(size uint64) uint64 {
	return (size + 15) &^ 15
}

// padToWord extends data to a multiple of 4 bytes, the queue write granularity.
func padToWord(data []byte) []byte {
	if rem := len(data) % 4; rem != 0 {
		return append(data[:len(data):len(data)], make([]byte, 4-rem)...)
	}
	return data
}
