package scene

import (
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/effect"
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
)

// System fragment names appended to every shader request.
const (
	VertexPassThruFragmentName      = "VertexPassThru"
	VertexColorPassThruFragmentName = "VertexColorPassThru"
	PixelFinalFragmentName          = "PixelFinal"
)

// SystemFragments returns the ownerless fragments a geometry with the given vertex layout
// requests in addition to its effects: the vertex pass-through for the layout and the final
// pixel stage. Layouts carrying a vertex color use the color pass-through.
//
// Parameters:
//   - layout: the geometry's vertex layout
//
// Returns:
//   - []string: the system fragment names
func SystemFragments(layout shader.VertexLayout) []string {
	vertex := VertexPassThruFragmentName
	if layout.Has(shader.VertexUsageColor) {
		vertex = VertexColorPassThruFragmentName
	}
	return []string{vertex, PixelFinalFragmentName}
}

// buildJob is one geometry with the effects visible to it, root first.
type buildJob struct {
	geometry *Geometry
	effects  []effect.ShaderEffect
}

// collectBuildJobs walks root with the scoped effect stack and snapshots the stack at every
// geometry.
func collectBuildJobs(s Spatial, stack *EffectStack, jobs []buildJob) []buildJob {
	defer stack.Push(s.base().effects...)()
	switch v := s.(type) {
	case *Geometry:
		jobs = append(jobs, buildJob{geometry: v, effects: stack.Effects()})
	case *Node:
		for _, c := range v.children {
			jobs = collectBuildJobs(c, stack, jobs)
		}
	}
	return jobs
}

// ShaderBuilder builds the shaders of many geometries in parallel on a worker pool. Workers
// persist across calls to Build until Close.
type ShaderBuilder struct {
	catalog shader.Catalog
	workers int
	pool    worker.DynamicWorkerPool
	mu      sync.Mutex
}

// ShaderBuilderOption is a functional option for configuring a ShaderBuilder.
type ShaderBuilderOption func(*ShaderBuilder)

// WithBuildWorkers sets the number of worker goroutines. Defaults to runtime.NumCPU()-1.
//
// Parameters:
//   - n: the number of workers (minimum 1)
//
// Returns:
//   - ShaderBuilderOption: option function to apply
func WithBuildWorkers(n int) ShaderBuilderOption {
	return func(b *ShaderBuilder) {
		b.workers = max(n, 1)
	}
}

// NewShaderBuilder creates a ShaderBuilder resolving against catalog.
//
// Parameters:
//   - catalog: the shader catalog (must not be nil)
//   - options: functional options to configure the builder
//
// Returns:
//   - *ShaderBuilder: the new builder
func NewShaderBuilder(catalog shader.Catalog, options ...ShaderBuilderOption) *ShaderBuilder {
	if catalog == nil {
		panic("scene: NewShaderBuilder requires a non-nil Catalog")
	}
	b := &ShaderBuilder{
		catalog: catalog,
		workers: max(runtime.NumCPU()-1, 1),
	}
	for _, opt := range options {
		opt(b)
	}
	b.pool = worker.NewDynamicWorkerPool(b.workers, 256, 1*time.Second)
	return b
}

// Build resolves a program instance for every geometry below root. Each geometry is built on
// the pool with a snapshot of its effect stack; the call returns once all builds finished.
//
// Parameters:
//   - root: the subtree to build
//   - stack: effects visible above root, may be nil
//
// Returns:
//   - error: every build failure joined, nil if all succeeded
func (b *ShaderBuilder) Build(root Spatial, stack *EffectStack) error {
	if stack == nil {
		stack = NewEffectStack()
	}
	jobs := collectBuildJobs(root, stack, nil)

	b.mu.Lock()
	defer b.mu.Unlock()

	// The pool's Wait blocks until workers go idle, so a WaitGroup is the barrier.
	var wg sync.WaitGroup
	errs := make([]error, len(jobs))
	for i, job := range jobs {
		wg.Add(1)
		b.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				errs[i] = job.geometry.buildShader(b.catalog, job.effects)
				return nil, errs[i]
			},
		})
	}
	wg.Wait()

	err := errors.Join(errs...)
	if err != nil {
		common.Logger().Warn("shader build failed", "root", root.Name(), "geometries", len(jobs), "error", err)
		return err
	}
	common.Logger().Debug("shaders built", "root", root.Name(), "geometries", len(jobs))
	return nil
}

// Close stops the builder's workers.
func (b *ShaderBuilder) Close() {
	b.pool.Stop()
}

// BuildShaders builds every geometry below root in parallel with a temporary ShaderBuilder.
//
// Parameters:
//   - root: the subtree to build
//   - catalog: the shader catalog
//   - options: functional options for the builder
//
// Returns:
//   - error: every build failure joined
func BuildShaders(root Spatial, catalog shader.Catalog, options ...ShaderBuilderOption) error {
	b := NewShaderBuilder(catalog, options...)
	defer b.Close()
	return b.Build(root, nil)
}
