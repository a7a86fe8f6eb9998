package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-fx/engine/camera"
	"github.com/Carmen-Shannon/oxy-fx/engine/effect"
	"github.com/Carmen-Shannon/oxy-fx/engine/profiler"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/scene"
	"github.com/Carmen-Shannon/oxy-fx/engine/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var meshLayout = shader.VertexLayout{
	{Usage: shader.VertexUsagePosition, UsageIndex: 0, Format: wgpu.VertexFormatFloat32x3},
	{Usage: shader.VertexUsageNormal, UsageIndex: 0, Format: wgpu.VertexFormatFloat32x3},
}

func boxMesh() *scene.Mesh {
	corners := [][3]float32{{-1, -1, -1}, {1, -1, -1}, {-1, 1, -1}, {1, 1, 1}}
	vertices := make([]byte, len(corners)*int(meshLayout.Stride()))
	return scene.NewMesh(meshLayout, vertices, []uint32{0, 1, 2, 2, 1, 3}, corners)
}

func testCatalog(t *testing.T) shader.Catalog {
	t.Helper()
	descs := []shader.FragmentDescriptor{
		shader.NewFragmentDescriptor(scene.VertexPassThruFragmentName, shader.FragmentClassVertex),
		effect.Fragments()[effect.BasicMaterialFragmentName],
		shader.NewFragmentDescriptor(scene.PixelFinalFragmentName, shader.FragmentClassPixelFinal),
	}
	pi, err := shader.Link("material", descs, meshLayout,
		shader.RendererConstant{Semantic: renderer.WorldSemantic, DataType: "float4x4"},
		shader.RendererConstant{Semantic: renderer.WorldViewProjectionSemantic, DataType: "float4x4"},
	)
	require.NoError(t, err)
	return shader.NewCatalog(shader.WithPrograms(pi))
}

type testLayer struct {
	scene   scene.Scene
	root    *scene.Node
	backend *renderer.RecordingBackend
	rend    renderer.Renderer
}

func newTestLayer(t *testing.T, name string, geometries ...string) testLayer {
	t.Helper()
	root := scene.NewNode(name)
	for _, g := range geometries {
		root.AttachChild(scene.NewGeometry(g, boxMesh(), scene.WithEffects(effect.NewBasicMaterial())))
	}
	s := scene.NewScene(name, testCatalog(t), scene.WithRoot(root))
	t.Cleanup(s.Close)

	cam := camera.NewCamera(camera.WithPosition(0, 0, 5), camera.WithTarget(0, 0, 0))
	backend := renderer.NewRecordingBackend()
	r, err := renderer.NewRenderer(cam, renderer.WithBackend(backend))
	require.NoError(t, err)
	return testLayer{scene: s, root: root, backend: backend, rend: r}
}

func drawLabels(b *renderer.RecordingBackend) []string {
	var labels []string
	for _, d := range b.Draws() {
		labels = append(labels, d.Label)
	}
	return labels
}

func TestRenderFrameDrawsEveryLayer(t *testing.T) {
	front := newTestLayer(t, "front", "hud")
	back := newTestLayer(t, "back", "a", "b")

	e := NewEngine(WithScene(10, front.scene, front.rend))
	e.AddScene(-1, back.scene, back.rend)

	require.NoError(t, e.RenderFrame(0.016))
	assert.Equal(t, uint64(1), e.Frames())
	assert.Equal(t, []string{"hud"}, drawLabels(front.backend))
	assert.ElementsMatch(t, []string{"a", "b"}, drawLabels(back.backend))
	assert.Equal(t, 1, front.backend.Frames())
	assert.Equal(t, 1, back.backend.Frames())

	scenes := e.Scenes()
	assert.Len(t, scenes, 2)
	assert.Equal(t, "back", scenes[-1].Name())

	e.RemoveScene(10)
	assert.Nil(t, e.Layer(10))
	require.NoError(t, e.RenderFrame(0.016))
	assert.Equal(t, 1, front.backend.Frames())
	assert.Equal(t, 2, back.backend.Frames())
}

// orderBackend records the label of every draw into a log shared by several backends.
type orderBackend struct {
	*renderer.RecordingBackend
	log *[]string
}

func (b orderBackend) Draw(call renderer.DrawCall) error {
	*b.log = append(*b.log, call.Label)
	return b.RecordingBackend.Draw(call)
}

func TestRenderFrameOrdersLayersByKey(t *testing.T) {
	var log []string
	e := NewEngine()
	names := map[int]string{3: "three", -2: "minus_two", 0: "zero"}
	for _, k := range []int{3, -2, 0} {
		l := newTestLayer(t, names[k])
		l.root.AttachChild(scene.NewGeometry(names[k], boxMesh(), scene.WithEffects(effect.NewBasicMaterial())))
		r, err := renderer.NewRenderer(l.rend.Camera(),
			renderer.WithBackend(orderBackend{RecordingBackend: renderer.NewRecordingBackend(), log: &log}))
		require.NoError(t, err)
		e.AddScene(k, l.scene, r)
	}

	require.NoError(t, e.RenderFrame(0))
	assert.Equal(t, []string{"minus_two", "zero", "three"}, log)
}

func TestInvalidateRebuildsShaders(t *testing.T) {
	l := newTestLayer(t, "world", "first")
	e := NewEngine(WithScene(0, l.scene, l.rend))
	require.NoError(t, e.RenderFrame(0))
	assert.Equal(t, []string{"first"}, drawLabels(l.backend))

	l.root.AttachChild(scene.NewGeometry("late", boxMesh(), scene.WithEffects(effect.NewBasicMaterial())))
	err := e.RenderFrame(0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "world")
	assert.Equal(t, []string{"first"}, drawLabels(l.backend))
	assert.Equal(t, 1, l.rend.Stats().Skipped)

	e.Invalidate(0)
	require.NoError(t, e.RenderFrame(0))
	assert.ElementsMatch(t, []string{"first", "late"}, drawLabels(l.backend))
}

func TestRenderFrameFeedsProfiler(t *testing.T) {
	clock := time.Unix(0, 0)
	p := profiler.NewProfiler(
		profiler.WithClock(func() time.Time { return clock }),
		profiler.WithUpdateInterval(time.Second),
		profiler.WithMemStats(false),
	)
	l := newTestLayer(t, "world", "a", "b")
	e := NewEngine(WithProfiler(p), WithScene(0, l.scene, l.rend))

	// Disabled profiling leaves the profiler untouched.
	clock = clock.Add(2 * time.Second)
	require.NoError(t, e.RenderFrame(0))
	assert.Zero(t, p.Last().Frames)

	e.EnableProfiler()
	require.NoError(t, e.RenderFrame(0))
	s := e.Profiler().Last()
	assert.Equal(t, 1, s.Frames)
	assert.InDelta(t, 2.0, s.AvgVisible, 1e-9)
	assert.InDelta(t, 2.0, s.AvgDrawCalls, 1e-9)
}

func TestRunTicksAndRendersUntilQuit(t *testing.T) {
	l := newTestLayer(t, "world", "a")
	e := NewEngine(WithTickRate(500), WithRenderFrameLimit(500), WithScene(0, l.scene, l.rend))

	var ticks atomic.Int32
	e.SetTickCallback(func(dt float32) {
		ticks.Add(1)
	})

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	require.Eventually(t, func() bool {
		return ticks.Load() >= 3 && e.Frames() >= 3
	}, 5*time.Second, 5*time.Millisecond)

	e.Quit()
	e.Quit()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Quit")
	}
	assert.GreaterOrEqual(t, l.backend.Frames(), 3)
}

func TestAddSceneRequiresRenderer(t *testing.T) {
	l := newTestLayer(t, "world")
	e := NewEngine()
	assert.Panics(t, func() { e.AddScene(0, l.scene, nil) })
	assert.Panics(t, func() { NewEngine(WithScene(0, nil, l.rend)) })
}

func TestRebuildAndRemoveReleaseBackendResources(t *testing.T) {
	l := newTestLayer(t, "world", "kept")
	gone := scene.NewGeometry("gone", boxMesh(), scene.WithEffects(effect.NewBasicMaterial()))
	l.root.AttachChild(gone)

	e := NewEngine(WithScene(0, l.scene, l.rend))
	require.NoError(t, e.RenderFrame(0))
	assert.Empty(t, l.backend.ReleasedPrograms())

	require.True(t, l.root.DetachChild(gone))
	e.Invalidate(0)
	require.NoError(t, e.RenderFrame(0))
	// The detached geometry's clone and mesh, plus the rebuilt geometry's old clone.
	assert.Len(t, l.backend.ReleasedPrograms(), 2)
	assert.Equal(t, []*scene.Mesh{gone.Mesh()}, l.backend.ReleasedMeshes())

	e.RemoveScene(0)
	assert.Len(t, l.backend.ReleasedPrograms(), 3)
	assert.Len(t, l.backend.ReleasedMeshes(), 2)
}
