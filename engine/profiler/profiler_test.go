package profiler

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/culler"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func TestTickSummarizesAtInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(100, 0)}
	p := NewProfiler(WithClock(clock.now), WithUpdateInterval(time.Second), WithMemStats(false))

	frame := FrameStats{
		Cull: culler.Stats{Tested: 10, Rejected: 2, Visible: 6},
		Draw: renderer.DrawStats{DrawCalls: 6},
	}
	for range 3 {
		clock.t = clock.t.Add(250 * time.Millisecond)
		assert.False(t, p.Tick(frame))
	}
	clock.t = clock.t.Add(250 * time.Millisecond)
	frame.Draw.Skipped = 1
	frame.Draw.PipelinesCreated = 2
	require.True(t, p.Tick(frame))

	s := p.Last()
	assert.Equal(t, 4, s.Frames)
	assert.Equal(t, time.Second, s.Elapsed)
	assert.InDelta(t, 4.0, s.FPS, 1e-9)
	assert.InDelta(t, 10.0, s.AvgTested, 1e-9)
	assert.InDelta(t, 2.0, s.AvgRejected, 1e-9)
	assert.InDelta(t, 6.0, s.AvgVisible, 1e-9)
	assert.InDelta(t, 6.0, s.AvgDrawCalls, 1e-9)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, 2, s.PipelinesCreated)
	assert.Zero(t, s.HeapMB)

	clock.t = clock.t.Add(100 * time.Millisecond)
	assert.False(t, p.Tick(FrameStats{}))
}

func TestTickLogsSummary(t *testing.T) {
	var buf bytes.Buffer
	common.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { common.SetLogger(nil) })

	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.now), WithUpdateInterval(time.Millisecond))
	clock.t = clock.t.Add(time.Second)
	require.True(t, p.Tick(FrameStats{Draw: renderer.DrawStats{DrawCalls: 3}}))

	out := buf.String()
	assert.Contains(t, out, "profiler: summary")
	assert.Contains(t, out, "draws=3")
	assert.Positive(t, p.Last().SysMB)
}
