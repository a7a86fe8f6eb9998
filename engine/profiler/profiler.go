// Package profiler aggregates per-frame cull and draw counters with frame rate and memory
// statistics, logging a summary through the engine logger at a fixed interval.
package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/culler"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
)

// FrameStats is the work done in one frame.
type FrameStats struct {
	Cull culler.Stats
	Draw renderer.DrawStats
}

// Summary is the aggregate of every frame since the previous summary.
type Summary struct {
	Frames  int
	Elapsed time.Duration
	FPS     float64

	// Per-frame averages.
	AvgTested    float64
	AvgRejected  float64
	AvgVisible   float64
	AvgDrawCalls float64

	// Totals over the interval.
	Skipped          int
	PipelinesCreated int

	HeapMB      float64
	AllocRateMB float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
	SysMB       float64
}

// Profiler tracks frame rate, cull and draw counts and memory statistics.
// It is not safe for concurrent use; call Tick from the frame loop.
type Profiler struct {
	now            func() time.Time
	lastTime       time.Time
	updateInterval time.Duration
	readMemStats   bool

	frameCount int
	totals     FrameStats
	last       Summary

	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a new Profiler.
// Update interval defaults to 1 second.
//
// Parameters:
//   - options: builder options
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		now:            time.Now,
		updateInterval: time.Second,
		readMemStats:   true,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per frame with the frame's counters.
// Logs a summary when the update interval has elapsed.
//
// Parameters:
//   - fs: the counters of the frame just finished
//
// Returns:
//   - bool: true if a summary was produced this tick, false otherwise
func (p *Profiler) Tick(fs FrameStats) bool {
	p.frameCount++
	p.totals.Cull.Tested += fs.Cull.Tested
	p.totals.Cull.Rejected += fs.Cull.Rejected
	p.totals.Cull.Visible += fs.Cull.Visible
	p.totals.Draw.DrawCalls += fs.Draw.DrawCalls
	p.totals.Draw.Skipped += fs.Draw.Skipped
	p.totals.Draw.PipelinesCreated += fs.Draw.PipelinesCreated

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	frames := float64(p.frameCount)
	s := Summary{
		Frames:           p.frameCount,
		Elapsed:          elapsed,
		FPS:              frames / elapsed.Seconds(),
		AvgTested:        float64(p.totals.Cull.Tested) / frames,
		AvgRejected:      float64(p.totals.Cull.Rejected) / frames,
		AvgVisible:       float64(p.totals.Cull.Visible) / frames,
		AvgDrawCalls:     float64(p.totals.Draw.DrawCalls) / frames,
		Skipped:          p.totals.Draw.Skipped,
		PipelinesCreated: p.totals.Draw.PipelinesCreated,
	}
	if p.readMemStats {
		p.sampleMemory(&s, elapsed)
	}

	common.Logger().Info("profiler: summary",
		"fps", s.FPS,
		"visible", s.AvgVisible,
		"rejected", s.AvgRejected,
		"draws", s.AvgDrawCalls,
		"skipped", s.Skipped,
		"pipelines", s.PipelinesCreated,
		"heapMB", s.HeapMB,
		"allocRateMB", s.AllocRateMB,
		"gc", s.GCCount,
		"lastPauseUs", s.LastPauseUs,
		"maxPauseUs", s.MaxPauseUs,
		"sysMB", s.SysMB,
	)

	p.last = s
	p.frameCount = 0
	p.totals = FrameStats{}
	p.lastTime = currentTime
	return true
}

// sampleMemory fills the memory fields of s.
func (p *Profiler) sampleMemory(s *Summary, elapsed time.Duration) {
	runtime.ReadMemStats(&p.memStats)
	// Alloc: Bytes of allocated heap objects (live memory)
	// TotalAlloc: Cumulative bytes allocated for heap objects (increases forever, tracks churn)
	// Sys: Total bytes of memory obtained from the OS (actual process footprint)
	s.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	s.SysMB = float64(p.memStats.Sys) / 1024 / 1024

	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	s.AllocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	s.GCCount = gcCount
	if gcCount > 0 {
		// PauseNs is a circular buffer of last 256 GC pauses
		s.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > s.MaxPauseUs {
				s.MaxPauseUs = pause
			}
		}
	}

	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
}

// Last returns the most recent summary, zero before the first one.
func (p *Profiler) Last() Summary {
	return p.last
}
