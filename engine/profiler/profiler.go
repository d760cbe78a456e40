package profiler

import (
	"runtime"
	"time"

	"go.uber.org/zap"
)

// Counter is a named value sampled every time the profiler reports, such as the draw calls of
// the last frame.
type Counter struct {
	Name  string
	Value func() int
}

// Snapshot is one profiler report.
type Snapshot struct {
	FPS         float64
	HeapMB      float64
	AllocRateMB float64
	SysMB       float64
	GC          uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
	Counters    map[string]int
}

// Profiler tracks frame rate and memory statistics and logs them at a fixed interval.
type Profiler struct {
	log            *zap.Logger
	now            func() time.Time
	updateInterval time.Duration
	counters       []Counter

	frameCount     int
	lastTime       time.Time
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Snapshot
}

// NewProfiler creates a Profiler reporting once per second.
//
// Parameters:
//   - options: variadic list of ProfilerBuilderOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		log:            zap.NewNop(),
		now:            time.Now,
		updateInterval: time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Last returns the most recent report.
func (p *Profiler) Last() Snapshot { return p.last }

// Tick should be called once per rendered frame. When the update interval has elapsed it
// samples FPS, heap, allocation rate, GC pauses and the counters and logs them at Info.
//
// Returns:
//   - bool: true if stats were reported this tick
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Snapshot{
		FPS:         float64(p.frameCount) / elapsed.Seconds(),
		HeapMB:      float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:       float64(p.memStats.Sys) / 1024 / 1024,
		AllocRateMB: float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GC:          p.memStats.NumGC,
	}
	if s.GC > 0 {
		// PauseNs is a circular buffer of the last 256 pauses
		s.LastPauseUs = p.memStats.PauseNs[(s.GC-1)%256] / 1000
		start := p.lastGCCount
		if s.GC-start > 256 {
			start = s.GC - 256
		}
		for i := start; i < s.GC; i++ {
			s.MaxPauseUs = max(s.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	fields := []zap.Field{
		zap.Float64("fps", s.FPS),
		zap.Float64("heapMB", s.HeapMB),
		zap.Float64("allocRateMB", s.AllocRateMB),
		zap.Uint32("gc", s.GC),
		zap.Uint64("lastPauseUs", s.LastPauseUs),
		zap.Uint64("maxPauseUs", s.MaxPauseUs),
		zap.Float64("sysMB", s.SysMB),
	}
	if len(p.counters) > 0 {
		s.Counters = make(map[string]int, len(p.counters))
		for _, c := range p.counters {
			v := c.Value()
			s.Counters[c.Name] = v
			fields = append(fields, zap.Int(c.Name, v))
		}
	}
	p.log.Info("frame stats", fields...)

	p.last = s
	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = s.GC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
