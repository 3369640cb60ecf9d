// Package profiler measures the phases of a load: wall time and heap
// allocation per phase, reported through zap.
package profiler

import (
	"runtime"
	"time"

	"go.uber.org/zap"
)

// Phase is one measured step of a load.
type Phase struct {
	// Name identifies the step, for example "fetch" or "decode".
	Name string

	// Duration is the wall time since the previous mark.
	Duration time.Duration

	// AllocBytes is the heap allocated since the previous mark (cumulative, GC independent).
	AllocBytes uint64
}

// Profiler tracks the phases of a single operation. A nil *Profiler is valid
// and records nothing, so callers need not check whether profiling is enabled.
// A Profiler is not safe for concurrent use.
type Profiler struct {
	logger         *zap.Logger
	name           string
	start          time.Time
	lastTime       time.Time
	memStats       runtime.MemStats
	lastTotalAlloc uint64
	lastGCCount    uint32
	phases         []Phase
}

// NewProfiler creates a Profiler and starts its clock.
//
// Parameters:
//   - logger: the logger phases are reported to
//   - name: the operation being profiled, attached to every log entry
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(logger *zap.Logger, name string) *Profiler {
	p := &Profiler{
		logger: logger,
		name:   name,
	}
	runtime.ReadMemStats(&p.memStats)
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.lastGCCount = p.memStats.NumGC
	p.start = time.Now()
	p.lastTime = p.start
	return p
}

// Mark ends the current phase, records it under name and starts the next one.
//
// Parameters:
//   - name: the name of the phase that just finished
//
// Returns:
//   - Phase: the recorded phase, zero for a nil profiler
func (p *Profiler) Mark(name string) Phase {
	if p == nil {
		return Phase{}
	}

	now := time.Now()
	runtime.ReadMemStats(&p.memStats)
	// TotalAlloc only grows, so the delta is the phase's allocation churn.
	phase := Phase{
		Name:       name,
		Duration:   now.Sub(p.lastTime),
		AllocBytes: p.memStats.TotalAlloc - p.lastTotalAlloc,
	}
	gcs := p.memStats.NumGC - p.lastGCCount

	p.lastTime = now
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.lastGCCount = p.memStats.NumGC
	p.phases = append(p.phases, phase)

	p.logger.Debug("phase finished",
		zap.String("operation", p.name),
		zap.String("phase", name),
		zap.Duration("duration", phase.Duration),
		zap.Float64("allocMB", float64(phase.AllocBytes)/1024/1024),
		zap.Uint32("gc", gcs),
	)
	return phase
}

// Phases returns the phases recorded so far.
//
// Returns:
//   - []Phase: the phases in the order they were marked
func (p *Profiler) Phases() []Phase {
	if p == nil {
		return nil
	}
	return p.phases
}

// Finish logs the total time and allocation of every recorded phase.
//
// Returns:
//   - time.Duration: the time since NewProfiler, zero for a nil profiler
func (p *Profiler) Finish() time.Duration {
	if p == nil {
		return 0
	}

	total := time.Since(p.start)
	var alloc uint64
	for _, ph := range p.phases {
		alloc += ph.AllocBytes
	}
	p.logger.Info("profile",
		zap.String("operation", p.name),
		zap.Duration("total", total),
		zap.Int("phases", len(p.phases)),
		zap.Float64("allocMB", float64(alloc)/1024/1024),
	)
	return total
}
