// Package profiler tracks frame rate, memory, and frame-core counters
// (draw calls, upload volume, frame-slot stalls) and logs them at a
// configurable interval.
package profiler

import (
	"log"
	"runtime"
	"time"
)

// Profiler aggregates per-frame statistics. Call Tick once per frame;
// counters accumulate between log flushes and reset after each one.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	drawCalls   int
	uploadBytes uint64
	slotStalls  int
}

// NewProfiler creates a profiler logging once per second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
}

// AddDrawCalls accumulates draw calls issued this frame.
//
// Parameters:
//   - n: the number of draws to add
func (p *Profiler) AddDrawCalls(n int) {
	p.drawCalls += n
}

// AddUploadBytes accumulates staging bytes consumed this frame.
//
// Parameters:
//   - n: the number of bytes to add
func (p *Profiler) AddUploadBytes(n uint64) {
	p.uploadBytes += n
}

// RecordSlotStall counts a frame that had to wait for its frame slot's
// GPU work to retire before beginning.
func (p *Profiler) RecordSlotStall() {
	p.slotStalls++
}

// Tick tracks frame timing and logs aggregate statistics when the
// update interval has elapsed: FPS, heap usage, allocation rate, GC
// pauses, and the frame-core counters.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	// Alloc is live heap; Sys is the process footprint from the OS.
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024

	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 GC pauses.
	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			pause := p.memStats.PauseNs[i%256] / 1000
			if pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	uploadMB := float64(p.uploadBytes) / 1024 / 1024
	log.Printf("[Profiler] FPS: %.2f | Draws: %d | Upload: %.2f MB | Slot stalls: %d | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
		fps, p.drawCalls, uploadMB, p.slotStalls, allocMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, sysMB)

	p.frameCount = 0
	p.drawCalls = 0
	p.uploadBytes = 0
	p.slotStalls = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
