package video

import (
	"math"
	"time"
)

//smoothing is the weight given to a new sample in the processing time average
const smoothing = 0.05

//maxTimingSamples bounds the per frame history kept for the timing plot; older samples are overwritten
const maxTimingSamples = 10000

//PerfTracker keeps an exponentially smoothed time per frame. It is seeded by the first sample and never reset
type PerfTracker struct {
	smoothed float64
	set      bool
}

//Update folds a new processing duration into the average
func (p *PerfTracker) Update(d time.Duration) {
	sample := d.Seconds()
	if !p.set {
		p.smoothed = sample
		p.set = true
		return
	}

	p.smoothed = (1-smoothing)*p.smoothed + smoothing*sample
}

//Smoothed returns the average time per frame in seconds, 0 before the first sample
func (p *PerfTracker) Smoothed() float64 {
	return p.smoothed
}

//FPS returns 1/Smoothed() truncated to one decimal place
func (p *PerfTracker) FPS() float64 {
	if !p.set || p.smoothed <= 0 {
		return 0
	}

	return math.Trunc(10/p.smoothed) / 10
}

//TimingSample is one frame's processing time next to the running average at that point
type TimingSample struct {
	Frame    int
	Elapsed  time.Duration
	Smoothed float64
}

//SessionStats is the mutable per session state updated once per processed frame
type SessionStats struct {
	FramesProcessed int
	FramesWritten   int
	LastPersons     int
	Perf            PerfTracker

	timings []TimingSample
	next    int //oldest sample once timings is full
}

//record updates the tracker and stores the sample, replacing the oldest one once the history is full
func (s *SessionStats) record(elapsed time.Duration) {
	s.Perf.Update(elapsed)
	sample := TimingSample{Frame: s.FramesProcessed + 1, Elapsed: elapsed, Smoothed: s.Perf.Smoothed()}
	if len(s.timings) < maxTimingSamples {
		s.timings = append(s.timings, sample)
		return
	}

	s.timings[s.next] = sample
	s.next = (s.next + 1) % maxTimingSamples
}

//Timings returns the most recent samples, oldest first
func (s *SessionStats) Timings() []TimingSample {
	out := make([]TimingSample, 0, len(s.timings))
	out = append(out, s.timings[s.next:]...)
	return append(out, s.timings[:s.next]...)
}
