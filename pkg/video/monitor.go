package video

import (
	"sync"
	"time"
)

//Snapshot is a copy of the session state safe to hand to other goroutines
type Snapshot struct {
	SessionID       string    `json:"session_id"`
	State           string    `json:"state"`
	FramesProcessed int       `json:"frames_processed"`
	FramesWritten   int       `json:"frames_written"`
	Persons         int       `json:"persons"`
	SmoothedTime    float64   `json:"smoothed_time"`
	FPS             float64   `json:"fps"`
	FocalLength     float64   `json:"focal_length"`
	UpdatedAt       time.Time `json:"updated_at"`
}

//Monitor publishes the latest snapshot of a session. The session writes it once per frame, readers may be on any goroutine
type Monitor struct {
	mu   sync.RWMutex
	snap Snapshot
}

//NewMonitor returns a monitor for the given session
func NewMonitor(sessionID string) *Monitor {
	return &Monitor{snap: Snapshot{SessionID: sessionID, State: StateInit.String(), UpdatedAt: time.Now()}}
}

func (m *Monitor) publish(state State, stats *SessionStats, focal float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snap.State = state.String()
	m.snap.FramesProcessed = stats.FramesProcessed
	m.snap.FramesWritten = stats.FramesWritten
	m.snap.Persons = stats.LastPersons
	m.snap.SmoothedTime = stats.Perf.Smoothed()
	m.snap.FPS = stats.Perf.FPS()
	m.snap.FocalLength = focal
	m.snap.UpdatedAt = time.Now()
}

//Snapshot returns a copy of the latest published state
func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.snap
}
