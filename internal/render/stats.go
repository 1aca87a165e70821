package render

import (
	"sync"
	"time"
)

// FrameStats tracks presentation rate and draw cost.
type FrameStats struct {
	mu        sync.Mutex
	lastTick  time.Time
	fps       float64
	lastDraw  time.Duration
	totalDraw time.Duration
	draws     int
	frames    int
}

type Stats struct {
	FPS         float64
	Frames      int
	Draws       int
	LastDraw    time.Duration
	AverageDraw time.Duration
}

// fpsSmoothing weights the newest frame interval in the running FPS.
const fpsSmoothing = 0.1

// Tick records one loop iteration at now.
func (s *FrameStats) Tick(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frames++
	if !s.lastTick.IsZero() {
		if dt := now.Sub(s.lastTick).Seconds(); dt > 0 {
			instant := 1 / dt
			if s.fps == 0 {
				s.fps = instant
			} else {
				s.fps += (instant - s.fps) * fpsSmoothing
			}
		}
	}
	s.lastTick = now
}

// RecordDraw records the cost of one shading pass.
func (s *FrameStats) RecordDraw(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draws++
	s.lastDraw = d
	s.totalDraw += d
}

func (s *FrameStats) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{FPS: s.fps, Frames: s.frames, Draws: s.draws, LastDraw: s.lastDraw}
	if s.draws > 0 {
		st.AverageDraw = s.totalDraw / time.Duration(s.draws)
	}
	return st
}
