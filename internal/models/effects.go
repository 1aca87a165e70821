package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var ErrInvalidEffect = errors.New("invalid effect")

// Effect identifies one image effect of the compositing pass.
type Effect int

const (
	Grayscale Effect = iota
	Blur
	Mosaic
	EdgeDetect
	Invert

	effectCount
)

// ApplicationOrder is the order the compositing pass evaluates effects in.
// Mosaic remaps sampling coordinates, so it runs before anything samples.
var ApplicationOrder = [effectCount]Effect{Mosaic, Blur, Grayscale, EdgeDetect, Invert}

type effectInfo struct {
	id            string
	name          string
	caption       string
	selectDefault float64
}

var effectTable = [effectCount]effectInfo{
	Grayscale:  {"grayscale", "Grayscale", "Opacity / Mix", 1.0},
	Blur:       {"blur", "Gaussian Blur", "Blur radius (GPU heavy)", 0},
	Mosaic:     {"mosaic", "Mosaic", "Pixel size", 0},
	EdgeDetect: {"edge", "Edge Detect", "Opacity / Mix", 0},
	Invert:     {"invert", "Invert", "Opacity / Mix", 0},
}

func (e Effect) Valid() bool {
	return e >= 0 && e < effectCount
}

// String returns the stable identifier used by controls and logs.
func (e Effect) String() string {
	if !e.Valid() {
		return fmt.Sprintf("effect(%d)", int(e))
	}
	return effectTable[e].id
}

func (e Effect) DisplayName() string {
	if !e.Valid() {
		return e.String()
	}
	return effectTable[e].name
}

// Caption is the slider label shown for the effect's intensity.
func (e Effect) Caption() string {
	if !e.Valid() {
		return ""
	}
	return effectTable[e].caption
}

// SelectDefault is the intensity applied when the effect is chosen through
// the select shortcut while its intensity is still zero.
func (e Effect) SelectDefault() float64 {
	if !e.Valid() {
		return 0
	}
	return effectTable[e].selectDefault
}

// Effects returns every effect in application order.
func Effects() []Effect {
	out := make([]Effect, len(ApplicationOrder))
	copy(out, ApplicationOrder[:])
	return out
}

// ParseEffect resolves an identifier or display name, case-insensitively.
func ParseEffect(name string) (Effect, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, info := range effectTable {
		if n == info.id || n == strings.ToLower(info.name) {
			return Effect(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidEffect, name)
}

// ClampIntensity pins v into [0,1]. NaN becomes 0.
func ClampIntensity(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

type EffectState struct {
	Effect    Effect
	Enabled   bool
	Intensity float64
}

// Snapshot is an immutable copy of the stack in application order.
type Snapshot [effectCount]EffectState

// Get returns the state of e. Invalid effects report a disabled zero state.
func (s Snapshot) Get(e Effect) EffectState {
	for _, st := range s {
		if st.Effect == e {
			return st
		}
	}
	return EffectState{Effect: e}
}

// Active returns the enabled effects in application order.
func (s Snapshot) Active() []EffectState {
	var out []EffectState
	for _, st := range s {
		if st.Enabled {
			out = append(out, st)
		}
	}
	return out
}

// EffectStack is the parameter model behind the compositing pass. It holds
// no GPU state and is not safe for concurrent use; the UI goroutine owns it.
type EffectStack struct {
	states  [effectCount]EffectState
	version uint64
}

// NewEffectStack returns a stack with every effect disabled at intensity 0.
func NewEffectStack() *EffectStack {
	s := &EffectStack{}
	for i := range s.states {
		s.states[i] = EffectState{Effect: Effect(i)}
	}
	return s
}

// Set updates one effect. Intensity is clamped into [0,1].
func (s *EffectStack) Set(e Effect, enabled bool, intensity float64) error {
	if !e.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidEffect, int(e))
	}
	next := EffectState{Effect: e, Enabled: enabled, Intensity: ClampIntensity(intensity)}
	if s.states[e] != next {
		s.states[e] = next
		s.version++
	}
	return nil
}

// SetIntensity keeps the enabled flag and changes only the intensity.
func (s *EffectStack) SetIntensity(e Effect, intensity float64) error {
	if !e.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidEffect, int(e))
	}
	return s.Set(e, s.states[e].Enabled, intensity)
}

// Select makes e the only enabled effect. A zero intensity is raised to the
// effect's select default.
func (s *EffectStack) Select(e Effect) error {
	if !e.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidEffect, int(e))
	}
	for i := range s.states {
		if Effect(i) != e && s.states[i].Enabled {
			s.states[i].Enabled = false
			s.version++
		}
	}
	intensity := s.states[e].Intensity
	if intensity == 0 {
		intensity = e.SelectDefault()
	}
	return s.Set(e, true, intensity)
}

// Reset disables every effect. Intensities are kept so re-enabling restores them.
func (s *EffectStack) Reset() {
	for i := range s.states {
		if s.states[i].Enabled {
			s.states[i].Enabled = false
			s.version++
		}
	}
}

func (s *EffectStack) Get(e Effect) (EffectState, error) {
	if !e.Valid() {
		return EffectState{}, fmt.Errorf("%w: %d", ErrInvalidEffect, int(e))
	}
	return s.states[e], nil
}

// Snapshot copies the current state in application order.
func (s *EffectStack) Snapshot() Snapshot {
	var snap Snapshot
	for i, e := range ApplicationOrder {
		snap[i] = s.states[e]
	}
	return snap
}

// Version increases on every change that alters a snapshot.
func (s *EffectStack) Version() uint64 {
	return s.version
}
