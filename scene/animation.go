package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Animation mutates a scene as a function of absolute time. Apply must be
// idempotent for a given t so playback can seek.
type Animation struct {
	Name string

	// Duration is the length of one loop in seconds. Zero or negative
	// means the animation never wraps.
	Duration float64

	Apply func(t float64, s *Scene)
}

// LocalTime folds an absolute time into the animation's loop.
func (a *Animation) LocalTime(t float64) float64 {
	if a.Duration <= 0 {
		return t
	}
	return math.Mod(t, a.Duration)
}

// NewTurntable returns an animation spinning every mesh of the scene around
// the +Y axis, completing one revolution per period seconds.
func NewTurntable(name string, period float64) *Animation {
	if period <= 0 {
		period = 10
	}
	return &Animation{
		Name:     name,
		Duration: period,
		Apply: func(t float64, s *Scene) {
			angle := 2 * math.Pi * (t / period)
			rot := mgl32.HomogRotate3DY(float32(angle))
			for _, m := range s.Meshes {
				m.Transform = rot
			}
		},
	}
}

// ApplyAnimation advances the indexed animation to time t. Out-of-range
// indices are ignored, matching playback on scenes without animations.
func (s *Scene) ApplyAnimation(index int, t float64) {
	if index < 0 || index >= len(s.Animations) {
		return
	}
	a := s.Animations[index]
	if a.Apply == nil {
		return
	}
	a.Apply(a.LocalTime(t), s)
}

// AnimationName returns the name of the indexed animation, empty when out
// of range.
func (s *Scene) AnimationName(index int) string {
	if index < 0 || index >= len(s.Animations) {
		return ""
	}
	return s.Animations[index].Name
}
