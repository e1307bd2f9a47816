// Package rotation spins entities at a constant angular rate.
package rotation

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/globe/internal/engine/transform"
	"github.com/Faultbox/globe/pkg/math"
)

// FullTurn is one revolution in radians. Speeds are expressed in turns per second.
const FullTurn = 2 * math32.Pi

// Rotatable holds the per-axis angular speed of an entity, in turns per second.
type Rotatable struct {
	SpeedX float32 `yaml:"speed_x"`
	SpeedY float32 `yaml:"speed_y"`
	SpeedZ float32 `yaml:"speed_z"`
}

// IsZero reports whether the entity never rotates.
func (r Rotatable) IsZero() bool {
	return r.SpeedX == 0 && r.SpeedY == 0 && r.SpeedZ == 0
}

// Advance rotates t by the angle covered in dt seconds. Axes are applied one after the
// other in X, Y, Z order, each composed in world space onto the current rotation.
func Advance(t *transform.Transform, r Rotatable, dt float32) {
	if r.SpeedX != 0 {
		t.Rotate(math.QuatFromRotationX(FullTurn * r.SpeedX * dt))
	}
	if r.SpeedY != 0 {
		t.Rotate(math.QuatFromRotationY(FullTurn * r.SpeedY * dt))
	}
	if r.SpeedZ != 0 {
		t.Rotate(math.QuatFromRotationZ(FullTurn * r.SpeedZ * dt))
	}
}

type entry struct {
	transform *transform.Transform
	speed     Rotatable
}

// System advances every registered entity once per frame.
// It is not safe for concurrent use; the frame loop owns it.
type System struct {
	entries map[uint32]entry
	order   []uint32
}

// NewSystem creates an empty system.
func NewSystem() *System {
	return &System{entries: make(map[uint32]entry)}
}

// Add registers an entity. Re-adding an id replaces its speed and transform.
func (s *System) Add(id uint32, t *transform.Transform, r Rotatable) {
	if _, ok := s.entries[id]; !ok {
		s.order = append(s.order, id)
	}
	s.entries[id] = entry{transform: t, speed: r}
}

// Remove unregisters a despawned entity.
func (s *System) Remove(id uint32) {
	if _, ok := s.entries[id]; !ok {
		return
	}
	delete(s.entries, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered entities.
func (s *System) Len() int {
	return len(s.order)
}

// Update advances all entities by dt seconds.
func (s *System) Update(dt float32) {
	if dt == 0 {
		return
	}
	for _, id := range s.order {
		e := s.entries[id]
		Advance(e.transform, e.speed, dt)
	}
}
