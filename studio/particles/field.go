package particles

import (
	"math/rand/v2"

	"pianoscape/studio/quarkgl"
)

// Field owns the live particles of a scene. It is not safe for concurrent
// use; the render goroutine drives it.
type Field struct {
	scene *quarkgl.Scene
	rng   *rand.Rand
	live  []*Particle
}

// NewField returns an empty field spawning into scene. The scene camera is
// read on every AdvanceAll, so camera moves are picked up.
func NewField(scene *quarkgl.Scene, rng *rand.Rand) *Field {
	if rng == nil {
		rng = rand.New(rand.NewPCG(1, 2))
	}
	return &Field{scene: scene, rng: rng}
}

// SpawnOne adds a new particle to the scene and returns it.
func (f *Field) SpawnOne() *Particle {
	p := Spawn(f.rng)
	p.node.Rotation = f.scene.Camera.Orientation()
	f.scene.Add(p.node)
	f.live = append(f.live, p)
	return p
}

// AdvanceAll steps every particle once. Particles that finish fading out are
// removed from the scene in the same call; the rest keep their order and are
// turned to face the camera.
func (f *Field) AdvanceAll() (removed int) {
	facing := f.scene.Camera.Orientation()
	keep := f.live[:0]
	for _, p := range f.live {
		if !p.Advance() {
			f.scene.Remove(p.node)
			removed++
			continue
		}
		p.node.Rotation = facing
		keep = append(keep, p)
	}
	clear(f.live[len(keep):])
	f.live = keep
	return removed
}

func (f *Field) Len() int { return len(f.live) }

// Particles returns the live particles in spawn order. The slice is only
// valid until the next SpawnOne or AdvanceAll.
func (f *Field) Particles() []*Particle { return f.live }
