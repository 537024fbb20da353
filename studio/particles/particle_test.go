package particles

import (
	"math/rand/v2"
	"testing"

	"pianoscape/studio/quarkgl"
)

func testRNG() *rand.Rand { return rand.New(rand.NewPCG(7, 11)) }

func TestParticleLifecycle(t *testing.T) {
	p := Spawn(testRNG())
	if p.Opacity() != 0 || p.Phase() != FadingIn {
		t.Fatalf("fresh particle = %v %v, want 0 fading-in", p.Opacity(), p.Phase())
	}
	for i := 1; i <= 199; i++ {
		if !p.Advance() {
			t.Fatalf("Advance() call %d = false, want true", i)
		}
		if i == 100 {
			if p.Opacity() != 1 || p.Phase() != FadingOut {
				t.Fatalf("after 100 calls: %v %v, want 1 fading-out", p.Opacity(), p.Phase())
			}
			if p.Node().Material.Opacity != 255 {
				t.Fatalf("material opacity = %d, want 255", p.Node().Material.Opacity)
			}
		}
	}
	if p.Advance() {
		t.Fatal("Advance() call 200 = true, want false")
	}
	if p.Opacity() != 0 || p.Node().Material.Opacity != 0 {
		t.Fatalf("final opacity = %v (%d), want 0", p.Opacity(), p.Node().Material.Opacity)
	}
}

func TestSpawnRanges(t *testing.T) {
	rng := testRNG()
	for i := 0; i < 500; i++ {
		p := Spawn(rng)
		pos := p.Node().Position
		if pos.X < -100 || pos.X >= 100 || pos.Y < -100 || pos.Y >= 100 {
			t.Fatalf("position %v outside x,y [-100,100)", pos)
		}
		if pos.Z < -50 || pos.Z >= 150 {
			t.Fatalf("position %v outside z [-50,150)", pos)
		}
		lo, hi := p.Node().Geometry.Bounds()
		r := hi.X
		if r < minRadius-1e-4 || r > maxRadius+1e-4 || lo.X > -minRadius+1e-4 {
			t.Fatalf("radius %v outside [%v, %v]", r, minRadius, maxRadius)
		}
		if !p.Node().Material.Transparent || p.Color().A != 0xff {
			t.Fatalf("material = %+v, want opaque-color transparent material", p.Node().Material)
		}
	}
}

func TestFieldAdvanceAllRemovesFinished(t *testing.T) {
	scene := quarkgl.NewScene()
	f := NewField(scene, testRNG())

	old := []*Particle{f.SpawnOne(), f.SpawnOne()}
	for i := 0; i < 150; i++ {
		f.AdvanceAll()
	}
	mid := f.SpawnOne()
	young := f.SpawnOne()
	if f.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", f.Len())
	}

	// The first two reach zero on the 200th step; 49 more steps keep them alive.
	for i := 0; i < 49; i++ {
		if n := f.AdvanceAll(); n != 0 {
			t.Fatalf("AdvanceAll() removed %d early", n)
		}
	}
	if n := f.AdvanceAll(); n != 2 {
		t.Fatalf("AdvanceAll() removed %d, want 2", n)
	}
	for _, p := range old {
		if scene.Contains(p.Node()) {
			t.Fatal("finished particle still attached to the scene")
		}
	}
	got := f.Particles()
	if len(got) != 2 || got[0] != mid || got[1] != young {
		t.Fatalf("survivors = %v, want [mid young] in order", got)
	}
	for _, p := range got {
		if !scene.Contains(p.Node()) {
			t.Fatal("survivor detached from the scene")
		}
	}
}

func TestFieldBillboardsToCamera(t *testing.T) {
	scene := quarkgl.NewScene()
	scene.Camera.Position = quarkgl.V3(40, 10, 150)
	f := NewField(scene, testRNG())
	f.SpawnOne()
	f.SpawnOne()

	scene.Camera.Position = quarkgl.V3(-30, 5, 120)
	f.AdvanceAll()

	want := scene.Camera.Orientation()
	for _, p := range f.Particles() {
		if p.Node().Rotation != want {
			t.Fatalf("rotation = %v, want camera orientation %v", p.Node().Rotation, want)
		}
	}
}
