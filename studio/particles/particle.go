// Package particles implements the fading background circles: each one fades
// in to full opacity, fades back out and is then dropped from the scene.
package particles

import (
	"math/rand/v2"

	"pianoscape/studio/quarkgl"
)

// Phase is the direction a particle's opacity is moving in.
type Phase uint8

const (
	FadingIn Phase = iota
	FadingOut
)

func (p Phase) String() string {
	if p == FadingIn {
		return "fading-in"
	}
	return "fading-out"
}

const (
	// fadeSteps is the number of Advance calls from transparent to opaque
	// (and back): opacity moves by 1/fadeSteps per call.
	fadeSteps = 100

	maxRadius     = 10
	minRadius     = 0.05
	circleSegment = 48
)

// Particle is one fading circle. Its node belongs to the particle; the field
// attaches and detaches it.
type Particle struct {
	step  int
	phase Phase
	node  *quarkgl.Node
	mat   *quarkgl.Material
}

// Spawn creates a transparent particle with a random radius, color and
// position. The caller attaches Node() to the scene.
func Spawn(rng *rand.Rand) *Particle {
	radius := rng.Float64() * maxRadius
	if radius < minRadius {
		radius = minRadius
	}
	mat := &quarkgl.Material{
		BaseColor:   quarkgl.Hex24(rng.Uint32N(0x1000000)),
		Shading:     quarkgl.ShadeUnlit,
		Transparent: true,
	}
	node := quarkgl.NewMeshNode("particle", quarkgl.NewCircleGeometry(quarkgl.Scalar(radius), circleSegment), mat)
	node.Position = quarkgl.V3(
		quarkgl.Scalar(rng.Float64()*200-100),
		quarkgl.Scalar(rng.Float64()*200-100),
		quarkgl.Scalar(rng.Float64()*200-50),
	)
	return &Particle{phase: FadingIn, node: node, mat: mat}
}

// Advance moves the opacity one step and reports whether the particle is
// still alive. It returns false exactly once, on the call that brings a
// fading-out particle to zero.
func (p *Particle) Advance() bool {
	switch p.phase {
	case FadingIn:
		p.step++
		if p.step >= fadeSteps {
			p.step = fadeSteps
			p.phase = FadingOut
		}
	default:
		p.step--
		if p.step <= 0 {
			p.step = 0
			p.sync()
			return false
		}
	}
	p.sync()
	return true
}

func (p *Particle) sync() {
	p.mat.Opacity = uint8((p.step*255 + fadeSteps/2) / fadeSteps)
}

// Opacity returns the current opacity in [0, 1].
func (p *Particle) Opacity() float64 { return float64(p.step) / fadeSteps }

func (p *Particle) Phase() Phase { return p.phase }

func (p *Particle) Node() *quarkgl.Node { return p.node }

// Color returns the circle's color.
func (p *Particle) Color() quarkgl.Color { return p.mat.BaseColor }
