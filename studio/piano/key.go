// Package piano models the playable keys: their meshes, voices, labels and
// the keyboard that maps input symbols onto them.
package piano

import (
	"math"
	"time"

	"pianoscape/hal"
	"pianoscape/kernel"
	"pianoscape/studio/quarkgl"

	"tinygo.org/x/tinyfont"
)

// Variant distinguishes white (natural) from black (flat) keys.
type Variant uint8

const (
	Natural Variant = iota
	Flat
)

func (v Variant) String() string {
	if v == Flat {
		return "flat"
	}
	return "natural"
}

// State is the key's pose.
type State uint8

const (
	Resting State = iota
	Pressed
)

func (s State) String() string {
	if s == Pressed {
		return "pressed"
	}
	return "resting"
}

// DefaultAutoStop caps how long a voice plays after a press.
const DefaultAutoStop = 150 * time.Second

// PressStep is the hinge angle of a pressed key.
const PressStep = quarkgl.Scalar(math.Pi / 32)

var (
	pressAxis  = quarkgl.V3(1, 0, 0)
	pressPivot = quarkgl.V3(0, 20, 0)

	// Flat meshes start slightly lighter than the black they return to.
	flatInitial = quarkgl.MustParseHex("#0f0f0f")
	flatRest    = quarkgl.MustParseHex("#000000")
	naturalRest = quarkgl.MustParseHex("#ffffff")
)

const (
	labelSize  = 4
	labelDepth = 2
)

// KeyOptions configures the behaviour shared by every key of a keyboard.
type KeyOptions struct {
	// Timers runs auto-stops. A nil Timers disables them.
	Timers   *kernel.Timers
	AutoStop time.Duration
	// StopOnRelease stops the voice on release instead of letting it ring.
	StopOnRelease bool
}

// Key is one piano key. Methods must be called from the render goroutine.
type Key struct {
	note    string
	symbol  rune
	variant Variant
	state   State

	group *quarkgl.Node
	mesh  *quarkgl.Node
	mat   *quarkgl.Material
	label *quarkgl.Node

	restPos quarkgl.Vec3
	restRot quarkgl.Quat

	voice    hal.Voice
	opts     KeyOptions
	autoStop kernel.TimerID
}

// NewKey builds the key's mesh inside a group placed at offset along X.
// A three-character note (Db3) is a flat key. A nil voice is silent.
func NewKey(note string, symbol rune, offset quarkgl.Scalar, voice hal.Voice, opts KeyOptions) *Key {
	if voice == nil {
		voice = hal.SilentVoice{}
	}
	if opts.AutoStop <= 0 {
		opts.AutoStop = DefaultAutoStop
	}
	k := &Key{
		note:   note,
		symbol: symbol,
		voice:  voice,
		opts:   opts,
		group:  quarkgl.NewGroup("key " + note),
	}

	if len(note) == 3 {
		k.variant = Flat
		k.mat = &quarkgl.Material{BaseColor: flatInitial, Shading: quarkgl.ShadeUnlit}
		k.mesh = quarkgl.NewMeshNode(note, quarkgl.NewBoxGeometry(4.5, 26, 4), k.mat)
		k.mesh.Position = quarkgl.V3(0, 7, 4)
	} else {
		k.variant = Natural
		k.mat = &quarkgl.Material{BaseColor: naturalRest, Shading: quarkgl.ShadeLit}
		k.mesh = quarkgl.NewMeshNode(note, quarkgl.NewBoxGeometry(9, 40, 4), k.mat)
	}
	k.group.Position = quarkgl.V3(offset, 0, 0)
	k.group.Add(k.mesh)

	k.restPos = k.group.Position
	k.restRot = k.group.Rotation
	return k
}

func (k *Key) Note() string         { return k.note }
func (k *Key) Symbol() rune         { return k.symbol }
func (k *Key) Variant() Variant     { return k.variant }
func (k *Key) State() State         { return k.state }
func (k *Key) Group() *quarkgl.Node { return k.group }
func (k *Key) Mesh() *quarkgl.Node  { return k.mesh }

// Color returns the mesh's current color.
func (k *Key) Color() quarkgl.Color { return k.mat.BaseColor }

// Label returns the label node, or nil if no label was built yet.
func (k *Key) Label() *quarkgl.Node { return k.label }

// Press hinges the key down, highlights it and starts its voice from the
// beginning. A pressed key ignores further presses.
func (k *Key) Press(highlight quarkgl.Color) {
	if k.state == Pressed {
		return
	}
	k.state = Pressed
	k.group.RotateAroundPoint(pressPivot, pressAxis, PressStep)
	k.mat.BaseColor = highlight
	k.voice.Start()

	if k.opts.Timers == nil {
		return
	}
	k.opts.Timers.Cancel(k.autoStop)
	k.autoStop = k.opts.Timers.After(k.opts.AutoStop, func() {
		k.autoStop = 0
		k.voice.Stop()
	})
}

// Release restores the resting color and pose. The voice keeps ringing
// unless StopOnRelease is set, but its pending auto-stop is cancelled so it
// cannot cut off a later press.
func (k *Key) Release() {
	if k.state == Resting {
		return
	}
	k.state = Resting
	if k.variant == Flat {
		k.mat.BaseColor = flatRest
	} else {
		k.mat.BaseColor = naturalRest
	}
	// Restoring the saved pose is rotating back by PressStep without the
	// rounding error a second rotation would leave behind.
	k.group.Position = k.restPos
	k.group.Rotation = k.restRot

	if k.opts.Timers != nil && k.autoStop != 0 {
		k.opts.Timers.Cancel(k.autoStop)
		k.autoStop = 0
	}
	if k.opts.StopOnRelease {
		k.voice.Stop()
	}
}

// SetLabelVisible shows or hides the key's label. The label is built from
// the first note letter the first time it is shown; a nil font before that
// leaves the key unlabelled.
func (k *Key) SetLabelVisible(font tinyfont.Fonter, visible bool) {
	if k.label != nil {
		k.label.Visible = visible
		return
	}
	if !visible || font == nil {
		return
	}
	g := quarkgl.NewTextGeometry(font, k.note[:1], labelSize, labelDepth)
	if g == nil {
		return
	}
	k.label = quarkgl.NewMeshNode("label "+k.note, g, &quarkgl.Material{Shading: quarkgl.ShadeNormal})
	k.label.Position = quarkgl.V3(-1.5, -18, 2)
	k.group.Add(k.label)
}
