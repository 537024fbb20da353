package piano

import (
	"errors"
	"testing"
	"time"

	"pianoscape/hal"
	"pianoscape/kernel"
	"pianoscape/studio/quarkgl"

	"tinygo.org/x/tinyfont/proggy"
)

type fakeVoice struct {
	starts, stops int
	playing       bool
}

func (v *fakeVoice) Start() { v.starts++; v.playing = true }
func (v *fakeVoice) Stop()  { v.stops++; v.playing = false }

func nearVec(a, b quarkgl.Vec3) bool {
	d := a.Sub(b)
	return quarkgl.Len(d) < 1e-4
}

func nearQuat(a, b quarkgl.Quat) bool {
	const eps = 1e-4
	abs := func(v quarkgl.Scalar) quarkgl.Scalar {
		if v < 0 {
			return -v
		}
		return v
	}
	return abs(a.X-b.X) < eps && abs(a.Y-b.Y) < eps && abs(a.Z-b.Z) < eps && abs(a.W-b.W) < eps
}

func TestKeyVariant(t *testing.T) {
	if k := NewKey("Db3", '2', 5, nil, KeyOptions{}); k.Variant() != Flat {
		t.Fatalf("Db3 variant = %v, want flat", k.Variant())
	}
	k := NewKey("C3", 'q', 0, nil, KeyOptions{})
	if k.Variant() != Natural || k.Color() != quarkgl.MustParseHex("#ffffff") {
		t.Fatalf("C3 = %v %v, want natural white", k.Variant(), k.Color().Hex())
	}
	if got := k.Group().Position; got != quarkgl.V3(0, 0, 0) {
		t.Fatalf("group position = %v", got)
	}
}

func TestKeyPressReleaseRestoresRest(t *testing.T) {
	for _, note := range []string{"C3", "Db3"} {
		v := &fakeVoice{}
		k := NewKey(note, 'x', 30, v, KeyOptions{})
		pos, rot := k.Group().Position, k.Group().Rotation

		k.Press(Highlight)
		if k.State() != Pressed || k.Color() != Highlight {
			t.Fatalf("%s after Press: %v %s", note, k.State(), k.Color().Hex())
		}
		if nearVec(k.Group().Position, pos) {
			t.Fatalf("%s: Press did not move the key", note)
		}
		if v.starts != 1 {
			t.Fatalf("%s: starts = %d, want 1", note, v.starts)
		}

		k.Release()
		want := "#ffffff"
		if note == "Db3" {
			want = "#000000"
		}
		if got := k.Color().Hex(); got != want {
			t.Fatalf("%s color after Release = %s, want %s", note, got, want)
		}
		if !nearVec(k.Group().Position, pos) || !nearQuat(k.Group().Rotation, rot) {
			t.Fatalf("%s pose after Release = %v %v, want %v %v", note, k.Group().Position, k.Group().Rotation, pos, rot)
		}
		if v.stops != 0 {
			t.Fatalf("%s: Release stopped the voice", note)
		}
	}
}

func TestKeyPressHinge(t *testing.T) {
	k := NewKey("C3", 'q', 0, nil, KeyOptions{})
	k.Press(Highlight)

	// The origin swings about (0, 20, 0): up a little and towards -Z.
	got := k.Group().Position
	if got.X > 1e-5 || got.X < -1e-5 || got.Z >= 0 || got.Y <= 0 {
		t.Fatalf("pressed position = %v, want y>0 z<0", got)
	}
	want := quarkgl.QuatFromAxisAngle(quarkgl.V3(1, 0, 0), PressStep)
	if !nearQuat(k.Group().Rotation, want) {
		t.Fatalf("pressed rotation = %v, want %v", k.Group().Rotation, want)
	}
}

func TestKeyPressIsIdempotent(t *testing.T) {
	v := &fakeVoice{}
	k := NewKey("E3", 'e', 20, v, KeyOptions{})
	k.Press(Highlight)
	first := k.Group().Position
	firstRot := k.Group().Rotation

	k.Press(Highlight)
	if k.Group().Position != first || k.Group().Rotation != firstRot {
		t.Fatal("second Press rotated again")
	}
	if v.starts != 1 {
		t.Fatalf("starts = %d, want 1", v.starts)
	}

	k.Release()
	if k.State() != Resting {
		t.Fatal("key not resting after one Release")
	}
	k.Release()
	if k.Color().Hex() != "#ffffff" {
		t.Fatal("extra Release changed the key")
	}

	k.Press(Highlight)
	if k.Group().Position != first || k.Group().Rotation != firstRot {
		t.Fatalf("re-press pose = %v %v, want %v %v", k.Group().Position, k.Group().Rotation, first, firstRot)
	}
	if v.starts != 2 {
		t.Fatalf("starts = %d, want 2", v.starts)
	}
}

func TestKeyAutoStop(t *testing.T) {
	timers := kernel.NewTimers()
	v := &fakeVoice{}
	k := NewKey("C3", 'q', 0, v, KeyOptions{Timers: timers})

	k.Press(Highlight)
	if timers.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", timers.Pending())
	}
	timers.Advance(DefaultAutoStop - time.Millisecond)
	if v.stops != 0 {
		t.Fatal("voice stopped early")
	}
	timers.Advance(time.Millisecond)
	if v.stops != 1 || v.playing {
		t.Fatalf("stops = %d playing = %v, want auto-stop", v.stops, v.playing)
	}
}

func TestKeyRepressCancelsStaleStop(t *testing.T) {
	timers := kernel.NewTimers()
	v := &fakeVoice{}
	k := NewKey("C3", 'q', 0, v, KeyOptions{Timers: timers, AutoStop: 10 * time.Second})

	k.Press(Highlight)
	timers.Advance(5 * time.Second)
	k.Release()
	if timers.Pending() != 0 {
		t.Fatalf("Pending() after Release = %d, want 0", timers.Pending())
	}
	k.Press(Highlight)

	// Past the first press's deadline the second playback must go on.
	timers.Advance(6 * time.Second)
	if v.stops != 0 || !v.playing {
		t.Fatalf("stale auto-stop fired: stops = %d", v.stops)
	}
	timers.Advance(4 * time.Second)
	if v.stops != 1 {
		t.Fatalf("stops = %d, want 1 at the second deadline", v.stops)
	}
}

func TestKeyStopOnRelease(t *testing.T) {
	v := &fakeVoice{}
	k := NewKey("C3", 'q', 0, v, KeyOptions{StopOnRelease: true})
	k.Press(Highlight)
	k.Release()
	if v.stops != 1 || v.playing {
		t.Fatalf("stops = %d, want 1", v.stops)
	}
}

func TestKeyLabelBuiltOnce(t *testing.T) {
	k := NewKey("C3", 'q', 0, nil, KeyOptions{})

	k.SetLabelVisible(nil, true)
	if k.Label() != nil {
		t.Fatal("label built without a font")
	}
	k.SetLabelVisible(&proggy.TinySZ8pt7b, false)
	if k.Label() != nil {
		t.Fatal("label built for a hide request")
	}

	k.SetLabelVisible(&proggy.TinySZ8pt7b, true)
	label := k.Label()
	if label == nil || !label.Visible {
		t.Fatal("label not built")
	}
	if label.Parent() != k.Group() {
		t.Fatal("label not attached to the key group")
	}
	if label.Position != quarkgl.V3(-1.5, -18, 2) {
		t.Fatalf("label position = %v", label.Position)
	}
	geom := label.Geometry

	k.SetLabelVisible(nil, false)
	if label.Visible {
		t.Fatal("label still visible")
	}
	k.SetLabelVisible(&proggy.TinySZ8pt7b, true)
	if k.Label() != label || label.Geometry != geom || !label.Visible {
		t.Fatal("label rebuilt on toggle")
	}
	if n := len(k.Group().Children()); n != 2 {
		t.Fatalf("group children = %d, want mesh + label", n)
	}
}

var _ hal.Voice = (*fakeVoice)(nil)

func TestKeyboardLayoutErrors(t *testing.T) {
	_, err := NewKeyboardWithLayout(
		[]Layout{{"Db3", 'a', 5}},
		[]Layout{{"C3", 'q', 0}, {"D3", 'a', 10}},
		Options{},
	)
	if !errors.Is(err, ErrDuplicateSymbol) {
		t.Fatalf("NewKeyboardWithLayout() = %v, want ErrDuplicateSymbol", err)
	}
}
