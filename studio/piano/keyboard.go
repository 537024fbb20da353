package piano

import (
	"errors"
	"fmt"
	"math"

	"pianoscape/hal"
	"pianoscape/studio/quarkgl"

	"tinygo.org/x/tinyfont"
)

// ErrDuplicateSymbol is returned when two keys claim the same input symbol.
var ErrDuplicateSymbol = errors.New("duplicate key symbol")

// Highlight is the color of a held key.
var Highlight = quarkgl.MustParseHex("#61DBFB")

// Layout places one key.
type Layout struct {
	Note   string
	Symbol rune
	Offset quarkgl.Scalar
}

// FlatLayout and NaturalLayout cover two octaves from C3 to B4.
var (
	FlatLayout = []Layout{
		{"Db3", '2', 5},
		{"Eb3", '3', 15},
		{"Gb3", '5', 35},
		{"Ab3", '6', 45},
		{"Bb3", '7', 55},
		{"Db4", 's', 75},
		{"Eb4", 'd', 85},
		{"Gb4", 'g', 105},
		{"Ab4", 'h', 115},
		{"Bb4", 'j', 125},
	}
	NaturalLayout = []Layout{
		{"C3", 'q', 0},
		{"D3", 'w', 10},
		{"E3", 'e', 20},
		{"F3", 'r', 30},
		{"G3", 't', 40},
		{"A3", 'y', 50},
		{"B3", 'u', 60},
		{"C4", 'z', 70},
		{"D4", 'x', 80},
		{"E4", 'c', 90},
		{"F4", 'v', 100},
		{"G4", 'b', 110},
		{"A4", 'n', 120},
		{"B4", 'm', 130},
	}
)

// VoiceSource hands out the voice for a note.
type VoiceSource interface {
	Voice(note string) hal.Voice
}

// VoiceFunc adapts a function to VoiceSource.
type VoiceFunc func(note string) hal.Voice

func (f VoiceFunc) Voice(note string) hal.Voice { return f(note) }

// Options configures a Keyboard.
type Options struct {
	KeyOptions
	// Voices supplies a voice per note; nil means every key is silent.
	Voices VoiceSource
	// Highlight overrides the held-key color when non-zero.
	Highlight quarkgl.Color
}

// Keyboard owns the keys and the group that places them in the scene.
type Keyboard struct {
	flats     []*Key
	naturals  []*Key
	highlight quarkgl.Color
	group     *quarkgl.Node
}

// NewKeyboard builds the standard two-octave keyboard.
func NewKeyboard(opts Options) (*Keyboard, error) {
	return NewKeyboardWithLayout(FlatLayout, NaturalLayout, opts)
}

// NewKeyboardWithLayout builds a keyboard from explicit layouts. Symbols
// must be unique across both.
func NewKeyboardWithLayout(flats, naturals []Layout, opts Options) (*Keyboard, error) {
	seen := make(map[rune]string, len(flats)+len(naturals))
	for _, l := range append(append([]Layout(nil), flats...), naturals...) {
		if prev, ok := seen[l.Symbol]; ok {
			return nil, fmt.Errorf("%w: %q used by %s and %s", ErrDuplicateSymbol, l.Symbol, prev, l.Note)
		}
		seen[l.Symbol] = l.Note
	}

	kb := &Keyboard{
		highlight: Highlight,
		group:     quarkgl.NewGroup("keyboard"),
	}
	if opts.Highlight != (quarkgl.Color{}) {
		kb.highlight = opts.Highlight
	}
	build := func(ls []Layout) []*Key {
		keys := make([]*Key, 0, len(ls))
		for _, l := range ls {
			var v hal.Voice
			if opts.Voices != nil {
				v = opts.Voices.Voice(l.Note)
			}
			k := NewKey(l.Note, l.Symbol, l.Offset, v, opts.KeyOptions)
			kb.group.Add(k.Group())
			keys = append(keys, k)
		}
		return keys
	}
	kb.flats = build(flats)
	kb.naturals = build(naturals)

	kb.group.Position = quarkgl.V3(-65, 0, 0)
	kb.group.Rotation = quarkgl.QuatFromAxisAngle(quarkgl.V3(1, 0, 0), -math.Pi/4)
	return kb, nil
}

// Group returns the node holding every key.
func (kb *Keyboard) Group() *quarkgl.Node { return kb.group }

func (kb *Keyboard) Highlight() quarkgl.Color { return kb.highlight }

// KeyForSymbol returns the key bound to symbol, flats first, or nil.
func (kb *Keyboard) KeyForSymbol(symbol rune) *Key {
	for _, k := range kb.flats {
		if k.symbol == symbol {
			return k
		}
	}
	for _, k := range kb.naturals {
		if k.symbol == symbol {
			return k
		}
	}
	return nil
}

// DispatchPress presses the key bound to symbol. It reports whether a key
// was bound.
func (kb *Keyboard) DispatchPress(symbol rune) bool {
	k := kb.KeyForSymbol(symbol)
	if k == nil {
		return false
	}
	k.Press(kb.highlight)
	return true
}

// DispatchRelease releases the key bound to symbol.
func (kb *Keyboard) DispatchRelease(symbol rune) bool {
	k := kb.KeyForSymbol(symbol)
	if k == nil {
		return false
	}
	k.Release()
	return true
}

// SetAllLabelsVisible toggles the labels of the natural keys. Flat keys are
// never labelled.
func (kb *Keyboard) SetAllLabelsVisible(font tinyfont.Fonter, visible bool) {
	for _, k := range kb.naturals {
		k.SetLabelVisible(font, visible)
	}
}

// Keys returns flats then naturals, in layout order.
func (kb *Keyboard) Keys() []*Key {
	out := make([]*Key, 0, len(kb.flats)+len(kb.naturals))
	out = append(out, kb.flats...)
	return append(out, kb.naturals...)
}

// KeyForNote finds a key by note name (Db3, C4).
func (kb *Keyboard) KeyForNote(note string) *Key {
	for _, k := range kb.Keys() {
		if k.note == note {
			return k
		}
	}
	return nil
}

// PressedNotes lists the notes currently held, flats first.
func (kb *Keyboard) PressedNotes() []string {
	var out []string
	for _, k := range kb.Keys() {
		if k.state == Pressed {
			out = append(out, k.note)
		}
	}
	return out
}

// ReleaseAll releases every held key and returns how many there were.
func (kb *Keyboard) ReleaseAll() int {
	n := 0
	for _, k := range kb.Keys() {
		if k.state == Pressed {
			k.Release()
			n++
		}
	}
	return n
}
