package midi

import (
	"strconv"

	"pianoscape/studio/piano"
)

// Note numbers covered by the keyboard: C3 to B4.
const (
	LowNote  = 48
	HighNote = 71
)

var pitchNames = [12]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}

// NoteName spells a MIDI note number the way the keyboard names its keys
// (60 is C4).
func NoteName(key uint8) string {
	return pitchNames[key%12] + strconv.Itoa(int(key)/12-1)
}

var symbols = func() map[uint8]rune {
	byNote := make(map[string]rune, len(piano.FlatLayout)+len(piano.NaturalLayout))
	for _, l := range piano.FlatLayout {
		byNote[l.Note] = l.Symbol
	}
	for _, l := range piano.NaturalLayout {
		byNote[l.Note] = l.Symbol
	}
	m := make(map[uint8]rune, HighNote-LowNote+1)
	for k := uint8(LowNote); k <= HighNote; k++ {
		if r, ok := byNote[NoteName(k)]; ok {
			m[k] = r
		}
	}
	return m
}()

// SymbolForNote returns the key symbol bound to a MIDI note number.
func SymbolForNote(key uint8) (rune, bool) {
	r, ok := symbols[key]
	return r, ok
}
