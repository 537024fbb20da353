// Package fonts resolves label and overlay fonts by name and delivers them
// asynchronously through a callback.
package fonts

import (
	"errors"
	"fmt"
	"sort"

	"pianoscape/hal"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"
	"tinygo.org/x/tinyfont/freesans"
	"tinygo.org/x/tinyfont/proggy"
)

// ErrUnknownFont is returned for names missing from the registry.
var ErrUnknownFont = errors.New("unknown font")

// Default is the label font.
const Default = "helvetiker_bold"

var registry = map[string]*tinyfont.Font{
	"helvetiker_bold": &freesans.Bold12pt7b,
	"freesans":        &freesans.Bold12pt7b,
	"freemono":        &freemono.Bold9pt7b,
	"proggy":          &proggy.TinySZ8pt7b,
}

// Lookup returns the registered font.
func Lookup(name string) (*tinyfont.Font, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFont, name)
	}
	return f, nil
}

// Names lists the registered fonts, sorted.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Poster runs fn on the render goroutine at some later point.
type Poster func(fn func())

// Loader resolves fonts off the render goroutine and posts the callback
// back to it.
type Loader struct {
	post Poster
	log  hal.Logger
}

func NewLoader(post Poster, logger hal.Logger) *Loader {
	return &Loader{post: post, log: logger}
}

// Load resolves name in the background. On success fn is posted with the
// font; on failure the error is logged and fn is never called.
func (l *Loader) Load(name string, fn func(tinyfont.Fonter)) {
	go func() {
		f, err := Lookup(name)
		if err != nil {
			if l.log != nil {
				l.log.WriteLineString("fonts: load: " + err.Error())
			}
			return
		}
		if _, _, err := LineMetrics(f); err != nil {
			if l.log != nil {
				l.log.WriteLineString(fmt.Sprintf("fonts: %s: %v", name, err))
			}
			return
		}
		l.post(func() { fn(f) })
	}()
}
