// Command samplecheck decodes the sample of every piano key and reports the
// notes that would play silently.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"pianoscape/studio/piano"
	"pianoscape/studio/samples"

	"gopkg.in/alecthomas/kingpin.v2"
)

type result struct {
	note   string
	path   string
	frames int
	err    error
}

func check(dir string, rate int, notes []string) []result {
	out := make([]result, 0, len(notes))
	for _, note := range notes {
		r := result{note: note}
		path, ok := samples.Find(dir, note)
		if !ok {
			r.err = fmt.Errorf("no %s.mp3 or %s.wav", note, note)
			out = append(out, r)
			continue
		}
		r.path = path
		pcm, err := samples.DecodeFile(path, rate)
		if err != nil {
			r.err = err
		} else {
			r.frames = len(pcm) / 4
		}
		out = append(out, r)
	}
	return out
}

func report(w io.Writer, rate int, results []result) (failed int) {
	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Fprintf(w, "FAIL %-4s %v\n", r.note, r.err)
			continue
		}
		d := time.Duration(r.frames) * time.Second / time.Duration(rate)
		fmt.Fprintf(w, "ok   %-4s %s %v\n", r.note, r.path, d.Round(time.Millisecond))
	}
	fmt.Fprintf(w, "%d of %d samples usable\n", len(results)-failed, len(results))
	return failed
}

func allNotes() []string {
	var notes []string
	for _, l := range piano.FlatLayout {
		notes = append(notes, l.Note)
	}
	for _, l := range piano.NaturalLayout {
		notes = append(notes, l.Note)
	}
	return notes
}

func main() {
	var (
		dir  = kingpin.Arg("dir", "Samples directory.").Default("samples").ExistingDir()
		rate = kingpin.Flag("rate", "Output sample rate.").Short('r').Default("44100").Int()
	)
	kingpin.Parse()

	if *rate <= 0 {
		fatalf("rate must be positive")
	}
	if failed := report(os.Stdout, *rate, check(*dir, *rate, allNotes())); failed > 0 {
		os.Exit(1)
	}
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}
