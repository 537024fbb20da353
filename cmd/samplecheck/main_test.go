package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheckReportsMissingAndBroken(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "D3.wav"), []byte("not a wav"), 0o644); err != nil {
		t.Fatal(err)
	}
	results := check(dir, 44100, []string{"C3", "D3"})
	if len(results) != 2 || results[0].err == nil || results[1].err == nil {
		t.Fatalf("results = %+v", results)
	}
	if results[1].path == "" {
		t.Fatal("D3 path not recorded")
	}

	var out bytes.Buffer
	if failed := report(&out, 44100, results); failed != 2 {
		t.Fatalf("failed = %d, want 2", failed)
	}
	if !strings.Contains(out.String(), "0 of 2 samples usable") {
		t.Fatalf("report = %q", out.String())
	}
}

func TestAllNotes(t *testing.T) {
	notes := allNotes()
	if len(notes) != 24 || notes[0] != "Db3" || notes[len(notes)-1] != "B4" {
		t.Fatalf("allNotes() = %v", notes)
	}
}
