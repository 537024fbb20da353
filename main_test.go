package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEnvFileArg(t *testing.T) {
	t.Setenv("PIANOSCAPE_ENV_FILE", "")
	tests := []struct {
		args     []string
		want     string
		explicit bool
	}{
		{nil, ".env", false},
		{[]string{"--hud", "--env-file", "dev.env"}, "dev.env", true},
		{[]string{"--env-file=ci.env"}, "ci.env", true},
		{[]string{"--", "--env-file", "x"}, ".env", false},
	}
	for _, tt := range tests {
		got, explicit := envFileArg(tt.args)
		if got != tt.want || explicit != tt.explicit {
			t.Fatalf("envFileArg(%q) = %q, %v; want %q, %v", tt.args, got, explicit, tt.want, tt.explicit)
		}
	}
}

func TestCLIDefaults(t *testing.T) {
	cli, o := newCLI()
	if _, err := cli.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if o.hz != 60 || o.width != 480 || o.height != 320 || o.hold != 600*time.Millisecond {
		t.Fatalf("options = %+v", o)
	}
	if !o.app.Labels || o.app.Font != "helvetiker_bold" || o.app.AutoStop != 150*time.Second || o.app.Seed != 1 {
		t.Fatalf("app config = %+v", o.app)
	}
}

func TestCLIFlagsAndEnv(t *testing.T) {
	t.Setenv("PIANOSCAPE_HZ", "30")
	t.Setenv("PIANOSCAPE_STOP_ON_RELEASE", "true")
	cli, o := newCLI()
	if _, err := cli.Parse([]string{"--headless", "--ticks", "10", "--no-labels", "--font", "proggy"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !o.headless || o.ticks != 10 || o.hz != 30 {
		t.Fatalf("options = %+v", o)
	}
	if o.app.Labels || !o.app.StopOnRelease || o.app.Font != "proggy" {
		t.Fatalf("app config = %+v", o.app)
	}

	cli, _ = newCLI()
	if _, err := cli.Parse([]string{"--font", "comic"}); err == nil {
		t.Fatal("unknown font accepted")
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("PIANOSCAPE_SEED=42\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PIANOSCAPE_ENV_FILE", "")
	t.Setenv("PIANOSCAPE_SEED", "")
	os.Unsetenv("PIANOSCAPE_SEED")

	if err := loadEnv([]string{"--env-file", path}); err != nil {
		t.Fatalf("loadEnv: %v", err)
	}
	cli, o := newCLI()
	if _, err := cli.Parse(nil); err != nil {
		t.Fatal(err)
	}
	if o.app.Seed != 42 {
		t.Fatalf("seed = %d, want 42 from the env file", o.app.Seed)
	}

	if err := loadEnv([]string{"--env-file", filepath.Join(dir, "missing.env")}); err == nil {
		t.Fatal("missing explicit env file accepted")
	}
}
