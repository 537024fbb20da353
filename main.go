package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"time"

	"pianoscape/app"
	"pianoscape/hal"
	"pianoscape/internal/buildinfo"
	"pianoscape/studio/fonts"

	"github.com/joho/godotenv"
	"gopkg.in/alecthomas/kingpin.v2"
)

type options struct {
	headless bool
	terminal bool
	envFile  string

	hz     int
	ticks  uint64
	hold   time.Duration
	width  int
	height int
	scale  int

	app app.Config
}

func newCLI() (*kingpin.Application, *options) {
	o := &options{}
	cli := kingpin.New("pianoscape", "A 3D piano you play from the keyboard.")
	cli.Version(buildinfo.Long())
	cli.HelpFlag.Short('h')

	flag := func(name, help string) *kingpin.FlagClause {
		env := "PIANOSCAPE_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
		return cli.Flag(name, help).Envar(env)
	}

	flag("headless", "Run without a window or terminal.").BoolVar(&o.headless)
	flag("terminal", "Draw into the terminal with half-block cells.").Short('t').BoolVar(&o.terminal)
	flag("env-file", "Load defaults from this dotenv file.").Default(".env").StringVar(&o.envFile)
	flag("hz", "Frame rate of the headless and terminal runners.").Default("60").IntVar(&o.hz)
	flag("ticks", "Stop the headless runner after N frames (0 = forever).").Default("0").Uint64Var(&o.ticks)
	flag("hold", "Terminal key hold before a release is synthesised.").Default("600ms").DurationVar(&o.hold)
	flag("width", "Framebuffer width in pixels.").Default("480").IntVar(&o.width)
	flag("height", "Framebuffer height in pixels.").Default("320").IntVar(&o.height)
	flag("scale", "Window pixel scale.").Default("2").IntVar(&o.scale)

	flag("samples", "Directory of <note>.mp3 or <note>.wav samples.").Short('s').Default("samples").StringVar(&o.app.SamplesDir)
	flag("font", fmt.Sprintf("Label font (%s).", strings.Join(fonts.Names(), ", "))).Default(fonts.Default).EnumVar(&o.app.Font, fonts.Names()...)
	flag("labels", "Show note labels on the white keys.").Default("true").BoolVar(&o.app.Labels)
	flag("stop-on-release", "Stop the sample when its key is released.").BoolVar(&o.app.StopOnRelease)
	flag("auto-stop", "Longest a sample may ring.").Default("150s").DurationVar(&o.app.AutoStop)
	flag("hud", "Show frame counters and the note log.").BoolVar(&o.app.HUD)
	flag("midi", "Connect the first MIDI input.").BoolVar(&o.app.MIDI)
	flag("seed", "Seed of the background circles.").Default("1").Uint64Var(&o.app.Seed)
	return cli, o
}

// envFileArg finds --env-file in args before kingpin runs, so the file can
// seed the environment the flags read.
func envFileArg(args []string) (path string, explicit bool) {
	for i, a := range args {
		switch {
		case a == "--":
			return ".env", false
		case a == "--env-file" && i+1 < len(args):
			return args[i+1], true
		case strings.HasPrefix(a, "--env-file="):
			return strings.TrimPrefix(a, "--env-file="), true
		}
	}
	if p := os.Getenv("PIANOSCAPE_ENV_FILE"); p != "" {
		return p, true
	}
	return ".env", false
}

func loadEnv(args []string) error {
	path, explicit := envFileArg(args)
	err := godotenv.Load(path)
	if err != nil && !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("env file %s: %w", path, err)
	}
	return nil
}

func main() {
	args := os.Args[1:]
	if err := loadEnv(args); err != nil {
		fatalf("%v", err)
	}
	cli, o := newCLI()
	if _, err := cli.Parse(args); err != nil {
		fatalf("%v", err)
	}
	if err := run(o); err != nil {
		fatalf("%v", err)
	}
}

func run(o *options) error {
	host := hal.HostConfig{
		Width:  o.width,
		Height: o.height,
		Scale:  o.scale,
		Title:  "pianoscape " + buildinfo.Short(),
	}

	mode := "window"
	switch {
	case o.headless:
		mode = "headless"
	case o.terminal:
		mode = "terminal"
	}
	hal.NewLogger(os.Stderr).WriteLineString(fmt.Sprintf("pianoscape %s starting mode=%s samples=%s", buildinfo.Short(), mode, o.app.SamplesDir))

	var a *app.App
	newApp := func(h hal.HAL) (hal.App, error) {
		var err error
		a, err = app.New(h, o.app)
		if err != nil {
			return nil, err
		}
		return a, nil
	}
	defer func() {
		if a != nil {
			a.Close()
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch mode {
	case "headless":
		err = hal.RunHeadless(ctx, host, hal.HeadlessConfig{Hz: o.hz, Ticks: o.ticks}, newApp)
	case "terminal":
		err = hal.RunTerminal(ctx, host, hal.TerminalConfig{Hz: o.hz, HoldTimeout: o.hold}, newApp)
	default:
		err = hal.RunWindow(host, newApp)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, "pianoscape: "+format+"\n", args...)
	os.Exit(1)
}
