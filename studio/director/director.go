// Package director owns the render surface, camera, lighting and the
// per-frame update of the piano scene.
package director

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"pianoscape/hal"
	"pianoscape/kernel"
	"pianoscape/studio/particles"
	"pianoscape/studio/quarkgl"
)

var (
	// ErrNoRenderSurface means the display has no RGB565 framebuffer to draw
	// into.
	ErrNoRenderSurface = errors.New("director: no render surface")
	// ErrNotRunning is returned by Tick before Setup succeeded.
	ErrNotRunning = errors.New("director: not running")
)

// State is the director's lifecycle state.
type State uint8

const (
	StateUninitialized State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "uninitialized"
}

const (
	cameraFOVDeg  = 50
	cameraNear    = 1
	cameraFar     = 1000
	minOrbitDist  = 40
	maxOrbitDist  = 600
	maxOrbitPitch = 1.4

	// CameraDistance is the camera's resting distance from the origin.
	CameraDistance = 196

	// fixedFrame advances the timers when no host clock is configured.
	fixedFrame = 16 * time.Millisecond
)

// FrameInfo describes a rendered frame for overlays.
type FrameInfo struct {
	Frame     uint64
	Tick      uint64
	Particles int
	Render    quarkgl.Stats
}

// Overlay draws on top of each rendered frame, before it is presented.
type Overlay interface {
	Draw(fb hal.Framebuffer, info FrameInfo)
}

// Config holds optional collaborators.
type Config struct {
	// Time drives the timers. Without it each Tick counts as 16ms.
	Time hal.Time
	// Seed feeds the particle spawner. Zero picks 1.
	Seed uint64
	// Overlay is drawn after the scene when set.
	Overlay Overlay
	// Background is the clear color.
	Background quarkgl.Color
}

// Director is the scene's single owner. All methods must be called from the
// render goroutine.
type Director struct {
	disp hal.Display
	cfg  Config
	log  hal.Logger

	state State
	fb    hal.Framebuffer

	scene    *quarkgl.Scene
	renderer *quarkgl.Renderer
	field    *particles.Field
	orbit    *quarkgl.OrbitController
	timers   *kernel.Timers

	lastTick      uint64
	frame         uint64
	overlayOn     bool
	pendingAttach []*quarkgl.Node
}

// New returns an uninitialized director. logger may be nil.
func New(disp hal.Display, cfg Config, logger hal.Logger) *Director {
	return &Director{
		disp:      disp,
		cfg:       cfg,
		log:       logger,
		timers:    kernel.NewTimers(),
		overlayOn: cfg.Overlay != nil,
	}
}

func (d *Director) logf(format string, args ...any) {
	if d.log == nil {
		return
	}
	d.log.WriteLineString(fmt.Sprintf("director: "+format, args...))
}

func (d *Director) surface() (hal.Framebuffer, error) {
	if d.disp == nil {
		return nil, fmt.Errorf("%w: no display", ErrNoRenderSurface)
	}
	fb := d.disp.Framebuffer()
	if fb == nil {
		return nil, fmt.Errorf("%w: no framebuffer", ErrNoRenderSurface)
	}
	if fb.Format() != hal.PixelFormatRGB565 {
		return nil, fmt.Errorf("%w: pixel format %d", ErrNoRenderSurface, fb.Format())
	}
	if fb.Width() <= 0 || fb.Height() <= 0 || len(fb.Buffer()) == 0 {
		return nil, fmt.Errorf("%w: empty framebuffer", ErrNoRenderSurface)
	}
	return fb, nil
}

// Setup builds the camera, lights, renderer and the particle field with one
// initial particle. It may be called once.
func (d *Director) Setup() error {
	if d.state == StateRunning {
		return nil
	}
	fb, err := d.surface()
	if err != nil {
		return err
	}
	d.fb = fb

	d.scene = quarkgl.NewScene()
	d.scene.Camera = quarkgl.Camera{
		Type:     quarkgl.CameraPerspective,
		Position: quarkgl.V3(0, 0, CameraDistance),
		Up:       quarkgl.V3(0, 1, 0),
		FOVYRad:  cameraFOVDeg * math.Pi / 180,
		Near:     cameraNear,
		Far:      cameraFar,
	}
	d.scene.Light = quarkgl.SpotAt(quarkgl.V3(0, 64, 32), 0.5, 0.5)

	d.orbit = &quarkgl.OrbitController{
		Radius:    CameraDistance,
		MinRadius: minOrbitDist,
		MaxRadius: maxOrbitDist,
		MaxPitch:  maxOrbitPitch,
	}

	d.renderer = quarkgl.NewRenderer(fb.Width(), fb.Height(), true)
	d.renderer.ClearColor = d.cfg.Background
	d.renderer.ClearColor.A = 0xFF

	seed := d.cfg.Seed
	if seed == 0 {
		seed = 1
	}
	d.field = particles.NewField(d.scene, rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
	d.field.SpawnOne()

	d.scene.Add(d.pendingAttach...)
	d.pendingAttach = nil

	d.state = StateRunning
	d.logf("running %dx%d", fb.Width(), fb.Height())
	return nil
}

// Attach adds nodes to the scene, or queues them until Setup.
func (d *Director) Attach(nodes ...*quarkgl.Node) {
	if d.scene == nil {
		d.pendingAttach = append(d.pendingAttach, nodes...)
		return
	}
	d.scene.Add(nodes...)
}

// SpawnHandler returns the input handler that spawns one particle per fresh
// key press. Repeats, releases and presses before Setup are ignored.
func (d *Director) SpawnHandler() func(hal.KeyEvent) {
	return func(ev hal.KeyEvent) {
		if !ev.Press || ev.Repeat || d.state != StateRunning {
			return
		}
		d.field.SpawnOne()
	}
}

// Tick advances timers and particles, applies the camera controller,
// renders the scene, draws the overlay and presents the frame.
func (d *Director) Tick() error {
	if d.state != StateRunning {
		return ErrNotRunning
	}
	fb := d.fb
	if fb == nil || len(fb.Buffer()) == 0 {
		return ErrNoRenderSurface
	}

	if d.cfg.Time != nil {
		d.lastTick = hal.LatestTick(d.cfg.Time.Ticks(), d.lastTick)
		d.timers.AdvanceTo(d.lastTick)
	} else {
		d.timers.Advance(fixedFrame)
		d.lastTick = d.timers.Now()
	}

	d.field.AdvanceAll()
	d.orbit.Apply(&d.scene.Camera)

	target := &quarkgl.RGB565Target{
		Buf:    fb.Buffer(),
		Stride: fb.StrideBytes(),
		W:      fb.Width(),
		H:      fb.Height(),
	}
	d.renderer.Render(target, d.scene)
	d.frame++

	if d.overlayOn && d.cfg.Overlay != nil {
		d.cfg.Overlay.Draw(fb, d.Info())
	}
	if err := fb.Present(); err != nil {
		return fmt.Errorf("director: present: %w", err)
	}
	return nil
}

// OnResize follows a new surface size: the framebuffer (when the host has
// not already resized it), the depth buffer and the projection aspect.
func (d *Director) OnResize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	fb := d.fb
	if fb == nil && d.disp != nil {
		fb = d.disp.Framebuffer()
	}
	if rf, ok := fb.(hal.ResizableFramebuffer); ok && (rf.Width() != w || rf.Height() != h) {
		rf.Resize(w, h)
	}
	if d.renderer != nil {
		d.renderer.Resize(w, h)
	}
	if d.scene != nil {
		d.scene.Camera.Aspect = quarkgl.Scalar(w) / quarkgl.Scalar(h)
	}
	d.logf("resize %dx%d", w, h)
}

// Info reports counters of the last frame.
func (d *Director) Info() FrameInfo {
	info := FrameInfo{Frame: d.frame, Tick: d.lastTick}
	if d.field != nil {
		info.Particles = d.field.Len()
	}
	if d.renderer != nil {
		info.Render = d.renderer.Stats()
	}
	return info
}

// SetOverlayVisible toggles the overlay; it has no effect without one.
func (d *Director) SetOverlayVisible(on bool) { d.overlayOn = on && d.cfg.Overlay != nil }

func (d *Director) OverlayVisible() bool { return d.overlayOn }

func (d *Director) State() State { return d.state }

// Timers is the queue fired at the start of every Tick.
func (d *Director) Timers() *kernel.Timers { return d.timers }

// Orbit returns the camera controller, nil before Setup.
func (d *Director) Orbit() *quarkgl.OrbitController { return d.orbit }

// Scene returns the scene, nil before Setup.
func (d *Director) Scene() *quarkgl.Scene { return d.scene }

// Framebuffer returns the render surface, nil before Setup.
func (d *Director) Framebuffer() hal.Framebuffer { return d.fb }

// Field returns the particle field, nil before Setup.
func (d *Director) Field() *particles.Field { return d.field }
