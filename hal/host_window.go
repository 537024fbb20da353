//go:build cgo

package hal

import (
	"errors"
	"fmt"
	"image"

	"pianoscape/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunWindow opens a resizable desktop window that displays the framebuffer,
// forwards keyboard input and plays audio. It blocks until the window
// closes or the app returns ErrQuit.
func RunWindow(cfg HostConfig, newApp func(HAL) (App, error)) error {
	h := newHost(cfg, true)
	app, err := newApp(h)
	if err != nil {
		return err
	}

	g := &hostGame{h: h, app: app, scale: h.cfg.Scale}
	ebiten.SetWindowTitle(fmt.Sprintf("%s (%s)", h.cfg.Title, buildinfo.Short()))
	ebiten.SetWindowSize(h.fb.width*g.scale, h.fb.height*g.scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type hostGame struct {
	h       *hostHAL
	app     App
	scale   int
	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []byte
}

func (g *hostGame) Update() error {
	g.h.kbd.poll()
	g.h.t.step()
	if err := g.app.Step(); err != nil {
		if errors.Is(err, ErrQuit) {
			return ebiten.Termination
		}
		return err
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	if g.img == nil || g.img.Bounds().Dx() != fb.width || g.img.Bounds().Dy() != fb.height {
		g.img = image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
		g.scratch = make([]byte, len(fb.buf))
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(fb.width, fb.height)
	}

	fb.snapshotRGB565(g.scratch)

	src := g.scratch
	dst := g.img.Pix
	for i := 0; i+1 < len(src) && i/2*4+3 < len(dst); i += 2 {
		r, gg, b := rgb888From565(uint16(src[i]) | uint16(src[i+1])<<8)
		j := (i / 2) * 4
		dst[j+0] = r
		dst[j+1] = gg
		dst[j+2] = b
		dst[j+3] = 0xFF
	}

	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

// Layout follows the window size: the framebuffer is the window divided by
// the pixel scale, and the app hears about every change.
func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.h.resize(g.app, outsideWidth/g.scale, outsideHeight/g.scale)
	return g.h.fb.width, g.h.fb.height
}
