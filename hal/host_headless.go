package hal

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Hz    int
	Ticks uint64
	// FixedStep advances the host clock by exactly 1/Hz per frame instead
	// of by wall-clock time, for reproducible runs.
	FixedStep bool
	// Script injects key events before the frame with the matching index
	// (frames count from 1). It must be sorted by Frame.
	Script []ScriptedKey
}

// ScriptedKey is a key event delivered at a given frame.
type ScriptedKey struct {
	Frame uint64
	Event KeyEvent
}

// RunHeadless runs the app without a window or terminal. Audio is silent.
func RunHeadless(ctx context.Context, cfg HostConfig, hcfg HeadlessConfig, newApp func(HAL) (App, error)) error {
	if hcfg.Hz <= 0 {
		hcfg.Hz = 60
	}

	h := newHost(cfg, false)
	app, err := newApp(h)
	if err != nil {
		return err
	}

	d := time.Second / time.Duration(hcfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", hcfg.Hz)
	}
	t := time.NewTicker(d)
	defer t.Stop()

	var frame uint64
	script := hcfg.Script
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			frame++
			for len(script) > 0 && script[0].Frame <= frame {
				h.kbd.emit(script[0].Event)
				script = script[1:]
			}
			if hcfg.FixedStep {
				h.t.stepFixed(d)
			} else {
				h.t.step()
			}
			if err := app.Step(); err != nil {
				if errors.Is(err, ErrQuit) {
					return nil
				}
				return err
			}
			if hcfg.Ticks > 0 && frame >= hcfg.Ticks {
				return nil
			}
		}
	}
}
