//go:build cgo

package hal

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// hostAudio plays voices through Ebiten's audio context. Only one context may
// exist per process.
type hostAudio struct {
	ctx  *audio.Context
	rate int
}

func newHostAudio(sampleRate int) Audio {
	return &hostAudio{ctx: audio.NewContext(sampleRate), rate: sampleRate}
}

func (a *hostAudio) SampleRate() int { return a.rate }

// NewVoice wraps pcm (16-bit little-endian stereo at SampleRate) in a player.
func (a *hostAudio) NewVoice(pcm []byte) (Voice, error) {
	if len(pcm) < 4 {
		return nil, errors.New("host audio: empty sample")
	}
	return &hostVoice{p: a.ctx.NewPlayerFromBytes(pcm)}, nil
}

type hostVoice struct {
	p *audio.Player
}

func (v *hostVoice) Start() {
	_ = v.p.SetPosition(0)
	v.p.Play()
}

func (v *hostVoice) Stop() {
	if v.p.IsPlaying() {
		v.p.Pause()
	}
}
