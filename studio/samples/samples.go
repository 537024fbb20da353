// Package samples turns the per-note piano recordings into hal voices.
//
// Files are looked up as <dir>/<note>.mp3, then <dir>/<note>.wav, decoded
// with beep, resampled to the output rate and kept as 16-bit little-endian
// stereo PCM.
package samples

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"pianoscape/hal"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/wav"
)

// ErrUnsupportedFormat is returned for files that are neither mp3 nor wav.
var ErrUnsupportedFormat = errors.New("unsupported sample format")

// Extensions lists the accepted file extensions in lookup order.
var Extensions = []string{".mp3", ".wav"}

const (
	resampleQuality = 4
	chunkFrames     = 1024
	bytesPerFrame   = 4
)

// Decode reads one encoded sample. ext selects the decoder (".mp3" or
// ".wav"). The result is PCM at rate Hz.
func Decode(rc io.ReadCloser, ext string, rate int) ([]byte, error) {
	var (
		s      beep.StreamSeekCloser
		format beep.Format
		err    error
	)
	switch strings.ToLower(ext) {
	case ".mp3":
		s, format, err = mp3.Decode(rc)
	case ".wav":
		s, format, err = wav.Decode(rc)
	default:
		rc.Close()
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("decode %s: %w", ext, err)
	}
	defer s.Close()

	var src beep.Streamer = s
	if int(format.SampleRate) != rate {
		src = beep.Resample(resampleQuality, format.SampleRate, beep.SampleRate(rate), s)
	}
	return encodePCM(src, s.Len(), format.SampleRate, rate)
}

func encodePCM(src beep.Streamer, frames int, from beep.SampleRate, rate int) ([]byte, error) {
	out := beep.Format{SampleRate: beep.SampleRate(rate), NumChannels: 2, Precision: 2}
	est := frames
	if from > 0 && int(from) != rate {
		est = int(int64(frames) * int64(rate) / int64(from))
	}
	pcm := make([]byte, 0, (est+1)*bytesPerFrame)

	buf := make([][2]float64, chunkFrames)
	var frame [bytesPerFrame]byte
	for {
		n, ok := src.Stream(buf)
		for _, smp := range buf[:n] {
			out.EncodeSigned(frame[:], smp)
			pcm = append(pcm, frame[:]...)
		}
		if !ok {
			break
		}
	}
	if err := src.Err(); err != nil {
		return nil, err
	}
	return pcm, nil
}

// DecodeFile decodes the file at path by its extension.
func DecodeFile(path string, rate int) ([]byte, error) {
	ext := filepath.Ext(path)
	known := false
	for _, e := range Extensions {
		if strings.EqualFold(e, ext) {
			known = true
		}
	}
	if !known {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	pcm, err := Decode(f, ext, rate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pcm, nil
}

// Find returns the first existing sample file for note in dir.
func Find(dir, note string) (string, bool) {
	for _, ext := range Extensions {
		p := filepath.Join(dir, note+ext)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, true
		}
	}
	return "", false
}

// Bank hands out one voice per note, decoding on first use. Notes whose
// sample is missing or broken get a silent voice and a single log line.
type Bank struct {
	dir   string
	audio hal.Audio
	log   hal.Logger

	mu     sync.Mutex
	voices map[string]hal.Voice
}

func NewBank(dir string, audio hal.Audio, logger hal.Logger) *Bank {
	return &Bank{
		dir:    dir,
		audio:  audio,
		log:    logger,
		voices: make(map[string]hal.Voice),
	}
}

func (b *Bank) logf(format string, args ...any) {
	if b.log != nil {
		b.log.WriteLineString(fmt.Sprintf("samples: "+format, args...))
	}
}

// Voice returns the voice for note. The same voice is returned on every call.
func (b *Bank) Voice(note string) hal.Voice {
	b.mu.Lock()
	defer b.mu.Unlock()
	if v, ok := b.voices[note]; ok {
		return v
	}
	v, err := b.load(note)
	if err != nil {
		b.logf("%s: %v; key is silent", note, err)
		v = hal.SilentVoice{}
	}
	b.voices[note] = v
	return v
}

func (b *Bank) load(note string) (hal.Voice, error) {
	if b.audio == nil {
		return nil, errors.New("no audio output")
	}
	if b.dir == "" {
		return nil, errors.New("no samples directory")
	}
	path, ok := Find(b.dir, note)
	if !ok {
		return nil, fmt.Errorf("no %s.mp3 or %s.wav in %s", note, note, b.dir)
	}
	pcm, err := DecodeFile(path, b.audio.SampleRate())
	if err != nil {
		return nil, err
	}
	return b.audio.NewVoice(pcm)
}

// Preload decodes every note up front so the first press does not stall.
func (b *Bank) Preload(notes []string) (silent int) {
	for _, n := range notes {
		if _, ok := b.Voice(n).(hal.SilentVoice); ok {
			silent++
		}
	}
	return silent
}
