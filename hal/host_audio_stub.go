//go:build !cgo

package hal

// Without cgo there is no audio device; voices are silent.
func newHostAudio(sampleRate int) Audio { return silentAudio{rate: sampleRate} }
