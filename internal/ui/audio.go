package ui

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// SoundType names a sound effect.
type SoundType int

const (
	SoundDrop SoundType = iota
	SoundInvalid
	SoundHint
	SoundWin
	SoundLoss
	SoundTie
)

const sampleRate = 44100

// AudioManager plays procedurally generated sound effects.
type AudioManager struct {
	context *audio.Context
	sounds  map[SoundType][]byte
	enabled bool
	volume  float64
}

// NewAudioManager creates an audio manager and synthesizes every effect.
func NewAudioManager() *AudioManager {
	am := &AudioManager{
		context: audio.NewContext(sampleRate),
		sounds:  make(map[SoundType][]byte),
		enabled: true,
		volume:  0.5,
	}
	am.generateSounds()
	return am
}

func (am *AudioManager) generateSounds() {
	// A disc landing: a low knock with a fast decay.
	am.sounds[SoundDrop] = synth(0.09, func(t, _ float64) float64 {
		return (math.Sin(2*math.Pi*180*t) + 0.4*math.Sin(2*math.Pi*95*t)) * math.Exp(-t*40) * 0.5
	})
	am.sounds[SoundInvalid] = synth(0.12, func(t, p float64) float64 {
		return (math.Sin(2*math.Pi*140*t) + 0.3*math.Sin(4*math.Pi*140*t)) * (1 - p) * 0.2
	})
	am.sounds[SoundHint] = synth(0.15, func(t, p float64) float64 {
		return math.Sin(2*math.Pi*880*t) * attackDecay(p) * 0.3
	})
	am.sounds[SoundWin] = arpeggio([]float64{523.25, 659.25, 783.99, 1046.5}, 0.12)
	am.sounds[SoundLoss] = arpeggio([]float64{392.00, 311.13, 261.63}, 0.16)
	am.sounds[SoundTie] = chord([]float64{261.63, 329.63, 392.00}, 0.45)
}

// synth renders a mono wave to 16-bit little-endian stereo. wave receives
// the time in seconds and the progress in [0, 1).
func synth(duration float64, wave func(t, progress float64) float64) []byte {
	samples := int(sampleRate * duration)
	data := make([]byte, samples*4)
	for i := 0; i < samples; i++ {
		t := float64(i) / sampleRate
		v := wave(t, t/duration)
		v = math.Max(-1, math.Min(1, v))
		val := int16(v * 32767)
		data[i*4] = byte(val)
		data[i*4+1] = byte(val >> 8)
		data[i*4+2] = byte(val)
		data[i*4+3] = byte(val >> 8)
	}
	return data
}

func attackDecay(p float64) float64 {
	if p < 0.1 {
		return p / 0.1
	}
	return 1.0 - (p-0.1)/0.9
}

func arpeggio(freqs []float64, step float64) []byte {
	var out []byte
	for _, f := range freqs {
		out = append(out, synth(step, func(t, p float64) float64 {
			return math.Sin(2*math.Pi*f*t) * attackDecay(p) * 0.35
		})...)
	}
	return out
}

func chord(freqs []float64, duration float64) []byte {
	return synth(duration, func(t, p float64) float64 {
		var sum float64
		for _, f := range freqs {
			sum += math.Sin(2 * math.Pi * f * t)
		}
		env := 1.0
		switch {
		case p < 0.1:
			env = p / 0.1
		case p > 0.7:
			env = (1.0 - p) / 0.3
		}
		return sum / float64(len(freqs)) * env * 0.45
	})
}

// Play plays a sound effect. Sounds may overlap.
func (am *AudioManager) Play(sound SoundType) {
	if am == nil || !am.enabled {
		return
	}
	data, ok := am.sounds[sound]
	if !ok {
		return
	}
	player := am.context.NewPlayerFromBytes(data)
	player.SetVolume(am.volume)
	player.Play()
}

// SetEnabled enables or disables audio.
func (am *AudioManager) SetEnabled(enabled bool) {
	am.enabled = enabled
}

// IsEnabled reports whether audio is on.
func (am *AudioManager) IsEnabled() bool {
	return am.enabled
}
