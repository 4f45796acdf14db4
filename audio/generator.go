package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/lixenwraith/focus-alarm/constant"
)

// floatBuffer is mono float64 samples at recipe gain
type floatBuffer []float64

// waveSample returns the waveform value at phase in [0, 1)
func waveSample(w Waveform, phase float64) float64 {
	switch w {
	case WaveTriangle:
		switch {
		case phase < 0.25:
			return 4 * phase
		case phase < 0.75:
			return 2 - 4*phase
		default:
			return 4*phase - 4
		}
	case WaveSquare:
		if phase < 0.5 {
			return 1.0
		}
		return -1.0
	case WaveSaw:
		return 2.0 * (phase - 0.5)
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

// renderVoice synthesizes one voice from its own start, without offset
func renderVoice(v Voice, rate beep.SampleRate) floatBuffer {
	samples := rate.N(v.Duration)
	buf := make(floatBuffer, samples)
	sr := float64(rate)

	phase := 0.0
	for i := 0; i < samples; i++ {
		t := time.Duration(float64(i) / sr * float64(time.Second))

		freq := v.baseFreqAt(t)
		gain := gainAt(v.Envelope, t)
		if v.Mod != nil {
			lfo := v.Mod.Depth * math.Sin(2*math.Pi*v.Mod.Freq*float64(i)/sr)
			switch v.Mod.Target {
			case ModAmplitude:
				gain += lfo
			case ModFrequency:
				freq += lfo
			}
		}

		buf[i] = waveSample(v.Wave, phase) * gain

		// Phase accumulation keeps sweeps and FM continuous
		phase += freq / sr
		phase -= math.Floor(phase)
	}
	return buf
}

// mixAt adds b into a starting at offset, extending a if needed
func mixAt(a, b floatBuffer, offset int) floatBuffer {
	if need := offset + len(b); need > len(a) {
		extended := make(floatBuffer, need)
		copy(extended, a)
		a = extended
	}
	for i := range b {
		a[offset+i] += b[i]
	}
	return a
}

// synthesize renders every voice of r and sums them at their offsets
func synthesize(r Recipe, rate beep.SampleRate) floatBuffer {
	out := make(floatBuffer, rate.N(r.Duration()))
	for _, v := range r.Voices {
		out = mixAt(out, renderVoice(v, rate), rate.N(v.Offset))
	}
	return out
}

// monoStreamer plays a float buffer on both channels
type monoStreamer struct {
	buf floatBuffer
	pos int
}

func (m *monoStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if m.pos >= len(m.buf) {
		return 0, false
	}
	for n < len(samples) && m.pos < len(m.buf) {
		samples[n][0] = m.buf[m.pos]
		samples[n][1] = m.buf[m.pos]
		n++
		m.pos++
	}
	return n, true
}

func (m *monoStreamer) Err() error { return nil }

// audioFormat is the stereo 16-bit format at rate
func audioFormat(rate int) beep.Format {
	return beep.Format{
		SampleRate:  beep.SampleRate(rate),
		NumChannels: constant.AudioChannels,
		Precision:   constant.AudioPrecision,
	}
}

// renderBuffer validates and synthesizes r into a seekable beep buffer
func renderBuffer(r Recipe, rate int) (*beep.Buffer, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	format := audioFormat(rate)
	buf := beep.NewBuffer(format)
	buf.Append(&monoStreamer{buf: synthesize(r, format.SampleRate)})
	return buf, nil
}

// newVolume scales s by a linear factor
// math.Log2(0) is -Inf, so zero volume is made silent instead
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}
