package audio

import (
	"fmt"
	"math"
	"time"
)

// Duration returns the end of the last voice
func (r Recipe) Duration() time.Duration {
	var end time.Duration
	for _, v := range r.Voices {
		end = max(end, v.Offset+v.Duration)
	}
	return end
}

// Validate checks the recipe can be synthesized
// Exponential segments and sweeps must not start from or target a value <= 0
func (r Recipe) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidRecipe)
	}
	if len(r.Voices) == 0 {
		return fmt.Errorf("%w: %q has no voices", ErrInvalidRecipe, r.Name)
	}
	for i, v := range r.Voices {
		if err := v.validate(); err != nil {
			return fmt.Errorf("%w: %q voice %d: %v", ErrInvalidRecipe, r.Name, i, err)
		}
	}
	return nil
}

func (v Voice) validate() error {
	switch {
	case v.Wave < WaveSine || v.Wave > WaveSaw:
		return fmt.Errorf("unknown waveform %d", v.Wave)
	case !(v.Freq > 0) || math.IsInf(v.Freq, 0):
		return fmt.Errorf("frequency %v must be positive", v.Freq)
	case v.Duration <= 0:
		return fmt.Errorf("duration %v must be positive", v.Duration)
	case v.Offset < 0:
		return fmt.Errorf("offset %v is negative", v.Offset)
	case len(v.Envelope) == 0:
		return fmt.Errorf("empty envelope")
	}

	if v.Sweep != nil {
		if !(v.Sweep.To > 0) {
			return fmt.Errorf("sweep target %v must be positive", v.Sweep.To)
		}
	}
	if v.Mod != nil && !(v.Mod.Freq > 0) {
		return fmt.Errorf("modulator frequency %v must be positive", v.Mod.Freq)
	}

	prev := v.Envelope[0]
	if prev.At < 0 || math.IsNaN(prev.Gain) {
		return fmt.Errorf("breakpoint 0 invalid")
	}
	for i, bp := range v.Envelope[1:] {
		switch {
		case math.IsNaN(bp.Gain) || math.IsInf(bp.Gain, 0):
			return fmt.Errorf("breakpoint %d gain %v", i+1, bp.Gain)
		case bp.At < prev.At:
			return fmt.Errorf("breakpoint %d at %v precedes %v", i+1, bp.At, prev.At)
		case bp.At > v.Duration:
			return fmt.Errorf("breakpoint %d at %v beyond duration %v", i+1, bp.At, v.Duration)
		case bp.Curve == CurveExponential && (prev.Gain <= 0 || bp.Gain <= 0):
			return fmt.Errorf("exponential segment %v -> %v touches zero", prev.Gain, bp.Gain)
		}
		prev = bp
	}
	return nil
}

// gainAt evaluates the envelope at t from the voice start
// Holds the first value before the first breakpoint and the last value after the final one
func gainAt(env []Breakpoint, t time.Duration) float64 {
	if len(env) == 0 {
		return 0
	}
	if t <= env[0].At {
		return env[0].Gain
	}
	for i := 1; i < len(env); i++ {
		end := env[i]
		if t > end.At {
			continue
		}
		start := env[i-1]
		span := end.At - start.At
		if span <= 0 {
			return end.Gain
		}
		return interpolate(start.Gain, end.Gain, float64(t-start.At)/float64(span), end.Curve)
	}
	return env[len(env)-1].Gain
}

// interpolate moves from a to b by fraction x in [0,1]
func interpolate(a, b, x float64, curve Curve) float64 {
	if curve == CurveExponential && a > 0 && b > 0 {
		return a * math.Pow(b/a, x)
	}
	return a + (b-a)*x
}

// baseFreqAt returns the unmodulated voice frequency at t
func (v Voice) baseFreqAt(t time.Duration) float64 {
	if v.Sweep == nil || v.Duration <= 0 {
		return v.Freq
	}
	x := float64(t) / float64(v.Duration)
	x = min(max(x, 0), 1)
	return interpolate(v.Freq, v.Sweep.To, x, v.Sweep.Curve)
}
