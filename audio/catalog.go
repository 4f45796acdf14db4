package audio

import (
	"fmt"
	"time"
)

// DefaultSound is the recipe used when a sound id is unknown
const DefaultSound = "Default Beep"

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// lin and exp build breakpoints; the first breakpoint's curve is ignored
func lin(atMs int, gain float64) Breakpoint {
	return Breakpoint{At: ms(atMs), Gain: gain, Curve: CurveLinear}
}

func exp(atMs int, gain float64) Breakpoint {
	return Breakpoint{At: ms(atMs), Gain: gain, Curve: CurveExponential}
}

// pluck is a linear attack to peak followed by an exponential decay to the floor
func pluck(wave Waveform, freq float64, peak float64, attackMs, durMs int) Voice {
	return Voice{
		Wave:     wave,
		Freq:     freq,
		Duration: ms(durMs),
		Envelope: []Breakpoint{lin(0, 0), lin(attackMs, peak), exp(durMs, 0.01)},
	}
}

var builtinRecipes = []Recipe{
	{
		Name:        DefaultSound,
		Description: "Plain 800 Hz beep with a soft attack",
		Voices: []Voice{{
			Wave: WaveSine, Freq: 800, Duration: ms(500),
			Envelope: []Breakpoint{lin(0, 0), lin(100, 0.3), lin(500, 0)},
		}},
	},
	{
		Name:        "Quick Bell",
		Description: "Bright metallic strike with stacked overtones",
		Voices: []Voice{
			pluck(WaveSine, 1760, 0.28, 3, 220),
			pluck(WaveSine, 2640, 0.20, 3, 220),
			pluck(WaveSine, 3520, 0.14, 3, 220),
			pluck(WaveSine, 5280, 0.08, 3, 220),
		},
	},
	{
		Name:        "Gentle Ping",
		Description: "Short soft A5 ping",
		Voices:      []Voice{pluck(WaveSine, 880, 0.15, 10, 300)},
	},
	{
		Name:        "Water Drop",
		Description: "Falling glide from 800 to 400 Hz",
		Voices: []Voice{{
			Wave: WaveSine, Freq: 800, Duration: ms(400),
			Sweep:    &Sweep{To: 400, Curve: CurveExponential},
			Envelope: []Breakpoint{lin(0, 0), lin(10, 0.2), exp(400, 0.01)},
		}},
	},
	{
		Name:        "Wind Chime",
		Description: "Four staggered triangle chimes, C major",
		Voices:      windChime(),
	},
	{
		Name:        "Marimba",
		Description: "Warm wooden A4 strike",
		Voices:      []Voice{pluck(WaveTriangle, 440, 0.25, 20, 800)},
	},
	{
		Name:        "Calm Ding",
		Description: "Mellow F5 ding",
		Voices:      []Voice{pluck(WaveSine, 698, 0.18, 30, 600)},
	},
	{
		Name:        "Radar",
		Description: "Rising glide from 800 to 1200 Hz",
		Voices: []Voice{{
			Wave: WaveSine, Freq: 800, Duration: ms(800),
			Sweep:    &Sweep{To: 1200, Curve: CurveExponential},
			Envelope: []Breakpoint{lin(0, 0), lin(100, 0.3), lin(400, 0.2), lin(600, 0.1), lin(800, 0)},
		}},
	},
	{
		Name:        "Beacon",
		Description: "600 Hz tone pulsing at 2 Hz",
		Voices: []Voice{{
			Wave: WaveSine, Freq: 600, Duration: ms(1200),
			Mod:      &Modulator{Freq: 2, Depth: 0.3, Target: ModAmplitude},
			Envelope: []Breakpoint{lin(0, 0.4), lin(1200, 0)},
		}},
	},
	{
		Name:        "Bulletin",
		Description: "Sharp 1 kHz attack with a long fade",
		Voices: []Voice{{
			Wave: WaveSine, Freq: 1000, Duration: ms(1000),
			Envelope: []Breakpoint{lin(0, 0), lin(50, 0.4), lin(200, 0.3), lin(1000, 0)},
		}},
	},
	{
		Name:        "Signal",
		Description: "1.2 kHz tone with a 4 Hz warble",
		Voices: []Voice{{
			Wave: WaveSine, Freq: 1200, Duration: ms(600),
			Mod:      &Modulator{Freq: 4, Depth: 50, Target: ModFrequency},
			Envelope: []Breakpoint{lin(0, 0), lin(100, 0.3), lin(600, 0)},
		}},
	},
	{
		Name:        "Hillside",
		Description: "Low 400 Hz tone with slow vibrato",
		Voices: []Voice{{
			Wave: WaveSine, Freq: 400, Duration: ms(1500),
			Mod:      &Modulator{Freq: 6, Depth: 20, Target: ModFrequency},
			Envelope: []Breakpoint{lin(0, 0), lin(300, 0.3), lin(1500, 0)},
		}},
	},
	{
		Name:        "Playtime",
		Description: "800 Hz tone with fast tremolo",
		Voices: []Voice{{
			Wave: WaveSine, Freq: 800, Duration: ms(800),
			Mod:      &Modulator{Freq: 12, Depth: 0.2, Target: ModAmplitude},
			Envelope: []Breakpoint{lin(0, 0.3), lin(800, 0)},
		}},
	},
	{
		Name:        "Sencha",
		Description: "Deep 300 Hz swell with gentle vibrato",
		Voices: []Voice{{
			Wave: WaveSine, Freq: 300, Duration: ms(2000),
			Mod:      &Modulator{Freq: 2, Depth: 10, Target: ModFrequency},
			Envelope: []Breakpoint{lin(0, 0), lin(400, 0.25), lin(2000, 0)},
		}},
	},
}

func windChime() []Voice {
	notes := []float64{659, 784, 880, 1047} // E5 G5 A5 C6
	voices := make([]Voice, len(notes))
	for i, f := range notes {
		v := pluck(WaveTriangle, f, 0.12, 50, 1200)
		v.Offset = time.Duration(i) * 80 * time.Millisecond
		voices[i] = v
	}
	return voices
}

// Catalog is an immutable, ordered recipe table
type Catalog struct {
	order   []string
	recipes map[string]Recipe
	def     string
}

// NewCatalog validates recipes and indexes them by exact name
// The first recipe is the fallback unless one is named DefaultSound
func NewCatalog(recipes ...Recipe) (*Catalog, error) {
	if len(recipes) == 0 {
		return nil, fmt.Errorf("%w: empty catalog", ErrInvalidRecipe)
	}
	c := &Catalog{
		order:   make([]string, 0, len(recipes)),
		recipes: make(map[string]Recipe, len(recipes)),
		def:     recipes[0].Name,
	}
	for _, r := range recipes {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.recipes[r.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidRecipe, r.Name)
		}
		c.order = append(c.order, r.Name)
		c.recipes[r.Name] = r
		if r.Name == DefaultSound {
			c.def = r.Name
		}
	}
	return c, nil
}

var defaultCatalog = mustCatalog(builtinRecipes...)

func mustCatalog(recipes ...Recipe) *Catalog {
	c, err := NewCatalog(recipes...)
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultCatalog returns the built-in sounds
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// Lookup returns the recipe for id, or the default recipe when id is unknown
func (c *Catalog) Lookup(id string) Recipe {
	if r, ok := c.recipes[id]; ok {
		return r
	}
	return c.recipes[c.def]
}

// Resolve returns the effective sound name for id
func (c *Catalog) Resolve(id string) string {
	if _, ok := c.recipes[id]; ok {
		return id
	}
	return c.def
}

// Has reports whether id names a recipe exactly
func (c *Catalog) Has(id string) bool {
	_, ok := c.recipes[id]
	return ok
}

// Default returns the fallback sound name
func (c *Catalog) Default() string {
	return c.def
}

// Names returns recipe names in catalog order
func (c *Catalog) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Recipes returns recipes in catalog order
func (c *Catalog) Recipes() []Recipe {
	out := make([]Recipe, len(c.order))
	for i, name := range c.order {
		out[i] = c.recipes[name]
	}
	return out
}

// Next returns the name after id, wrapping; step may be negative
func (c *Catalog) Next(id string, step int) string {
	n := len(c.order)
	idx := 0
	for i, name := range c.order {
		if name == id {
			idx = i
			break
		}
	}
	return c.order[((idx+step)%n+n)%n]
}
