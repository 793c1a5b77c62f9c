package colormap

import (
	"math/rand/v2"

	"github.com/lucasb-eyer/go-colorful"
)

// Generator supplies the initial color for each mineral.
type Generator interface {
	Next() RGB
}

// Random draws each channel uniformly from [0, 255].
type Random struct {
	rng *rand.Rand
}

// NewRandom returns an unseeded uniform generator. Every process gets a
// different sequence.
func NewRandom() *Random {
	return &Random{}
}

// NewSeededRandom returns a uniform generator with a reproducible sequence.
func NewSeededRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (g *Random) Next() RGB {
	return RGB{R: g.channel(), G: g.channel(), B: g.channel()}
}

func (g *Random) channel() uint8 {
	if g.rng == nil {
		return uint8(rand.IntN(256))
	}
	return uint8(g.rng.IntN(256))
}

// Vivid draws saturated, mid-to-bright colors in HSV space. Neighbouring
// minerals are easier to tell apart than with uniform RGB draws.
type Vivid struct {
	rng *rand.Rand
}

// NewVivid returns a vivid generator seeded with seed. A zero seed picks a
// random one.
func NewVivid(seed uint64) *Vivid {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Vivid{rng: rand.New(rand.NewPCG(seed, seed^0x517cc1b727220a95))}
}

func (g *Vivid) Next() RGB {
	h := 360.0 * g.rng.Float64()
	s := 0.5 + 0.5*g.rng.Float64()
	v := 0.6 + 0.4*g.rng.Float64()
	return fromColorful(colorful.Hsv(h, s, v))
}

// Sequence replays a fixed list of colors, cycling when exhausted.
type Sequence struct {
	colors []RGB
	next   int
}

// NewSequence returns a generator that yields colors in order.
func NewSequence(colors ...RGB) *Sequence {
	return &Sequence{colors: colors}
}

func (g *Sequence) Next() RGB {
	if len(g.colors) == 0 {
		return Black
	}
	c := g.colors[g.next%len(g.colors)]
	g.next++
	return c
}
