package topology

import (
	"math"

	"github.com/iti/rngstream"
)

// Mobility produces a node position as a function of virtual time. Models are
// advanced lazily: each call moves the node from its last evaluated time.
type Mobility interface {
	PositionAt(now float64) Position
}

// staticModel pins a node to its initial position.
type staticModel struct {
	pos Position
}

func (m *staticModel) PositionAt(float64) Position {
	return m.pos
}

// NewStatic returns a mobility model that never moves.
func NewStatic(pos Position) Mobility {
	return &staticModel{pos: pos}
}

// Rect bounds a 2D walk area.
type Rect struct {
	MinX, MaxX, MinY, MaxY float64
}

// randomWalk implements a bounded 2D random walk: constant speed, a fresh
// uniform heading every direction epoch, reflection at the bounds.
type randomWalk struct {
	pos        Position
	bounds     Rect
	speed      float64
	epoch      float64
	heading    float64
	lastEval   float64
	nextTurnAt float64
	rng        *rngstream.RngStream
}

// NewRandomWalk builds a walk starting at pos, constrained to bounds,
// drawing headings from the given RNG stream.
func NewRandomWalk(pos Position, bounds Rect, speed, epoch float64, rng *rngstream.RngStream) Mobility {
	return &randomWalk{
		pos:     pos,
		bounds:  bounds,
		speed:   speed,
		epoch:   epoch,
		heading: rng.RandU01() * 2 * math.Pi,
		rng:     rng,
	}
}

func (m *randomWalk) PositionAt(now float64) Position {
	dt := now - m.lastEval
	if dt <= 0 {
		return m.pos
	}
	m.lastEval = now
	if now >= m.nextTurnAt {
		m.heading = m.rng.RandU01() * 2 * math.Pi
		m.nextTurnAt = now + m.epoch
	}
	m.pos.X = reflect(m.pos.X+m.speed*dt*math.Cos(m.heading), m.bounds.MinX, m.bounds.MaxX)
	m.pos.Y = reflect(m.pos.Y+m.speed*dt*math.Sin(m.heading), m.bounds.MinY, m.bounds.MaxY)
	return m.pos
}

// reflect folds v back into [lo,hi].
func reflect(v, lo, hi float64) float64 {
	for v < lo || v > hi {
		if v < lo {
			v = 2*lo - v
		}
		if v > hi {
			v = 2*hi - v
		}
	}
	return v
}
