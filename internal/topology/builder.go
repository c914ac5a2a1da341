package topology

import (
	"fmt"

	"github.com/iti/rngstream"

	"iotsim/internal/config"
)

// Placement constants for the study scenario: fixed nodes on a grid, mobile
// nodes walking the main field, malicious walkers crowding the upper corner,
// interfering emitters parked outside the field.
const (
	gridSpacing = 15.0
	gridWidth   = 5
	walkSpeed   = 1.0
	walkEpoch   = 2.0

	initialEnergyJ = 100.0
)

var (
	mobileArea      = Rect{MinX: 0, MaxX: 100, MinY: 0, MaxY: 100}
	maliciousArea   = Rect{MinX: 60, MaxX: 90, MinY: 60, MaxY: 90}
	interferingArea = Rect{MinX: 120, MaxX: 150, MinY: 120, MaxY: 150}
)

// Build creates the full node set for a run: ids are assigned in category
// order (fixed, mobile, malicious, interfering) and IPs from 192.168.1.0/24.
// Interfering nodes carry no energy source; their radios are modeled as
// externally powered emitters.
func Build(cfg *config.Config) ([]*Node, error) {
	total := cfg.TotalNodes()
	if total == 0 {
		return nil, fmt.Errorf("topology: no nodes to create")
	}

	placeRNG := rngstream.New("topology")
	nodes := make([]*Node, 0, total)
	id := 0

	for i := 0; i < cfg.FixedNodes; i++ {
		pos := Position{
			X: float64(i%gridWidth) * gridSpacing,
			Y: float64(i/gridWidth) * gridSpacing,
		}
		nodes = append(nodes, &Node{
			ID:       id,
			Category: CategoryFixed,
			IP:       nodeIP(id),
			Position: pos,
			Mobility: NewStatic(pos),
			Energy:   NewEnergySource(initialEnergyJ),
		})
		id++
	}

	for i := 0; i < cfg.MobileNodes; i++ {
		pos := randomPos(mobileArea, placeRNG)
		mobRNG := rngstream.New(fmt.Sprintf("mobility-%d", id))
		nodes = append(nodes, &Node{
			ID:       id,
			Category: CategoryMobile,
			IP:       nodeIP(id),
			Position: pos,
			Mobility: NewRandomWalk(pos, mobileArea, walkSpeed, walkEpoch, mobRNG),
			Energy:   NewEnergySource(initialEnergyJ),
		})
		id++
	}

	for i := 0; i < cfg.MaliciousNodes; i++ {
		pos := randomPos(maliciousArea, placeRNG)
		mobRNG := rngstream.New(fmt.Sprintf("mobility-%d", id))
		nodes = append(nodes, &Node{
			ID:       id,
			Category: CategoryMalicious,
			IP:       nodeIP(id),
			Position: pos,
			Mobility: NewRandomWalk(pos, maliciousArea, walkSpeed, walkEpoch, mobRNG),
			Energy:   NewEnergySource(initialEnergyJ),
		})
		id++
	}

	for i := 0; i < cfg.InterferingNodes; i++ {
		pos := randomPos(interferingArea, placeRNG)
		nodes = append(nodes, &Node{
			ID:       id,
			Category: CategoryInterfering,
			IP:       nodeIP(id),
			Position: pos,
			Mobility: NewStatic(pos),
		})
		id++
	}

	return nodes, nil
}

// Select returns the nodes of one category, in id order.
func Select(nodes []*Node, cat Category) []*Node {
	var out []*Node
	for _, n := range nodes {
		if n.Category == cat {
			out = append(out, n)
		}
	}
	return out
}

func randomPos(r Rect, rng *rngstream.RngStream) Position {
	return Position{
		X: r.MinX + rng.RandU01()*(r.MaxX-r.MinX),
		Y: r.MinY + rng.RandU01()*(r.MaxY-r.MinY),
	}
}

func nodeIP(id int) string {
	// One /24, hosts numbered from .1.
	return fmt.Sprintf("192.168.1.%d", id+1)
}
