package topology

// Category classifies a node's role in the scenario.
type Category string

const (
	CategoryFixed       Category = "Fixed"
	CategoryMobile      Category = "Mobile"
	CategoryMalicious   Category = "Malicious"
	CategoryInterfering Category = "Interfering"
)

// Position holds node coordinates in meters.
type Position struct {
	X, Y, Z float64
}

// EnergySource models a basic battery. Nodes without one simply have a nil
// Energy field; samplers treat that as expected absence, not an error.
type EnergySource struct {
	remaining float64
}

// NewEnergySource creates a source with the given initial charge in joules.
func NewEnergySource(initialJ float64) *EnergySource {
	return &EnergySource{remaining: initialJ}
}

// Remaining returns the current charge in joules.
func (e *EnergySource) Remaining() float64 {
	return e.remaining
}

// Consume draws the given amount, clamping at zero.
func (e *EnergySource) Consume(j float64) {
	e.remaining -= j
	if e.remaining < 0 {
		e.remaining = 0
	}
}

// Node is one simulated device. ID and Category are immutable for the run;
// Position is advanced by the node's mobility model.
type Node struct {
	ID       int
	Category Category
	IP       string
	Position Position
	Mobility Mobility
	Energy   *EnergySource
}

// UpdatePosition advances the node's mobility model to the given virtual
// time and stores the result. Nodes without a mobility model stay put.
func (n *Node) UpdatePosition(now float64) {
	if n.Mobility == nil {
		return
	}
	n.Position = n.Mobility.PositionAt(now)
}
