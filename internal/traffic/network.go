package traffic

import (
	"github.com/iti/rngstream"

	"iotsim/internal/flowmon"
	"iotsim/internal/topology"
)

// Scheduler is the slice of the host scheduler the traffic layer consumes.
type Scheduler interface {
	Schedule(delay float64, fn func())
	Now() float64
}

// Transit parameters for the delivery stand-in. The physical, MAC and
// routing layers are external collaborators; delivery here is a seeded
// delay/loss draw per packet feeding the flow monitor.
const (
	lossProbability    = 0.03
	minTransitDelay    = 0.010
	transitDelaySpread = 0.040

	txEnergyPerPacketJ = 0.0017
	rxEnergyPerPacketJ = 0.0011
)

// Network carries packets from generators to sinks and keeps the flow
// monitor's counters current.
type Network struct {
	sched   Scheduler
	monitor *flowmon.Monitor
	nodes   map[int]*topology.Node
	sinks   map[uint16]*Sink
	rng     *rngstream.RngStream
}

// NewNetwork creates the transit stand-in over the given node set.
func NewNetwork(sched Scheduler, monitor *flowmon.Monitor, nodes []*topology.Node) *Network {
	byID := make(map[int]*topology.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	return &Network{
		sched:   sched,
		monitor: monitor,
		nodes:   byID,
		sinks:   make(map[uint16]*Sink),
		rng:     rngstream.New("transit"),
	}
}

// AddSink registers a receive sink on its port.
func (net *Network) AddSink(s *Sink) {
	net.sinks[s.Port] = s
}

// Send transmits one packet: the tx counter is bumped first so lost packets
// can never exceed transmitted ones, then the packet is either dropped or
// scheduled to arrive after the drawn transit delay.
func (net *Network) Send(p *Packet) {
	key := flowmon.FlowKey{Src: p.Src, Dst: p.Dst, Port: p.Port}
	net.monitor.RecordTx(key)
	if src := net.nodes[p.Src]; src != nil && src.Energy != nil {
		src.Energy.Consume(txEnergyPerPacketJ)
	}

	if net.rng.RandU01() < lossProbability {
		net.monitor.RecordLost(key)
		return
	}

	delay := minTransitDelay + net.rng.RandU01()*transitDelaySpread
	net.sched.Schedule(delay, func() {
		net.monitor.RecordRx(key, p.Size, delay)
		if dst := net.nodes[p.Dst]; dst != nil && dst.Energy != nil {
			dst.Energy.Consume(rxEnergyPerPacketJ)
		}
		if sink := net.sinks[p.Port]; sink != nil {
			sink.Receive(p, net.sched.Now())
		}
	})
}
