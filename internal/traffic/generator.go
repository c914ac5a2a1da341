package traffic

import (
	"time"

	"iotsim/internal/telemetry"
	"iotsim/internal/topology"
)

// Generator emits constant-rate tagged packets from one node toward a sink
// node. Emission cadence is driven externally by a repeating timer.
type Generator struct {
	Node       *topology.Node
	Dst        *topology.Node
	Port       uint16
	Category   Category
	PacketSize int

	net *Network
}

// NewGenerator wires a generator onto the network.
func NewGenerator(net *Network, node, dst *topology.Node, port uint16, cat Category, size int) *Generator {
	return &Generator{
		Node:       node,
		Dst:        dst,
		Port:       port,
		Category:   cat,
		PacketSize: size,
		net:        net,
	}
}

// Emit sends one packet stamped with the current virtual time.
func (g *Generator) Emit(now float64) {
	p := &Packet{
		Src:      g.Node.ID,
		Dst:      g.Dst.ID,
		SourceIP: g.Node.IP,
		Port:     g.Port,
		Size:     g.PacketSize,
		SentAt:   now,
	}
	Attach(p, g.Category)
	g.net.Send(p)
}

// PacketLogger receives one log row per delivered packet. The sim layer
// implements it on top of the CSV writer.
type PacketLogger interface {
	LogPacket(sinkKind string, row telemetry.PacketRow)
}

// Sink terminates traffic on one port of one node and logs every arrival.
// Kind selects the receive-side stream ("normal" or "malicious").
type Sink struct {
	Node *topology.Node
	Port uint16
	Kind string

	logger PacketLogger
}

// NewSink creates a sink; logger may be nil to drop receive-side logging.
func NewSink(node *topology.Node, port uint16, kind string, logger PacketLogger) *Sink {
	return &Sink{Node: node, Port: port, Kind: kind, logger: logger}
}

// Receive classifies the packet from its tag and forwards a log row.
func (s *Sink) Receive(p *Packet, now float64) {
	if s.logger == nil {
		return
	}
	s.logger.LogPacket(s.Kind, telemetry.PacketRow{
		Timestamp:   time.Now(),
		SourceIP:    p.SourceIP,
		Port:        s.Port,
		TrafficType: ReadCategory(p).String(),
		PacketSize:  p.Size,
		SimTime:     now,
	})
}
