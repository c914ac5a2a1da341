package traffic

import (
	"testing"

	"github.com/iti/rngstream"

	"iotsim/internal/flowmon"
	"iotsim/internal/telemetry"
	"iotsim/internal/topology"
)

// immediateScheduler runs scheduled work inline at its due time.
type immediateScheduler struct {
	now float64
}

func (s *immediateScheduler) Schedule(delay float64, fn func()) {
	s.now += delay
	fn()
}

func (s *immediateScheduler) Now() float64 { return s.now }

type recordingLogger struct {
	rows []telemetry.PacketRow
	kind string
}

func (l *recordingLogger) LogPacket(kind string, row telemetry.PacketRow) {
	l.kind = kind
	l.rows = append(l.rows, row)
}

func testNodes() []*topology.Node {
	src := &topology.Node{ID: 1, Category: topology.CategoryFixed, IP: "192.168.1.2",
		Energy: topology.NewEnergySource(100)}
	dst := &topology.Node{ID: 0, Category: topology.CategoryFixed, IP: "192.168.1.1",
		Energy: topology.NewEnergySource(100)}
	return []*topology.Node{dst, src}
}

func TestSendBooksCountersAndDelivers(t *testing.T) {
	rngstream.SetRngStreamMasterSeed(1)
	nodes := testNodes()
	monitor := flowmon.New()
	sched := &immediateScheduler{}
	net := NewNetwork(sched, monitor, nodes)

	logger := &recordingLogger{}
	net.AddSink(NewSink(nodes[0], 9, "normal", logger))

	gen := NewGenerator(net, nodes[1], nodes[0], 9, Normal, 512)
	const sent = 200
	for i := 0; i < sent; i++ {
		gen.Emit(sched.Now())
	}

	var tx, rx, lost uint64
	monitor.Each(func(_ flowmon.FlowKey, fs *flowmon.FlowStats) {
		tx += fs.TxPackets
		rx += fs.RxPackets
		lost += fs.LostPackets
	})
	if tx != sent {
		t.Fatalf("TxPackets = %d, want %d", tx, sent)
	}
	if rx+lost != tx {
		t.Errorf("rx %d + lost %d != tx %d", rx, lost, tx)
	}
	if int(rx) != len(logger.rows) {
		t.Errorf("sink logged %d packets, received %d", len(logger.rows), rx)
	}
	if logger.kind != "normal" {
		t.Errorf("sink kind = %q, want normal", logger.kind)
	}
	for _, row := range logger.rows {
		if row.TrafficType != "Normal" {
			t.Fatalf("traffic type = %q, want Normal", row.TrafficType)
		}
		if row.SourceIP != "192.168.1.2" {
			t.Fatalf("source ip = %q", row.SourceIP)
		}
	}
}

func TestSendChargesEnergyOnBothEnds(t *testing.T) {
	rngstream.SetRngStreamMasterSeed(1)
	nodes := testNodes()
	net := NewNetwork(&immediateScheduler{}, flowmon.New(), nodes)
	net.AddSink(NewSink(nodes[0], 9, "normal", nil))

	gen := NewGenerator(net, nodes[1], nodes[0], 9, Normal, 512)
	for i := 0; i < 100; i++ {
		gen.Emit(0)
	}

	if nodes[1].Energy.Remaining() >= 100 {
		t.Error("sender energy not charged")
	}
	// Only delivered packets charge the receiver; 100 sends at 3% loss leave
	// plenty delivered.
	if nodes[0].Energy.Remaining() >= 100 {
		t.Error("receiver energy not charged")
	}
}

func TestSendWithoutEnergySource(t *testing.T) {
	rngstream.SetRngStreamMasterSeed(1)
	src := &topology.Node{ID: 1, Category: topology.CategoryInterfering, IP: "192.168.1.2"}
	dst := &topology.Node{ID: 0, Category: topology.CategoryFixed, IP: "192.168.1.1",
		Energy: topology.NewEnergySource(100)}
	net := NewNetwork(&immediateScheduler{}, flowmon.New(), []*topology.Node{dst, src})
	net.AddSink(NewSink(dst, 9, "normal", nil))

	gen := NewGenerator(net, src, dst, 9, Interfering, 512)
	for i := 0; i < 10; i++ {
		gen.Emit(0)
	}
	// No panic on the energyless sender is the assertion.
}
