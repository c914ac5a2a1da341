package sim

import (
	"bytes"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"iotsim/internal/config"
	"iotsim/internal/flowmon"
)

func newTestSimulator(t *testing.T, cfg *config.Config) *Simulator {
	t.Helper()
	cfg.OutputDir = t.TempDir()
	s, err := New(cfg, discardLogger(), &fakeScheduler{}, nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return s
}

func smallConfig() *config.Config {
	cfg := config.Default()
	cfg.FixedNodes = 2
	cfg.MobileNodes = 1
	cfg.MaliciousNodes = 0
	cfg.InterferingNodes = 1
	cfg.SimTime = 10.0
	return cfg
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAggregateNoFlows(t *testing.T) {
	s := newTestSimulator(t, smallConfig())
	row := s.aggregate(time.Now())

	if row.FlowCount != 0 {
		t.Errorf("FlowCount = %d, want 0", row.FlowCount)
	}
	for name, v := range map[string]float64{
		"AvgThroughput": row.AvgThroughput,
		"AvgDelay":      row.AvgDelay,
		"MaxDelay":      row.MaxDelay,
		"MinDelay":      row.MinDelay,
		"AvgJitter":     row.AvgJitter,
		"LossPct":       row.LossPct,
		"PdrPct":        row.PdrPct,
	} {
		if v != 0 {
			t.Errorf("%s = %v, want 0 with no flows", name, v)
		}
	}
}

func TestAggregateLossAndDeliveryComplement(t *testing.T) {
	s := newTestSimulator(t, smallConfig())
	key := flowmon.FlowKey{Src: 1, Dst: 0, Port: 9}
	for i := 0; i < 10; i++ {
		s.monitor.RecordTx(key)
	}
	for i := 0; i < 8; i++ {
		s.monitor.RecordRx(key, 512, 0.020)
	}
	s.monitor.RecordLost(key)
	s.monitor.RecordLost(key)

	row := s.aggregate(time.Now())

	if row.TotalPackets != 10 || row.LostPackets != 2 {
		t.Fatalf("packets = %d/%d, want 10 tx and 2 lost", row.TotalPackets, row.LostPackets)
	}
	if !almostEqual(row.LossPct, 20) {
		t.Errorf("LossPct = %v, want 20", row.LossPct)
	}
	if !almostEqual(row.PdrPct, 80) {
		t.Errorf("PdrPct = %v, want 80", row.PdrPct)
	}
	if !almostEqual(row.LossPct+row.PdrPct, 100) {
		t.Errorf("LossPct+PdrPct = %v, want 100", row.LossPct+row.PdrPct)
	}
}

func TestAggregateThroughputAndDelays(t *testing.T) {
	s := newTestSimulator(t, smallConfig())

	// Flow A: 5 packets of 512 B received, per-packet delay 0.1 s.
	a := flowmon.FlowKey{Src: 1, Dst: 0, Port: 9}
	for i := 0; i < 5; i++ {
		s.monitor.RecordTx(a)
		s.monitor.RecordRx(a, 512, 0.1)
	}
	// Flow B: transmitted only, nothing received.
	b := flowmon.FlowKey{Src: 2, Dst: 0, Port: 9}
	s.monitor.RecordTx(b)

	row := s.aggregate(time.Now())

	if row.FlowCount != 2 {
		t.Fatalf("FlowCount = %d, want 2", row.FlowCount)
	}

	thrA := float64(5*512) * 8 / 10.0 / 1000
	if !almostEqual(row.AvgThroughput, thrA/2) {
		t.Errorf("AvgThroughput = %v, want %v", row.AvgThroughput, thrA/2)
	}
	if !almostEqual(row.TotalThroughput, thrA) {
		t.Errorf("TotalThroughput = %v, want %v", row.TotalThroughput, thrA)
	}

	// Delay columns carry per-flow cumulative delay, averaged or maxed over
	// all flows, while min delay is per-packet and only over receiving flows.
	if !almostEqual(row.AvgDelay, 0.5/2) {
		t.Errorf("AvgDelay = %v, want 0.25", row.AvgDelay)
	}
	if !almostEqual(row.MaxDelay, 0.5) {
		t.Errorf("MaxDelay = %v, want 0.5", row.MaxDelay)
	}
	if !almostEqual(row.MinDelay, 0.1) {
		t.Errorf("MinDelay = %v, want 0.1 from the receiving flow only", row.MinDelay)
	}
}

func TestAggregateMinDelaySkipsSilentFlows(t *testing.T) {
	s := newTestSimulator(t, smallConfig())
	silent := flowmon.FlowKey{Src: 1, Dst: 0, Port: 9}
	s.monitor.RecordTx(silent)
	s.monitor.RecordLost(silent)

	row := s.aggregate(time.Now())
	if row.MinDelay != 0 {
		t.Errorf("MinDelay = %v, want 0 when no flow received anything", row.MinDelay)
	}
}

func TestWriteNodeMetricsAttemptsEveryRow(t *testing.T) {
	cfg := smallConfig()
	cfg.OutputDir = t.TempDir()
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	s, err := New(cfg, log, &fakeScheduler{}, nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	// A plain file where the metrics directory should go makes every append
	// to that stream fail.
	if err := os.WriteFile(filepath.Join(cfg.OutputDir, "metrics"), nil, 0o644); err != nil {
		t.Fatalf("blocking metrics dir: %v", err)
	}

	s.writeNodeMetrics(s.nodeBreakdown())

	dropped := strings.Count(buf.String(), "node metrics row dropped")
	if dropped != cfg.TotalNodes() {
		t.Fatalf("%d rows dropped, want all %d attempted", dropped, cfg.TotalNodes())
	}
}

func TestNodeBreakdownMergesEnergySnapshot(t *testing.T) {
	cfg := smallConfig()
	s := newTestSimulator(t, cfg)

	for _, n := range s.nodes {
		if n.Energy != nil {
			n.Energy.Consume(1.5)
		}
	}
	s.snapshotEnergy()

	rows := s.nodeBreakdown()
	if len(rows) != cfg.TotalNodes() {
		t.Fatalf("breakdown has %d rows, want %d", len(rows), cfg.TotalNodes())
	}
	for _, r := range rows {
		n := s.nodes[r.NodeID]
		if n.Energy == nil {
			if r.EnergyConsumed != 0 {
				t.Errorf("node %d has no energy source but reading %v", r.NodeID, r.EnergyConsumed)
			}
			continue
		}
		if !almostEqual(r.EnergyConsumed, 98.5) {
			t.Errorf("node %d energy reading = %v, want 98.5", r.NodeID, r.EnergyConsumed)
		}
	}
}
