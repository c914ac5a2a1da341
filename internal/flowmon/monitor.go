// Package flowmon maintains per-flow counters for the instrumentation core.
// It is the flow-monitoring collaborator: the traffic layer mutates the
// counters, samplers and the aggregator only read them.
package flowmon

import "math"

// FlowKey identifies a monitored unidirectional stream.
type FlowKey struct {
	Src  int
	Dst  int
	Port uint16
}

// FlowStats holds the raw counters for one flow. DelaySum and JitterSum are
// cumulative seconds, jitter being the sum of absolute deltas between
// consecutive packet delays.
type FlowStats struct {
	TxPackets   uint64
	RxPackets   uint64
	RxBytes     uint64
	LostPackets uint64
	DelaySum    float64
	JitterSum   float64

	lastDelay float64
	hasDelay  bool
}

// Monitor owns the flow table. Flows are created implicitly on first use and
// iterated in creation order, so reductions are reproducible across runs.
type Monitor struct {
	flows map[FlowKey]*FlowStats
	order []FlowKey
}

// New creates an empty monitor.
func New() *Monitor {
	return &Monitor{flows: make(map[FlowKey]*FlowStats)}
}

func (m *Monitor) stats(k FlowKey) *FlowStats {
	fs, ok := m.flows[k]
	if !ok {
		fs = &FlowStats{}
		m.flows[k] = fs
		m.order = append(m.order, k)
	}
	return fs
}

// RecordTx counts one transmitted packet on the flow.
func (m *Monitor) RecordTx(k FlowKey) {
	m.stats(k).TxPackets++
}

// RecordRx counts one received packet with its end-to-end delay in seconds.
func (m *Monitor) RecordRx(k FlowKey, bytes int, delay float64) {
	fs := m.stats(k)
	fs.RxPackets++
	fs.RxBytes += uint64(bytes)
	fs.DelaySum += delay
	if fs.hasDelay {
		fs.JitterSum += math.Abs(delay - fs.lastDelay)
	}
	fs.lastDelay = delay
	fs.hasDelay = true
}

// RecordLost counts one packet dropped on the flow.
func (m *Monitor) RecordLost(k FlowKey) {
	m.stats(k).LostPackets++
}

// FlowCount returns the number of flows seen so far.
func (m *Monitor) FlowCount() int {
	return len(m.order)
}

// Each calls fn for every flow in creation order. The stats pointer is live;
// callers must treat it as read-only.
func (m *Monitor) Each(fn func(FlowKey, *FlowStats)) {
	for _, k := range m.order {
		fn(k, m.flows[k])
	}
}
