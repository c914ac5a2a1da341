package sim

import (
	"strconv"
	"time"

	"iotsim/internal/flowmon"
	"iotsim/internal/telemetry"
)

// All four samplers tick at one-second virtual intervals, first firing at
// t=1, and share the one-second guard band before the horizon.
const (
	sampleInterval = 1.0
	firstSampleAt  = 1.0
	guardBand      = 1.0
)

func (s *Simulator) samplers() []*Sampler {
	mk := func(name string, fn func(float64)) *Sampler {
		return &Sampler{
			Name:     name,
			Start:    firstSampleAt,
			Interval: sampleInterval,
			Horizon:  s.cfg.SimTime,
			Guard:    guardBand,
			Sample:   fn,
		}
	}
	return []*Sampler{
		mk("positions", s.samplePositions),
		mk("energy", s.sampleEnergy),
		mk("routing", s.sampleRouting),
		mk("flowstats", s.sampleFlowStats),
	}
}

// samplePositions advances and records every mobile node's position.
func (s *Simulator) samplePositions(now float64) {
	for _, n := range s.mobile {
		n.UpdatePosition(now)
		row := telemetry.PositionRow{
			Time:   now,
			NodeID: n.ID,
			X:      n.Position.X,
			Y:      n.Position.Y,
			Z:      n.Position.Z,
		}
		err := s.csv.Append(StreamMobilePositions, []string{
			formatFloat(row.Time),
			strconv.Itoa(row.NodeID),
			formatFloat(row.X),
			formatFloat(row.Y),
			formatFloat(row.Z),
		})
		if err != nil {
			s.log.Error("position sample dropped", "node_id", n.ID, "err", err)
		}
	}
}

// sampleEnergy records remaining energy per node. Nodes without an energy
// capability are skipped silently; that absence is expected, not an error.
func (s *Simulator) sampleEnergy(now float64) {
	for _, n := range s.nodes {
		if n.Energy == nil {
			continue
		}
		row := telemetry.EnergyRow{
			Time:            now,
			NodeID:          n.ID,
			EnergyRemaining: n.Energy.Remaining(),
		}
		err := s.csv.Append(StreamEnergy, []string{
			formatFloat(row.Time),
			strconv.Itoa(row.NodeID),
			formatFloat(row.EnergyRemaining),
		})
		if err != nil {
			s.log.Error("energy sample dropped", "node_id", n.ID, "err", err)
		}
	}
}

// sampleRouting records, per node, the installed protocol's self-described
// active state plus the control messages it emitted this window.
func (s *Simulator) sampleRouting(now float64) {
	wall := time.Now()
	for _, n := range s.nodes {
		for _, e := range s.proto.DescribeActiveState() {
			row := telemetry.RoutingRow{
				Time:        now,
				NodeID:      n.ID,
				Protocol:    s.proto.Name(),
				Destination: e.Destination,
				NextHop:     e.NextHop,
				Metric:      e.Metric,
			}
			err := s.csv.Append(StreamRoutingChanges, []string{
				formatFloat(row.Time),
				strconv.Itoa(row.NodeID),
				row.Protocol,
				row.Destination,
				row.NextHop,
				strconv.Itoa(row.Metric),
			})
			if err != nil {
				s.log.Error("routing sample dropped", "node_id", n.ID, "err", err)
			}
		}
		for _, m := range s.proto.ControlTraffic() {
			row := telemetry.ControlRow{
				Timestamp:   wall,
				Protocol:    s.proto.Name(),
				NodeID:      n.ID,
				MessageType: m.Type,
				Size:        m.Size,
			}
			err := s.csv.Append(StreamControlMessages, []string{
				formatWallTime(row.Timestamp),
				row.Protocol,
				strconv.Itoa(row.NodeID),
				row.MessageType,
				strconv.Itoa(row.Size),
			})
			if err != nil {
				s.log.Error("control message dropped", "node_id", n.ID, "err", err)
			}
		}
	}
}

// sampleFlowStats recomputes the short-window per-node running metrics from
// the monitor's current counters and overwrites them in place. The flow
// aggregate is attributed to every node uniformly.
func (s *Simulator) sampleFlowStats(now float64) {
	var thr, dly, jit float64
	count := 0
	s.monitor.Each(func(_ flowmon.FlowKey, fs *flowmon.FlowStats) {
		thr += float64(fs.RxBytes) * 8 / sampleInterval / 1000
		dly += fs.DelaySum
		jit += fs.JitterSum
		count++
	})
	div := float64(count)
	if count == 0 {
		div = 1
	}
	for _, n := range s.nodes {
		rm := s.running[n.ID]
		rm.throughput = thr / div
		rm.delay = dly / div
		rm.jitter = jit / div
	}
}
