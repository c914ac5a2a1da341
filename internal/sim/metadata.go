package sim

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"iotsim/internal/telemetry"
	"iotsim/internal/topology"
)

// writeRunMetadata records the run configuration as a human-readable file,
// once, before any sampling. Failure is logged and never retried.
func (s *Simulator) writeRunMetadata(md telemetry.RunMetadata) {
	var b strings.Builder
	fmt.Fprintf(&b, "Simulation Metadata\n")
	fmt.Fprintf(&b, "Run ID: %s\n", md.RunID)
	fmt.Fprintf(&b, "Timestamp: %s\n", formatWallTime(md.Timestamp))
	fmt.Fprintf(&b, "Fixed Nodes: %d\n", md.Fixed)
	fmt.Fprintf(&b, "Mobile Nodes: %d\n", md.Mobile)
	fmt.Fprintf(&b, "Malicious Nodes: %d\n", md.Malicious)
	fmt.Fprintf(&b, "Interfering Nodes: %d\n", md.Interfering)
	fmt.Fprintf(&b, "Simulation Time: %g seconds\n", md.SimTime)
	fmt.Fprintf(&b, "Routing Protocol: %s\n", md.Protocol)
	fmt.Fprintf(&b, "Configuration Name: %s\n", md.ConfigName)
	fmt.Fprintf(&b, "Random Seed: %d\n", md.Seed)

	path := filepath.Join(s.cfg.OutputDir, "metadata.txt")
	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		s.log.Error("creating output dir for metadata", "err", err)
		return
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		s.log.Error("writing run metadata", "path", path, "err", err)
	}
}

// writeNodeMetadata records id, address and category for every node.
func (s *Simulator) writeNodeMetadata(nodes []*topology.Node) {
	for _, n := range nodes {
		row := telemetry.NodeInfoRow{
			NodeID:    n.ID,
			IPAddress: n.IP,
			NodeType:  string(n.Category),
		}
		err := s.csv.Append(StreamNodeMetadata, []string{
			strconv.Itoa(row.NodeID),
			row.IPAddress,
			row.NodeType,
		})
		if err != nil {
			s.log.Error("writing node metadata", "node_id", n.ID, "err", err)
		}
	}
}
