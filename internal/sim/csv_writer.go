package sim

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Stream names, relative to the output directory. Column layouts are frozen
// for downstream analysis compatibility.
const (
	StreamPacketsNormal    = "packets_normal.csv"
	StreamPacketsMalicious = "packets_malicious.csv"
	StreamControlMessages  = "control_messages.csv"
	StreamMobilePositions  = "mobile_positions.csv"
	StreamEnergy           = "energy_consumption.csv"
	StreamNodeMetadata     = "node_metadata/nodes.csv"
	StreamRoutingChanges   = "routing_logs/routing_table_changes.csv"
	StreamMetrics          = "metrics/metrics.csv"
	StreamNodeMetrics      = "metrics/node_metrics.csv"
)

var streamHeaders = map[string][]string{
	StreamPacketsNormal:    {"timestamp", "source_ip", "port", "traffic_type", "packet_size", "sim_time"},
	StreamPacketsMalicious: {"timestamp", "source_ip", "port", "traffic_type", "packet_size", "sim_time"},
	StreamControlMessages:  {"timestamp", "protocol", "node_id", "message_type", "size"},
	StreamMobilePositions:  {"time", "node_id", "x", "y", "z"},
	StreamEnergy:           {"time", "node_id", "energy_remaining"},
	StreamNodeMetadata:     {"node_id", "ip_address", "node_type"},
	StreamRoutingChanges:   {"timestamp", "node_id", "protocol", "destination", "next_hop", "metric"},
	StreamMetrics: {"timestamp", "protocol", "fixed", "mobile", "malicious", "interfering",
		"avg_throughput", "max_throughput", "avg_delay", "max_delay", "min_delay",
		"avg_jitter", "loss_pct", "pdr_pct", "total_packets", "lost_packets",
		"flow_count", "sim_time"},
	StreamNodeMetrics: {"node_id", "throughput_avg", "delay_avg", "jitter_avg", "energy_consumed"},
}

type csvStream struct {
	f *os.File
	w *csv.Writer
}

// CSVWriter owns every output stream of a run. A stream's parent directory
// is created on first use and its header written exactly once per run; the
// header state lives here, never at call sites. A failed append is the
// caller's to log and drop; the run continues.
type CSVWriter struct {
	root    string
	log     *slog.Logger
	streams map[string]*csvStream
}

// NewCSVWriter creates a writer rooted at the output directory.
func NewCSVWriter(root string, log *slog.Logger) *CSVWriter {
	return &CSVWriter{
		root:    root,
		log:     log,
		streams: make(map[string]*csvStream),
	}
}

// Append writes one record to the named stream, opening it and writing its
// header on first use.
func (w *CSVWriter) Append(stream string, record []string) error {
	cs, err := w.stream(stream)
	if err != nil {
		return err
	}
	if err := cs.w.Write(record); err != nil {
		return err
	}
	cs.w.Flush()
	return cs.w.Error()
}

func (w *CSVWriter) stream(name string) (*csvStream, error) {
	if cs, ok := w.streams[name]; ok {
		return cs, nil
	}
	header, ok := streamHeaders[name]
	if !ok {
		return nil, fmt.Errorf("csv: unknown stream %q", name)
	}
	path := filepath.Join(w.root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	cs := &csvStream{f: f, w: csv.NewWriter(f)}
	if err := cs.w.Write(header); err != nil {
		f.Close()
		return nil, err
	}
	cs.w.Flush()
	w.streams[name] = cs
	return cs, nil
}

// Close flushes and closes every open stream.
func (w *CSVWriter) Close() {
	for name, cs := range w.streams {
		cs.w.Flush()
		if err := cs.f.Close(); err != nil {
			w.log.Error("closing stream", "stream", name, "err", err)
		}
	}
	w.streams = make(map[string]*csvStream)
}

// formatFloat renders values fixed-point with six decimals, the precision
// every numeric output column uses.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// formatWallTime renders wall-clock audit timestamps.
func formatWallTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
