// Output row structs, one per stream, with greptime tags on the metric rows
package telemetry

import (
	"os"
	"time"
)

// PacketRow is one receive-side packet log entry
// (packets_normal.csv / packets_malicious.csv).
type PacketRow struct {
	Timestamp   time.Time
	SourceIP    string
	Port        uint16
	TrafficType string
	PacketSize  int
	SimTime     float64
}

// ControlRow is one routing control message (control_messages.csv).
type ControlRow struct {
	Timestamp   time.Time
	Protocol    string
	NodeID      int
	MessageType string
	Size        int
}

// PositionRow is one mobile node position sample (mobile_positions.csv).
type PositionRow struct {
	Time    float64
	NodeID  int
	X, Y, Z float64
}

// EnergyRow is one remaining-energy sample (energy_consumption.csv).
type EnergyRow struct {
	Time            float64
	NodeID          int
	EnergyRemaining float64
}

// NodeInfoRow is one node metadata entry (node_metadata/nodes.csv).
type NodeInfoRow struct {
	NodeID    int
	IPAddress string
	NodeType  string
}

// RoutingRow is one routing-table snapshot entry
// (routing_logs/routing_table_changes.csv).
type RoutingRow struct {
	Time        float64
	NodeID      int
	Protocol    string
	Destination string
	NextHop     string
	Metric      int
}

// MetricsRow is the end-of-run summary record (metrics/metrics.csv).
// The max_throughput column carries the summed flow throughput; the layout
// is frozen for downstream analysis compatibility.
type MetricsRow struct {
	Timestamp       time.Time `json:"ts"`               // TIME INDEX
	Protocol        string    `json:"protocol"`         // TAG
	ConfigName      string    `json:"config_name"`      // TAG
	Fixed           int       `json:"fixed"`            // FIELD
	Mobile          int       `json:"mobile"`           // FIELD
	Malicious       int       `json:"malicious"`        // FIELD
	Interfering     int       `json:"interfering"`      // FIELD
	AvgThroughput   float64   `json:"avg_throughput"`   // FIELD, kbps
	TotalThroughput float64   `json:"max_throughput"`   // FIELD, kbps
	AvgDelay        float64   `json:"avg_delay"`        // FIELD, s
	MaxDelay        float64   `json:"max_delay"`        // FIELD, s
	MinDelay        float64   `json:"min_delay"`        // FIELD, s
	AvgJitter       float64   `json:"avg_jitter"`       // FIELD, s
	LossPct         float64   `json:"loss_pct"`         // FIELD
	PdrPct          float64   `json:"pdr_pct"`          // FIELD
	TotalPackets    uint64    `json:"total_packets"`    // FIELD
	LostPackets     uint64    `json:"lost_packets"`     // FIELD
	FlowCount       int       `json:"flow_count"`       // FIELD
	SimTime         float64   `json:"sim_time"`         // FIELD, s
}

// NodeMetricsRow is the per-node end-of-run breakdown
// (metrics/node_metrics.csv). EnergyConsumed carries the node's last sampled
// remaining energy, zero for nodes without an energy capability.
type NodeMetricsRow struct {
	NodeID         int     `json:"node_id"`
	ThroughputAvg  float64 `json:"throughput_avg"`
	DelayAvg       float64 `json:"delay_avg"`
	JitterAvg      float64 `json:"jitter_avg"`
	EnergyConsumed float64 `json:"energy_consumed"`
}

// RunMetadata captures the run configuration, recorded once before any
// traffic starts and never mutated.
type RunMetadata struct {
	RunID       string
	Protocol    string
	Fixed       int
	Mobile      int
	Malicious   int
	Interfering int
	SimTime     float64
	Seed        uint64
	ConfigName  string
	Timestamp   time.Time
}

// MetricsTableName holds the table name used when writing summary rows to
// GreptimeDB. It defaults to "sim_metrics" but can be overridden via the
// GREPTIMEDB_TABLE environment variable.
var MetricsTableName = func() string {
	if env := os.Getenv("GREPTIMEDB_TABLE"); env != "" {
		return env
	}
	return "sim_metrics"
}()

func (MetricsRow) TableName() string {
	return MetricsTableName
}

// NodeMetricsTableName is the GreptimeDB table for per-node rows,
// overridable via GREPTIMEDB_NODE_TABLE.
var NodeMetricsTableName = func() string {
	if env := os.Getenv("GREPTIMEDB_NODE_TABLE"); env != "" {
		return env
	}
	return "sim_node_metrics"
}()

func (NodeMetricsRow) TableName() string {
	return NodeMetricsTableName
}
