// Writer implementation shipping metric rows to GreptimeDB
package sim

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"iotsim/internal/telemetry"
)

// greptimeClient is the slice of the ingester client the writer consumes.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter ships final metric rows to GreptimeDB via the ingester
// client, so runs across a campaign land in one queryable store. Tables are
// auto-created on first write.
type GreptimeDBWriter struct {
	client greptimeClient
}

// NewGreptimeDBWriter connects to GreptimeDB. endpoint is "host" or
// "host:port".
func NewGreptimeDBWriter(endpoint, database string) (*GreptimeDBWriter, error) {
	host, portStr, hasPort := strings.Cut(endpoint, ":")
	cfg := greptime.NewConfig(host).WithDatabase(database)
	if hasPort {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("greptime: bad endpoint %q: %w", endpoint, err)
		}
		cfg = cfg.WithPort(port)
	}
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &GreptimeDBWriter{client: client}, nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// summaryTable declares the schema of the run-summary table. Column order is
// the row-value order of WriteSummary.
func summaryTable() (*table.Table, error) {
	tbl, err := table.New(telemetry.MetricsTableName)
	if err != nil {
		return nil, err
	}
	err = firstErr(
		tbl.AddTagColumn("protocol", types.STRING),
		tbl.AddTagColumn("config_name", types.STRING),
		tbl.AddFieldColumn("fixed", types.INT64),
		tbl.AddFieldColumn("mobile", types.INT64),
		tbl.AddFieldColumn("malicious", types.INT64),
		tbl.AddFieldColumn("interfering", types.INT64),
		tbl.AddFieldColumn("avg_throughput", types.FLOAT),
		tbl.AddFieldColumn("max_throughput", types.FLOAT),
		tbl.AddFieldColumn("avg_delay", types.FLOAT),
		tbl.AddFieldColumn("max_delay", types.FLOAT),
		tbl.AddFieldColumn("min_delay", types.FLOAT),
		tbl.AddFieldColumn("avg_jitter", types.FLOAT),
		tbl.AddFieldColumn("loss_pct", types.FLOAT),
		tbl.AddFieldColumn("pdr_pct", types.FLOAT),
		tbl.AddFieldColumn("total_packets", types.INT64),
		tbl.AddFieldColumn("lost_packets", types.INT64),
		tbl.AddFieldColumn("flow_count", types.INT64),
		tbl.AddFieldColumn("sim_time", types.FLOAT),
		tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND),
	)
	if err != nil {
		return nil, err
	}
	return tbl, nil
}

// WriteSummary inserts the run summary row.
func (w *GreptimeDBWriter) WriteSummary(row telemetry.MetricsRow) error {
	tbl, err := summaryTable()
	if err != nil {
		return err
	}
	err = tbl.AddRow(
		row.Protocol, row.ConfigName,
		int64(row.Fixed), int64(row.Mobile), int64(row.Malicious), int64(row.Interfering),
		row.AvgThroughput, row.TotalThroughput,
		row.AvgDelay, row.MaxDelay, row.MinDelay, row.AvgJitter,
		row.LossPct, row.PdrPct,
		int64(row.TotalPackets), int64(row.LostPackets), int64(row.FlowCount),
		row.SimTime,
		row.Timestamp,
	)
	if err != nil {
		return err
	}
	_, err = w.client.Write(context.Background(), tbl)
	return err
}

func nodeMetricsTable() (*table.Table, error) {
	tbl, err := table.New(telemetry.NodeMetricsTableName)
	if err != nil {
		return nil, err
	}
	err = firstErr(
		tbl.AddTagColumn("node_id", types.INT64),
		tbl.AddFieldColumn("throughput_avg", types.FLOAT),
		tbl.AddFieldColumn("delay_avg", types.FLOAT),
		tbl.AddFieldColumn("jitter_avg", types.FLOAT),
		tbl.AddFieldColumn("energy_consumed", types.FLOAT),
		tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND),
	)
	if err != nil {
		return nil, err
	}
	return tbl, nil
}

// WriteNodeMetrics inserts the per-node breakdown rows.
func (w *GreptimeDBWriter) WriteNodeMetrics(rows []telemetry.NodeMetricsRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := nodeMetricsTable()
	if err != nil {
		return err
	}
	now := time.Now()
	for _, r := range rows {
		err := tbl.AddRow(int64(r.NodeID),
			r.ThroughputAvg, r.DelayAvg, r.JitterAvg, r.EnergyConsumed, now)
		if err != nil {
			return err
		}
	}
	_, err = w.client.Write(context.Background(), tbl)
	return err
}
