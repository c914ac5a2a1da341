// Writer implementation printing metric rows to STDOUT
package sim

import (
	"encoding/json"
	"fmt"

	"iotsim/internal/telemetry"
)

// MetricsWriter is an interface to support different metric sinks beyond the
// always-on CSV files.
type MetricsWriter interface {
	WriteSummary(telemetry.MetricsRow) error
	WriteNodeMetrics([]telemetry.NodeMetricsRow) error
}

// StdoutWriter prints metric rows to STDOUT.
type StdoutWriter struct{}

// WriteSummary outputs the run summary row.
func (w *StdoutWriter) WriteSummary(row telemetry.MetricsRow) error {
	data, _ := json.Marshal(row)
	fmt.Println(string(data))
	return nil
}

// WriteNodeMetrics outputs the per-node breakdown.
func (w *StdoutWriter) WriteNodeMetrics(rows []telemetry.NodeMetricsRow) error {
	for _, r := range rows {
		data, _ := json.Marshal(r)
		fmt.Println(string(data))
	}
	return nil
}
