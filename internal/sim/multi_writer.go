package sim

import "iotsim/internal/telemetry"

// MultiWriter fans metric rows out to multiple writers.
type MultiWriter struct {
	writers []MetricsWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(ws ...MetricsWriter) *MultiWriter {
	return &MultiWriter{writers: ws}
}

// WriteSummary sends the summary row to all writers.
func (mw *MultiWriter) WriteSummary(row telemetry.MetricsRow) error {
	for _, w := range mw.writers {
		if err := w.WriteSummary(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteNodeMetrics sends the per-node rows to all writers.
func (mw *MultiWriter) WriteNodeMetrics(rows []telemetry.NodeMetricsRow) error {
	for _, w := range mw.writers {
		if err := w.WriteNodeMetrics(rows); err != nil {
			return err
		}
	}
	return nil
}
