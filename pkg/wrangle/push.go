// pkg/wrangle/push.go
package wrangle

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Registry exposes the run metrics as Prometheus collectors
func (rm *RunMetrics) Registry() (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()

	stageTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wrangle_stage_total",
			Help: "Stage executions, partitioned by stage and status.",
		},
		[]string{"stage", "status"},
	)
	stageDuration := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wrangle_stage_duration_seconds",
			Help: "Duration of each stage of the last run.",
		},
		[]string{"stage"},
	)
	stageRows := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wrangle_stage_rows",
			Help: "Rows entering and leaving each stage of the last run.",
		},
		[]string{"stage", "direction"},
	)
	rows := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wrangle_rows",
			Help: "Rows acquired and written by the last run.",
		},
		[]string{"kind"},
	)

	for _, c := range []prometheus.Collector{stageTotal, stageDuration, stageRows, rows} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	for _, sm := range rm.Stages {
		status := "ok"
		if sm.Err != "" {
			status = "error"
		}
		stageTotal.WithLabelValues(sm.Stage, status).Inc()
		stageDuration.WithLabelValues(sm.Stage).Set(sm.Duration().Seconds())
		stageRows.WithLabelValues(sm.Stage, "in").Set(float64(sm.RowsIn))
		stageRows.WithLabelValues(sm.Stage, "out").Set(float64(sm.RowsOut))
	}
	rows.WithLabelValues("read").Set(float64(rm.RowsRead))
	rows.WithLabelValues("written").Set(float64(rm.RowsWritten))

	return reg, nil
}

// Push sends the run metrics to a Prometheus Pushgateway under job
func (rm *RunMetrics) Push(ctx context.Context, gatewayURL, job string) error {
	if gatewayURL == "" {
		return fmt.Errorf("pushgateway URL is required")
	}
	if job == "" {
		job = "wrangle"
	}

	reg, err := rm.Registry()
	if err != nil {
		return err
	}
	if err := push.New(gatewayURL, job).Gatherer(reg).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
