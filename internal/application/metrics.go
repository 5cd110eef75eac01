package application

import "context"

// Metrics is what use-cases report. The otel adapter lives in infra/telemetry.
type Metrics interface {
	AnalysisRecorded(ctx context.Context, riskCategory string, pof float64)
	AnalysisFailed(ctx context.Context, kind string)
	OverdueInspections(ctx context.Context, n int)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) AnalysisRecorded(context.Context, string, float64) {}
func (NopMetrics) AnalysisFailed(context.Context, string) {}
func (NopMetrics) OverdueInspections(context.Context, int) {}
