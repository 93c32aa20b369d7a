package otel

import "context"

// NoOpMetrics is a metrics sink that does nothing.
type NoOpMetrics struct{}

// NewNoOpMetrics creates a no-op sink for graceful degradation.
func NewNoOpMetrics() *NoOpMetrics {
	return &NoOpMetrics{}
}

func (NoOpMetrics) RecordFlush(context.Context, string, int64) {}

func (NoOpMetrics) RecordAdvisory(context.Context, string, int) {}

func (NoOpMetrics) RecordNudge(context.Context, string) {}

func (NoOpMetrics) Close(context.Context) error {
	return nil
}
