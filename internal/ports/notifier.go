package ports

import "context"

// Notifier shows a user-visible alert. Fire-and-forget: there is no
// delivery guarantee and no error is reported back.
type Notifier interface {
	Show(title, message string)
}

// Metrics records counters for the engine's observable outcomes.
// A no-op implementation is used when no exporter is configured.
type Metrics interface {
	// RecordFlush counts one distraction session committed to stats.
	RecordFlush(ctx context.Context, domain string, durationMs int64)

	// RecordAdvisory counts one advisory (penalty, reward, streak, ...).
	RecordAdvisory(ctx context.Context, kind string, points int)

	// RecordNudge counts one nudge by the stage that produced it
	// (cache, remote, fallback).
	RecordNudge(ctx context.Context, source string)

	// Close flushes pending data.
	Close(ctx context.Context) error
}
