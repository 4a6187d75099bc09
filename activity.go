package passwordless

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventRoundOpened      ActivityEventType = "challenge.round.opened"
	ActivityEventVerifySuccess    ActivityEventType = "challenge.verify.success"
	ActivityEventVerifyFailure    ActivityEventType = "challenge.verify.failure"
	ActivityEventBudgetExhausted  ActivityEventType = "challenge.budget.exhausted"
	ActivityEventHistoryAnomaly   ActivityEventType = "challenge.history.anomaly"
	ActivityEventTokensIssued     ActivityEventType = "challenge.tokens.issued"
	ActivityEventSignUpAnonymized ActivityEventType = "signup.anonymized"
	ActivityEventGroupGranted     ActivityEventType = "account.group.granted"
)

// ActivityEvent captures audit-friendly information about an action. The
// metadata never carries challenge codes or raw provider subjects.
type ActivityEvent struct {
	EventType  ActivityEventType
	UserID     string
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
// Sinks run best-effort: errors are logged by the emitter, never returned
// to the authentication flow.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}

func recordActivity(ctx context.Context, sink ActivitySink, logger Logger, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	if err := normalizeActivitySink(sink).Record(ctx, event); err != nil {
		normalizeLogger(logger).Warn("activity sink error: %v", err)
	}
}
