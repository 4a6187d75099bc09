package passwordless

import (
	"context"
)

// Decision is the outcome of one decider invocation. Exactly one of three
// shapes is emitted: a next challenge, a token grant, or a terminal failure.
type Decision struct {
	IssueTokens        bool          `json:"issueTokens"`
	FailAuthentication bool          `json:"failAuthentication"`
	NextChallenge      ChallengeKind `json:"challengeName,omitempty"`
}

// Decider evaluates the round history of a session and picks the next step.
// It keeps no state between invocations; every call receives the full
// history and the caller guarantees single-writer access per session.
type Decider struct {
	retryBudget int
	logger      Logger
	sink        ActivitySink
}

// DeciderOption customizes decider construction.
type DeciderOption func(*Decider)

// WithDeciderLogger overrides the logger used for anomaly warnings.
func WithDeciderLogger(logger Logger) DeciderOption {
	return func(d *Decider) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithDeciderActivitySink sets the sink receiving decision lifecycle events.
func WithDeciderActivitySink(sink ActivitySink) DeciderOption {
	return func(d *Decider) {
		d.sink = normalizeActivitySink(sink)
	}
}

// NewDecider returns a decider enforcing the configured retry budget.
func NewDecider(cfg Config, opts ...DeciderOption) *Decider {
	cfg = cfg.WithDefaults()
	d := &Decider{
		retryBudget: cfg.RetryBudget,
		logger:      defLogger{},
		sink:        noopActivitySink{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decide picks the next protocol step for the session described by
// userExists and rounds.
//
// The budget check runs before the last round is inspected: a failure that
// exhausts the budget is a hard stop on this invocation, it does not buy one
// more retry.
func (d *Decider) Decide(ctx context.Context, userExists bool, rounds ChallengeHistory) Decision {
	if !userExists {
		// Unknown users are handed to the out-of-band sign-up path.
		// Deliberately not a failure.
		d.logger.Debug("decider: user not found, deferring to sign-up flow")
		return Decision{}
	}

	if len(rounds) == 0 {
		return d.openRound(ctx, rounds)
	}

	if failures := rounds.FailedCustomRounds(); failures >= d.retryBudget {
		recordActivity(ctx, d.sink, d.logger, ActivityEvent{
			EventType: ActivityEventBudgetExhausted,
			Metadata:  map[string]any{"failed_rounds": failures},
		})
		return Decision{FailAuthentication: true}
	}

	last, _ := rounds.Last()
	switch {
	case last.IsCustom() && last.Result == RoundSucceeded:
		recordActivity(ctx, d.sink, d.logger, ActivityEvent{
			EventType: ActivityEventTokensIssued,
			Metadata:  map[string]any{"rounds": len(rounds)},
		})
		return Decision{IssueTokens: true}

	case last.IsCustom() && last.Result == RoundFailed:
		// Wrong answer: open a new round. The previous code is gone for
		// good, a fresh one gets generated when the round opens.
		return d.openRound(ctx, rounds)

	case last.Kind == ChallengeSRP, last.Kind == ChallengePasswordVerifier:
		// Legacy initial factors are treated uniformly as "not yet
		// answered" and skipped in favor of the code factor.
		return d.openRound(ctx, rounds)
	}

	// Unknown kind/result combination. Favor availability: issue a fresh
	// challenge instead of failing, but flag it for operators since it can
	// indicate a dispatcher/state-machine version mismatch.
	d.logger.Warn("decider: anomalous round history (kind=%s result=%s), issuing fresh challenge",
		last.Kind, last.Result)
	recordActivity(ctx, d.sink, d.logger, ActivityEvent{
		EventType: ActivityEventHistoryAnomaly,
		Metadata: map[string]any{
			"kind":   string(last.Kind),
			"result": string(last.Result),
		},
	})
	return d.openRound(ctx, rounds)
}

func (d *Decider) openRound(ctx context.Context, rounds ChallengeHistory) Decision {
	recordActivity(ctx, d.sink, d.logger, ActivityEvent{
		EventType: ActivityEventRoundOpened,
		Metadata:  map[string]any{"round": len(rounds) + 1},
	})
	return Decision{NextChallenge: ChallengeCustom}
}
