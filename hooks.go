package passwordless

import (
	"context"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Hooks exposes the trigger-style entry points the host event dispatcher
// invokes. Each method is stateless per invocation: history goes in, a
// decision or parameter set comes out. The dispatcher guarantees the hooks
// are never called concurrently for the same session.
type Hooks struct {
	cfg        Config
	decider    *Decider
	anonymizer *Anonymizer
	redactor   *ClaimsRedactor
	notifier   Notifier
	registrar  AnonymousRegistrar
	store      IdentityStore
	logger     Logger
	sink       ActivitySink
}

// Option customizes hook construction.
type Option func(*Hooks)

// WithLogger overrides the default logger.
func WithLogger(logger Logger) Option {
	return func(h *Hooks) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithActivitySink sets the audit sink shared by all hooks.
func WithActivitySink(sink ActivitySink) Option {
	return func(h *Hooks) {
		h.sink = normalizeActivitySink(sink)
	}
}

// WithNotifier sets the channel challenge codes are delivered through.
func WithNotifier(notifier Notifier) Option {
	return func(h *Hooks) {
		h.notifier = notifier
	}
}

// WithIdentityStore sets the identity-platform collaborator.
func WithIdentityStore(store IdentityStore) Option {
	return func(h *Hooks) {
		h.store = store
	}
}

// WithAnonymousRegistrar sets the registrar that materializes synthetic
// accounts during external-provider sign-ups.
func WithAnonymousRegistrar(registrar AnonymousRegistrar) Option {
	return func(h *Hooks) {
		h.registrar = registrar
	}
}

// New builds the hook set from a resolved configuration.
func New(cfg Config, opts ...Option) (*Hooks, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid passwordless configuration")
	}

	h := &Hooks{
		cfg:    cfg,
		logger: defLogger{},
		sink:   noopActivitySink{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}

	h.decider = NewDecider(cfg, WithDeciderLogger(h.logger), WithDeciderActivitySink(h.sink))
	h.anonymizer = NewAnonymizer(cfg, WithAnonymizerLogger(h.logger))
	h.redactor = NewClaimsRedactor(h.logger)

	return h, nil
}

// Anonymizer exposes the configured anonymizer for hosts that need the
// deterministic mapping outside the sign-up hook (e.g. support tooling).
func (h *Hooks) Anonymizer() *Anonymizer {
	return h.anonymizer
}

// PreSignUp handles the sign-up trigger. External-provider users are
// anonymized and auto-confirmed; direct email users are auto-confirmed for
// the passwordless flow. The hook never fails a sign-up: anonymization
// problems degrade to the ordinary path.
func (h *Hooks) PreSignUp(ctx context.Context, evt PreSignUpEvent) (PreSignUpResponse, error) {
	if evt.Origin != OriginExternalProvider {
		h.logger.Info("pre-sign-up: auto-confirming direct user for passwordless flow")
		return PreSignUpResponse{AutoConfirmUser: true, AutoVerifyEmail: true}, nil
	}

	subject, err := h.anonymizer.SubjectFromPayload(evt.RawIdentities)
	if err != nil {
		// Missing or unparsable provider identity: skip anonymization and
		// let the sign-up continue untouched.
		h.logger.Warn("pre-sign-up: no usable provider identity, skipping anonymization: %v", err)
		return PreSignUpResponse{}, nil
	}

	identity := h.anonymizer.Anonymize(subject)

	if h.registrar != nil {
		if err := h.registrar.RegisterAnonymous(ctx, identity); err != nil {
			h.logger.Error("pre-sign-up: anonymous registration failed: %v", err)
		}
	}

	recordActivity(ctx, h.sink, h.logger, ActivityEvent{
		EventType: ActivityEventSignUpAnonymized,
		Metadata:  map[string]any{"pseudonym": identity.PseudonymHash},
	})

	return PreSignUpResponse{AutoConfirmUser: true, AutoVerifyEmail: true, AutoVerifyPhone: false}, nil
}

// DefineChallenge evaluates the round history and decides the next step.
func (h *Hooks) DefineChallenge(ctx context.Context, evt DefineChallengeEvent) (Decision, error) {
	return h.decider.Decide(ctx, evt.UserExists, evt.Rounds), nil
}

// CreateChallenge opens a new round: generates a fresh code, binds it as the
// round's private parameter, and emails it to the destination. Delivery
// failure is logged and swallowed; the round is valid with its bound code
// regardless of whether the email made it out.
func (h *Hooks) CreateChallenge(ctx context.Context, evt CreateChallengeEvent) (ChallengeParameters, error) {
	if evt.Kind != "" && evt.Kind != ChallengeCustom {
		h.logger.Debug("create-challenge: ignoring non-custom kind %s", evt.Kind)
		return ChallengeParameters{}, nil
	}

	code, err := GenerateCode(h.cfg.CodeDigits)
	if err != nil {
		return ChallengeParameters{}, errors.Wrap(err, errors.CategoryInternal, "failed to generate challenge code")
	}

	params := newChallengeParameters(code)

	if h.notifier == nil {
		h.logger.Warn("create-challenge: no notifier configured, code not delivered")
		return params, nil
	}

	msg, err := RenderMessage(h.cfg, evt.Destination, code)
	if err != nil {
		h.logger.Error("create-challenge: failed to render message: %v", err)
		return params, nil
	}

	if err := h.notifier.Send(ctx, msg); err != nil {
		h.logger.Error("create-challenge: delivery to %s failed: %v", evt.Destination, err)
		return params, nil
	}

	h.logger.Debug("create-challenge: code delivered to %s", evt.Destination)
	return params, nil
}

// VerifyChallenge compares the submitted answer against the code bound to
// the open round. A wrong answer is an expected negative outcome, not an
// error.
func (h *Hooks) VerifyChallenge(ctx context.Context, evt VerifyChallengeEvent) (VerifyChallengeResponse, error) {
	correct := VerifyAnswer(evt.Private[privateCodeKey], evt.Answer)

	eventType := ActivityEventVerifyFailure
	if correct {
		eventType = ActivityEventVerifySuccess
	}
	recordActivity(ctx, h.sink, h.logger, ActivityEvent{EventType: eventType})

	return VerifyChallengeResponse{AnswerCorrect: correct}, nil
}

// PreTokenIssuance reduces the candidate claim set to the anonymous minimum
// right before the platform mints tokens.
func (h *Hooks) PreTokenIssuance(ctx context.Context, evt PreTokenEvent) (map[string]any, error) {
	return h.redactor.Redact(evt.Claims)
}

// PostConfirmation grants privileged group membership to allow-listed
// accounts. Grant failures are logged, never surfaced: an account must be
// able to finish sign-up even when the grant misfires.
func (h *Hooks) PostConfirmation(ctx context.Context, evt PostConfirmationEvent) error {
	email := strings.ToLower(strings.TrimSpace(evt.Email))
	if email == "" || !h.isPrivileged(email) {
		h.logger.Debug("post-confirmation: no group grant for %s", email)
		return nil
	}

	if h.store == nil {
		h.logger.Warn("post-confirmation: no identity store configured, cannot grant %s", h.cfg.PrivilegedGroup)
		return nil
	}

	user, err := h.resolveUser(ctx, evt, email)
	if err != nil {
		h.logger.Error("post-confirmation: failed to resolve user %s: %v", email, err)
		return nil
	}

	if err := h.store.AddToGroup(ctx, user.ID, h.cfg.PrivilegedGroup); err != nil {
		h.logger.Error("post-confirmation: group grant failed for %s: %v", email, err)
		return nil
	}

	recordActivity(ctx, h.sink, h.logger, ActivityEvent{
		EventType: ActivityEventGroupGranted,
		UserID:    user.ID.String(),
		Metadata:  map[string]any{"group": h.cfg.PrivilegedGroup},
	})

	return nil
}

func (h *Hooks) isPrivileged(email string) bool {
	for _, allowed := range h.cfg.PrivilegedEmails {
		if strings.EqualFold(allowed, email) {
			return true
		}
	}
	return false
}

func (h *Hooks) resolveUser(ctx context.Context, evt PostConfirmationEvent, email string) (*User, error) {
	if id, err := uuid.Parse(evt.UserID); err == nil {
		return &User{ID: id, Email: email}, nil
	}
	return h.store.GetByEmail(ctx, email)
}
