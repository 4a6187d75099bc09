package passwordless_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	passwordless "github.com/fagfilm/passwordless"
)

func newHooks(t *testing.T, cfg passwordless.Config, opts ...passwordless.Option) *passwordless.Hooks {
	t.Helper()
	h, err := passwordless.New(cfg, opts...)
	require.NoError(t, err)
	return h
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	_, err := passwordless.New(passwordless.Config{})

	assert.Error(t, err)
}

func TestPreSignUp_DirectUser(t *testing.T) {
	h := newHooks(t, testConfig())

	res, err := h.PreSignUp(context.Background(), passwordless.PreSignUpEvent{
		Origin: passwordless.OriginDirect,
		Email:  "user@example.com",
	})

	require.NoError(t, err)
	assert.True(t, res.AutoConfirmUser)
	assert.True(t, res.AutoVerifyEmail)
	assert.False(t, res.AutoVerifyPhone)
}

func TestPreSignUp_ExternalProvider(t *testing.T) {
	sink := &recordingSink{}
	registrar := &MockRegistrar{}
	registrar.On("RegisterAnonymous", mock.Anything, mock.MatchedBy(func(id passwordless.AnonymizedIdentity) bool {
		return id.SyntheticEmail == "anon-"+id.PseudonymHash+"@feide.anonymous"
	})).Return(nil)

	h := newHooks(t, testConfig(),
		passwordless.WithActivitySink(sink),
		passwordless.WithAnonymousRegistrar(registrar),
	)

	res, err := h.PreSignUp(context.Background(), passwordless.PreSignUpEvent{
		Origin:        passwordless.OriginExternalProvider,
		Email:         "ola.nordmann@uio.no",
		RawIdentities: `[{"providerName":"Feide","userId":"feide-subject-1"}]`,
	})

	require.NoError(t, err)
	assert.True(t, res.AutoConfirmUser)
	assert.True(t, res.AutoVerifyEmail)
	assert.False(t, res.AutoVerifyPhone)
	assert.True(t, sink.has(passwordless.ActivityEventSignUpAnonymized))
	registrar.AssertExpectations(t)
}

func TestPreSignUp_ExternalProviderWithoutIdentity(t *testing.T) {
	logger := newCaptureLogger()
	h := newHooks(t, testConfig(), passwordless.WithLogger(logger))

	res, err := h.PreSignUp(context.Background(), passwordless.PreSignUpEvent{
		Origin:        passwordless.OriginExternalProvider,
		RawIdentities: `[{"providerName":"Google","userId":"g-1"}]`,
	})

	// Unmatched provider identity degrades to the untouched sign-up path.
	require.NoError(t, err)
	assert.False(t, res.AutoConfirmUser)
	assert.False(t, res.AutoVerifyEmail)
	assert.GreaterOrEqual(t, logger.count("warn"), 1)
}

func TestPreSignUp_RegistrarFailureDoesNotBlock(t *testing.T) {
	registrar := &MockRegistrar{}
	registrar.On("RegisterAnonymous", mock.Anything, mock.Anything).Return(errors.New("db down"))
	logger := newCaptureLogger()

	h := newHooks(t, testConfig(),
		passwordless.WithLogger(logger),
		passwordless.WithAnonymousRegistrar(registrar),
	)

	res, err := h.PreSignUp(context.Background(), passwordless.PreSignUpEvent{
		Origin:        passwordless.OriginExternalProvider,
		RawIdentities: `[{"providerName":"Feide","userId":"feide-subject-1"}]`,
	})

	require.NoError(t, err)
	assert.True(t, res.AutoConfirmUser)
	assert.GreaterOrEqual(t, logger.count("error"), 1)
}

func TestCreateChallenge_BindsAndDelivers(t *testing.T) {
	notifier := &MockNotifier{}
	notifier.On("Send", mock.Anything, mock.MatchedBy(func(msg passwordless.Message) bool {
		return msg.To == "user@example.com" && msg.From == passwordless.DefaultSenderAddress
	})).Return(nil)

	h := newHooks(t, testConfig(), passwordless.WithNotifier(notifier))

	params, err := h.CreateChallenge(context.Background(), passwordless.CreateChallengeEvent{
		Kind:        passwordless.ChallengeCustom,
		Destination: "user@example.com",
	})

	require.NoError(t, err)
	assert.Len(t, params.BoundCode(), 6)
	assert.Equal(t, "CODE-"+params.BoundCode(), params.Metadata)
	assert.Empty(t, params.Public)
	notifier.AssertExpectations(t)
}

func TestCreateChallenge_DeliveryFailureKeepsRoundOpen(t *testing.T) {
	notifier := &MockNotifier{}
	notifier.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp timeout"))
	logger := newCaptureLogger()

	h := newHooks(t, testConfig(),
		passwordless.WithNotifier(notifier),
		passwordless.WithLogger(logger),
	)

	params, err := h.CreateChallenge(context.Background(), passwordless.CreateChallengeEvent{
		Destination: "user@example.com",
	})

	// The round keeps its bound code, the failure is only logged.
	require.NoError(t, err)
	assert.Len(t, params.BoundCode(), 6)
	assert.GreaterOrEqual(t, logger.count("error"), 1)
}

func TestCreateChallenge_NoNotifierConfigured(t *testing.T) {
	logger := newCaptureLogger()
	h := newHooks(t, testConfig(), passwordless.WithLogger(logger))

	params, err := h.CreateChallenge(context.Background(), passwordless.CreateChallengeEvent{
		Destination: "user@example.com",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, params.BoundCode())
	assert.GreaterOrEqual(t, logger.count("warn"), 1)
}

func TestCreateChallenge_IgnoresNonCustomKinds(t *testing.T) {
	h := newHooks(t, testConfig())

	params, err := h.CreateChallenge(context.Background(), passwordless.CreateChallengeEvent{
		Kind: passwordless.ChallengeSRP,
	})

	require.NoError(t, err)
	assert.Empty(t, params.BoundCode())
}

func TestVerifyChallenge(t *testing.T) {
	sink := &recordingSink{}
	h := newHooks(t, testConfig(), passwordless.WithActivitySink(sink))

	params, err := h.CreateChallenge(context.Background(), passwordless.CreateChallengeEvent{
		Destination: "user@example.com",
	})
	require.NoError(t, err)

	t.Run("correct answer", func(t *testing.T) {
		res, err := h.VerifyChallenge(context.Background(), passwordless.VerifyChallengeEvent{
			Private: params.Private,
			Answer:  params.BoundCode(),
		})

		require.NoError(t, err)
		assert.True(t, res.AnswerCorrect)
		assert.True(t, sink.has(passwordless.ActivityEventVerifySuccess))
	})

	t.Run("wrong answer", func(t *testing.T) {
		res, err := h.VerifyChallenge(context.Background(), passwordless.VerifyChallengeEvent{
			Private: params.Private,
			Answer:  "000000",
		})

		require.NoError(t, err)
		assert.False(t, res.AnswerCorrect)
		assert.True(t, sink.has(passwordless.ActivityEventVerifyFailure))
	})

	t.Run("missing private parameters", func(t *testing.T) {
		res, err := h.VerifyChallenge(context.Background(), passwordless.VerifyChallengeEvent{
			Answer: "123456",
		})

		require.NoError(t, err)
		assert.False(t, res.AnswerCorrect)
	})
}

func TestPreTokenIssuance(t *testing.T) {
	h := newHooks(t, testConfig())

	claims, err := h.PreTokenIssuance(context.Background(), passwordless.PreTokenEvent{
		Claims: fullCandidateClaims(),
	})

	require.NoError(t, err)
	assert.Len(t, claims, 3)
	assert.Equal(t, "true", claims["anonymous"])
}

func TestPostConfirmation(t *testing.T) {
	privileged := testConfig()
	privileged.PrivilegedEmails = []string{"Admin@Fagfilm.no"}

	t.Run("grants group to allow-listed email", func(t *testing.T) {
		userID := uuid.New()
		store := &MockIdentityStore{}
		store.On("AddToGroup", mock.Anything, userID, "admin").Return(nil)
		sink := &recordingSink{}

		h := newHooks(t, privileged,
			passwordless.WithIdentityStore(store),
			passwordless.WithActivitySink(sink),
		)

		err := h.PostConfirmation(context.Background(), passwordless.PostConfirmationEvent{
			UserID: userID.String(),
			Email:  "admin@fagfilm.no",
		})

		require.NoError(t, err)
		assert.True(t, sink.has(passwordless.ActivityEventGroupGranted))
		store.AssertExpectations(t)
	})

	t.Run("allow-list comparison is case insensitive", func(t *testing.T) {
		userID := uuid.New()
		store := &MockIdentityStore{}
		store.On("AddToGroup", mock.Anything, userID, "admin").Return(nil)

		h := newHooks(t, privileged, passwordless.WithIdentityStore(store))

		err := h.PostConfirmation(context.Background(), passwordless.PostConfirmationEvent{
			UserID: userID.String(),
			Email:  "ADMIN@FAGFILM.NO",
		})

		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("resolves user by email when id is not a uuid", func(t *testing.T) {
		userID := uuid.New()
		store := &MockIdentityStore{}
		store.On("GetByEmail", mock.Anything, "admin@fagfilm.no").
			Return(&passwordless.User{ID: userID, Email: "admin@fagfilm.no"}, nil)
		store.On("AddToGroup", mock.Anything, userID, "admin").Return(nil)

		h := newHooks(t, privileged, passwordless.WithIdentityStore(store))

		err := h.PostConfirmation(context.Background(), passwordless.PostConfirmationEvent{
			UserID: "external-username",
			Email:  "admin@fagfilm.no",
		})

		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("ordinary email gets no grant", func(t *testing.T) {
		store := &MockIdentityStore{}

		h := newHooks(t, privileged, passwordless.WithIdentityStore(store))

		err := h.PostConfirmation(context.Background(), passwordless.PostConfirmationEvent{
			UserID: uuid.NewString(),
			Email:  "someone@example.com",
		})

		require.NoError(t, err)
		store.AssertNotCalled(t, "AddToGroup", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("grant failure never blocks confirmation", func(t *testing.T) {
		userID := uuid.New()
		store := &MockIdentityStore{}
		store.On("AddToGroup", mock.Anything, userID, "admin").Return(errors.New("group missing"))
		logger := newCaptureLogger()

		h := newHooks(t, privileged,
			passwordless.WithIdentityStore(store),
			passwordless.WithLogger(logger),
		)

		err := h.PostConfirmation(context.Background(), passwordless.PostConfirmationEvent{
			UserID: userID.String(),
			Email:  "admin@fagfilm.no",
		})

		require.NoError(t, err)
		assert.GreaterOrEqual(t, logger.count("error"), 1)
	})
}

// TestFullExchange_HappyPath walks a complete three-hook exchange: open a
// round, answer correctly, issue tokens with redacted claims.
func TestFullExchange_HappyPath(t *testing.T) {
	notifier := &MockNotifier{}
	var delivered passwordless.Message
	notifier.On("Send", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		delivered = args.Get(1).(passwordless.Message)
	}).Return(nil)

	h := newHooks(t, testConfig(), passwordless.WithNotifier(notifier))
	ctx := context.Background()

	var rounds passwordless.ChallengeHistory

	decision, err := h.DefineChallenge(ctx, passwordless.DefineChallengeEvent{UserExists: true, Rounds: rounds})
	require.NoError(t, err)
	require.Equal(t, passwordless.ChallengeCustom, decision.NextChallenge)

	params, err := h.CreateChallenge(ctx, passwordless.CreateChallengeEvent{
		Kind:        decision.NextChallenge,
		Destination: "user@example.com",
	})
	require.NoError(t, err)
	assert.Contains(t, delivered.TextBody, params.BoundCode())

	verdict, err := h.VerifyChallenge(ctx, passwordless.VerifyChallengeEvent{
		Private: params.Private,
		Answer:  params.BoundCode(),
	})
	require.NoError(t, err)
	require.True(t, verdict.AnswerCorrect)

	rounds = rounds.Append(passwordless.ChallengeRound{
		Kind:   passwordless.ChallengeCustom,
		Result: passwordless.RoundSucceeded,
	})

	decision, err = h.DefineChallenge(ctx, passwordless.DefineChallengeEvent{UserExists: true, Rounds: rounds})
	require.NoError(t, err)
	assert.True(t, decision.IssueTokens)

	claims, err := h.PreTokenIssuance(ctx, passwordless.PreTokenEvent{Claims: map[string]any{
		"email": "user@example.com",
		"name":  "should vanish",
	}})
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", claims["email"])
	_, leaked := claims["name"]
	assert.False(t, leaked)
}

// TestFullExchange_ExhaustedBudget walks three wrong answers into the
// terminal failure.
func TestFullExchange_ExhaustedBudget(t *testing.T) {
	h := newHooks(t, testConfig())
	ctx := context.Background()

	var rounds passwordless.ChallengeHistory

	for i := 0; i < 3; i++ {
		decision, err := h.DefineChallenge(ctx, passwordless.DefineChallengeEvent{UserExists: true, Rounds: rounds})
		require.NoError(t, err)
		require.Equal(t, passwordless.ChallengeCustom, decision.NextChallenge, "attempt %d", i+1)

		params, err := h.CreateChallenge(ctx, passwordless.CreateChallengeEvent{
			Destination: "user@example.com",
		})
		require.NoError(t, err)

		verdict, err := h.VerifyChallenge(ctx, passwordless.VerifyChallengeEvent{
			Private: params.Private,
			Answer:  "wrong!",
		})
		require.NoError(t, err)
		require.False(t, verdict.AnswerCorrect)

		rounds = rounds.Append(passwordless.ChallengeRound{
			Kind:   passwordless.ChallengeCustom,
			Result: passwordless.RoundFailed,
		})
	}

	decision, err := h.DefineChallenge(ctx, passwordless.DefineChallengeEvent{UserExists: true, Rounds: rounds})
	require.NoError(t, err)
	assert.True(t, decision.FailAuthentication)
	assert.False(t, decision.IssueTokens)
}
