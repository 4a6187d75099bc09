package passwordless

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// RegisterAnonymousUserMessage materializes the account behind a synthetic
// identity. Carries only derived values, never provider attributes.
type RegisterAnonymousUserMessage struct {
	PseudonymHash  string `json:"pseudonym_hash"`
	SyntheticEmail string `json:"synthetic_email"`
}

func (e RegisterAnonymousUserMessage) Type() string { return "user.register_anonymous" }

// RegisterAnonymousUserHandler executes the registration inside a single
// transaction: create-or-find the account, then confirm it so the synthetic
// identity can sign in immediately.
type RegisterAnonymousUserHandler struct {
	repo RepositoryManager
}

// NewRegisterAnonymousUserHandler wires the handler to its repositories.
func NewRegisterAnonymousUserHandler(repo RepositoryManager) *RegisterAnonymousUserHandler {
	return &RegisterAnonymousUserHandler{repo: repo}
}

var _ AnonymousRegistrar = (*RegisterAnonymousUserHandler)(nil)

// RegisterAnonymous adapts the handler to the registrar interface the
// sign-up hook consumes.
func (h *RegisterAnonymousUserHandler) RegisterAnonymous(ctx context.Context, identity AnonymizedIdentity) error {
	return h.Execute(ctx, RegisterAnonymousUserMessage{
		PseudonymHash:  identity.PseudonymHash,
		SyntheticEmail: identity.SyntheticEmail,
	})
}

func (h *RegisterAnonymousUserHandler) Execute(ctx context.Context, event RegisterAnonymousUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during anonymous registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterAnonymousUserHandler) execute(ctx context.Context, event RegisterAnonymousUserMessage) error {
	if event.SyntheticEmail == "" {
		return goerrors.New("synthetic email is required", goerrors.CategoryBadInput)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user := &User{
			Email:     event.SyntheticEmail,
			Username:  event.PseudonymHash,
			Anonymous: true,
		}

		user, err := h.repo.Users().RegisterTx(ctx, tx, user)
		if err != nil {
			return err
		}

		if user.IsConfirmed() {
			return nil
		}

		// Synthetic addresses are not deliverable, the email is marked
		// verified by construction.
		return h.repo.Users().ConfirmTx(ctx, tx, user.ID, true)
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "anonymous registration transaction failed")
	}

	return nil
}
