package passwordless

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the full account repository. The narrow IdentityStore interface
// the hooks consume is a subset of it.
type Users interface {
	repository.Repository[*User]

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Confirm(ctx context.Context, id uuid.UUID, verifyEmail bool) error
	ConfirmTx(ctx context.Context, tx bun.IDB, id uuid.UUID, verifyEmail bool) error
	AddToGroup(ctx context.Context, userID uuid.UUID, group string) error
	IsInGroup(ctx context.Context, userID uuid.UUID, group string) (bool, error)
}

type users struct {
	repository.Repository[*User]
	db     *bun.DB
	groups repository.Repository[*GroupMembership]
}

var (
	_ Users         = (*users)(nil)
	_ IdentityStore = (*users)(nil)
)

// NewUsersRepository builds the bun-backed account repository.
func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	groups := repository.NewRepository[*GroupMembership](db, repository.ModelHandlers[*GroupMembership]{
		NewRecord: func() *GroupMembership { return &GroupMembership{} },
		GetID: func(g *GroupMembership) uuid.UUID {
			if g == nil {
				return uuid.Nil
			}
			return g.ID
		},
		SetID: func(g *GroupMembership, id uuid.UUID) {
			if g != nil {
				g.ID = id
			}
		},
	})

	return &users{
		Repository: repo,
		db:         db,
		groups:     groups,
	}
}

// Register creates the account row, filling passwordless defaults: a
// throwaway credential hash, a username derived from the email, and for
// anonymous accounts a deterministic ID derived from the synthetic email so
// repeated registrations converge on the same row.
func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	if user == nil || user.Email == "" {
		return nil, errors.New("user email is required", errors.CategoryBadInput)
	}

	user.EnsureDefaults()
	if user.Username == "" {
		user.Username = usernameFromEmail(user.Email)
	}
	if user.PasswordHash == "" {
		user.PasswordHash = ThrowawayPasswordHash()
	}
	if user.Anonymous && user.ID == uuid.Nil {
		if id, err := hashid.NewUUID(user.Email); err == nil {
			user.ID = id
		}
	}

	created, err := a.GetOrCreateTx(ctx, tx, user)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryConflict, "could not register user")
	}
	return created, nil
}

// GetByEmail resolves an account by its unique email handle.
func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	user, err := a.GetByIdentifier(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user by email")
	}
	return user, nil
}

// Confirm moves the account to active and optionally marks the email
// verified, mirroring the platform's auto-confirm signal.
func (a *users) Confirm(ctx context.Context, id uuid.UUID, verifyEmail bool) error {
	return a.ConfirmTx(ctx, a.db, id, verifyEmail)
}

func (a *users) ConfirmTx(ctx context.Context, tx bun.IDB, id uuid.UUID, verifyEmail bool) error {
	now := time.Now()
	q := tx.NewUpdate().
		Model((*User)(nil)).
		Set("status = ?", UserStatusActive).
		Set("confirmed_at = ?", now).
		Set("updated_at = ?", now).
		Where("usr.id = ?", id).
		Where("usr.deleted_at IS NULL")

	if verifyEmail {
		q = q.Set("is_email_verified = ?", true)
	}

	if _, err := q.Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to confirm user")
	}
	return nil
}

// AddToGroup grants group membership, idempotently.
func (a *users) AddToGroup(ctx context.Context, userID uuid.UUID, group string) error {
	member, err := a.IsInGroup(ctx, userID, group)
	if err != nil {
		return err
	}
	if member {
		return nil
	}

	membership := &GroupMembership{
		ID:        uuid.New(),
		UserID:    userID,
		GroupName: group,
	}
	if _, err := a.groups.Create(ctx, membership); err != nil {
		return errors.Wrap(err, errors.CategoryConflict, "could not grant group membership")
	}
	return nil
}

// IsInGroup reports existing membership.
func (a *users) IsInGroup(ctx context.Context, userID uuid.UUID, group string) (bool, error) {
	count, err := a.db.NewSelect().
		Model((*GroupMembership)(nil)).
		Where("grp.user_id = ?", userID).
		Where("grp.group_name = ?", group).
		Count(ctx)
	if err != nil {
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to check group membership")
	}
	return count > 0, nil
}

func usernameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
