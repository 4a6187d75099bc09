package passwordless

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole string

const (
	// RoleMember is the default role for new accounts
	RoleMember UserRole = "member"
	// RoleAdmin is granted through the privileged allow-list
	RoleAdmin UserRole = "admin"
)

// UserStatus tracks the account lifecycle.
type UserStatus string

const (
	// UserStatusPending is a registered but unconfirmed account
	UserStatusPending UserStatus = "pending"
	// UserStatusActive is a confirmed account
	UserStatusActive UserStatus = "active"
)

// User is the account record backing a (possibly synthetic) identity. For
// anonymized accounts the email is the synthetic handle and no personal
// fields are ever written.
type User struct {
	bun.BaseModel  `bun:"table:users,alias:usr"`
	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role           UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	Status         UserStatus `bun:"status,notnull" json:"status,omitempty"`
	Username       string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email          string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone          string     `bun:"phone_number" json:"phone_number,omitempty"`
	PasswordHash   string     `bun:"password_hash" json:"-"`
	Anonymous      bool       `bun:"is_anonymous" json:"is_anonymous,omitempty"`
	EmailValidated bool       `bun:"is_email_verified" json:"is_email_verified,omitempty"`
	ConfirmedAt    *time.Time `bun:"confirmed_at,nullzero" json:"confirmed_at,omitempty"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt      *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// EnsureDefaults fills role and status for freshly built records.
func (u *User) EnsureDefaults() *User {
	if !u.Role.IsValid() {
		u.Role = RoleMember
	}
	if u.Status == "" {
		u.Status = UserStatusPending
	}
	return u
}

// IsConfirmed reports whether the account finished sign-up.
func (u *User) IsConfirmed() bool {
	return u.Status == UserStatusActive
}

// GroupMembership records a user's membership in a named group.
type GroupMembership struct {
	bun.BaseModel `bun:"table:group_memberships,alias:grp"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User          *User      `bun:"rel:has-one,join:user_id=id" json:"user,omitempty"`
	GroupName     string     `bun:"group_name,notnull" json:"group_name,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}
