package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the user model. A record is created on the first successful login
// for a previously unseen provider identity and never deleted by this
// package. RefreshToken and RefreshTokenExpiresAt are always set or cleared
// together; at most one live refresh token exists per user.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID                    uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	ProviderUserID        string     `bun:"provider_user_id,notnull,unique" json:"provider_user_id,omitempty"`
	Nickname              string     `bun:"nickname" json:"nickname,omitempty"`
	RefreshToken          *string    `bun:"refresh_token,nullzero" json:"-"`
	RefreshTokenExpiresAt *time.Time `bun:"refresh_token_expires_at,nullzero" json:"-"`
	CreatedAt             *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt             *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// UpdateRefreshToken replaces the stored refresh token and its expiry as a
// single unit.
func (u *User) UpdateRefreshToken(token string, expiresAt time.Time) *User {
	u.RefreshToken = &token
	u.RefreshTokenExpiresAt = &expiresAt
	return u
}

// RefreshTokenExpired reports whether the stored refresh token is unusable at
// the given instant. A record with no expiry counts as expired.
func (u *User) RefreshTokenExpired(now time.Time) bool {
	if u.RefreshTokenExpiresAt == nil {
		return true
	}
	return now.After(*u.RefreshTokenExpiresAt)
}
