package auth

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the user directory. Lookups return (nil, nil) when no record
// matches so callers can classify the miss themselves.
type Users interface {
	repository.Repository[*User]

	FindByProviderUserID(ctx context.Context, providerUserID string) (*User, error)
	FindByRefreshToken(ctx context.Context, token string) (*User, error)

	// FindOrCreateByProviderID returns the record for the provider identity, creating it
	// with a fresh internal id when unseen. Safe under concurrent logins for
	// the same identity.
	FindOrCreateByProviderID(ctx context.Context, providerUserID, nickname string) (*User, error)

	// ReplaceRefreshToken unconditionally installs a new refresh token and
	// expiry on the record, replacing whatever was there.
	ReplaceRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error

	// RotateRefreshToken installs the new token only if the stored value
	// still equals expected. Returns false when another rotation won the
	// race, which callers must treat as an invalid refresh token.
	RotateRefreshToken(ctx context.Context, userID uuid.UUID, expected, token string, expiresAt time.Time) (bool, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

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
			return "provider_user_id"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (r *users) FindByProviderUserID(ctx context.Context, providerUserID string) (*User, error) {
	return r.findOne(ctx, "provider_user_id = ?", providerUserID)
}

func (r *users) FindByRefreshToken(ctx context.Context, token string) (*User, error) {
	return r.findOne(ctx, "refresh_token = ?", token)
}

func (r *users) FindOrCreateByProviderID(ctx context.Context, providerUserID, nickname string) (*User, error) {
	if existing, err := r.FindByProviderUserID(ctx, providerUserID); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	user := &User{
		ID:             uuid.New(),
		ProviderUserID: providerUserID,
		Nickname:       nickname,
	}

	// DO NOTHING keeps concurrent first logins from failing; the re-select
	// below returns whichever insert won.
	if _, err := r.db.NewInsert().
		Model(user).
		On("CONFLICT (provider_user_id) DO NOTHING").
		Exec(ctx); err != nil {
		return nil, err
	}

	return r.FindByProviderUserID(ctx, providerUserID)
}

func (r *users) ReplaceRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	_, err := r.refreshUpdate(token, expiresAt).
		Where("usr.id = ?", userID).
		Exec(ctx)
	return err
}

func (r *users) RotateRefreshToken(ctx context.Context, userID uuid.UUID, expected, token string, expiresAt time.Time) (bool, error) {
	res, err := r.refreshUpdate(token, expiresAt).
		Where("usr.id = ?", userID).
		Where("usr.refresh_token = ?", expected).
		Exec(ctx)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}

func (r *users) refreshUpdate(token string, expiresAt time.Time) *bun.UpdateQuery {
	return r.db.NewUpdate().
		Model((*User)(nil)).
		Set("refresh_token = ?", token).
		Set("refresh_token_expires_at = ?", expiresAt).
		Set("updated_at = ?", time.Now())
}

func (r *users) findOne(ctx context.Context, where string, args ...any) (*User, error) {
	user := &User{}
	err := r.db.NewSelect().
		Model(user).
		Where(where, args...).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}
