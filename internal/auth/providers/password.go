package providers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/lyceum-academy/lyceum/internal/auth"
	"github.com/lyceum-academy/lyceum/internal/store"
)

// UserFinder looks up accounts by normalized email. *store.Queries
// satisfies it.
type UserFinder interface {
	GetUserByEmail(ctx context.Context, email string) (store.User, error)
}

type PasswordProvider struct {
	Users UserFinder
}

// Provider turns credentials into a Principal. Password sign-in is the only
// method today.
type Provider interface {
	Name() string
	Authenticate(ctx context.Context, email, password string) (auth.Principal, error)
}

var _ Provider = (*PasswordProvider)(nil)

func NewPasswordProvider(users UserFinder) *PasswordProvider {
	return &PasswordProvider{Users: users}
}

func (p *PasswordProvider) Name() string {
	return auth.MethodPassword
}

// Authenticate checks email and password. Unknown, inactive and mismatched
// accounts all report ErrInvalidCredentials; a correct password on an
// unverified account reports ErrUnverified.
func (p *PasswordProvider) Authenticate(ctx context.Context, email, password string) (auth.Principal, error) {
	email = auth.NormalizeEmail(email)
	if email == "" || password == "" {
		return auth.Principal{}, auth.ErrInvalidCredentials
	}

	user, err := p.Users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.Principal{}, auth.ErrInvalidCredentials
		}
		return auth.Principal{}, err
	}
	if !user.IsActive {
		return auth.Principal{}, auth.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil {
		return auth.Principal{}, err
	}
	if !match {
		return auth.Principal{}, auth.ErrInvalidCredentials
	}
	if !user.IsVerified {
		return auth.Principal{}, auth.ErrUnverified
	}

	return PrincipalFromUser(user), nil
}

// PrincipalFromUser builds the session principal for a stored account.
func PrincipalFromUser(user store.User) auth.Principal {
	return auth.Principal{
		UserID:      user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        auth.NormalizeRole(user.Role),
		Method:      auth.MethodPassword,
		Permissions: user.Permissions,
	}
}
