package resolver

import (
	"context"
	"errors"

	"user-service/internal/auth"
	"user-service/internal/user"
)

type userService interface {
	GetByEmail(ctx context.Context, query *user.GetUserByEmailQuery) (*user.User, error)
	Create(ctx context.Context, cmd *user.CreateUserCommand) (*user.User, error)
}

// UserResolver links external identities to user accounts by email,
// provisioning an account on first login.
type UserResolver struct {
	users userService
}

func NewUserResolver(users userService) *UserResolver {
	return &UserResolver{users: users}
}

func (r *UserResolver) Resolve(
	ctx context.Context,
	identity *auth.Identity,
) (*user.User, error) {

	if identity == nil {
		return nil, errors.New("identity is nil")
	}

	usr, err := r.users.GetByEmail(ctx, &user.GetUserByEmailQuery{
		Email: identity.Email,
	})
	if err == nil {
		return usr, nil
	}
	if !errors.Is(err, user.ErrUserNotFound) {
		return nil, err
	}

	// first login for this email: provision an account
	return r.users.Create(ctx, &user.CreateUserCommand{
		Login:         identity.Email,
		Email:         identity.Email,
		Name:          identity.Name,
		EmailVerified: identity.EmailVerified,
	})
}
