package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/reviewdeck/reviewdeck/internal/core/domain"
	"github.com/reviewdeck/reviewdeck/internal/core/ports"
)

// UserService implements admin user management and the self profile.
// Request-level authorization for the admin surface happens in the HTTP
// layer via the policy engine; this service only performs the mutations.
type UserService struct {
	users ports.UserRepository
	log   zerolog.Logger
}

func NewUserService(users ports.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{users: users, log: log}
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) Get(ctx context.Context, username string) (*domain.User, error) {
	return s.users.FindByUsername(ctx, username)
}

// Create adds a user through the admin surface. Unlike self-service
// registration the role is settable, and the account starts active.
func (s *UserService) Create(ctx context.Context, in ports.UserInput) (*domain.User, error) {
	if err := domain.ValidateUsername(in.Username); err != nil {
		return nil, err
	}
	if err := domain.ValidateEmail(in.Email); err != nil {
		return nil, err
	}
	role := domain.RoleUser
	if in.Role != "" {
		var err error
		if role, err = domain.ParseRole(in.Role); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	draft := &domain.User{
		Username:  in.Username,
		Email:     in.Email,
		Role:      role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyProfileFields(draft, in.FirstName, in.LastName, in.Bio)
	user, err := s.users.Create(ctx, draft)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("username", user.Username).Str("role", string(user.Role)).Msg("user created by admin")
	return user, nil
}

// Update modifies a user through the admin surface; this is the only path
// that may change a role.
func (s *UserService) Update(ctx context.Context, username string, in ports.UserInput) (*domain.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if in.Email != "" {
		if err := domain.ValidateEmail(in.Email); err != nil {
			return nil, err
		}
		user.Email = in.Email
	}
	if in.Role != "" {
		role, err := domain.ParseRole(in.Role)
		if err != nil {
			return nil, err
		}
		user.Role = role
	}
	applyProfileFields(user, in.FirstName, in.LastName, in.Bio)
	user.UpdatedAt = time.Now().UTC()

	return s.users.Update(ctx, user)
}

func (s *UserService) Delete(ctx context.Context, username string) error {
	return s.users.Delete(ctx, username)
}

// UpdateSelf applies a profile edit for the authenticated user. The input
// carries no role on purpose: whatever the client sent, the stored role is
// kept as-is.
func (s *UserService) UpdateSelf(ctx context.Context, actor *domain.User, in ports.SelfUpdateInput) (*domain.User, error) {
	user, err := s.users.FindByUsername(ctx, actor.Username)
	if err != nil {
		return nil, err
	}

	if in.Email != "" {
		if err := domain.ValidateEmail(in.Email); err != nil {
			return nil, err
		}
		user.Email = in.Email
	}
	applyProfileFields(user, in.FirstName, in.LastName, in.Bio)
	user.UpdatedAt = time.Now().UTC()

	return s.users.Update(ctx, user)
}

// applyProfileFields copies only the profile fields present in the payload;
// nil pointers keep whatever is stored.
func applyProfileFields(user *domain.User, firstName, lastName, bio *string) {
	if firstName != nil {
		user.FirstName = *firstName
	}
	if lastName != nil {
		user.LastName = *lastName
	}
	if bio != nil {
		user.Bio = *bio
	}
}
