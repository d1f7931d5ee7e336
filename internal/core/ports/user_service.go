package ports

import (
	"context"

	"github.com/reviewdeck/reviewdeck/internal/core/domain"
)

// UserInput carries the admin-settable fields of a user record. Pointer
// fields are optional: nil means the field was absent from the payload and
// the stored value is kept.
type UserInput struct {
	Username  string
	Email     string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      string
}

// SelfUpdateInput carries the fields a user may change on their own
// profile. Role is deliberately absent: self-service updates can never
// escalate privilege. Nil pointers leave the stored value untouched.
type SelfUpdateInput struct {
	Email     string
	FirstName *string
	LastName  *string
	Bio       *string
}

// UserService implements admin user management and the self profile.
type UserService interface {
	List(ctx context.Context) ([]*domain.User, error)
	Get(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, in UserInput) (*domain.User, error)
	Update(ctx context.Context, username string, in UserInput) (*domain.User, error)
	Delete(ctx context.Context, username string) error
	UpdateSelf(ctx context.Context, actor *domain.User, in SelfUpdateInput) (*domain.User, error)
}
