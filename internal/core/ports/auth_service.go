package ports

import (
	"context"

	"github.com/reviewdeck/reviewdeck/internal/core/domain"
)

// AuthService implements passwordless registration and the code-for-token
// exchange.
type AuthService interface {
	// SignUp registers (or idempotently re-registers) a user and dispatches
	// a confirmation code to their email. The returned user is durably
	// committed even when the returned error is domain.ErrMailDispatch.
	SignUp(ctx context.Context, username, email string) (*domain.User, error)

	// Exchange verifies a confirmation code and mints a bearer token. The
	// exchange activates the user and stamps last_login, which invalidates
	// the code that was just used.
	Exchange(ctx context.Context, username, code string) (string, error)

	// Authenticate verifies a bearer token and resolves the identity it
	// names against the store.
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}
