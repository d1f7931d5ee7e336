package domain

import "errors"

// Sentinel errors shared across services. The HTTP error handler is the
// single place that maps these onto status codes.
var (
	// ErrValidation covers malformed or forbidden field values (reserved
	// username, score out of range, bad role string). Wrapped with detail
	// at the call site.
	ErrValidation = errors.New("validation failed")

	// Uniqueness conflicts. The store's unique indexes are the race guard;
	// application pre-checks only pick the more precise variant.
	ErrUsernameTaken = errors.New("username already used for different email")
	ErrEmailTaken    = errors.New("email already used for different username")
	ErrReviewExists  = errors.New("duplicate review")

	ErrInvalidCode     = errors.New("invalid confirmation code")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access forbidden")

	ErrUserNotFound     = errors.New("user not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrGenreNotFound    = errors.New("genre not found")
	ErrTitleNotFound    = errors.New("title not found")
	ErrReviewNotFound   = errors.New("review not found")
	ErrCommentNotFound  = errors.New("comment not found")

	// ErrMailDispatch reports a failed confirmation-code delivery. The
	// registration it follows is already committed and is never rolled back.
	ErrMailDispatch = errors.New("confirmation email could not be delivered")
)
