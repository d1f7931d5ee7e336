package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Role is the closed set of privilege classes a user can hold.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ParseRole converts a wire string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleModerator, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
}

const (
	// ReservedUsername can never be registered; it is the path segment for
	// the self-profile endpoint.
	ReservedUsername = "me"

	MaxUsernameLen = 150
	MaxEmailLen    = 254
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// User models an account in the identity store.
type User struct {
	ID        string    `json:"-"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	Role      Role      `json:"role"`
	Superuser bool      `json:"-"`
	Active    bool      `json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
	LastLogin time.Time `json:"-"`
}

// ValidateUsername checks the syntactic rules for a username. The reserved
// value is rejected case-insensitively.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("%w: username is required", ErrValidation)
	}
	if len(username) > MaxUsernameLen {
		return fmt.Errorf("%w: username exceeds %d characters", ErrValidation, MaxUsernameLen)
	}
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("%w: username may only contain letters, digits and .@+-_", ErrValidation)
	}
	if strings.EqualFold(username, ReservedUsername) {
		return fmt.Errorf("%w: username %q is reserved", ErrValidation, ReservedUsername)
	}
	return nil
}

// ValidateEmail checks the syntactic rules for an email address. Format
// checking proper happens at the transport layer; this guards the length
// cap and presence so the service layer cannot be bypassed.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if len(email) > MaxEmailLen {
		return fmt.Errorf("%w: email exceeds %d characters", ErrValidation, MaxEmailLen)
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("%w: email is malformed", ErrValidation)
	}
	return nil
}
