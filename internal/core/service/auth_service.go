package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/reviewdeck/reviewdeck/internal/core/domain"
	"github.com/reviewdeck/reviewdeck/internal/core/ports"
)

const (
	signupMailSubject = "Your confirmation code"
	signupMailBody    = "Use this code to request an access token: "
)

// AuthService implements passwordless registration and the confirmation
// code / bearer token exchange. Signing configuration is injected at
// construction; there is no ambient state.
type AuthService struct {
	users     ports.UserRepository
	codes     *CodeIssuer
	mailer    ports.Mailer
	jwtSecret []byte
	tokenTTL  time.Duration
	log       zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	codes *CodeIssuer,
	mailer ports.Mailer,
	jwtSecret string,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:     users,
		codes:     codes,
		mailer:    mailer,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		log:       log,
	}
}

// SignUp registers a user and mails them a confirmation code. Calling it
// again with the same (username, email) pair is idempotent and re-issues
// the code, so a lost mail can be recovered without support intervention.
func (s *AuthService) SignUp(ctx context.Context, username, email string) (*domain.User, error) {
	if err := domain.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}

	byName, err := s.users.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	byEmail, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	var user *domain.User
	switch {
	case byName != nil && byEmail != nil && byName.ID == byEmail.ID:
		user = byName
	case byEmail != nil:
		return nil, domain.ErrEmailTaken
	case byName != nil:
		return nil, domain.ErrUsernameTaken
	default:
		now := time.Now().UTC()
		user, err = s.users.Create(ctx, &domain.User{
			Username:  username,
			Email:     email,
			Role:      domain.RoleUser,
			Active:    false,
			CreatedAt: now,
			UpdatedAt: now,
		})
		// The store's unique indexes decide concurrent signup races; the
		// lookups above only exist for the precise error message.
		if err != nil {
			return nil, err
		}
		s.log.Info().Str("username", user.Username).Msg("user registered")
	}

	code := s.codes.Issue(user)
	if err := s.mailer.Send(ctx, user.Email, signupMailSubject, signupMailBody+code); err != nil {
		// The user is already committed; delivery failure is reported but
		// never compensated.
		s.log.Warn().Err(err).Str("username", user.Username).Msg("confirmation mail dispatch failed")
		return user, domain.ErrMailDispatch
	}

	return user, nil
}

// Exchange trades a valid confirmation code for a signed bearer token. The
// user is activated and their last login stamped, which changes the state
// fingerprint and retires the code that was just presented.
func (s *AuthService) Exchange(ctx context.Context, username, code string) (string, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return "", err
	}

	if !s.codes.Verify(user, code) {
		return "", domain.ErrInvalidCode
	}

	now := time.Now().UTC()
	user.Active = true
	user.LastLogin = now
	user.UpdatedAt = now
	if user, err = s.users.Update(ctx, user); err != nil {
		return "", err
	}

	claims := jwt.MapClaims{
		"sub":  user.Username,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	s.log.Info().Str("username", user.Username).Msg("access token issued")
	return token, nil
}

// Authenticate verifies a bearer token and resolves the user it names.
// Signature and expiry checks are pure; only the final identity lookup
// touches the store.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid or expired token", domain.ErrUnauthenticated)
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("%w: token has no subject", domain.ErrUnauthenticated)
	}

	return s.users.FindByUsername(ctx, sub)
}
