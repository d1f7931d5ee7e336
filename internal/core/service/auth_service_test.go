package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/reviewdeck/reviewdeck/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub identity store
// ---------------------------------------------------------------------------

// stubUserRepo enforces the same uniqueness the Mongo indexes do, under a
// lock, so it can stand in for the store in concurrency tests too.
type stubUserRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User // keyed by username
	nextID int

	createErr error
	updateErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		clone := *u
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Username]; ok {
		return nil, domain.ErrUsernameTaken
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	r.nextID++
	clone := *user
	clone.ID = fmt.Sprintf("u-%d", r.nextID)
	r.users[clone.Username] = &clone
	result := clone
	return &result, nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Username]; !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *user
	r.users[clone.Username] = &clone
	result := clone
	return &result, nil
}

func (r *stubUserRepo) Delete(_ context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[username]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, username)
	return nil
}

// ---------------------------------------------------------------------------
// Stub mailer
// ---------------------------------------------------------------------------

type sentMail struct {
	to, subject, body string
}

type stubMailer struct {
	sent    []sentMail
	sendErr error
}

func (m *stubMailer) Send(_ context.Context, to, subject, body string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

func newAuthFixture() (*AuthService, *stubUserRepo, *stubMailer, *CodeIssuer) {
	repo := newStubUserRepo()
	mailer := &stubMailer{}
	codes := NewCodeIssuer("test-code-secret")
	svc := NewAuthService(repo, codes, mailer, "test-jwt-secret", time.Hour, discardLogger)
	return svc, repo, mailer, codes
}

// ---------------------------------------------------------------------------
// SignUp tests
// ---------------------------------------------------------------------------

func TestAuthService_SignUp_CreatesInactiveUser(t *testing.T) {
	svc, repo, mailer, codes := newAuthFixture()

	user, err := svc.SignUp(context.Background(), "alice", "alice@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Errorf("expected role %q, got %q", domain.RoleUser, user.Role)
	}
	if user.Active {
		t.Error("self-registered user must start inactive")
	}

	stored := repo.users["alice"]
	if stored == nil {
		t.Fatal("user must be persisted")
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected 1 mail, got %d", len(mailer.sent))
	}
	if mailer.sent[0].to != "alice@example.com" {
		t.Errorf("mail recipient: %q", mailer.sent[0].to)
	}
	if !strings.Contains(mailer.sent[0].body, codes.Issue(stored)) {
		t.Error("mail body must carry the confirmation code for the stored state")
	}
}

func TestAuthService_SignUp_ReservedUsername(t *testing.T) {
	svc, repo, mailer, _ := newAuthFixture()

	for _, username := range []string{"me", "ME", "Me", "mE"} {
		_, err := svc.SignUp(context.Background(), username, "x@example.com")
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("username %q: expected ErrValidation, got %v", username, err)
		}
	}
	if len(repo.users) != 0 {
		t.Error("reserved username must never be stored")
	}
	if len(mailer.sent) != 0 {
		t.Error("no mail may be sent for a rejected signup")
	}
}

func TestAuthService_SignUp_InvalidInput(t *testing.T) {
	svc, _, _, _ := newAuthFixture()

	cases := []struct {
		name, username, email string
	}{
		{"empty username", "", "a@example.com"},
		{"forbidden characters", "no spaces", "a@example.com"},
		{"username too long", strings.Repeat("a", domain.MaxUsernameLen+1), "a@example.com"},
		{"empty email", "alice", ""},
		{"malformed email", "alice", "not-an-email"},
		{"email too long", "alice", strings.Repeat("a", domain.MaxEmailLen) + "@x.io"},
	}
	for _, tc := range cases {
		if _, err := svc.SignUp(context.Background(), tc.username, tc.email); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", tc.name, err)
		}
	}
}

func TestAuthService_SignUp_IdempotentReissue(t *testing.T) {
	svc, repo, mailer, _ := newAuthFixture()

	first, err := svc.SignUp(context.Background(), "alice", "alice@example.com")
	if err != nil {
		t.Fatalf("first signup: %v", err)
	}
	second, err := svc.SignUp(context.Background(), "alice", "alice@example.com")
	if err != nil {
		t.Fatalf("repeat signup must succeed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("repeat signup must resolve the same account: %q vs %q", second.ID, first.ID)
	}
	if len(repo.users) != 1 {
		t.Errorf("expected 1 stored user, got %d", len(repo.users))
	}
	if len(mailer.sent) != 2 {
		t.Errorf("each signup must re-send the code; got %d mails", len(mailer.sent))
	}
	if mailer.sent[0].body != mailer.sent[1].body {
		t.Error("unchanged state must reissue the identical code")
	}
}

func TestAuthService_SignUp_UsernameConflict(t *testing.T) {
	svc, _, _, _ := newAuthFixture()

	if _, err := svc.SignUp(context.Background(), "alice", "alice@example.com"); err != nil {
		t.Fatalf("seed signup: %v", err)
	}
	_, err := svc.SignUp(context.Background(), "alice", "other@example.com")
	if !errors.Is(err, domain.ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestAuthService_SignUp_EmailConflict(t *testing.T) {
	svc, _, _, _ := newAuthFixture()

	if _, err := svc.SignUp(context.Background(), "alice", "alice@example.com"); err != nil {
		t.Fatalf("seed signup: %v", err)
	}
	_, err := svc.SignUp(context.Background(), "bob", "alice@example.com")
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthService_SignUp_MailFailureKeepsUser(t *testing.T) {
	svc, repo, mailer, _ := newAuthFixture()
	mailer.sendErr = errors.New("smtp unreachable")

	user, err := svc.SignUp(context.Background(), "alice", "alice@example.com")
	if !errors.Is(err, domain.ErrMailDispatch) {
		t.Fatalf("expected ErrMailDispatch, got %v", err)
	}
	if user == nil || user.Username != "alice" {
		t.Fatal("committed user must be returned alongside the dispatch error")
	}
	if repo.users["alice"] == nil {
		t.Error("registration must not be rolled back on mail failure")
	}

	// Recovery path: resend works once the mailer is healthy again.
	mailer.sendErr = nil
	if _, err := svc.SignUp(context.Background(), "alice", "alice@example.com"); err != nil {
		t.Fatalf("re-signup after mail failure: %v", err)
	}
	if len(mailer.sent) != 1 {
		t.Errorf("expected 1 delivered mail, got %d", len(mailer.sent))
	}
}

// ---------------------------------------------------------------------------
// Exchange tests
// ---------------------------------------------------------------------------

func signUpAndCode(t *testing.T, svc *AuthService, repo *stubUserRepo, codes *CodeIssuer, username, email string) string {
	t.Helper()
	if _, err := svc.SignUp(context.Background(), username, email); err != nil {
		t.Fatalf("signup: %v", err)
	}
	return codes.Issue(repo.users[username])
}

func TestAuthService_Exchange_IssuesToken(t *testing.T) {
	svc, repo, _, codes := newAuthFixture()
	code := signUpAndCode(t, svc, repo, codes, "alice", "alice@example.com")

	token, err := svc.Exchange(context.Background(), "alice", code)
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-jwt-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token must verify under the signing secret: %v", err)
	}
	if claims["sub"] != "alice" {
		t.Errorf("sub claim: %v", claims["sub"])
	}
	if claims["role"] != "user" {
		t.Errorf("role claim: %v", claims["role"])
	}

	stored := repo.users["alice"]
	if !stored.Active {
		t.Error("exchange must activate the user")
	}
	if stored.LastLogin.IsZero() {
		t.Error("exchange must stamp last login")
	}
}

func TestAuthService_Exchange_UnknownUser(t *testing.T) {
	svc, _, _, _ := newAuthFixture()

	_, err := svc.Exchange(context.Background(), "ghost", "whatever")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_Exchange_WrongCode(t *testing.T) {
	svc, repo, _, codes := newAuthFixture()
	signUpAndCode(t, svc, repo, codes, "alice", "alice@example.com")

	_, err := svc.Exchange(context.Background(), "alice", "0000000000000000")
	if !errors.Is(err, domain.ErrInvalidCode) {
		t.Errorf("expected ErrInvalidCode, got %v", err)
	}
	if repo.users["alice"].Active {
		t.Error("failed exchange must not activate the user")
	}
}

func TestAuthService_Exchange_CodeIsSingleUse(t *testing.T) {
	svc, repo, _, codes := newAuthFixture()
	code := signUpAndCode(t, svc, repo, codes, "alice", "alice@example.com")

	if _, err := svc.Exchange(context.Background(), "alice", code); err != nil {
		t.Fatalf("first exchange: %v", err)
	}

	// The exchange stamped last_login, which changed the state fingerprint
	// the code was bound to.
	_, err := svc.Exchange(context.Background(), "alice", code)
	if !errors.Is(err, domain.ErrInvalidCode) {
		t.Errorf("a consumed code must be rejected, got %v", err)
	}
}

func TestAuthService_Exchange_ProfileEditRetiresCode(t *testing.T) {
	svc, repo, _, codes := newAuthFixture()
	code := signUpAndCode(t, svc, repo, codes, "alice", "alice@example.com")

	// Any state change between issue and exchange retires the code.
	stored := repo.users["alice"]
	stored.UpdatedAt = stored.UpdatedAt.Add(time.Second)

	_, err := svc.Exchange(context.Background(), "alice", code)
	if !errors.Is(err, domain.ErrInvalidCode) {
		t.Errorf("expected ErrInvalidCode after state change, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Authenticate tests
// ---------------------------------------------------------------------------

func TestAuthService_Authenticate_RoundTrip(t *testing.T) {
	svc, repo, _, codes := newAuthFixture()
	code := signUpAndCode(t, svc, repo, codes, "alice", "alice@example.com")

	token, err := svc.Exchange(context.Background(), "alice", code)
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}

	user, err := svc.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("expected alice, got %q", user.Username)
	}
}

func TestAuthService_Authenticate_RejectsGarbage(t *testing.T) {
	svc, _, _, _ := newAuthFixture()

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := svc.Authenticate(context.Background(), token); !errors.Is(err, domain.ErrUnauthenticated) {
			t.Errorf("token %q: expected ErrUnauthenticated, got %v", token, err)
		}
	}
}

func TestAuthService_Authenticate_RejectsForeignSignature(t *testing.T) {
	svc, repo, _, codes := newAuthFixture()
	code := signUpAndCode(t, svc, repo, codes, "alice", "alice@example.com")
	token, err := svc.Exchange(context.Background(), "alice", code)
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}

	other := NewAuthService(repo, codes, &stubMailer{}, "different-secret", time.Hour, discardLogger)
	if _, err := other.Authenticate(context.Background(), token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("token signed under another secret must be rejected, got %v", err)
	}
}

func TestAuthService_Authenticate_RejectsExpiredToken(t *testing.T) {
	repo := newStubUserRepo()
	codes := NewCodeIssuer("test-code-secret")
	svc := NewAuthService(repo, codes, &stubMailer{}, "test-jwt-secret", time.Hour, discardLogger)

	if _, err := svc.SignUp(context.Background(), "alice", "alice@example.com"); err != nil {
		t.Fatalf("signup: %v", err)
	}

	// Mint an already-expired token under the same secret.
	now := time.Now().UTC()
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "alice",
		"role": "user",
		"iat":  now.Add(-2 * time.Hour).Unix(),
		"exp":  now.Add(-time.Hour).Unix(),
	}).SignedString([]byte("test-jwt-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), expired); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated for expired token, got %v", err)
	}
}
