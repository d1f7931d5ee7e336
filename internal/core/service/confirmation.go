package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/reviewdeck/reviewdeck/internal/core/domain"
)

// codePurpose tags confirmation codes so the HMAC can never collide with a
// signature minted for another purpose.
const codePurpose = "signup-confirmation"

// CodeIssuer derives single-use confirmation codes from a user's current
// state. Codes are never stored: Issue is a pure HMAC over the user's
// identity and a fingerprint of their mutable state, so any state change
// (activation, profile edit, login) silently invalidates every code issued
// before it.
type CodeIssuer struct {
	secret []byte
}

func NewCodeIssuer(secret string) *CodeIssuer {
	return &CodeIssuer{secret: []byte(secret)}
}

// Issue returns the confirmation code valid for the user's current state.
func (i *CodeIssuer) Issue(u *domain.User) string {
	mac := hmac.New(sha256.New, i.secret)
	fmt.Fprintf(mac, "%s\x00%s\x00", codePurpose, u.ID)
	mac.Write(stateFingerprint(u))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the code for the user's current state and compares in
// constant time.
func (i *CodeIssuer) Verify(u *domain.User, code string) bool {
	return hmac.Equal([]byte(i.Issue(u)), []byte(code))
}

// stateFingerprint hashes every mutable field the code's validity is bound
// to. LastLogin and UpdatedAt are stamped on token exchange and on every
// profile update, which is what gives codes their single-use behaviour.
// Timestamps are hashed at millisecond precision: BSON datetimes truncate
// sub-millisecond components, so a code issued from an in-memory user must
// still verify against the same user read back from the store.
func stateFingerprint(u *domain.User) []byte {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%t|%d|%d",
		u.Email,
		u.Role,
		u.Active,
		u.LastLogin.UTC().UnixMilli(),
		u.UpdatedAt.UTC().UnixMilli(),
	)
	return h.Sum(nil)
}
