// Package policy is the authorization decision point. Every privilege
// check in the system goes through it; no other package inspects a user's
// role directly.
//
// Decisions are two-phase. The request-level phase (Allowed) needs only the
// actor and the kind of operation, and runs before any resource lookup. The
// object-level phase (AllowedObject) runs once the target resource is
// resolved and compares ownership against the actor's privileges.
package policy

import "github.com/reviewdeck/reviewdeck/internal/core/domain"

// Verb is the coarse operation kind a request performs.
type Verb int

const (
	Read Verb = iota
	Write
)

// Class partitions resources by the policy that governs them.
type Class int

const (
	// Catalog covers titles, genres and categories: readable by anyone,
	// writable only by admins.
	Catalog Class = iota
	// UserAdmin covers the user-management endpoints: admin only for both
	// verbs, so unauthorized actors cannot even learn a username exists.
	UserAdmin
	// SelfProfile covers the authenticated user's own profile.
	SelfProfile
	// Contribution covers reviews and comments: readable by anyone; any
	// authenticated actor may attempt a write, with the object phase
	// restricting it to the author, moderators and admins.
	Contribution
)

func (c Class) String() string {
	switch c {
	case Catalog:
		return "catalog"
	case UserAdmin:
		return "users"
	case SelfProfile:
		return "self"
	case Contribution:
		return "contribution"
	}
	return "unknown"
}

// Allowed is the request-level decision. A nil actor is an anonymous
// request. Failing this phase short-circuits before any resource is
// fetched.
func Allowed(actor *domain.User, verb Verb, class Class) bool {
	switch class {
	case Catalog:
		return verb == Read || isAdmin(actor)
	case UserAdmin:
		return isAdmin(actor)
	case SelfProfile:
		return actor != nil
	case Contribution:
		return verb == Read || actor != nil
	}
	return false
}

// AllowedObject is the object-level decision for owned resources
// (reviews and comments). Reads are public; writes require the actor to be
// the owner, a moderator, or an admin.
func AllowedObject(actor *domain.User, verb Verb, owner string) bool {
	if verb == Read {
		return true
	}
	if actor == nil {
		return false
	}
	return isAdmin(actor) || isModerator(actor) || actor.Username == owner
}

func isAdmin(u *domain.User) bool {
	return u != nil && (u.Superuser || u.Role == domain.RoleAdmin)
}

func isModerator(u *domain.User) bool {
	return u != nil && u.Role == domain.RoleModerator
}
