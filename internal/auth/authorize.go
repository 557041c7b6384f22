package auth

// Decision is the outcome of an access-control check.
type Decision int

const (
	// Allow grants access to the resource.
	Allow Decision = iota

	// DenyUnauthenticated means the resource requires an identity and
	// none was presented.
	DenyUnauthenticated

	// DenyForbidden means an identity was presented but its role does
	// not satisfy the resource policy.
	DenyForbidden
)

// String returns the decision name for logging.
func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "deny_unauthenticated"
	case DenyForbidden:
		return "deny_forbidden"
	default:
		return "unknown"
	}
}

// Policy describes what a resource requires of its caller.
type Policy struct {
	// Public resources (home, login, register) need no identity at all.
	Public bool

	// RequiredRole restricts the resource to identities holding this
	// role. Empty means any authenticated identity is enough.
	RequiredRole Role
}

// Common resource policies.
var (
	PolicyPublic        = Policy{Public: true}
	PolicyAuthenticated = Policy{}
	PolicyAdminOnly     = Policy{RequiredRole: RoleAdmin}
)

// Authorize decides whether an identity may access a resource with the
// given policy. It is a pure function of its arguments: no I/O, no
// ambient request state.
//
// A nil identity represents an unauthenticated caller.
func Authorize(identity *Identity, policy Policy) Decision {
	if policy.Public {
		return Allow
	}
	if identity == nil {
		return DenyUnauthenticated
	}
	if policy.RequiredRole != "" && identity.Role != policy.RequiredRole {
		return DenyForbidden
	}
	return Allow
}
