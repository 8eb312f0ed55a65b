package entity

import "strings"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

// ParseRole maps a stored role to a known one; anything unrecognized is a
// plain user.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// LoginBranch records which path a password login took.
type LoginBranch string

const (
	// BranchTrustedMatch: the device token names the authenticated user, a
	// session is issued without an OTP step.
	BranchTrustedMatch LoginBranch = "trusted-match"
	// BranchTrustedMismatch: the device token is valid but names another user.
	BranchTrustedMismatch LoginBranch = "trusted-mismatch"
	// BranchUntrusted: no valid device token was presented.
	BranchUntrusted LoginBranch = "untrusted"
)

func (b LoginBranch) String() string {
	return string(b)
}

// IssuesSession reports whether the branch ends in a session.
func (b LoginBranch) IssuesSession() bool {
	return b == BranchTrustedMatch
}

// Authorization objects and actions enforced by casbin.
const (
	PermObjUsers  = "users"
	PermActRead   = "read"
	PermActDelete = "delete"
)
