// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

// Role distinguishes the two cooperating threads of an instance.
type Role uint8

const (
	// RoleBackground is the construction thread: heavy one-time setup and
	// arbitrary blocking work.
	RoleBackground Role = iota

	// RoleForeground is the presentation thread: all per-frame work and
	// all public rendering entry points.
	RoleForeground
)

// String returns the role name.
func (r Role) String() string {
	if r == RoleBackground {
		return "background"
	}
	return "foreground"
}

// Token asserts the calling goroutine's role. The host creates one token
// per cooperating thread and passes it into every thread-affined
// operation; the runtime checks the token instead of querying ambient
// platform thread state. Tokens carry no secret; they exist to make the
// caller's claim explicit and checkable.
type Token struct {
	role Role
}

// NewToken creates a token asserting the given role. Create it on the
// thread it describes and do not share it across threads.
func NewToken(role Role) Token {
	return Token{role: role}
}

// Role returns the role the token asserts.
func (t Token) Role() Role { return t.role }
