package auth

import (
	"errors"
	"strings"

	"github.com/lyceum-academy/lyceum/internal/store"
)

const (
	RoleAdmin   = "Admin"
	RoleStaff   = "Staff"
	RoleStudent = "Student"

	MethodPassword = "password"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnverified         = errors.New("account email is not verified")
)

type Principal struct {
	UserID int64
	Name   string
	Email  string
	Role   string // "Admin", "Staff" or "Student"
	Method string

	// Permissions are the per-app grants stored on the user. Empty means
	// the role defaults apply.
	Permissions map[string]store.AppPermissions
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Principal) IsStaff() bool {
	return p.Role == RoleAdmin || p.Role == RoleStaff
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeRole maps case-insensitive role names onto the canonical
// spelling. Unknown roles come back empty.
func NormalizeRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "admin":
		return RoleAdmin
	case "staff":
		return RoleStaff
	case "student":
		return RoleStudent
	default:
		return ""
	}
}
