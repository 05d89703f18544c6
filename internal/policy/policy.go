// Package policy holds the access predicates applied to every request.
// Each gate is a pure function of the requesting user, the HTTP method and,
// for object-level checks, the object's author.
package policy

import (
	"net/http"

	apperrors "yamdb/internal/errors"
	"yamdb/internal/model"
)

// IsAuthenticated passes when a user was resolved from the credential.
func IsAuthenticated(u *model.User) bool {
	return u != nil
}

// IsAdmin passes for the admin role and for superuser or staff accounts,
// whatever their role.
func IsAdmin(u *model.User) bool {
	if u == nil {
		return false
	}
	return u.Role == model.RoleAdmin || u.IsSuperuser || u.IsStaff
}

// IsModerator passes for the moderator role only.
func IsModerator(u *model.User) bool {
	return u != nil && u.Role == model.RoleModerator
}

// CanModify passes when u wrote the object or may moderate it.
func CanModify(u *model.User, authorID uint) bool {
	if u == nil {
		return false
	}
	return u.ID == authorID || IsModerator(u) || IsAdmin(u)
}

// IsSafeMethod reports whether method only reads.
func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// AdminOrReadOnly lets anyone read and only admins write.
func AdminOrReadOnly(u *model.User, method string) bool {
	return IsSafeMethod(method) || IsAdmin(u)
}

// AuthenticatedOrReadOnly lets anyone read and authenticated users write.
func AuthenticatedOrReadOnly(u *model.User, method string) bool {
	return IsSafeMethod(method) || IsAuthenticated(u)
}

// Require turns a gate result into an error. Anonymous callers get
// ErrUnauthenticated, everyone else ErrPermissionDenied.
func Require(allowed bool, u *model.User) error {
	if allowed {
		return nil
	}
	if u == nil {
		return apperrors.ErrUnauthenticated
	}
	return apperrors.ErrPermissionDenied
}
