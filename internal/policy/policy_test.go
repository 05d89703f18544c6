package policy

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "yamdb/internal/errors"
	"yamdb/internal/model"
)

var (
	plain     = &model.User{ID: 1, Username: "alice", Role: model.RoleUser}
	other     = &model.User{ID: 2, Username: "bob", Role: model.RoleUser}
	moderator = &model.User{ID: 3, Username: "mod", Role: model.RoleModerator}
	admin     = &model.User{ID: 4, Username: "root", Role: model.RoleAdmin}
	staff     = &model.User{ID: 5, Username: "staff", Role: model.RoleUser, IsStaff: true}
	superuser = &model.User{ID: 6, Username: "su", Role: model.RoleUser, IsSuperuser: true}
)

func TestIsAdmin(t *testing.T) {
	tests := []struct {
		name string
		user *model.User
		want bool
	}{
		{"anonymous", nil, false},
		{"plain user", plain, false},
		{"moderator", moderator, false},
		{"admin role", admin, true},
		{"staff flag overrides role", staff, true},
		{"superuser flag overrides role", superuser, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAdmin(tt.user))
		})
	}
}

func TestCanModify(t *testing.T) {
	const authorID = 1

	tests := []struct {
		name string
		user *model.User
		want bool
	}{
		{"anonymous", nil, false},
		{"author", plain, true},
		{"other plain user", other, false},
		{"moderator", moderator, true},
		{"admin", admin, true},
		{"staff", staff, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanModify(tt.user, authorID))
		})
	}
}

func TestAdminOrReadOnly(t *testing.T) {
	assert.True(t, AdminOrReadOnly(nil, http.MethodGet))
	assert.True(t, AdminOrReadOnly(nil, http.MethodHead))
	assert.False(t, AdminOrReadOnly(nil, http.MethodPost))
	assert.False(t, AdminOrReadOnly(moderator, http.MethodDelete))
	assert.True(t, AdminOrReadOnly(admin, http.MethodPatch))
}

func TestAuthenticatedOrReadOnly(t *testing.T) {
	assert.True(t, AuthenticatedOrReadOnly(nil, http.MethodGet))
	assert.False(t, AuthenticatedOrReadOnly(nil, http.MethodPost))
	assert.True(t, AuthenticatedOrReadOnly(plain, http.MethodPost))
}

func TestRequire(t *testing.T) {
	assert.NoError(t, Require(true, nil))
	assert.ErrorIs(t, Require(false, nil), apperrors.ErrUnauthenticated)
	assert.ErrorIs(t, Require(false, plain), apperrors.ErrPermissionDenied)
}
