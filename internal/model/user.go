package model

import "time"

// Role is a user's platform role.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// User represents a platform account.
type User struct {
	ID               uint      `json:"-" gorm:"primaryKey"`
	Username         string    `json:"username" gorm:"uniqueIndex;size:150;not null"`
	Email            string    `json:"email" gorm:"uniqueIndex;size:254;not null"`
	FirstName        string    `json:"first_name" gorm:"size:150"`
	LastName         string    `json:"last_name" gorm:"size:150"`
	Bio              string    `json:"bio" gorm:"type:text"`
	Role             Role      `json:"role" gorm:"size:20;not null;default:'user'"`
	ConfirmationCode string    `json:"-" gorm:"size:255"` // Never expose in JSON
	IsSuperuser      bool      `json:"-" gorm:"default:false"`
	IsStaff          bool      `json:"-" gorm:"default:false"`
	CreatedAt        time.Time `json:"-"`
	UpdatedAt        time.Time `json:"-"`
}
