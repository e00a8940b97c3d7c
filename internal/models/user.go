package models

import (
	"time"
)

// Roles form a permission ceiling; discipline membership narrows non-ADMIN
// access further.
const (
	RoleUser     = "USER"
	RoleEditor   = "EDITOR"
	RoleReviewer = "REVIEWER"
	RoleAdmin    = "ADMIN"
)

// ValidRole reports whether role is one of the four known values.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleEditor, RoleReviewer, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	UUID            string     `db:"uuid" json:"uuid"`
	Name            string     `db:"name" json:"name"`
	Email           string     `db:"email" json:"email"`
	PasswordHash    string     `db:"password_hash" json:"-"`
	Role            string     `db:"role" json:"role"`
	IsActive        bool       `db:"is_active" json:"isActive"`
	EmailVerifiedAt *time.Time `db:"email_verified_at" json:"emailVerifiedAt"`
	LastLoginAt     *time.Time `db:"last_login_at" json:"lastLoginAt"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updatedAt"`

	Disciplines []Discipline `db:"-" json:"disciplines"`
}

// Principal is the authenticated identity attached to a request after the
// access token has been verified and the user re-resolved from the store.
// Rebuilt per request, never persisted.
type Principal struct {
	UUID        string       `json:"uuid"`
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Role        string       `json:"role"`
	Disciplines []Discipline `json:"disciplines"`
}

// HasDiscipline reports whether the principal's membership set contains the
// given discipline. ADMIN is not special-cased here; callers go through the
// authz package for that.
func (p *Principal) HasDiscipline(disciplineID int64) bool {
	for _, d := range p.Disciplines {
		if d.ID == disciplineID {
			return true
		}
	}
	return false
}

// DisciplineIDs returns the ids of the principal's membership set.
func (p *Principal) DisciplineIDs() []int64 {
	ids := make([]int64, 0, len(p.Disciplines))
	for _, d := range p.Disciplines {
		ids = append(ids, d.ID)
	}
	return ids
}
