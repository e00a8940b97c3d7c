// Package authz is the single authorization decision point. Every handler
// consults it instead of doing ad-hoc role checks, so the rules cannot drift
// between endpoints.
package authz

import (
	"github.com/aprovatotal/validador-questoes-backend/internal/models"
)

// Action names a discipline-scoped operation on questions.
type Action string

const (
	ActionReadQuestion    Action = "question:read"
	ActionCreateQuestion  Action = "question:create"
	ActionUpdateQuestion  Action = "question:update"
	ActionDeleteQuestion  Action = "question:delete"
	ActionApproveQuestion Action = "question:approve"
)

// Can decides whether the principal may perform action on a resource in the
// given discipline. ADMIN is allowed everything on every discipline; everyone
// else needs the discipline in their membership set, and approve/delete
// additionally require EDITOR or REVIEWER.
func Can(p *models.Principal, action Action, disciplineID int64) bool {
	if p == nil {
		return false
	}
	if p.Role == models.RoleAdmin {
		return true
	}
	if !p.HasDiscipline(disciplineID) {
		return false
	}
	switch action {
	case ActionReadQuestion, ActionCreateQuestion, ActionUpdateQuestion:
		return true
	case ActionApproveQuestion, ActionDeleteQuestion:
		return p.Role == models.RoleEditor || p.Role == models.RoleReviewer
	}
	return false
}

// CanManageUsers reports whether the principal may list, register, or change
// passwords of users. ADMIN only.
func CanManageUsers(p *models.Principal) bool {
	return p != nil && p.Role == models.RoleAdmin
}

// CanDeactivate reports whether the principal may deactivate the target user.
// Self-deactivation is always denied, even for ADMIN.
func CanDeactivate(p *models.Principal, targetUUID string) bool {
	if !CanManageUsers(p) {
		return false
	}
	return p.UUID != targetUUID
}

// ScopeDisciplineIDs returns the discipline ids a listing query must be
// restricted to. A nil result means unrestricted (ADMIN).
func ScopeDisciplineIDs(p *models.Principal) []int64 {
	if p == nil {
		return []int64{}
	}
	if p.Role == models.RoleAdmin {
		return nil
	}
	return p.DisciplineIDs()
}
