package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aprovatotal/validador-questoes-backend/internal/models"
)

func principalWith(role string, disciplineIDs ...int64) *models.Principal {
	disciplines := make([]models.Discipline, 0, len(disciplineIDs))
	for _, id := range disciplineIDs {
		disciplines = append(disciplines, models.Discipline{ID: id})
	}
	return &models.Principal{
		UUID:        "principal-uuid",
		Role:        role,
		Disciplines: disciplines,
	}
}

func TestCan_AdminBypassesMembership(t *testing.T) {
	admin := principalWith(models.RoleAdmin) // no membership rows at all

	for _, action := range []Action{
		ActionReadQuestion, ActionCreateQuestion, ActionUpdateQuestion,
		ActionDeleteQuestion, ActionApproveQuestion,
	} {
		assert.True(t, Can(admin, action, 42), "admin should be allowed %s", action)
	}
}

func TestCan_MembershipScopesEveryoneElse(t *testing.T) {
	tests := []struct {
		role string
	}{
		{models.RoleUser},
		{models.RoleEditor},
		{models.RoleReviewer},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			p := principalWith(tt.role, 1, 2)

			assert.True(t, Can(p, ActionReadQuestion, 1))
			assert.True(t, Can(p, ActionCreateQuestion, 2))
			// Discipline 3 is outside the membership set: denied for every
			// action regardless of role.
			assert.False(t, Can(p, ActionReadQuestion, 3))
			assert.False(t, Can(p, ActionApproveQuestion, 3))
		})
	}
}

func TestCan_ApproveAndDeleteRequireElevatedRole(t *testing.T) {
	user := principalWith(models.RoleUser, 1)
	editor := principalWith(models.RoleEditor, 1)
	reviewer := principalWith(models.RoleReviewer, 1)

	assert.False(t, Can(user, ActionApproveQuestion, 1))
	assert.False(t, Can(user, ActionDeleteQuestion, 1))

	assert.True(t, Can(editor, ActionApproveQuestion, 1))
	assert.True(t, Can(editor, ActionDeleteQuestion, 1))
	assert.True(t, Can(reviewer, ActionApproveQuestion, 1))
	assert.True(t, Can(reviewer, ActionDeleteQuestion, 1))
}

func TestCan_NilPrincipal(t *testing.T) {
	assert.False(t, Can(nil, ActionReadQuestion, 1))
	assert.False(t, CanManageUsers(nil))
	assert.False(t, CanDeactivate(nil, "anyone"))
}

func TestCanManageUsers_AdminOnly(t *testing.T) {
	assert.True(t, CanManageUsers(principalWith(models.RoleAdmin)))
	assert.False(t, CanManageUsers(principalWith(models.RoleUser, 1)))
	assert.False(t, CanManageUsers(principalWith(models.RoleEditor, 1)))
	assert.False(t, CanManageUsers(principalWith(models.RoleReviewer, 1)))
}

func TestCanDeactivate_SelfAlwaysDenied(t *testing.T) {
	admin := principalWith(models.RoleAdmin)

	assert.True(t, CanDeactivate(admin, "someone-else"))
	// Even an ADMIN may never deactivate their own identity.
	assert.False(t, CanDeactivate(admin, admin.UUID))
}

func TestScopeDisciplineIDs(t *testing.T) {
	assert.Nil(t, ScopeDisciplineIDs(principalWith(models.RoleAdmin)))

	scope := ScopeDisciplineIDs(principalWith(models.RoleUser, 1, 2))
	assert.Equal(t, []int64{1, 2}, scope)

	// Empty membership scopes to nothing, not to everything.
	empty := ScopeDisciplineIDs(principalWith(models.RoleUser))
	assert.NotNil(t, empty)
	assert.Len(t, empty, 0)
}
