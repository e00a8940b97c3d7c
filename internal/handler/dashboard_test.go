package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aprovatotal/validador-questoes-backend/internal/models"
	"github.com/aprovatotal/validador-questoes-backend/internal/repository"
)

type fakeDashboardRepo struct {
	stats     []repository.DisciplineStats
	lastScope []int64
	called    bool
}

func (f *fakeDashboardRepo) StatsByDiscipline(disciplineIDs []int64) ([]repository.DisciplineStats, error) {
	f.called = true
	f.lastScope = disciplineIDs
	return f.stats, nil
}

func newDashboardRouter(repo *fakeDashboardRepo, p *models.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewDashboardHandler(repo, logrus.New())
	router := gin.New()
	router.Use(injectPrincipal(p))
	router.GET("/dashboard/stats", h.Stats)
	return router
}

func TestDashboardStats_EmptyMembershipForbidden(t *testing.T) {
	repo := &fakeDashboardRepo{}
	router := newDashboardRouter(repo, memberPrincipal(models.RoleUser))

	w := perform(router, http.MethodGet, "/dashboard/stats")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "no discipline access")
	// The store is never consulted for a principal with nothing to see.
	assert.False(t, repo.called)
}

func TestDashboardStats_ScopedToMembership(t *testing.T) {
	repo := &fakeDashboardRepo{stats: []repository.DisciplineStats{
		{ID: 1, Slug: "mathematics", Name: "Matemática", Total: 10, Approved: 4, Pending: 6},
		{ID: 2, Slug: "physics", Name: "Física", Total: 3, Approved: 3, Pending: 0},
	}}
	router := newDashboardRouter(repo, memberPrincipal(models.RoleUser, 1, 2))

	w := perform(router, http.MethodGet, "/dashboard/stats")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int64{1, 2}, repo.lastScope)

	var resp struct {
		TotalQuestions int                          `json:"totalQuestions"`
		TotalApproved  int                          `json:"totalApproved"`
		TotalPending   int                          `json:"totalPending"`
		Stats          []repository.DisciplineStats `json:"disciplineStats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 13, resp.TotalQuestions)
	assert.Equal(t, 7, resp.TotalApproved)
	assert.Equal(t, 6, resp.TotalPending)
	assert.Len(t, resp.Stats, 2)
}

func TestDashboardStats_AdminUnrestricted(t *testing.T) {
	repo := &fakeDashboardRepo{}
	router := newDashboardRouter(repo, memberPrincipal(models.RoleAdmin))

	w := perform(router, http.MethodGet, "/dashboard/stats")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, repo.called)
	// Nil scope means every discipline, even with no membership rows.
	assert.Nil(t, repo.lastScope)
}
