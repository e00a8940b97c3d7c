package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aprovatotal/validador-questoes-backend/internal/models"
	"github.com/aprovatotal/validador-questoes-backend/internal/repository"
)

type fakeTrackingRepo struct {
	trackings  map[string]*models.Tracking
	lastFilter repository.TrackingListFilter
}

func (f *fakeTrackingRepo) Create(tracking *models.Tracking) error {
	tracking.UUID = "new-tracking"
	f.trackings[tracking.UUID] = tracking
	return nil
}

func (f *fakeTrackingRepo) List(filter repository.TrackingListFilter) ([]*models.Tracking, int, error) {
	f.lastFilter = filter
	trackings := make([]*models.Tracking, 0, len(f.trackings))
	for _, tracking := range f.trackings {
		trackings = append(trackings, tracking)
	}
	return trackings, len(trackings), nil
}

func (f *fakeTrackingRepo) GetByUUID(trackingUUID string) (*models.Tracking, error) {
	tracking, ok := f.trackings[trackingUUID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return tracking, nil
}

func (f *fakeTrackingRepo) GetWithQuestions(trackingUUID string) (*models.Tracking, error) {
	return f.GetByUUID(trackingUUID)
}

func newTrackingRouter(repo *fakeTrackingRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewTrackingHandler(repo, logrus.New())
	router := gin.New()
	router.POST("/trackings", h.Create)
	router.GET("/trackings", h.List)
	router.GET("/trackings/:uuid", h.Get)
	router.GET("/trackings/:uuid/with-questions", h.GetWithQuestions)
	return router
}

func postTracking(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/trackings", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTrackingCreate_MetadataRoundTrip(t *testing.T) {
	repo := &fakeTrackingRepo{trackings: map[string]*models.Tracking{}}
	router := newTrackingRouter(repo)

	w := postTracking(router, `{
		"name": "Simulado ENEM 2026",
		"status": "PENDING",
		"webhookUrl": "https://example.com/hook",
		"metadata": {"batch": 7, "source": "simulado"}
	}`)
	require.Equal(t, http.StatusCreated, w.Code)

	created := repo.trackings["new-tracking"]
	require.NotNil(t, created)
	assert.Equal(t, models.TrackingStatusPending, created.Status)

	// The metadata document passes through untouched.
	var metadata map[string]interface{}
	require.NoError(t, json.Unmarshal(created.Metadata, &metadata))
	assert.Equal(t, float64(7), metadata["batch"])
	assert.Equal(t, "simulado", metadata["source"])
}

func TestTrackingCreate_UnknownStatus(t *testing.T) {
	repo := &fakeTrackingRepo{trackings: map[string]*models.Tracking{}}
	router := newTrackingRouter(repo)

	w := postTracking(router, `{"name": "Simulado", "status": "RUNNING"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, repo.trackings)
}

func TestTrackingCreate_MissingName(t *testing.T) {
	repo := &fakeTrackingRepo{trackings: map[string]*models.Tracking{}}
	router := newTrackingRouter(repo)

	w := postTracking(router, `{"status": "PENDING"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrackingGet_NotFound(t *testing.T) {
	repo := &fakeTrackingRepo{trackings: map[string]*models.Tracking{}}
	router := newTrackingRouter(repo)

	assert.Equal(t, http.StatusNotFound, perform(router, http.MethodGet, "/trackings/missing").Code)
	assert.Equal(t, http.StatusNotFound, perform(router, http.MethodGet, "/trackings/missing/with-questions").Code)
}

func TestTrackingList_SearchForwarded(t *testing.T) {
	repo := &fakeTrackingRepo{trackings: map[string]*models.Tracking{}}
	router := newTrackingRouter(repo)

	w := perform(router, http.MethodGet, "/trackings?search=simulado&page=2&pageSize=5")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "simulado", repo.lastFilter.Search)
	assert.Equal(t, 2, repo.lastFilter.Page)
	assert.Equal(t, 5, repo.lastFilter.PageSize)
}
