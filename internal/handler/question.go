package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/aprovatotal/validador-questoes-backend/internal/authz"
	"github.com/aprovatotal/validador-questoes-backend/internal/middleware"
	"github.com/aprovatotal/validador-questoes-backend/internal/models"
	"github.com/aprovatotal/validador-questoes-backend/internal/repository"
)

type QuestionHandler interface {
	Create(c *gin.Context)
	List(c *gin.Context)
	ListApproved(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Approve(c *gin.Context)
	Delete(c *gin.Context)
}

type questionHandler struct {
	questionRepo   repository.QuestionRepository
	disciplineRepo repository.DisciplineRepository
	log            *logrus.Logger
}

func NewQuestionHandler(questionRepo repository.QuestionRepository, disciplineRepo repository.DisciplineRepository, log *logrus.Logger) QuestionHandler {
	return &questionHandler{questionRepo: questionRepo, disciplineRepo: disciplineRepo, log: log}
}

type AlternativeRequest struct {
	Text    string `json:"text" binding:"required"`
	Order   int    `json:"order" binding:"required,min=1"`
	Correct *bool  `json:"correct" binding:"required"`
}

type CreateQuestionRequest struct {
	ExternalID     string               `json:"externalId" binding:"required"`
	Statement      string               `json:"statement" binding:"required"`
	Competence     string               `json:"competence" binding:"required"`
	Skill          string               `json:"skill" binding:"required"`
	ExamArea       string               `json:"examArea" binding:"required"`
	Subject        string               `json:"subject" binding:"required"`
	Topic          string               `json:"topic" binding:"required"`
	Interpretation *string              `json:"interpretation"`
	Strategies     *string              `json:"strategies"`
	Distractors    *string              `json:"distractors"`
	TextResolution string               `json:"textResolution"`
	Application    string               `json:"application"`
	ModuleID       string               `json:"moduleId" binding:"required"`
	SubjectID      string               `json:"subjectId" binding:"required"`
	DisciplineID   int64                `json:"disciplineId" binding:"required"`
	Alternatives   []AlternativeRequest `json:"alternatives" binding:"required,min=2,dive"`
}

type UpdateQuestionRequest struct {
	ExternalID     *string              `json:"externalId"`
	Statement      *string              `json:"statement"`
	Competence     *string              `json:"competence"`
	Skill          *string              `json:"skill"`
	ExamArea       *string              `json:"examArea"`
	Subject        *string              `json:"subject"`
	Topic          *string              `json:"topic"`
	Interpretation *string              `json:"interpretation"`
	Strategies     *string              `json:"strategies"`
	Distractors    *string              `json:"distractors"`
	TextResolution *string              `json:"textResolution"`
	Application    *string              `json:"application"`
	ModuleID       *string              `json:"moduleId"`
	SubjectID      *string              `json:"subjectId"`
	DisciplineID   *int64               `json:"disciplineId"`
	Alternatives   []AlternativeRequest `json:"alternatives" binding:"omitempty,min=2,dive"`
}

// Create handles POST /questions
func (h *questionHandler) Create(c *gin.Context) {
	var req CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	principal := middleware.GetPrincipal(c)
	if !authz.Can(principal, authz.ActionCreateQuestion, req.DisciplineID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied to this discipline"})
		return
	}

	question := &models.Question{
		ExternalID:     req.ExternalID,
		Statement:      req.Statement,
		Competence:     req.Competence,
		Skill:          req.Skill,
		ExamArea:       req.ExamArea,
		Subject:        req.Subject,
		Topic:          req.Topic,
		Interpretation: req.Interpretation,
		Strategies:     req.Strategies,
		Distractors:    req.Distractors,
		TextResolution: req.TextResolution,
		Application:    req.Application,
		ModuleID:       req.ModuleID,
		SubjectID:      req.SubjectID,
		DisciplineID:   req.DisciplineID,
		Alternatives:   toAlternatives(req.Alternatives),
	}

	if err := h.questionRepo.Create(question); err != nil {
		h.log.Errorf("Failed to create question: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create question"})
		return
	}

	c.JSON(http.StatusCreated, question)
}

// List handles GET /questions
func (h *questionHandler) List(c *gin.Context) {
	h.list(c, false)
}

// ListApproved handles GET /questions/approved
func (h *questionHandler) ListApproved(c *gin.Context) {
	h.list(c, true)
}

func (h *questionHandler) list(c *gin.Context, approvedOnly bool) {
	principal := middleware.GetPrincipal(c)
	page, pageSize := parsePagination(c)

	disciplineIDs := authz.ScopeDisciplineIDs(principal)

	// An explicit ?discipline=<slug> narrows the scope to one discipline.
	// ADMIN may name any discipline; everyone else only one of their own.
	if slug := c.Query("discipline"); slug != "" {
		if principal.Role == models.RoleAdmin {
			discipline, err := h.disciplineRepo.GetBySlug(slug)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					c.JSON(http.StatusNotFound, gin.H{"error": "Discipline not found"})
					return
				}
				h.log.Errorf("Failed to resolve discipline %s: %v", slug, err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve questions"})
				return
			}
			disciplineIDs = []int64{discipline.ID}
		} else {
			var found bool
			for _, d := range principal.Disciplines {
				if d.Slug == slug {
					disciplineIDs = []int64{d.ID}
					found = true
					break
				}
			}
			if !found {
				c.JSON(http.StatusForbidden, gin.H{"error": "Access denied to this discipline"})
				return
			}
		}
	}

	questions, total, err := h.questionRepo.List(repository.QuestionListFilter{
		Page:          page,
		PageSize:      pageSize,
		Search:        c.Query("search"),
		DisciplineIDs: disciplineIDs,
		ApprovedOnly:  approvedOnly,
	})
	if err != nil {
		h.log.Errorf("Failed to list questions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve questions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": questions,
		"meta": paginationMeta(page, pageSize, total),
	})
}

// Get handles GET /questions/:uuid
func (h *questionHandler) Get(c *gin.Context) {
	question, ok := h.fetchScoped(c, authz.ActionReadQuestion)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, question)
}

// Update handles PATCH /questions/:uuid
func (h *questionHandler) Update(c *gin.Context) {
	var req UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, ok := h.fetchScoped(c, authz.ActionUpdateQuestion)
	if !ok {
		return
	}

	principal := middleware.GetPrincipal(c)
	if req.DisciplineID != nil && !authz.Can(principal, authz.ActionUpdateQuestion, *req.DisciplineID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied to this discipline"})
		return
	}

	applyQuestionUpdate(question, &req)

	replaceAlternatives := req.Alternatives != nil
	if replaceAlternatives {
		question.Alternatives = toAlternatives(req.Alternatives)
	}

	if err := h.questionRepo.Update(question, replaceAlternatives); err != nil {
		h.log.Errorf("Failed to update question %s: %v", question.UUID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update question"})
		return
	}

	c.JSON(http.StatusOK, question)
}

// Approve handles PATCH /questions/:uuid/approve
func (h *questionHandler) Approve(c *gin.Context) {
	question, ok := h.fetchScoped(c, authz.ActionApproveQuestion)
	if !ok {
		return
	}

	principal := middleware.GetPrincipal(c)
	if err := h.questionRepo.Approve(question.UUID, principal.UUID); err != nil {
		h.log.Errorf("Failed to approve question %s: %v", question.UUID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve question"})
		return
	}

	approved, err := h.questionRepo.GetByUUID(question.UUID)
	if err != nil {
		h.log.Errorf("Failed to reload question %s: %v", question.UUID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve question"})
		return
	}

	c.JSON(http.StatusOK, approved)
}

// Delete handles DELETE /questions/:uuid
func (h *questionHandler) Delete(c *gin.Context) {
	question, ok := h.fetchScoped(c, authz.ActionDeleteQuestion)
	if !ok {
		return
	}

	if err := h.questionRepo.Delete(question.UUID); err != nil {
		h.log.Errorf("Failed to delete question %s: %v", question.UUID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete question"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Question deleted successfully", "uuid": question.UUID})
}

// fetchScoped loads the question by path uuid and gates it through the
// authorization policy. On failure the response has already been written.
func (h *questionHandler) fetchScoped(c *gin.Context, action authz.Action) (*models.Question, bool) {
	question, err := h.questionRepo.GetByUUID(c.Param("uuid"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
			return nil, false
		}
		h.log.Errorf("Failed to get question %s: %v", c.Param("uuid"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve question"})
		return nil, false
	}

	principal := middleware.GetPrincipal(c)
	if !authz.Can(principal, action, question.DisciplineID) {
		if action == authz.ActionApproveQuestion || action == authz.ActionDeleteQuestion {
			// Distinguish a role ceiling from a discipline-scope denial only
			// in the message, never in the status.
			if principal.HasDiscipline(question.DisciplineID) {
				c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions for this operation"})
				return nil, false
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied to this discipline"})
		return nil, false
	}

	return question, true
}

func applyQuestionUpdate(question *models.Question, req *UpdateQuestionRequest) {
	if req.ExternalID != nil {
		question.ExternalID = *req.ExternalID
	}
	if req.Statement != nil {
		question.Statement = *req.Statement
	}
	if req.Competence != nil {
		question.Competence = *req.Competence
	}
	if req.Skill != nil {
		question.Skill = *req.Skill
	}
	if req.ExamArea != nil {
		question.ExamArea = *req.ExamArea
	}
	if req.Subject != nil {
		question.Subject = *req.Subject
	}
	if req.Topic != nil {
		question.Topic = *req.Topic
	}
	if req.Interpretation != nil {
		question.Interpretation = req.Interpretation
	}
	if req.Strategies != nil {
		question.Strategies = req.Strategies
	}
	if req.Distractors != nil {
		question.Distractors = req.Distractors
	}
	if req.TextResolution != nil {
		question.TextResolution = *req.TextResolution
	}
	if req.Application != nil {
		question.Application = *req.Application
	}
	if req.ModuleID != nil {
		question.ModuleID = *req.ModuleID
	}
	if req.SubjectID != nil {
		question.SubjectID = *req.SubjectID
	}
	if req.DisciplineID != nil {
		question.DisciplineID = *req.DisciplineID
	}
}

func toAlternatives(reqs []AlternativeRequest) []models.Alternative {
	alternatives := make([]models.Alternative, 0, len(reqs))
	for _, alt := range reqs {
		correct := false
		if alt.Correct != nil {
			correct = *alt.Correct
		}
		alternatives = append(alternatives, models.Alternative{
			Text:     alt.Text,
			Position: alt.Order,
			Correct:  correct,
		})
	}
	return alternatives
}
