package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/aprovatotal/validador-questoes-backend/internal/models"
)

// QuestionListFilter narrows List. A nil DisciplineIDs means unrestricted
// (ADMIN); an empty slice matches nothing.
type QuestionListFilter struct {
	Page          int
	PageSize      int
	Search        string
	DisciplineIDs []int64
	ApprovedOnly  bool
}

type QuestionRepository interface {
	Create(question *models.Question) error
	GetByUUID(questionUUID string) (*models.Question, error)
	List(filter QuestionListFilter) ([]*models.Question, int, error)
	Update(question *models.Question, replaceAlternatives bool) error
	Approve(questionUUID, approverUUID string) error
	Delete(questionUUID string) error
}

type questionRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewQuestionRepository(db *sqlx.DB, logger *zap.Logger) QuestionRepository {
	return &questionRepository{db: db, logger: logger}
}

const questionColumns = `uuid, external_id, statement, competence, skill, exam_area, subject, topic,
	interpretation, strategies, distractors, text_resolution, application, module_id, subject_id,
	discipline_id, approved, approved_at, approved_by_user_uuid, migrated_at, created_at, updated_at`

func (r *questionRepository) Create(question *models.Question) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	question.UUID = uuid.NewString()
	query := `INSERT INTO questions (uuid, external_id, statement, competence, skill, exam_area, subject, topic,
	            interpretation, strategies, distractors, text_resolution, application, module_id, subject_id, discipline_id)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	          RETURNING ` + questionColumns
	err = tx.QueryRowx(query,
		question.UUID, question.ExternalID, question.Statement, question.Competence, question.Skill,
		question.ExamArea, question.Subject, question.Topic, question.Interpretation, question.Strategies,
		question.Distractors, question.TextResolution, question.Application, question.ModuleID,
		question.SubjectID, question.DisciplineID).StructScan(question)
	if err != nil {
		return err
	}

	if err := insertAlternatives(tx, question.UUID, question.Alternatives); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return r.loadRelations(question)
}

func (r *questionRepository) GetByUUID(questionUUID string) (*models.Question, error) {
	var question models.Question
	query := `SELECT ` + questionColumns + ` FROM questions WHERE uuid = $1`
	if err := r.db.Get(&question, query, questionUUID); err != nil {
		return nil, err
	}
	if err := r.loadRelations(&question); err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *questionRepository) List(filter QuestionListFilter) ([]*models.Question, int, error) {
	where := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)

	if filter.DisciplineIDs != nil {
		args = append(args, pq.Array(filter.DisciplineIDs))
		where = append(where, fmt.Sprintf("discipline_id = ANY($%d)", len(args)))
	}
	if filter.ApprovedOnly {
		where = append(where, "approved = TRUE")
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("(statement ILIKE $%d OR topic ILIKE $%d OR subject ILIKE $%d)",
			len(args), len(args), len(args)))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.Get(&total, "SELECT COUNT(*) FROM questions "+whereClause, args...); err != nil {
		return nil, 0, err
	}

	orderBy := "created_at DESC"
	if filter.ApprovedOnly {
		orderBy = "approved_at DESC"
	}

	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)
	query := fmt.Sprintf(`SELECT %s FROM questions %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		questionColumns, whereClause, orderBy, len(args)-1, len(args))

	var questions []*models.Question
	if err := r.db.Select(&questions, query, args...); err != nil {
		return nil, 0, err
	}

	for _, question := range questions {
		if err := r.loadRelations(question); err != nil {
			return nil, 0, err
		}
	}

	return questions, total, nil
}

func (r *questionRepository) Update(question *models.Question, replaceAlternatives bool) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `UPDATE questions SET external_id = $1, statement = $2, competence = $3, skill = $4,
	            exam_area = $5, subject = $6, topic = $7, interpretation = $8, strategies = $9,
	            distractors = $10, text_resolution = $11, application = $12, module_id = $13,
	            subject_id = $14, discipline_id = $15, updated_at = $16
	          WHERE uuid = $17
	          RETURNING ` + questionColumns
	err = tx.QueryRowx(query,
		question.ExternalID, question.Statement, question.Competence, question.Skill, question.ExamArea,
		question.Subject, question.Topic, question.Interpretation, question.Strategies, question.Distractors,
		question.TextResolution, question.Application, question.ModuleID, question.SubjectID,
		question.DisciplineID, time.Now(), question.UUID).StructScan(question)
	if err != nil {
		return err
	}

	if replaceAlternatives {
		if _, err := tx.Exec(`DELETE FROM alternatives WHERE question_uuid = $1`, question.UUID); err != nil {
			return err
		}
		if err := insertAlternatives(tx, question.UUID, question.Alternatives); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return r.loadRelations(question)
}

func (r *questionRepository) Approve(questionUUID, approverUUID string) error {
	result, err := r.db.Exec(`UPDATE questions SET approved = TRUE, approved_at = $1, approved_by_user_uuid = $2, updated_at = $1 WHERE uuid = $3`,
		time.Now(), approverUUID, questionUUID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *questionRepository) Delete(questionUUID string) error {
	result, err := r.db.Exec(`DELETE FROM questions WHERE uuid = $1`, questionUUID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func insertAlternatives(tx *sqlx.Tx, questionUUID string, alternatives []models.Alternative) error {
	for i := range alternatives {
		alt := &alternatives[i]
		alt.QuestionUUID = questionUUID
		query := `INSERT INTO alternatives (question_uuid, text, position, correct)
		          VALUES ($1, $2, $3, $4) RETURNING id, question_uuid, text, position, correct, created_at, updated_at`
		if err := tx.QueryRowx(query, questionUUID, alt.Text, alt.Position, alt.Correct).StructScan(alt); err != nil {
			return err
		}
	}
	return nil
}

// loadRelations fills alternatives, the discipline, and the approver summary.
func (r *questionRepository) loadRelations(question *models.Question) error {
	alternatives := []models.Alternative{}
	query := `SELECT id, question_uuid, text, position, correct, created_at, updated_at
	          FROM alternatives WHERE question_uuid = $1 ORDER BY position ASC`
	if err := r.db.Select(&alternatives, query, question.UUID); err != nil {
		return err
	}
	question.Alternatives = alternatives

	var discipline models.Discipline
	err := r.db.Get(&discipline, `SELECT id, slug, name, external_id FROM disciplines WHERE id = $1`, question.DisciplineID)
	if err != nil {
		return err
	}
	question.Discipline = &discipline

	if question.ApprovedByUUID != nil {
		var approver models.UserSummary
		err := r.db.Get(&approver, `SELECT name, email FROM app_users WHERE uuid = $1`, *question.ApprovedByUUID)
		if err != nil && err != sql.ErrNoRows {
			return err
		}
		if err == nil {
			question.ApprovedBy = &approver
		}
	}

	return nil
}
