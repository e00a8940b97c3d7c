package repository

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/aprovatotal/validador-questoes-backend/internal/models"
)

type TrackingListFilter struct {
	Page     int
	PageSize int
	Search   string
}

type TrackingRepository interface {
	Create(tracking *models.Tracking) error
	List(filter TrackingListFilter) ([]*models.Tracking, int, error)
	GetByUUID(trackingUUID string) (*models.Tracking, error)
	GetWithQuestions(trackingUUID string) (*models.Tracking, error)
}

type trackingRepository struct {
	db           *sqlx.DB
	questionRepo QuestionRepository
	logger       *zap.Logger
}

func NewTrackingRepository(db *sqlx.DB, questionRepo QuestionRepository, logger *zap.Logger) TrackingRepository {
	return &trackingRepository{db: db, questionRepo: questionRepo, logger: logger}
}

const trackingColumns = `uuid, name, status, webhook_url, metadata, webhook_executed_at, created_at, updated_at`

func (r *trackingRepository) Create(tracking *models.Tracking) error {
	tracking.UUID = uuid.NewString()
	query := `INSERT INTO trackings (uuid, name, status, webhook_url, metadata)
	          VALUES ($1, $2, $3, $4, $5) RETURNING ` + trackingColumns
	return r.db.QueryRowx(query, tracking.UUID, tracking.Name, tracking.Status,
		tracking.WebhookURL, tracking.Metadata).StructScan(tracking)
}

func (r *trackingRepository) List(filter TrackingListFilter) ([]*models.Tracking, int, error) {
	where := make([]string, 0, 1)
	args := make([]interface{}, 0, 1)

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.Get(&total, "SELECT COUNT(*) FROM trackings "+whereClause, args...); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)
	query := fmt.Sprintf(`SELECT %s FROM trackings %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		trackingColumns, whereClause, len(args)-1, len(args))

	var trackings []*models.Tracking
	if err := r.db.Select(&trackings, query, args...); err != nil {
		return nil, 0, err
	}

	return trackings, total, nil
}

func (r *trackingRepository) GetByUUID(trackingUUID string) (*models.Tracking, error) {
	var tracking models.Tracking
	query := `SELECT ` + trackingColumns + ` FROM trackings WHERE uuid = $1`
	if err := r.db.Get(&tracking, query, trackingUUID); err != nil {
		return nil, err
	}
	return &tracking, nil
}

func (r *trackingRepository) GetWithQuestions(trackingUUID string) (*models.Tracking, error) {
	tracking, err := r.GetByUUID(trackingUUID)
	if err != nil {
		return nil, err
	}

	usedQuestions := []models.UsedQuestion{}
	query := `SELECT id, tracking_uuid, question_uuid, created_at, updated_at
	          FROM used_questions WHERE tracking_uuid = $1 ORDER BY created_at ASC`
	if err := r.db.Select(&usedQuestions, query, trackingUUID); err != nil {
		return nil, err
	}

	for i := range usedQuestions {
		question, err := r.questionRepo.GetByUUID(usedQuestions[i].QuestionUUID)
		if err != nil {
			r.logger.Warn("Failed to load question for tracking",
				zap.String("tracking_uuid", trackingUUID),
				zap.String("question_uuid", usedQuestions[i].QuestionUUID),
				zap.Error(err))
			continue
		}
		usedQuestions[i].Question = question
	}
	tracking.UsedQuestions = usedQuestions

	return tracking, nil
}
