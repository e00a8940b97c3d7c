package repository

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/aprovatotal/validador-questoes-backend/internal/models"
)

// DisciplineListFilter narrows List. A nil IDs slice means unrestricted;
// an empty one matches nothing.
type DisciplineListFilter struct {
	Page     int
	PageSize int
	Search   string
	IDs      []int64
}

type DisciplineRepository interface {
	List(filter DisciplineListFilter) ([]models.Discipline, int, error)
	GetBySlug(slug string) (*models.Discipline, error)
}

type disciplineRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewDisciplineRepository(db *sqlx.DB, logger *zap.Logger) DisciplineRepository {
	return &disciplineRepository{db: db, logger: logger}
}

func (r *disciplineRepository) List(filter DisciplineListFilter) ([]models.Discipline, int, error) {
	where := make([]string, 0, 2)
	args := make([]interface{}, 0, 2)

	if filter.IDs != nil {
		args = append(args, pq.Array(filter.IDs))
		where = append(where, fmt.Sprintf("id = ANY($%d)", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.Get(&total, "SELECT COUNT(*) FROM disciplines "+whereClause, args...); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)
	query := fmt.Sprintf(`SELECT id, slug, name, external_id FROM disciplines %s ORDER BY name ASC LIMIT $%d OFFSET $%d`,
		whereClause, len(args)-1, len(args))

	disciplines := []models.Discipline{}
	if err := r.db.Select(&disciplines, query, args...); err != nil {
		return nil, 0, err
	}

	return disciplines, total, nil
}

func (r *disciplineRepository) GetBySlug(slug string) (*models.Discipline, error) {
	var discipline models.Discipline
	err := r.db.Get(&discipline, `SELECT id, slug, name, external_id FROM disciplines WHERE slug = $1`, slug)
	if err != nil {
		return nil, err
	}
	return &discipline, nil
}
