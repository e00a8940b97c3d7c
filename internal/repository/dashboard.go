package repository

import (
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// DisciplineStats aggregates question counts for one discipline.
type DisciplineStats struct {
	ID       int64  `db:"id" json:"id"`
	Slug     string `db:"slug" json:"slug"`
	Name     string `db:"name" json:"name"`
	Total    int    `db:"total" json:"totalQuestions"`
	Approved int    `db:"approved" json:"approvedQuestions"`
	Pending  int    `db:"pending" json:"pendingQuestions"`
}

type DashboardRepository interface {
	// StatsByDiscipline aggregates per-discipline question counts. A nil
	// disciplineIDs means all disciplines.
	StatsByDiscipline(disciplineIDs []int64) ([]DisciplineStats, error)
}

type dashboardRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewDashboardRepository(db *sqlx.DB, logger *zap.Logger) DashboardRepository {
	return &dashboardRepository{db: db, logger: logger}
}

func (r *dashboardRepository) StatsByDiscipline(disciplineIDs []int64) ([]DisciplineStats, error) {
	query := `SELECT d.id, d.slug, d.name,
	            COUNT(q.uuid) AS total,
	            COUNT(q.uuid) FILTER (WHERE q.approved) AS approved,
	            COUNT(q.uuid) FILTER (WHERE NOT q.approved) AS pending
	          FROM disciplines d
	          LEFT JOIN questions q ON q.discipline_id = d.id`
	args := []interface{}{}
	if disciplineIDs != nil {
		query += ` WHERE d.id = ANY($1)`
		args = append(args, pq.Array(disciplineIDs))
	}
	query += ` GROUP BY d.id, d.slug, d.name ORDER BY d.name ASC`

	stats := []DisciplineStats{}
	if err := r.db.Select(&stats, query, args...); err != nil {
		return nil, err
	}
	return stats, nil
}
