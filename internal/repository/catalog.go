package repository

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/aprovatotal/validador-questoes-backend/internal/models"
)

// CatalogRepository serves the read-only module/subject catalog imported from
// the external platform.
type CatalogRepository interface {
	ListModules(externalDisciplineID string) ([]models.Module, error)
	ListSubjects(externalModuleID string) ([]models.Subject, error)
}

type catalogRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewCatalogRepository(db *sqlx.DB, logger *zap.Logger) CatalogRepository {
	return &catalogRepository{db: db, logger: logger}
}

func (r *catalogRepository) ListModules(externalDisciplineID string) ([]models.Module, error) {
	modules := []models.Module{}
	query := `SELECT id, external_id, name, discipline_external_id FROM modules`
	args := []interface{}{}
	if externalDisciplineID != "" {
		query += ` WHERE discipline_external_id = $1`
		args = append(args, externalDisciplineID)
	}
	query += ` ORDER BY name ASC`
	if err := r.db.Select(&modules, query, args...); err != nil {
		return nil, err
	}

	for i := range modules {
		var discipline models.Discipline
		err := r.db.Get(&discipline, `SELECT id, slug, name, external_id FROM disciplines WHERE external_id = $1`,
			modules[i].DisciplineExternalID)
		if err == nil {
			modules[i].Discipline = &discipline
		}
	}

	return modules, nil
}

func (r *catalogRepository) ListSubjects(externalModuleID string) ([]models.Subject, error) {
	subjects := []models.Subject{}
	query := `SELECT id, external_id, name, module_external_id FROM subjects`
	args := []interface{}{}
	if externalModuleID != "" {
		query += ` WHERE module_external_id = $1`
		args = append(args, externalModuleID)
	}
	query += ` ORDER BY name ASC`
	if err := r.db.Select(&subjects, query, args...); err != nil {
		return nil, err
	}
	return subjects, nil
}
