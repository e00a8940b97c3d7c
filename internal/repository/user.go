package repository

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/aprovatotal/validador-questoes-backend/internal/models"
)

// ErrDuplicateEmail is returned when the store's uniqueness constraint on the
// email column rejects an insert. Concurrent registrations race on this
// constraint; the loser gets this error.
var ErrDuplicateEmail = errors.New("email already registered")

// UserListFilter narrows ListUsers. Zero values mean "no filter".
type UserListFilter struct {
	Page     int
	PageSize int
	Search   string
	Role     string
	IsActive *bool
}

type UserRepository interface {
	CreateUser(user *models.User, disciplineIDs []int64) error
	GetUserByEmail(email string) (*models.User, error)
	GetUserByUUID(userUUID string) (*models.User, error)
	ListUsers(filter UserListFilter) ([]*models.User, int, error)
	UpdateLastLogin(userUUID string) error
	UpdatePassword(userUUID, passwordHash string) error
	SetActive(userUUID string, active bool) error
}

type userRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewUserRepository(db *sqlx.DB, logger *zap.Logger) UserRepository {
	return &userRepository{db: db, logger: logger}
}

func (r *userRepository) CreateUser(user *models.User, disciplineIDs []int64) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	user.UUID = uuid.NewString()
	query := `INSERT INTO app_users (uuid, name, email, password_hash, role)
	          VALUES ($1, $2, $3, $4, $5) RETURNING uuid, name, email, password_hash, role, is_active, email_verified_at, last_login_at, created_at, updated_at`
	err = tx.QueryRowx(query, user.UUID, user.Name, user.Email, user.PasswordHash, user.Role).StructScan(user)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return err
	}

	for _, disciplineID := range disciplineIDs {
		_, err = tx.Exec(`INSERT INTO user_disciplines (user_uuid, discipline_id) VALUES ($1, $2)`, user.UUID, disciplineID)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	user.Disciplines, err = r.getDisciplines(user.UUID)
	return err
}

func (r *userRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	query := `SELECT uuid, name, email, password_hash, role, is_active, email_verified_at, last_login_at, created_at, updated_at
	          FROM app_users WHERE email = $1`
	err := r.db.Get(&user, query, strings.ToLower(email))
	if err != nil {
		return nil, err
	}
	user.Disciplines, err = r.getDisciplines(user.UUID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetUserByUUID(userUUID string) (*models.User, error) {
	var user models.User
	query := `SELECT uuid, name, email, password_hash, role, is_active, email_verified_at, last_login_at, created_at, updated_at
	          FROM app_users WHERE uuid = $1`
	err := r.db.Get(&user, query, userUUID)
	if err != nil {
		return nil, err
	}
	user.Disciplines, err = r.getDisciplines(user.UUID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ListUsers(filter UserListFilter) ([]*models.User, int, error) {
	where := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", len(args), len(args)))
	}
	if filter.Role != "" {
		args = append(args, filter.Role)
		where = append(where, fmt.Sprintf("role = $%d", len(args)))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		where = append(where, fmt.Sprintf("is_active = $%d", len(args)))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.Get(&total, "SELECT COUNT(*) FROM app_users "+whereClause, args...); err != nil {
		return nil, 0, err
	}

	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)
	query := fmt.Sprintf(`SELECT uuid, name, email, password_hash, role, is_active, email_verified_at, last_login_at, created_at, updated_at
	          FROM app_users %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, whereClause, len(args)-1, len(args))

	var users []*models.User
	if err := r.db.Select(&users, query, args...); err != nil {
		return nil, 0, err
	}

	for _, user := range users {
		disciplines, err := r.getDisciplines(user.UUID)
		if err != nil {
			return nil, 0, err
		}
		user.Disciplines = disciplines
	}

	return users, total, nil
}

func (r *userRepository) UpdateLastLogin(userUUID string) error {
	_, err := r.db.Exec(`UPDATE app_users SET last_login_at = $1 WHERE uuid = $2`, time.Now(), userUUID)
	return err
}

func (r *userRepository) UpdatePassword(userUUID, passwordHash string) error {
	_, err := r.db.Exec(`UPDATE app_users SET password_hash = $1, updated_at = $2 WHERE uuid = $3`, passwordHash, time.Now(), userUUID)
	return err
}

func (r *userRepository) SetActive(userUUID string, active bool) error {
	_, err := r.db.Exec(`UPDATE app_users SET is_active = $1, updated_at = $2 WHERE uuid = $3`, active, time.Now(), userUUID)
	return err
}

func (r *userRepository) getDisciplines(userUUID string) ([]models.Discipline, error) {
	disciplines := []models.Discipline{}
	query := `SELECT d.id, d.slug, d.name, d.external_id
	          FROM disciplines d
	          JOIN user_disciplines ud ON ud.discipline_id = d.id
	          WHERE ud.user_uuid = $1
	          ORDER BY d.name ASC`
	if err := r.db.Select(&disciplines, query, userUUID); err != nil {
		return nil, err
	}
	return disciplines, nil
}
