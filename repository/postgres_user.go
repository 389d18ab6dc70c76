package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/akinalp/shopapi/database"
	"github.com/akinalp/shopapi/models"
	"github.com/akinalp/shopapi/pkg"
)

// postgresUserRepo is the PostgreSQL implementation of UserRepository,
// running on the pgx stdlib driver through database/sql.
type postgresUserRepo struct {
	db database.TxQuerier
}

// NewPostgresUserRepo creates the PostgreSQL user repository.
func NewPostgresUserRepo(db database.TxQuerier) UserRepository {
	return &postgresUserRepo{db: db}
}

const postgresUserColumns = `id, name, email, username, password_hash, created_at`

func (r *postgresUserRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, email, username, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Name, user.Email, user.Username, user.PasswordHash,
	).Scan(&user.CreatedAt)

	if err != nil {
		if constraint, ok := isPgUniqueViolation(err); ok {
			return userConflict(constraint)
		}
		return storageError("create user", err)
	}

	return nil
}

func (r *postgresUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, "get user by id", `SELECT `+postgresUserColumns+` FROM users WHERE id = $1`, id)
}

func (r *postgresUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "get user by email", `SELECT `+postgresUserColumns+` FROM users WHERE email = $1`, email)
}

func (r *postgresUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, "get user by username", `SELECT `+postgresUserColumns+` FROM users WHERE username = $1`, username)
}

func (r *postgresUserRepo) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET name = $1, email = $2, username = $3, password_hash = $4
		WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query,
		user.Name, user.Email, user.Username, user.PasswordHash, user.ID,
	)
	if err != nil {
		if constraint, ok := isPgUniqueViolation(err); ok {
			return userConflict(constraint)
		}
		return storageError("update user", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return storageError("check rows affected", err)
	}
	if affected == 0 {
		return pkg.ErrNotFound
	}

	return nil
}

func (r *postgresUserRepo) getOne(ctx context.Context, op, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Name, &user.Email, &user.Username, &user.PasswordHash, &user.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, storageError(op, err)
	}

	return user, nil
}
