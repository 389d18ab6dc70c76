package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/akinalp/shopapi/database"
	"github.com/akinalp/shopapi/models"
	"github.com/akinalp/shopapi/pkg"
)

// sqliteUserRepo is the SQLite implementation of UserRepository.
type sqliteUserRepo struct {
	db database.TxQuerier
}

// NewSQLiteUserRepo returns the interface, not the struct, so callers do not
// depend on the implementation.
func NewSQLiteUserRepo(db database.TxQuerier) UserRepository {
	return &sqliteUserRepo{db: db}
}

const sqliteUserColumns = `id, name, email, username, password_hash, created_at`

func (r *sqliteUserRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, email, username, password_hash)
		VALUES (?, ?, ?, ?, ?)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Name, user.Email, user.Username, user.PasswordHash,
	).Scan(&user.CreatedAt)

	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return userConflict(err.Error())
		}
		return storageError("create user", err)
	}

	return nil
}

func (r *sqliteUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, "get user by id", `SELECT `+sqliteUserColumns+` FROM users WHERE id = ?`, id)
}

func (r *sqliteUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "get user by email", `SELECT `+sqliteUserColumns+` FROM users WHERE email = ?`, email)
}

func (r *sqliteUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, "get user by username", `SELECT `+sqliteUserColumns+` FROM users WHERE username = ?`, username)
}

func (r *sqliteUserRepo) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET name = ?, email = ?, username = ?, password_hash = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		user.Name, user.Email, user.Username, user.PasswordHash, user.ID,
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return userConflict(err.Error())
		}
		return storageError("update user", err)
	}

	// Zero rows affected means the id does not exist.
	affected, err := result.RowsAffected()
	if err != nil {
		return storageError("check rows affected", err)
	}
	if affected == 0 {
		return pkg.ErrNotFound
	}

	return nil
}

func (r *sqliteUserRepo) getOne(ctx context.Context, op, query string, arg any) (*models.User, error) {
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
