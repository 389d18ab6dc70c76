package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/akinalp/shopapi/database"
	"github.com/akinalp/shopapi/models"
	"github.com/akinalp/shopapi/pkg"
)

// postgresProductRepo is the PostgreSQL implementation of ProductRepository.
type postgresProductRepo struct {
	db database.TxQuerier
}

// NewPostgresProductRepo creates the PostgreSQL product repository.
func NewPostgresProductRepo(db database.TxQuerier) ProductRepository {
	return &postgresProductRepo{db: db}
}

func (r *postgresProductRepo) Create(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (title, description, price, quantity, image)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		p.Title, p.Description, p.Price, p.Quantity, p.Image,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return storageError("create product", err)
	}

	return nil
}

func (r *postgresProductRepo) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: product %d", pkg.ErrNotFound, id)
	}
	if err != nil {
		return nil, storageError("get product", err)
	}

	return p, nil
}

func (r *postgresProductRepo) List(ctx context.Context) ([]models.Product, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, storageError("list products", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r *postgresProductRepo) Update(ctx context.Context, p *models.Product) error {
	query := `
		UPDATE products
		SET title = $1, description = $2, price = $3, quantity = $4, image = $5, updated_at = now()
		WHERE id = $6
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		p.Title, p.Description, p.Price, p.Quantity, p.Image, p.ID,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: product %d", pkg.ErrNotFound, p.ID)
	}
	if err != nil {
		return storageError("update product", err)
	}

	return nil
}

func (r *postgresProductRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return storageError("delete product", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return storageError("check rows affected", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: product %d", pkg.ErrNotFound, id)
	}

	return nil
}
