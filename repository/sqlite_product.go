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

// sqliteProductRepo is the SQLite implementation of ProductRepository.
type sqliteProductRepo struct {
	db database.TxQuerier
}

// NewSQLiteProductRepo creates the SQLite product repository.
func NewSQLiteProductRepo(db database.TxQuerier) ProductRepository {
	return &sqliteProductRepo{db: db}
}

const productColumns = `id, title, description, price, quantity, image, created_at, updated_at`

func (r *sqliteProductRepo) Create(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (title, description, price, quantity, image)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		p.Title, p.Description, p.Price, p.Quantity, p.Image,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return storageError("create product", err)
	}

	return nil
}

func (r *sqliteProductRepo) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ?`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: product %d", pkg.ErrNotFound, id)
	}
	if err != nil {
		return nil, storageError("get product", err)
	}

	return p, nil
}

func (r *sqliteProductRepo) List(ctx context.Context) ([]models.Product, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, storageError("list products", err)
	}
	defer rows.Close() // an unclosed Rows holds its connection

	return collectProducts(rows)
}

func (r *sqliteProductRepo) Update(ctx context.Context, p *models.Product) error {
	query := `
		UPDATE products
		SET title = ?, description = ?, price = ?, quantity = ?, image = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
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

func (r *sqliteProductRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
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

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(s rowScanner) (*models.Product, error) {
	p := &models.Product{}
	if err := s.Scan(
		&p.ID, &p.Title, &p.Description, &p.Price, &p.Quantity, &p.Image, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return p, nil
}

func collectProducts(rows *sql.Rows) ([]models.Product, error) {
	products := make([]models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, storageError("scan product row", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("iterate product rows", err)
	}

	return products, nil
}
