package repository

import (
	"context"

	"github.com/akinalp/shopapi/models"
)

// ProductRepository stores catalog products.
type ProductRepository interface {
	// Create inserts product and fills in ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	// List returns all products ordered by id. Never nil.
	List(ctx context.Context) ([]models.Product, error)
	// Update writes every field of product.ID and refreshes UpdatedAt.
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id int64) error
}
