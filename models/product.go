package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Product is a catalog item. Image is the public path of the stored image,
// "" when the product has none.
type Product struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Quantity    int       `json:"quantity"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateProductRequest is the body of POST /api/products.
// Pointer fields distinguish "missing" from a zero value.
type CreateProductRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity"`
	Image       *string  `json:"image"`
}

// Validate checks that every required field is present and in range.
func (r *CreateProductRequest) Validate() error {
	if r.Title == nil || r.Description == nil || r.Price == nil || r.Quantity == nil {
		return fmt.Errorf("missing required fields: title, description, price and quantity are required")
	}
	return validateProductFields(r.Title, r.Description, r.Price, r.Quantity)
}

// Product builds the product to insert. Call after Validate. Image is left
// empty: a stored image path is only ever set from an upload.
func (r *CreateProductRequest) Product() *Product {
	return &Product{
		Title:       strings.TrimSpace(*r.Title),
		Description: strings.TrimSpace(*r.Description),
		Price:       *r.Price,
		Quantity:    *r.Quantity,
	}
}

// UpdateProductRequest is the body of PUT /api/updateProducts.
// ID may come from the body when the route has no {id}. nil fields keep their
// stored value; in particular a nil Image keeps the stored image.
type UpdateProductRequest struct {
	ID          *int64   `json:"id"`
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity"`
	Image       *string  `json:"image"`
}

// Validate checks the fields that are set.
func (r *UpdateProductRequest) Validate() error {
	return validateProductFields(r.Title, r.Description, r.Price, r.Quantity)
}

// Apply copies the set fields onto p.
func (r *UpdateProductRequest) Apply(p *Product) {
	if r.Title != nil {
		p.Title = strings.TrimSpace(*r.Title)
	}
	if r.Description != nil {
		p.Description = strings.TrimSpace(*r.Description)
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.Quantity != nil {
		p.Quantity = *r.Quantity
	}
	if r.Image != nil {
		p.Image = *r.Image
	}
}

func validateProductFields(title, description *string, price *float64, quantity *int) error {
	if title != nil && strings.TrimSpace(*title) == "" {
		return fmt.Errorf("title cannot be empty")
	}
	if description != nil && strings.TrimSpace(*description) == "" {
		return fmt.Errorf("description cannot be empty")
	}
	if price != nil && (math.IsNaN(*price) || math.IsInf(*price, 0) || *price <= 0) {
		return fmt.Errorf("price must be a positive number")
	}
	if quantity != nil && *quantity < 0 {
		return fmt.Errorf("quantity must be zero or greater")
	}
	return nil
}
