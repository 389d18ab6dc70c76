package services

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/akinalp/shopapi/models"
	"github.com/akinalp/shopapi/pkg"
	"github.com/akinalp/shopapi/pkg/logger"
	"github.com/akinalp/shopapi/repository"
)

// ImageFile is an uploaded image as the handler received it.
type ImageFile struct {
	Name   string
	Size   int64
	Reader io.Reader
}

// ProductService is the catalog API the handlers depend on.
type ProductService interface {
	// Create validates req, stores image when given and inserts the product.
	Create(ctx context.Context, req *models.CreateProductRequest, image *ImageFile) (*models.Product, error)
	Get(ctx context.Context, id int64) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	// Update applies the set fields of req to product id. A nil image and a
	// nil req.Image keep the stored image; req.Image "" clears it.
	Update(ctx context.Context, id int64, req *models.UpdateProductRequest, image *ImageFile) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
}

type productService struct {
	productRepo repository.ProductRepository
	uploads     UploadService
	log         *zap.Logger
}

// NewProductService is the constructor.
func NewProductService(productRepo repository.ProductRepository, uploads UploadService) ProductService {
	return &productService{
		productRepo: productRepo,
		uploads:     uploads,
		log:         logger.Get().Named("products"),
	}
}

func (s *productService) Create(ctx context.Context, req *models.CreateProductRequest, image *ImageFile) (*models.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrValidation, err.Error())
	}

	if req.Image != nil && *req.Image != "" {
		return nil, pkg.ErrImageNotUploaded
	}

	product := req.Product()

	if image != nil {
		stored, err := s.uploads.Save(image.Name, image.Size, image.Reader)
		if err != nil {
			return nil, err
		}
		product.Image = stored
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if image != nil {
			s.removeImage(product.Image)
		}
		return nil, err
	}

	s.log.Info("product created", zap.Int64("product_id", product.ID), zap.Bool("has_image", product.Image != ""))
	return product, nil
}

func (s *productService) Get(ctx context.Context, id int64) (*models.Product, error) {
	if err := validateProductID(id); err != nil {
		return nil, err
	}
	return s.productRepo.GetByID(ctx, id)
}

func (s *productService) List(ctx context.Context) ([]models.Product, error) {
	return s.productRepo.List(ctx)
}

func (s *productService) Update(ctx context.Context, id int64, req *models.UpdateProductRequest, image *ImageFile) (*models.Product, error) {
	if err := validateProductID(id); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrValidation, err.Error())
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previousImage := product.Image

	// The image path only ever comes from Save; a client may clear it or
	// send back the current value, nothing else.
	if req.Image != nil && *req.Image != "" && *req.Image != previousImage {
		return nil, pkg.ErrImageNotUploaded
	}

	req.Apply(product)

	var stored string
	if image != nil {
		stored, err = s.uploads.Save(image.Name, image.Size, image.Reader)
		if err != nil {
			return nil, err
		}
		product.Image = stored
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		if stored != "" {
			s.removeImage(stored)
		}
		return nil, err
	}

	if previousImage != "" && previousImage != product.Image {
		s.removeImage(previousImage)
	}

	return product, nil
}

func (s *productService) Delete(ctx context.Context, id int64) error {
	if err := validateProductID(id); err != nil {
		return err
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	if product.Image != "" {
		s.removeImage(product.Image)
	}

	s.log.Info("product deleted", zap.Int64("product_id", id))
	return nil
}

// removeImage deletes a stored image file. Failures are logged only; the
// database row is already the source of truth.
func (s *productService) removeImage(storedPath string) {
	if err := s.uploads.Remove(storedPath); err != nil {
		s.log.Warn("failed to remove image", zap.String("path", storedPath), zap.Error(err))
	}
}

func validateProductID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid product id", pkg.ErrValidation)
	}
	return nil
}
