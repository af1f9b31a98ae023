package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/shoplite/apiserver/internal/storage"
	"github.com/shoplite/apiserver/internal/store"
	"github.com/shoplite/apiserver/types"
	"github.com/shopspring/decimal"
)

const maxNameLength = 255

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	List(ctx context.Context) ([]types.Product, error)
	Get(ctx context.Context, id int) (types.Product, error)
	Create(ctx context.Context, product types.Product) (types.Product, error)
	Update(ctx context.Context, product types.Product) (types.Product, error)
	UpdateImageKey(ctx context.Context, id int, key string) error
	Delete(ctx context.Context, id int) error
}

// ProductService encapsulates catalog use-cases.
type ProductService struct {
	repo    ProductRepository
	storage *storage.Storage
}

// NewProductService constructs a ProductService. images may be nil, in
// which case image upload and download are unavailable.
func NewProductService(repo ProductRepository, images *storage.Storage) *ProductService {
	return &ProductService{repo: repo, storage: images}
}

// ProductInput is the payload for creating a product.
type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Status      string
}

// ProductUpdate is a partial update: only non-nil fields change.
type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Status      *string
}

func (s *ProductService) List(ctx context.Context) ([]types.Product, error) {
	return s.repo.List(ctx)
}

func (s *ProductService) Get(ctx context.Context, id int) (types.Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *ProductService) Create(ctx context.Context, input ProductInput) (types.Product, error) {
	verr := NewValidationError()
	validateProductName(verr, input.Name)
	validateProductPrice(verr, input.Price)
	validateProductStatus(verr, input.Status)
	if !verr.Empty() {
		return types.Product{}, verr
	}

	return s.repo.Create(ctx, types.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Price:       input.Price,
		Status:      input.Status,
	})
}

// Update applies a partial update: only the supplied fields replace the
// stored values, under the same constraints as creation.
func (s *ProductService) Update(ctx context.Context, id int, update ProductUpdate) (types.Product, error) {
	verr := NewValidationError()
	if update.Name != nil {
		validateProductName(verr, *update.Name)
	}
	if update.Price != nil {
		validateProductPrice(verr, *update.Price)
	}
	if update.Status != nil {
		validateProductStatus(verr, *update.Status)
	}
	if !verr.Empty() {
		return types.Product{}, verr
	}

	product, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Product{}, err
	}

	if update.Name != nil {
		product.Name = strings.TrimSpace(*update.Name)
	}
	if update.Description != nil {
		product.Description = *update.Description
	}
	if update.Price != nil {
		product.Price = *update.Price
	}
	if update.Status != nil {
		product.Status = *update.Status
	}

	return s.repo.Update(ctx, product)
}

func (s *ProductService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

// SaveImage stores the product image in object storage and records its
// key on the product. A previously stored image is removed.
func (s *ProductService) SaveImage(ctx context.Context, id int, filename, contentType string, r io.Reader, size int64) error {
	if s.storage == nil {
		return fmt.Errorf("image storage is not configured")
	}

	product, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("products/%d/%s%s", id, uuid.NewString(), path.Ext(filename))
	if err := s.storage.Put(ctx, key, r, size, contentType); err != nil {
		return fmt.Errorf("store image: %w", err)
	}

	if err := s.repo.UpdateImageKey(ctx, id, key); err != nil {
		_ = s.storage.Delete(ctx, key)
		return err
	}

	if product.ImageKey != "" {
		_ = s.storage.Delete(ctx, product.ImageKey)
	}
	return nil
}

// OpenImage opens the stored image of the product. The caller closes the
// reader. Returns store.ErrNotFound when the product has no image.
func (s *ProductService) OpenImage(ctx context.Context, id int) (io.ReadCloser, string, error) {
	if s.storage == nil {
		return nil, "", fmt.Errorf("image storage is not configured")
	}

	product, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if product.ImageKey == "" {
		return nil, "", store.ErrNotFound
	}

	reader, err := s.storage.Get(ctx, product.ImageKey)
	if err != nil {
		return nil, "", err
	}
	return reader, product.ImageKey, nil
}

func validateProductName(verr *ValidationError, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		verr.Add("name", "The name field is required.")
		return
	}
	if len(name) > maxNameLength {
		verr.Add("name", fmt.Sprintf("The name may not be greater than %d characters.", maxNameLength))
	}
}

func validateProductPrice(verr *ValidationError, price decimal.Decimal) {
	if price.IsNegative() {
		verr.Add("price", "The price must be at least 0.")
	}
}

func validateProductStatus(verr *ValidationError, status string) {
	if status != types.ProductStatusActive && status != types.ProductStatusInactive {
		verr.Add("status", "The selected status is invalid.")
	}
}
