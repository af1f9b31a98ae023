package services

import (
	"context"
	"strings"
	"testing"

	"github.com/shoplite/apiserver/internal/store"
	"github.com/shoplite/apiserver/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProductRepo struct {
	products map[int]types.Product
	nextID   int
}

func newFakeProductRepo(products ...types.Product) *fakeProductRepo {
	repo := &fakeProductRepo{products: make(map[int]types.Product), nextID: 1}
	for _, p := range products {
		repo.products[p.ID] = p
		if p.ID >= repo.nextID {
			repo.nextID = p.ID + 1
		}
	}
	return repo
}

func (f *fakeProductRepo) List(ctx context.Context) ([]types.Product, error) {
	out := make([]types.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProductRepo) Get(ctx context.Context, id int) (types.Product, error) {
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return types.Product{}, store.ErrNotFound
}

func (f *fakeProductRepo) Create(ctx context.Context, product types.Product) (types.Product, error) {
	product.ID = f.nextID
	f.nextID++
	f.products[product.ID] = product
	return product, nil
}

func (f *fakeProductRepo) Update(ctx context.Context, product types.Product) (types.Product, error) {
	if _, ok := f.products[product.ID]; !ok {
		return types.Product{}, store.ErrNotFound
	}
	f.products[product.ID] = product
	return product, nil
}

func (f *fakeProductRepo) UpdateImageKey(ctx context.Context, id int, key string) error {
	p, ok := f.products[id]
	if !ok {
		return store.ErrNotFound
	}
	p.ImageKey = key
	f.products[id] = p
	return nil
}

func (f *fakeProductRepo) Delete(ctx context.Context, id int) error {
	if _, ok := f.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.products, id)
	return nil
}

func TestProductCreateValidates(t *testing.T) {
	svc := NewProductService(newFakeProductRepo(), nil)

	_, err := svc.Create(context.Background(), ProductInput{
		Name:   "  ",
		Price:  decimal.RequireFromString("-1"),
		Status: "archived",
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "price")
	assert.Contains(t, verr.Fields, "status")
}

func TestProductCreateRejectsLongName(t *testing.T) {
	svc := NewProductService(newFakeProductRepo(), nil)

	_, err := svc.Create(context.Background(), ProductInput{
		Name:   strings.Repeat("x", maxNameLength+1),
		Price:  decimal.RequireFromString("9.99"),
		Status: types.ProductStatusActive,
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
}

func TestProductCreateTrimsName(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewProductService(repo, nil)

	product, err := svc.Create(context.Background(), ProductInput{
		Name:   "  Standing Desk  ",
		Price:  decimal.RequireFromString("199.99"),
		Status: types.ProductStatusActive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Standing Desk", product.Name)
	assert.True(t, product.Price.Equal(decimal.RequireFromString("199.99")))
}

func TestProductCreateAllowsZeroPrice(t *testing.T) {
	svc := NewProductService(newFakeProductRepo(), nil)

	_, err := svc.Create(context.Background(), ProductInput{
		Name:   "Free Sample",
		Price:  decimal.Zero,
		Status: types.ProductStatusActive,
	})
	assert.NoError(t, err)
}

func TestProductUpdateChangesOnlySuppliedFields(t *testing.T) {
	repo := newFakeProductRepo(types.Product{
		ID:          1,
		Name:        "Standing Desk",
		Description: "Height adjustable",
		Price:       decimal.RequireFromString("199.99"),
		Status:      types.ProductStatusActive,
	})
	svc := NewProductService(repo, nil)

	newPrice := decimal.RequireFromString("149.99")
	product, err := svc.Update(context.Background(), 1, ProductUpdate{Price: &newPrice})
	require.NoError(t, err)

	assert.Equal(t, "Standing Desk", product.Name)
	assert.Equal(t, "Height adjustable", product.Description)
	assert.Equal(t, types.ProductStatusActive, product.Status)
	assert.True(t, product.Price.Equal(newPrice))
}

func TestProductUpdateValidatesSuppliedFields(t *testing.T) {
	repo := newFakeProductRepo(types.Product{
		ID:     1,
		Name:   "Standing Desk",
		Price:  decimal.RequireFromString("199.99"),
		Status: types.ProductStatusActive,
	})
	svc := NewProductService(repo, nil)

	badStatus := "archived"
	_, err := svc.Update(context.Background(), 1, ProductUpdate{Status: &badStatus})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "status")

	// Validation failures never touch the stored row.
	stored, _ := repo.Get(context.Background(), 1)
	assert.Equal(t, types.ProductStatusActive, stored.Status)
}

func TestProductUpdateMissingProduct(t *testing.T) {
	svc := NewProductService(newFakeProductRepo(), nil)

	name := "Renamed"
	_, err := svc.Update(context.Background(), 42, ProductUpdate{Name: &name})
	assert.ErrorIs(t, err, store.ErrNotFound)
}
