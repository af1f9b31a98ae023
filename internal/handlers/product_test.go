package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListProductsIsPublic(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	products := body["data"].([]any)
	assert.Len(t, products, 3)
}

func TestGetProduct(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/products/1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	product := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, "Standing Desk", product["name"])

	rec = env.do(t, http.MethodGet, "/products/42", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/products/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateProductRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	payload := map[string]any{"name": "Monitor Arm", "price": "59.99", "status": "active"}

	rec := env.do(t, http.MethodPost, "/products", "", payload)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	userToken := env.login(t, "user@example.com")
	rec = env.do(t, http.MethodPost, "/products", userToken, payload)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	adminToken := env.login(t, "admin@example.com")
	rec = env.do(t, http.MethodPost, "/products", adminToken, payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	product := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, "Monitor Arm", product["name"])
	assert.Equal(t, "59.99", product["price"])
}

func TestCreateProductValidates(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.login(t, "admin@example.com")

	rec := env.do(t, http.MethodPost, "/products", adminToken, map[string]any{
		"name":   "",
		"price":  "-5",
		"status": "archived",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	errs := fieldErrors(t, rec)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "price")
	assert.Contains(t, errs, "status")
}

func TestUpdateProductPartial(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.login(t, "admin@example.com")

	rec := env.do(t, http.MethodPatch, "/products/1", adminToken, map[string]any{
		"price": "149.99",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	product := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, "Standing Desk", product["name"], "untouched fields keep their values")
	assert.Equal(t, "149.99", product["price"])
	assert.Equal(t, "active", product["status"])
}

func TestUpdateProductNotFound(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.login(t, "admin@example.com")

	rec := env.do(t, http.MethodPut, "/products/42", adminToken, map[string]any{
		"name": "Ghost",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteProduct(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.login(t, "admin@example.com")

	rec := env.do(t, http.MethodDelete, "/products/2", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Product deleted successfully.", decodeBody(t, rec)["data"].(map[string]any)["message"])

	rec = env.do(t, http.MethodGet, "/products/2", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, "/products/2", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteProductRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	userToken := env.login(t, "user@example.com")

	rec := env.do(t, http.MethodDelete, "/products/1", userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
