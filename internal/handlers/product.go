package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shoplite/apiserver/internal/services"
	"github.com/shoplite/apiserver/internal/store"
	"github.com/shopspring/decimal"
)

const (
	maxImageMemory = 8 << 20
	maxImageBytes  = 16 << 20
	formFieldImage = "image"
)

// ProductHandler provides HTTP handlers for the catalog.
type ProductHandler struct {
	products *services.ProductService
}

// NewProductHandler constructs a handler over the catalog service.
func NewProductHandler(products *services.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// ProductRouter registers product routes on the given router. Reads are
// public; mutations require an authenticated admin.
func ProductRouter(
	r chi.Router,
	products *services.ProductService,
	requireAuth func(http.Handler) http.Handler,
	requireAdmin func(http.Handler) http.Handler,
) {
	handler := NewProductHandler(products)

	r.Get("/", handler.ListProducts)
	r.With(requireAuth, requireAdmin).Post("/", handler.CreateProduct)
	r.Route("/{productID}", func(r chi.Router) {
		r.Get("/", handler.GetProduct)
		r.With(requireAuth, requireAdmin).Put("/", handler.UpdateProduct)
		r.With(requireAuth, requireAdmin).Patch("/", handler.UpdateProduct)
		r.With(requireAuth, requireAdmin).Delete("/", handler.DeleteProduct)
		r.Get("/image", handler.GetProductImage)
		r.With(requireAuth, requireAdmin).Put("/image", handler.UploadProductImage)
	})
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	writeData(w, http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseProductID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.products.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch product")
		return
	}

	writeData(w, http.StatusOK, product)
}

// ProductCreateRequest is the JSON payload for creating a product.
type ProductCreateRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Status      string          `json:"status"`
}

// ProductUpdateRequest is the JSON payload for a partial update; absent
// fields keep their stored values.
type ProductUpdateRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Status      *string          `json:"status"`
}

func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	product, err := h.products.Create(r.Context(), services.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Status:      req.Status,
	})
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			writeValidationErrors(w, verr.Fields)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create product")
		return
	}

	writeData(w, http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseProductID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req ProductUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	product, err := h.products.Update(r.Context(), id, services.ProductUpdate{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Status:      req.Status,
	})
	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			writeValidationErrors(w, verr.Fields)
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "product not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update product")
		}
		return
	}

	writeData(w, http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseProductID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}

	writeData(w, http.StatusOK, MessageResponse{Message: "Product deleted successfully."})
}

// UploadProductImage stores a product image in object storage.
func (h *ProductHandler) UploadProductImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseProductID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := r.ParseMultipartForm(maxImageMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile(formFieldImage)
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	if header.Size > maxImageBytes {
		writeError(w, http.StatusBadRequest, "image file too large")
		return
	}

	contentType := header.Header.Get("Content-Type")
	err = h.products.SaveImage(r.Context(), id, header.Filename, contentType, file, header.Size)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to store image")
		return
	}

	writeData(w, http.StatusOK, MessageResponse{Message: "Image uploaded successfully."})
}

// GetProductImage streams the stored product image.
func (h *ProductHandler) GetProductImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseProductID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reader, key, err := h.products.OpenImage(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "image not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch image")
		return
	}
	defer reader.Close()

	if contentType := mime.TypeByExtension(path.Ext(key)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, reader)
}

func parseProductID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "productID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid product id")
	}
	return id, nil
}
