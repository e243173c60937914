package httpx

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ariefcatur/go-shop-services/internal/products"
	"github.com/go-chi/chi/v5"
)

// ProductStore is the relational record store behind the products API.
type ProductStore interface {
	Create(ctx context.Context, in products.NewProduct) (products.Product, error)
	Get(ctx context.Context, id int64) (products.Product, error)
	Search(ctx context.Context, f products.Filter) (products.Page, error)
	Update(ctx context.Context, id int64, p products.Patch) (products.Product, error)
	Delete(ctx context.Context, id int64) error
}

// Name only has to be present; an empty string is a valid name. Stock is an
// int4 column.
type CreateProductReq struct {
	Name        *string  `json:"name" validate:"required,max=255"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"required"`
	Stock       *int     `json:"stock" validate:"required,min=-2147483648,max=2147483647"`
}

// UpdateProductReq: null on name/price/stock counts as "not supplied";
// null on description clears it.
type UpdateProductReq struct {
	Name        *string             `json:"name" validate:"omitempty,max=255"`
	Description products.NullString `json:"description"`
	Price       *float64            `json:"price"`
	Stock       *int                `json:"stock" validate:"omitempty,min=-2147483648,max=2147483647"`
}

type ProductsHandler struct {
	store ProductStore
}

func NewProductsHandler(store ProductStore) *ProductsHandler {
	return &ProductsHandler{store: store}
}

func (h *ProductsHandler) Register(r chi.Router) {
	r.Post("/products", h.createProduct)
	r.Get("/products", h.searchProducts)
	r.Get("/products/{id}", h.getProduct)
	r.Patch("/products/{id}", h.updateProduct)
	r.Delete("/products/{id}", h.deleteProduct)
}

func (h *ProductsHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductReq
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.store.Create(ctx, products.NewProduct{
		Name:        *req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Stock:       *req.Stock,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.store.Get(ctx, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) searchProducts(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	page, err := h.store.Search(ctx, f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *ProductsHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}
	var req UpdateProductReq
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.store.Update(ctx, id, products.Patch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *ProductsHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.store.Delete(ctx, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// productID parses the {id} segment. Ids are SERIAL (int4), so a well-formed
// integer outside that range cannot exist and is answered with 404.
func productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 32)
	if errors.Is(err, strconv.ErrRange) {
		writeServiceError(w, r, fmt.Errorf("%w: %s", products.ErrNotFound, raw))
		return 0, false
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "product id must be an integer")
		return 0, false
	}
	return id, true
}

func parseFilter(q url.Values) (products.Filter, error) {
	f := products.Filter{
		Name:     q.Get("name"),
		Page:     products.DefaultPage,
		PageSize: products.DefaultPageSize,
	}

	var err error
	if f.MinPrice, err = optFloat(q, "min_price"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = optFloat(q, "max_price"); err != nil {
		return f, err
	}
	if f.MinStock, err = optInt32(q, "min_stock"); err != nil {
		return f, err
	}
	if f.MaxStock, err = optInt32(q, "max_stock"); err != nil {
		return f, err
	}

	if v, err := optInt(q, "page"); err != nil {
		return f, err
	} else if v != nil {
		f.Page = *v
	}
	if v, err := optInt(q, "page_size"); err != nil {
		return f, err
	} else if v != nil {
		f.PageSize = *v
	}
	if f.Page < 1 || f.PageSize < 1 {
		return f, fmt.Errorf("page and page_size must be >= 1")
	}
	// OFFSET is (page-1)*page_size and must not wrap around
	if f.Page-1 > math.MaxInt/f.PageSize {
		return f, fmt.Errorf("page %d with page_size %d is out of range", f.Page, f.PageSize)
	}
	return f, nil
}

func optFloat(q url.Values, key string) (*float64, error) {
	s := q.Get(key)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", key)
	}
	return &v, nil
}

func optInt(q url.Values, key string) (*int, error) {
	s := q.Get(key)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", key)
	}
	return &v, nil
}

// optInt32 is optInt limited to the int4 range of the stock column.
func optInt32(q url.Values, key string) (*int, error) {
	v, err := optInt(q, key)
	if err != nil || v == nil {
		return v, err
	}
	if *v < math.MinInt32 || *v > math.MaxInt32 {
		return nil, fmt.Errorf("%s is out of range", key)
	}
	return v, nil
}
