package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/ariefcatur/go-shop-services/internal/products"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memProducts mirrors the SQL semantics of products.Repo in memory.
type memProducts struct {
	mu   sync.Mutex
	next int64
	rows map[int64]products.Product
}

func newMemProducts() *memProducts { return &memProducts{rows: map[int64]products.Product{}} }

func (m *memProducts) Create(ctx context.Context, in products.NewProduct) (products.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	p := products.Product{ID: m.next, Name: in.Name, Description: in.Description, Price: in.Price, Stock: in.Stock}
	m.rows[p.ID] = p
	return p, nil
}

func (m *memProducts) Get(ctx context.Context, id int64) (products.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return products.Product{}, fmt.Errorf("%w: %d", products.ErrNotFound, id)
	}
	return p, nil
}

func (m *memProducts) Search(ctx context.Context, f products.Filter) (products.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var match []products.Product
	for _, p := range m.rows {
		switch {
		case f.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Name)):
		case f.MinPrice != nil && p.Price < *f.MinPrice:
		case f.MaxPrice != nil && p.Price > *f.MaxPrice:
		case f.MinStock != nil && p.Stock < *f.MinStock:
		case f.MaxStock != nil && p.Stock > *f.MaxStock:
		default:
			match = append(match, p)
		}
	}
	sort.Slice(match, func(i, j int) bool { return match[i].ID < match[j].ID })

	out := products.Page{Items: []products.Product{}, Total: len(match), Page: f.Page, PageSize: f.PageSize}
	start := (f.Page - 1) * f.PageSize
	for i := start; i < len(match) && i < start+f.PageSize; i++ {
		out.Items = append(out.Items, match[i])
	}
	return out, nil
}

func (m *memProducts) Update(ctx context.Context, id int64, patch products.Patch) (products.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok {
		return products.Product{}, fmt.Errorf("%w: %d", products.ErrNotFound, id)
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description.Set {
		p.Description = patch.Description.Value
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	m.rows[id] = p
	return p, nil
}

func (m *memProducts) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return fmt.Errorf("%w: %d", products.ErrNotFound, id)
	}
	delete(m.rows, id)
	return nil
}

func newProductsAPI(t *testing.T) (http.Handler, *memProducts) {
	t.Helper()
	store := newMemProducts()
	r := NewRouter("products-service")
	NewProductsHandler(store).Register(r)
	return r, store
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestProducts_Scenario(t *testing.T) {
	api, _ := newProductsAPI(t)

	rec := do(t, api, http.MethodPost, "/products", `{"name":"Widget","price":9.99,"stock":5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	want := `{"id":1,"name":"Widget","description":null,"price":9.99,"stock":5}`
	assert.JSONEq(t, want, rec.Body.String())

	rec = do(t, api, http.MethodGet, "/products/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, want, rec.Body.String())

	rec = do(t, api, http.MethodPatch, "/products/1", `{"stock":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"Widget","description":null,"price":9.99,"stock":3}`, rec.Body.String())

	rec = do(t, api, http.MethodDelete, "/products/1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = do(t, api, http.MethodGet, "/products/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body.Error)

	rec = do(t, api, http.MethodDelete, "/products/1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProducts_CreateValidation(t *testing.T) {
	api, store := newProductsAPI(t)

	for name, body := range map[string]string{
		"missing name":    `{"price":1,"stock":1}`,
		"null name":       `{"name":null,"price":1,"stock":1}`,
		"missing price":   `{"name":"a","stock":1}`,
		"missing stock":   `{"name":"a","price":1}`,
		"bad json":        `{"name":`,
		"long name":       `{"name":"` + strings.Repeat("x", 256) + `","price":1,"stock":1}`,
		"stock too big":   `{"name":"a","price":1,"stock":2147483648}`,
		"stock too small": `{"name":"a","price":1,"stock":-2147483649}`,
	} {
		rec := do(t, api, http.MethodPost, "/products", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
	assert.Empty(t, store.rows)

	// zero and negative values are accepted as-is
	rec := do(t, api, http.MethodPost, "/products", `{"name":"Free","description":"gift","price":0,"stock":-1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"Free","description":"gift","price":0,"stock":-1}`, rec.Body.String())
}

func TestProducts_PartialUpdateKeepsOtherFields(t *testing.T) {
	api, _ := newProductsAPI(t)
	do(t, api, http.MethodPost, "/products", `{"name":"Lamp","description":"desk lamp","price":20,"stock":4}`)

	rec := do(t, api, http.MethodPatch, "/products/1", `{"price":18.5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"Lamp","description":"desk lamp","price":18.5,"stock":4}`, rec.Body.String())

	rec = do(t, api, http.MethodPatch, "/products/1", `{"description":null,"name":null}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"Lamp","description":null,"price":18.5,"stock":4}`, rec.Body.String())

	rec = do(t, api, http.MethodGet, "/products/1", "")
	assert.JSONEq(t, `{"id":1,"name":"Lamp","description":null,"price":18.5,"stock":4}`, rec.Body.String())

	rec = do(t, api, http.MethodPatch, "/products/2", `{"stock":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, api, http.MethodPatch, "/products/abc", `{"stock":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProducts_SearchPriceRangeAndPaging(t *testing.T) {
	api, _ := newProductsAPI(t)
	for i, price := range []float64{5, 10, 12.5, 15, 20, 20.01, 30} {
		body := fmt.Sprintf(`{"name":"Item %d","price":%v,"stock":%d}`, i, price, i)
		require.Equal(t, http.StatusOK, do(t, api, http.MethodPost, "/products", body).Code)
	}

	rec := do(t, api, http.MethodGet, "/products?min_price=10&max_price=20&page=1&page_size=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page products.Page
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))

	assert.Equal(t, 4, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 3, page.PageSize)
	require.Len(t, page.Items, 3)
	assert.GreaterOrEqual(t, page.Total, len(page.Items))
	for _, p := range page.Items {
		assert.GreaterOrEqual(t, p.Price, 10.0)
		assert.LessOrEqual(t, p.Price, 20.0)
	}

	rec = do(t, api, http.MethodGet, "/products?min_price=10&max_price=20&page=2&page_size=3", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 4, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 20.0, page.Items[0].Price)
}

func TestProducts_SearchDefaultsAndNameFilter(t *testing.T) {
	api, _ := newProductsAPI(t)
	do(t, api, http.MethodPost, "/products", `{"name":"Blue Widget","price":1,"stock":1}`)
	do(t, api, http.MethodPost, "/products", `{"name":"Gadget","price":1,"stock":1}`)

	rec := do(t, api, http.MethodGet, "/products?name=WIDG", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page products.Page
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, products.DefaultPage, page.Page)
	assert.Equal(t, products.DefaultPageSize, page.PageSize)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Blue Widget", page.Items[0].Name)

	rec = do(t, api, http.MethodGet, "/products?name=nothing", "")
	assert.JSONEq(t, `{"items":[],"total":0,"page":1,"page_size":10}`, rec.Body.String())
}

func TestProducts_EmptyNameOnCreateAndPatch(t *testing.T) {
	api, _ := newProductsAPI(t)

	rec := do(t, api, http.MethodPost, "/products", `{"name":"","price":1,"stock":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"id":1,"name":"","description":null,"price":1,"stock":1}`, rec.Body.String())

	rec = do(t, api, http.MethodPatch, "/products/1", `{"name":"Lamp"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, api, http.MethodPatch, "/products/1", `{"name":""}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"","description":null,"price":1,"stock":1}`, rec.Body.String())
}

func TestProducts_IDOutsideInt4IsNotFound(t *testing.T) {
	api, _ := newProductsAPI(t)
	do(t, api, http.MethodPost, "/products", `{"name":"Widget","price":1,"stock":1}`)

	for _, req := range []struct{ method, body string }{
		{http.MethodGet, ""},
		{http.MethodPatch, `{"stock":1}`},
		{http.MethodDelete, ""},
	} {
		for _, id := range []string{"2147483648", "3000000000", "-2147483649", "99999999999999999999999"} {
			rec := do(t, api, req.method, "/products/"+id, req.body)
			assert.Equal(t, http.StatusNotFound, rec.Code, req.method+" "+id)
		}
	}

	rec := do(t, api, http.MethodGet, "/products/1.5", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProducts_PatchStockOutOfRange(t *testing.T) {
	api, _ := newProductsAPI(t)
	do(t, api, http.MethodPost, "/products", `{"name":"Widget","price":1,"stock":1}`)

	rec := do(t, api, http.MethodPatch, "/products/1", `{"stock":2147483648}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, api, http.MethodPatch, "/products/1", `{"stock":2147483647}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"Widget","description":null,"price":1,"stock":2147483647}`, rec.Body.String())
}

func TestProducts_SearchPageOffsetOverflow(t *testing.T) {
	api, _ := newProductsAPI(t)
	do(t, api, http.MethodPost, "/products", `{"name":"Widget","price":1,"stock":1}`)

	for _, q := range []string{
		"page=4611686018427387905&page_size=4",
		"page=3&page_size=9223372036854775807",
		"page=3074457345618258604&page_size=3",
	} {
		rec := do(t, api, http.MethodGet, "/products?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}

	// the largest representable offset is still accepted
	rec := do(t, api, http.MethodGet, "/products?page=2&page_size=9223372036854775806", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[],"total":1,"page":2,"page_size":9223372036854775806}`, rec.Body.String())
}

func TestProducts_SearchBadQuery(t *testing.T) {
	api, _ := newProductsAPI(t)

	for _, q := range []string{"min_price=cheap", "max_stock=1.5", "page=0", "page_size=-1",
		"min_stock=2147483648", "max_stock=-2147483649"} {
		rec := do(t, api, http.MethodGet, "/products?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestHealth(t *testing.T) {
	api, _ := newProductsAPI(t)

	rec := do(t, api, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"products-service"}`, rec.Body.String())
}
