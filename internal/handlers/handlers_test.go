package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shoplite/apiserver/internal/services"
	"github.com/shoplite/apiserver/internal/store"
	"github.com/shoplite/apiserver/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memUserRepo struct {
	users map[int]types.User
}

func (m *memUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return types.User{}, store.ErrNotFound
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *memUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	user.ID = len(m.users) + 1
	m.users[user.ID] = user
	return user, nil
}

func (m *memUserRepo) UpsertByEmail(ctx context.Context, user types.User) (types.User, error) {
	for id, existing := range m.users {
		if existing.Email == user.Email {
			user.ID = id
			m.users[id] = user
			return user, nil
		}
	}
	return m.Create(ctx, user)
}

type memTokenRepo struct {
	tokens map[int]types.Token
	nextID int
}

func (m *memTokenRepo) Get(ctx context.Context, id int) (types.Token, error) {
	if token, ok := m.tokens[id]; ok {
		return token, nil
	}
	return types.Token{}, store.ErrNotFound
}

func (m *memTokenRepo) Create(ctx context.Context, token types.Token) (types.Token, error) {
	token.ID = m.nextID
	m.nextID++
	m.tokens[token.ID] = token
	return token, nil
}

func (m *memTokenRepo) Delete(ctx context.Context, id int) error {
	if _, ok := m.tokens[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.tokens, id)
	return nil
}

type memProductRepo struct {
	products map[int]types.Product
	nextID   int
}

func (m *memProductRepo) List(ctx context.Context) ([]types.Product, error) {
	out := make([]types.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memProductRepo) Get(ctx context.Context, id int) (types.Product, error) {
	if p, ok := m.products[id]; ok {
		return p, nil
	}
	return types.Product{}, store.ErrNotFound
}

func (m *memProductRepo) Create(ctx context.Context, product types.Product) (types.Product, error) {
	product.ID = m.nextID
	m.nextID++
	product.CreatedAt = time.Now()
	m.products[product.ID] = product
	return product, nil
}

func (m *memProductRepo) Update(ctx context.Context, product types.Product) (types.Product, error) {
	if _, ok := m.products[product.ID]; !ok {
		return types.Product{}, store.ErrNotFound
	}
	m.products[product.ID] = product
	return product, nil
}

func (m *memProductRepo) UpdateImageKey(ctx context.Context, id int, key string) error {
	p, ok := m.products[id]
	if !ok {
		return store.ErrNotFound
	}
	p.ImageKey = key
	m.products[id] = p
	return nil
}

func (m *memProductRepo) Delete(ctx context.Context, id int) error {
	if _, ok := m.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

// memOrderRepo mirrors the transactional order store: it resolves each
// line against the catalog, rejects missing or inactive products all at
// once, and snapshots prices into the stored order.
type memOrderRepo struct {
	catalog *memProductRepo
	orders  map[int]types.Order
	nextID  int
}

func (m *memOrderRepo) Create(ctx context.Context, order types.Order, lines []store.OrderLine) (types.Order, error) {
	var issues []store.ProductIssue
	items := make([]types.OrderItem, 0, len(lines))
	total := decimal.Zero

	for i, line := range lines {
		product, ok := m.catalog.products[line.ProductID]
		if !ok {
			issues = append(issues, store.ProductIssue{
				Index:     i,
				ProductID: line.ProductID,
				Reason:    store.ProductIssueMissing,
			})
			continue
		}
		if product.Status != types.ProductStatusActive {
			issues = append(issues, store.ProductIssue{
				Index:       i,
				ProductID:   product.ID,
				ProductName: product.Name,
				Reason:      store.ProductIssueInactive,
			})
			continue
		}
		subtotal := product.Price.Mul(decimal.NewFromInt(int64(line.Qty)))
		total = total.Add(subtotal)
		items = append(items, types.OrderItem{
			ProductID: product.ID,
			Qty:       line.Qty,
			Price:     product.Price,
			Subtotal:  subtotal,
		})
	}
	if len(issues) > 0 {
		return types.Order{}, &store.OrderRejectedError{Issues: issues}
	}

	order.ID = m.nextID
	m.nextID++
	order.Status = types.OrderStatusPending
	order.TotalPrice = total
	order.CreatedAt = time.Now()
	for i := range items {
		items[i].ID = i + 1
		items[i].OrderID = order.ID
	}
	order.Items = items
	m.orders[order.ID] = order
	return order, nil
}

func (m *memOrderRepo) List(ctx context.Context) ([]types.Order, error) {
	out := make([]types.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memOrderRepo) Get(ctx context.Context, id int) (types.Order, error) {
	if o, ok := m.orders[id]; ok {
		return o, nil
	}
	return types.Order{}, store.ErrNotFound
}

type testEnv struct {
	router   chi.Router
	users    *memUserRepo
	tokens   *memTokenRepo
	products *memProductRepo
	orders   *memOrderRepo
}

// newTestEnv wires the full route table over in-memory repositories,
// seeded with an admin, a regular user, and a small catalog.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)

	env := &testEnv{
		users: &memUserRepo{users: map[int]types.User{
			1: {ID: 1, Name: "Admin", Email: "admin@example.com", PasswordHash: string(hash), Role: types.RoleAdmin},
			2: {ID: 2, Name: "Shopper", Email: "user@example.com", PasswordHash: string(hash), Role: types.RoleUser},
		}},
		tokens: &memTokenRepo{tokens: make(map[int]types.Token), nextID: 1},
		products: &memProductRepo{
			products: map[int]types.Product{
				1: {ID: 1, Name: "Standing Desk", Price: decimal.RequireFromString("100.00"), Status: types.ProductStatusActive},
				2: {ID: 2, Name: "Desk Lamp", Price: decimal.RequireFromString("50.50"), Status: types.ProductStatusActive},
				3: {ID: 3, Name: "Discontinued Press", Price: decimal.RequireFromString("75.00"), Status: types.ProductStatusInactive},
			},
			nextID: 4,
		},
	}
	env.orders = &memOrderRepo{catalog: env.products, orders: make(map[int]types.Order), nextID: 1}

	authSvc := services.NewAuthService(env.users, env.tokens)
	productSvc := services.NewProductService(env.products, nil)
	orderSvc := services.NewOrderService(env.orders, nil, nil)

	authHandler := NewAuthHandler(authSvc)
	r := chi.NewRouter()
	AuthRouter(r, authSvc)
	r.Route("/products", func(r chi.Router) {
		ProductRouter(r, productSvc, authHandler.RequireAuth, RequireAdmin)
	})
	r.Route("/orders", func(r chi.Router) {
		OrderRouter(r, orderSvc, authHandler.RequireAuth, RequireAdmin)
	})
	env.router = r
	return env
}

func (e *testEnv) do(t *testing.T, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T, email string) string {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/login", "", map[string]string{
		"email":    email,
		"password": "password",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func fieldErrors(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	body := decodeBody(t, rec)
	require.Equal(t, "The given data was invalid.", body["message"], rec.Body.String())
	errs, ok := body["errors"].(map[string]any)
	require.True(t, ok, "expected field errors, got %s", rec.Body.String())
	return errs
}
