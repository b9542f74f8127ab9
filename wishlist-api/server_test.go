package wishlistapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shared-wishlist/wishlist-backend/wishlist-api/productdao"
	"github.com/shared-wishlist/wishlist-backend/wishlist-api/wishlistdao"
	wishlistauth "github.com/shared-wishlist/wishlist-backend/wishlist-auth"
	"github.com/shared-wishlist/wishlist-backend/wishlist-auth/userdao"
	"github.com/go-chi/chi/v5"
	"github.com/tj/assert"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]userdao.User
}

func (m *memUsers) Get(_ context.Context, email string) (*userdao.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.users[email]; ok {
		return &user, nil
	}
	return nil, nil
}

func (m *memUsers) Create(_ context.Context, user userdao.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Email]; ok {
		return userdao.ErrUserExists
	}
	if m.users == nil {
		m.users = map[string]userdao.User{}
	}
	m.users[user.Email] = user
	return nil
}

type memWishlists struct {
	mu        sync.Mutex
	wishlists map[string]wishlistdao.Wishlist
}

func (m *memWishlists) Put(_ context.Context, wishlist wishlistdao.Wishlist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.wishlists == nil {
		m.wishlists = map[string]wishlistdao.Wishlist{}
	}
	m.wishlists[wishlist.WishlistID] = wishlist
	return nil
}

func (m *memWishlists) Get(_ context.Context, wishlistID string) (*wishlistdao.Wishlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if wishlist, ok := m.wishlists[wishlistID]; ok {
		return &wishlist, nil
	}
	return nil, nil
}

func (m *memWishlists) Delete(_ context.Context, wishlistID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.wishlists, wishlistID)
	return nil
}

func (m *memWishlists) QueryByOwner(_ context.Context, owner string, limit int64, _ string) ([]wishlistdao.Wishlist, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []wishlistdao.Wishlist
	for _, wishlist := range m.wishlists {
		if wishlist.CreatedBy == owner && int64(len(out)) < limit {
			out = append(out, wishlist)
		}
	}
	return out, "", nil
}

type memProducts struct {
	mu       sync.Mutex
	products map[string]productdao.Product // key: wishlistID+"/"+productID
}

func (m *memProducts) Put(_ context.Context, product productdao.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.products == nil {
		m.products = map[string]productdao.Product{}
	}
	m.products[product.PK+"/"+product.SK] = product
	return nil
}

func (m *memProducts) Get(_ context.Context, wishlistID, productID string) (*productdao.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, product := range m.products {
		if product.ProductID == productID {
			return &product, nil
		}
	}
	return nil, nil
}

func (m *memProducts) Delete(_ context.Context, wishlistID, productID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, product := range m.products {
		if product.ProductID == productID {
			delete(m.products, key)
		}
	}
	return nil
}

func (m *memProducts) QueryByWishlist(_ context.Context, wishlistID string) ([]productdao.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []productdao.Product
	for _, product := range m.products {
		out = append(out, product)
	}
	return out, nil
}

func newTestServer() (*Server, http.Handler) {
	server := &Server{
		Users:     &memUsers{},
		Wishlists: &memWishlists{},
		Products:  &memProducts{},
		Tokens:    wishlistauth.NewTokens([]byte("test-secret"), time.Hour),
	}
	routes := chi.NewRouter()
	server.Routes(routes)
	return server, routes
}

func doJSON(t *testing.T, routes http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	var buf bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	routes.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	}
	return w, decoded
}

func signup(t *testing.T, routes http.Handler, email string) string {
	w, body := doJSON(t, routes, "POST", "/auth/signup", "", map[string]string{
		"email":    email,
		"password": "hunter22",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	token, _ := body["token"].(string)
	assert.NotEmpty(t, token)
	return token
}

func TestAuthRoutes(t *testing.T) {
	_, routes := newTestServer()

	t.Run("signup then login", func(t *testing.T) {
		signup(t, routes, "alice@example.com")

		w, body := doJSON(t, routes, "POST", "/auth/login", "", map[string]string{
			"email":    "alice@example.com",
			"password": "hunter22",
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, body["token"])
	})

	t.Run("duplicate signup conflicts", func(t *testing.T) {
		w, _ := doJSON(t, routes, "POST", "/auth/signup", "", map[string]string{
			"email":    "alice@example.com",
			"password": "hunter22",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		w, _ := doJSON(t, routes, "POST", "/auth/login", "", map[string]string{
			"email":    "alice@example.com",
			"password": "wrong-password",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		w, _ := doJSON(t, routes, "POST", "/auth/login", "", map[string]string{
			"email":    "nobody@example.com",
			"password": "hunter22",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid signup body", func(t *testing.T) {
		w, _ := doJSON(t, routes, "POST", "/auth/signup", "", map[string]string{
			"email":    "not-an-email",
			"password": "hunter22",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestWishlistRoutes(t *testing.T) {
	_, routes := newTestServer()
	alice := signup(t, routes, "alice@example.com")
	bob := signup(t, routes, "bob@example.com")

	t.Run("requires a token", func(t *testing.T) {
		w, _ := doJSON(t, routes, "POST", "/wishlists", "", map[string]string{"name": "birthday"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	w, body := doJSON(t, routes, "POST", "/wishlists", alice, map[string]string{"name": "birthday"})
	assert.Equal(t, http.StatusCreated, w.Code)
	wishlistID, _ := body["wishlistId"].(string)
	assert.NotEmpty(t, wishlistID)

	t.Run("owner can read", func(t *testing.T) {
		w, body := doJSON(t, routes, "GET", "/wishlists/"+wishlistID, alice, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "birthday", body["name"])
	})

	t.Run("stranger cannot read", func(t *testing.T) {
		w, _ := doJSON(t, routes, "GET", "/wishlists/"+wishlistID, bob, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("missing wishlist is 404", func(t *testing.T) {
		w, _ := doJSON(t, routes, "GET", "/wishlists/ghost", alice, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("only the owner can invite", func(t *testing.T) {
		w, _ := doJSON(t, routes, "POST", "/wishlists/"+wishlistID+"/invite", bob, map[string]string{"email": "bob@example.com"})
		assert.Equal(t, http.StatusForbidden, w.Code)

		w, body := doJSON(t, routes, "POST", "/wishlists/"+wishlistID+"/invite", alice, map[string]string{"email": "bob@example.com"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, body["invitedUsers"], 1)

		// inviting again does not duplicate
		w, body = doJSON(t, routes, "POST", "/wishlists/"+wishlistID+"/invite", alice, map[string]string{"email": "bob@example.com"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, body["invitedUsers"], 1)
	})

	t.Run("invited user can read and rename", func(t *testing.T) {
		w, _ := doJSON(t, routes, "GET", "/wishlists/"+wishlistID, bob, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w, body := doJSON(t, routes, "PUT", "/wishlists/"+wishlistID, bob, map[string]string{"name": "our birthday"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "our birthday", body["name"])
	})

	t.Run("products", func(t *testing.T) {
		w, body := doJSON(t, routes, "POST", "/wishlists/"+wishlistID+"/products", bob, map[string]interface{}{
			"name":  "socks",
			"price": 9.99,
		})
		assert.Equal(t, http.StatusCreated, w.Code)
		productID, _ := body["productId"].(string)
		assert.NotEmpty(t, productID)

		// partial update keeps unset fields
		w, body = doJSON(t, routes, "PUT", "/wishlists/"+wishlistID+"/products/"+productID, alice, map[string]interface{}{
			"price": 14.99,
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "socks", body["name"])
		assert.Equal(t, 14.99, body["price"])

		w, body = doJSON(t, routes, "GET", "/wishlists/"+wishlistID+"/products", alice, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, body["items"], 1)

		w, _ = doJSON(t, routes, "DELETE", "/wishlists/"+wishlistID+"/products/"+productID, alice, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w, body = doJSON(t, routes, "GET", "/wishlists/"+wishlistID+"/products", alice, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, body["items"], 0)
	})

	t.Run("delete", func(t *testing.T) {
		w, _ := doJSON(t, routes, "DELETE", "/wishlists/"+wishlistID, alice, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w, _ = doJSON(t, routes, "GET", "/wishlists/"+wishlistID, alice, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
