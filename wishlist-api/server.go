// Package wishlistapi implements the REST API for accounts, wishlists, and
// products. Writes land in DynamoDB; the websocket fan-out picks them up
// from the table stream.
package wishlistapi

import (
	"context"

	"github.com/shared-wishlist/wishlist-backend/wishlist-api/productdao"
	"github.com/shared-wishlist/wishlist-backend/wishlist-api/wishlistdao"
	wishlistauth "github.com/shared-wishlist/wishlist-backend/wishlist-auth"
	"github.com/shared-wishlist/wishlist-backend/wishlist-auth/userdao"
	"github.com/go-chi/chi/v5"
)

// UserStore provides access to user accounts.
type UserStore interface {
	Get(ctx context.Context, email string) (*userdao.User, error)
	Create(ctx context.Context, user userdao.User) error
}

// WishlistStore provides access to wishlist root records.
type WishlistStore interface {
	Put(ctx context.Context, wishlist wishlistdao.Wishlist) error
	Get(ctx context.Context, wishlistID string) (*wishlistdao.Wishlist, error)
	Delete(ctx context.Context, wishlistID string) error
	QueryByOwner(ctx context.Context, owner string, limit int64, cursor string) ([]wishlistdao.Wishlist, string, error)
}

// ProductStore provides access to wishlist product records.
type ProductStore interface {
	Put(ctx context.Context, product productdao.Product) error
	Get(ctx context.Context, wishlistID, productID string) (*productdao.Product, error)
	Delete(ctx context.Context, wishlistID, productID string) error
	QueryByWishlist(ctx context.Context, wishlistID string) ([]productdao.Product, error)
}

// Server holds the API's dependencies.
type Server struct {
	Users     UserStore
	Wishlists WishlistStore
	Products  ProductStore
	Tokens    *wishlistauth.Tokens
}

// Routes mounts all API endpoints on the router. Everything except signup
// and login requires a bearer token.
func (s *Server) Routes(routes chi.Router) {
	routes.Post("/auth/signup", s.Signup)
	routes.Post("/auth/login", s.Login)

	routes.Group(func(r chi.Router) {
		r.Use(RequireAuth(s.Tokens))

		r.Post("/wishlists", s.CreateWishlist)
		r.Get("/wishlists", s.ListWishlists)
		r.Get("/wishlists/{wishlistId}", s.GetWishlist)
		r.Put("/wishlists/{wishlistId}", s.UpdateWishlist)
		r.Delete("/wishlists/{wishlistId}", s.DeleteWishlist)
		r.Post("/wishlists/{wishlistId}/invite", s.InviteUser)

		r.Get("/wishlists/{wishlistId}/products", s.ListProducts)
		r.Post("/wishlists/{wishlistId}/products", s.CreateProduct)
		r.Put("/wishlists/{wishlistId}/products/{productId}", s.UpdateProduct)
		r.Delete("/wishlists/{wishlistId}/products/{productId}", s.DeleteProduct)
	})
}
