package wishlistapi

import (
	"net/http"
	"time"

	"github.com/shared-wishlist/wishlist-backend/wishlist-api/productdao"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ListProducts returns all items on a wishlist the caller can read.
func (s *Server) ListProducts(w http.ResponseWriter, req *http.Request) {
	wishlist, ok := s.readableWishlist(w, req)
	if !ok {
		return
	}

	products, err := s.Products.QueryByWishlist(req.Context(), wishlist.WishlistID)
	if err != nil {
		respondInternalError(w, req, err)
		return
	}

	items := make([]map[string]interface{}, 0, len(products))
	for _, product := range products {
		items = append(items, productView(product))
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

// CreateProduct adds an item to a wishlist the caller can read.
func (s *Server) CreateProduct(w http.ResponseWriter, req *http.Request) {
	var request CreateProductRequest
	if err := decodeBody(req, &request); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := request.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	wishlist, ok := s.readableWishlist(w, req)
	if !ok {
		return
	}

	now := time.Now().UTC().Format(time.RFC3339)
	product := productdao.NewProduct(wishlist.WishlistID, uuid.NewString(), request.Name, request.ImageURL, request.Price, Principal(req.Context()), now)

	if err := s.Products.Put(req.Context(), product); err != nil {
		respondInternalError(w, req, err)
		return
	}

	respondJSON(w, http.StatusCreated, productView(product))
}

// UpdateProduct changes an item; fields absent from the request keep their
// stored values.
func (s *Server) UpdateProduct(w http.ResponseWriter, req *http.Request) {
	var request UpdateProductRequest
	if err := decodeBody(req, &request); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := request.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	wishlist, ok := s.readableWishlist(w, req)
	if !ok {
		return
	}

	productID := chi.URLParam(req, "productId")
	product, err := s.Products.Get(req.Context(), wishlist.WishlistID, productID)
	if err != nil {
		respondInternalError(w, req, err)
		return
	}
	if product == nil {
		respondError(w, http.StatusNotFound, "product not found")
		return
	}

	if request.Name != nil {
		product.Name = *request.Name
	}
	if request.ImageURL != nil {
		product.ImageURL = *request.ImageURL
	}
	if request.Price != nil {
		product.Price = *request.Price
	}
	product.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	if err := s.Products.Put(req.Context(), *product); err != nil {
		respondInternalError(w, req, err)
		return
	}

	respondJSON(w, http.StatusOK, productView(*product))
}

// DeleteProduct removes an item from a wishlist the caller can read.
func (s *Server) DeleteProduct(w http.ResponseWriter, req *http.Request) {
	wishlist, ok := s.readableWishlist(w, req)
	if !ok {
		return
	}

	productID := chi.URLParam(req, "productId")
	if err := s.Products.Delete(req.Context(), wishlist.WishlistID, productID); err != nil {
		respondInternalError(w, req, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"wishlistId": wishlist.WishlistID,
		"productId":  productID,
	})
}

func productView(product productdao.Product) map[string]interface{} {
	return map[string]interface{}{
		"productId": product.ProductID,
		"name":      product.Name,
		"imageUrl":  product.ImageURL,
		"price":     product.Price,
		"addedBy":   product.AddedBy,
		"createdAt": product.CreatedAt,
		"updatedAt": product.UpdatedAt,
	}
}
