package wishlistapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shared-wishlist/wishlist-backend/wishlist-api/wishlistdao"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// CreateWishlist creates an empty wishlist owned by the caller.
func (s *Server) CreateWishlist(w http.ResponseWriter, req *http.Request) {
	var request CreateWishlistRequest
	if err := decodeBody(req, &request); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := request.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	principal := Principal(req.Context())
	now := time.Now().UTC().Format(time.RFC3339)
	wishlist := wishlistdao.NewWishlist(uuid.NewString(), request.Name, principal, now)

	if err := s.Wishlists.Put(req.Context(), wishlist); err != nil {
		respondInternalError(w, req, err)
		return
	}

	respondJSON(w, http.StatusCreated, wishlistView(wishlist))
}

// ListWishlists returns one page of the caller's own wishlists.
func (s *Server) ListWishlists(w http.ResponseWriter, req *http.Request) {
	limit := int64(defaultPageSize)
	if raw := req.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 || parsed > maxPageSize {
			respondError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	principal := Principal(req.Context())
	cursor := req.URL.Query().Get("cursor")

	wishlists, next, err := s.Wishlists.QueryByOwner(req.Context(), principal, limit, cursor)
	if err != nil {
		respondInternalError(w, req, err)
		return
	}

	items := make([]map[string]interface{}, 0, len(wishlists))
	for _, wishlist := range wishlists {
		items = append(items, wishlistView(wishlist))
	}

	body := map[string]interface{}{"items": items}
	if next != "" {
		body["cursor"] = next
	}
	respondJSON(w, http.StatusOK, body)
}

// GetWishlist returns a wishlist the caller can read.
func (s *Server) GetWishlist(w http.ResponseWriter, req *http.Request) {
	wishlist, ok := s.readableWishlist(w, req)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, wishlistView(*wishlist))
}

// UpdateWishlist renames a wishlist. Owners and invited users can rename.
func (s *Server) UpdateWishlist(w http.ResponseWriter, req *http.Request) {
	var request UpdateWishlistRequest
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

	wishlist.Name = request.Name
	wishlist.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if err := s.Wishlists.Put(req.Context(), *wishlist); err != nil {
		respondInternalError(w, req, err)
		return
	}

	respondJSON(w, http.StatusOK, wishlistView(*wishlist))
}

// DeleteWishlist removes a wishlist root record. Owners and invited users
// can delete.
func (s *Server) DeleteWishlist(w http.ResponseWriter, req *http.Request) {
	wishlist, ok := s.readableWishlist(w, req)
	if !ok {
		return
	}

	if err := s.Wishlists.Delete(req.Context(), wishlist.WishlistID); err != nil {
		respondInternalError(w, req, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"wishlistId": wishlist.WishlistID})
}

// InviteUser grants another user read access. Owner only; inviting the
// same email twice is a no-op.
func (s *Server) InviteUser(w http.ResponseWriter, req *http.Request) {
	var request InviteRequest
	if err := decodeBody(req, &request); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := request.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	wishlistID := chi.URLParam(req, "wishlistId")
	principal := Principal(req.Context())

	wishlist, err := s.Wishlists.Get(req.Context(), wishlistID)
	if err != nil {
		respondInternalError(w, req, err)
		return
	}
	if wishlist == nil {
		respondError(w, http.StatusNotFound, "wishlist not found")
		return
	}
	if !wishlist.IsOwner(principal) {
		respondError(w, http.StatusForbidden, "only the owner can invite users")
		return
	}

	invited := false
	for _, user := range wishlist.InvitedUsers {
		if user == request.Email {
			invited = true
			break
		}
	}
	if !invited {
		wishlist.InvitedUsers = append(wishlist.InvitedUsers, request.Email)
		wishlist.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
		if err := s.Wishlists.Put(req.Context(), *wishlist); err != nil {
			respondInternalError(w, req, err)
			return
		}
	}

	respondJSON(w, http.StatusOK, wishlistView(*wishlist))
}

// readableWishlist loads the wishlist from the route and enforces read
// access, writing the error response itself when the caller may not
// proceed.
func (s *Server) readableWishlist(w http.ResponseWriter, req *http.Request) (*wishlistdao.Wishlist, bool) {
	wishlistID := chi.URLParam(req, "wishlistId")
	principal := Principal(req.Context())

	wishlist, err := s.Wishlists.Get(req.Context(), wishlistID)
	if err != nil {
		respondInternalError(w, req, err)
		return nil, false
	}
	if wishlist == nil {
		respondError(w, http.StatusNotFound, "wishlist not found")
		return nil, false
	}
	if !wishlist.CanRead(principal) {
		respondError(w, http.StatusForbidden, "not authorized")
		return nil, false
	}
	return wishlist, true
}

func wishlistView(wishlist wishlistdao.Wishlist) map[string]interface{} {
	invited := wishlist.InvitedUsers
	if invited == nil {
		invited = []string{}
	}
	return map[string]interface{}{
		"wishlistId":   wishlist.WishlistID,
		"name":         wishlist.Name,
		"createdBy":    wishlist.CreatedBy,
		"invitedUsers": invited,
		"createdAt":    wishlist.CreatedAt,
		"updatedAt":    wishlist.UpdatedAt,
	}
}
