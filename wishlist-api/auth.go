package wishlistapi

import (
	"errors"
	"net/http"
	"time"

	wishlistauth "github.com/shared-wishlist/wishlist-backend/wishlist-auth"
	"github.com/shared-wishlist/wishlist-backend/wishlist-auth/userdao"
)

// Signup creates a new account and returns a token for it.
func (s *Server) Signup(w http.ResponseWriter, req *http.Request) {
	var request SignupRequest
	if err := decodeBody(req, &request); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := request.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := wishlistauth.HashPassword(request.Password)
	if err != nil {
		respondInternalError(w, req, err)
		return
	}

	user := userdao.NewUser(request.Email, hash, time.Now().UTC().Format(time.RFC3339))
	if err := s.Users.Create(req.Context(), user); err != nil {
		if errors.Is(err, userdao.ErrUserExists) {
			respondError(w, http.StatusConflict, "email already registered")
			return
		}
		respondInternalError(w, req, err)
		return
	}

	token, err := s.Tokens.Issue(request.Email)
	if err != nil {
		respondInternalError(w, req, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"email": request.Email,
		"token": token,
	})
}

// Login verifies credentials and returns a fresh token.
func (s *Server) Login(w http.ResponseWriter, req *http.Request) {
	var request LoginRequest
	if err := decodeBody(req, &request); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := request.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.Users.Get(req.Context(), request.Email)
	if err != nil {
		respondInternalError(w, req, err)
		return
	}
	if user == nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := wishlistauth.CheckPassword(user.PasswordHash, request.Password); err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.Tokens.Issue(user.Email)
	if err != nil {
		respondInternalError(w, req, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"email": user.Email,
		"token": token,
	})
}
