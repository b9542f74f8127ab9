package wishlistapi

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const minPasswordLength = 6

// SignupRequest creates a new account.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r SignupRequest) Validate() error {
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if len(r.Password) < minPasswordLength {
		return fmt.Errorf("password must be at least %v characters", minPasswordLength)
	}
	return nil
}

// LoginRequest exchanges credentials for a token.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if r.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

// CreateWishlistRequest creates a new wishlist owned by the caller.
type CreateWishlistRequest struct {
	Name string `json:"name"`
}

func (r CreateWishlistRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}

// UpdateWishlistRequest renames a wishlist.
type UpdateWishlistRequest struct {
	Name string `json:"name"`
}

func (r UpdateWishlistRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}

// InviteRequest grants another user read access to a wishlist.
type InviteRequest struct {
	Email string `json:"email"`
}

func (r InviteRequest) Validate() error {
	return validateEmail(r.Email)
}

// CreateProductRequest adds an item to a wishlist.
type CreateProductRequest struct {
	Name     string  `json:"name"`
	ImageURL string  `json:"imageUrl,omitempty"`
	Price    float64 `json:"price"`
}

func (r CreateProductRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if r.Price <= 0 {
		return errors.New("price must be positive")
	}
	return validateImageURL(r.ImageURL)
}

// UpdateProductRequest changes an item; nil fields are left unchanged.
type UpdateProductRequest struct {
	Name     *string  `json:"name,omitempty"`
	ImageURL *string  `json:"imageUrl,omitempty"`
	Price    *float64 `json:"price,omitempty"`
}

func (r UpdateProductRequest) Validate() error {
	if r.Name == nil && r.ImageURL == nil && r.Price == nil {
		return errors.New("no fields to update")
	}
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return errors.New("name must not be empty")
	}
	if r.Price != nil && *r.Price <= 0 {
		return errors.New("price must be positive")
	}
	if r.ImageURL != nil {
		return validateImageURL(*r.ImageURL)
	}
	return nil
}

func validateEmail(email string) error {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || strings.ContainsAny(email, " \t") {
		return errors.New("invalid email address")
	}
	return nil
}

func validateImageURL(imageURL string) error {
	if imageURL == "" {
		return nil
	}
	u, err := url.Parse(imageURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("imageUrl must be an absolute url")
	}
	return nil
}
