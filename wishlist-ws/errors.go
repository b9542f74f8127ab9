package wishlistws

import "errors"

var (
	// ErrNotFound indicates the wishlist backing a topic does not exist.
	ErrNotFound = errors.New("wishlist not found")

	// ErrForbidden indicates the principal is neither the owner nor an
	// invited viewer of the wishlist.
	ErrForbidden = errors.New("not authorized to read wishlist")

	// ErrGone indicates the websocket connection no longer exists and its
	// subscriptions should be pruned.
	ErrGone = errors.New("connection gone")
)
