package wishlistws

import (
	wishlistkeys "github.com/shared-wishlist/wishlist-backend/wishlist-keys"
)

// WishlistTopic returns the topic grouping a wishlist and its products for
// fan-out purposes.
func WishlistTopic(wishlistID string) string {
	return "wishlist:" + wishlistID
}

// ResolveTopic classifies a change by its table keys. A change to a wishlist
// root record or to one of its products resolves to the wishlist's topic, so
// a single fan-out path serves both "wishlist renamed" and "product
// added/updated/removed". Changes to any other entity (users, connections,
// subscriptions) do not resolve; callers drop those records without error.
func ResolveTopic(pk, sk string) (string, bool) {
	wishlistID, ok := wishlistkeys.ParseWishlist(pk)
	if !ok {
		return "", false
	}

	if sk == wishlistkeys.WishlistSK(wishlistID) {
		return WishlistTopic(wishlistID), true
	}
	if _, ok := wishlistkeys.ParseProduct(sk); ok {
		return WishlistTopic(wishlistID), true
	}
	return "", false
}
