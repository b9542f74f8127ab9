package wishlistkeys

import (
	"testing"

	"github.com/tj/assert"
)

func TestKeyBuilders(t *testing.T) {
	assert.Equal(t, "USER#alice@example.com", UserPK("alice@example.com"))
	assert.Equal(t, "WISHLIST#abc", WishlistPK("abc"))
	assert.Equal(t, "WISHLIST#abc", WishlistSK("abc"))
	assert.Equal(t, "PRODUCT#p1", ProductSK("p1"))
	assert.Equal(t, "CONNECTION#conn-1", ConnectionPK("conn-1"))
	assert.Equal(t, "CONNECTION", ConnectionSK())
	assert.Equal(t, "SUBSCRIPTION#conn-1", SubscriptionPK("conn-1"))
	assert.Equal(t, "TOPIC#wishlist:abc", TopicSK("wishlist:abc"))
}

func TestParsers(t *testing.T) {
	t.Run("wishlist", func(t *testing.T) {
		id, ok := ParseWishlist("WISHLIST#abc")
		assert.True(t, ok)
		assert.Equal(t, "abc", id)

		_, ok = ParseWishlist("USER#alice@example.com")
		assert.False(t, ok)

		_, ok = ParseWishlist("WISHLIST#")
		assert.False(t, ok)
	})

	t.Run("product", func(t *testing.T) {
		id, ok := ParseProduct("PRODUCT#p1")
		assert.True(t, ok)
		assert.Equal(t, "p1", id)

		_, ok = ParseProduct("WISHLIST#abc")
		assert.False(t, ok)
	})

	t.Run("connection", func(t *testing.T) {
		id, ok := ParseConnection("CONNECTION#conn-1")
		assert.True(t, ok)
		assert.Equal(t, "conn-1", id)

		_, ok = ParseConnection("SUBSCRIPTION#conn-1")
		assert.False(t, ok)
	})
}
