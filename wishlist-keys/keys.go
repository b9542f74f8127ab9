// Package wishlistkeys builds and parses the partition and sort keys of the
// single wishlist-app DynamoDB table. Every entity key in the table is
// constructed here; nothing else concatenates key prefixes.
package wishlistkeys

import "strings"

const (
	userPrefix         = "USER#"
	wishlistPrefix     = "WISHLIST#"
	productPrefix      = "PRODUCT#"
	connectionPrefix   = "CONNECTION#"
	subscriptionPrefix = "SUBSCRIPTION#"
	topicPrefix        = "TOPIC#"

	// ProfileSK is the sort key of a user profile record.
	ProfileSK = "PROFILE"
)

func UserPK(email string) string {
	return userPrefix + email
}

func WishlistPK(wishlistID string) string {
	return wishlistPrefix + wishlistID
}

// WishlistSK mirrors WishlistPK; the wishlist root record keys itself on
// both sides of the (pk, sk) pair.
func WishlistSK(wishlistID string) string {
	return wishlistPrefix + wishlistID
}

func ProductSK(productID string) string {
	return productPrefix + productID
}

// ProductSKPrefix is the sort-key prefix shared by all products of a
// wishlist, for begins_with queries.
func ProductSKPrefix() string {
	return productPrefix
}

func ConnectionPK(connectionID string) string {
	return connectionPrefix + connectionID
}

// ConnectionSK is the fixed sort key of a connection record; a connection
// partition holds exactly one row.
func ConnectionSK() string {
	return "CONNECTION"
}

func SubscriptionPK(connectionID string) string {
	return subscriptionPrefix + connectionID
}

// TopicSK keys one subscription of a connection by its topic, and doubles
// as the GSI1 partition key that groups all subscriptions of a topic.
func TopicSK(topic string) string {
	return topicPrefix + topic
}

// ParseWishlist extracts the wishlist identifier from a wishlist partition
// key. Returns false for keys of any other entity.
func ParseWishlist(pk string) (string, bool) {
	return splitKey(wishlistPrefix, pk)
}

// ParseProduct extracts the product identifier from a product sort key.
func ParseProduct(sk string) (string, bool) {
	return splitKey(productPrefix, sk)
}

// ParseConnection extracts the connection identifier from a connection
// partition key.
func ParseConnection(pk string) (string, bool) {
	return splitKey(connectionPrefix, pk)
}

func splitKey(prefix, key string) (string, bool) {
	if !strings.HasPrefix(key, prefix) {
		return "", false
	}
	id := key[len(prefix):]
	if id == "" {
		return "", false
	}
	return id, true
}
