package subscriptiondao

import wishlistkeys "github.com/shared-wishlist/wishlist-backend/wishlist-keys"

// Subscription represents one connection's interest in one topic. The
// (connection, topic) pair is the table key, so re-subscribing overwrites
// rather than duplicates. The TopicIndex GSI serves fan-out lookups.
type Subscription struct {
	PK string `dynamodbav:"pk" ddb:"hash"`
	SK string `dynamodbav:"sk" ddb:"range"`

	ConnectionID string `dynamodbav:"connection_id"`
	Topic        string `dynamodbav:"topic" ddb:"gsi_hash:TopicIndex"`
	Principal    string `dynamodbav:"principal"`
	Endpoint     string `dynamodbav:"endpoint"`
	CreatedAt    int64  `dynamodbav:"created_at"`
	TTL          int64  `dynamodbav:"ttl"`
}

// New builds a keyed subscription record.
func NewSubscription(connectionID, topic, principal, endpoint string, createdAt, ttl int64) Subscription {
	return Subscription{
		PK:           wishlistkeys.SubscriptionPK(connectionID),
		SK:           wishlistkeys.TopicSK(topic),
		ConnectionID: connectionID,
		Topic:        topic,
		Principal:    principal,
		Endpoint:     endpoint,
		CreatedAt:    createdAt,
		TTL:          ttl,
	}
}
