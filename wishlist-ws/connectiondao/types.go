package connectiondao

import wishlistkeys "github.com/shared-wishlist/wishlist-backend/wishlist-keys"

// Connection represents one live websocket connection and the authenticated
// principal that opened it.
type Connection struct {
	PK string `dynamodbav:"pk" ddb:"hash"`
	SK string `dynamodbav:"sk" ddb:"range"`

	ConnectionID string `dynamodbav:"connection_id"`
	Principal    string `dynamodbav:"principal"`
	Endpoint     string `dynamodbav:"endpoint"`
	ConnectedAt  int64  `dynamodbav:"connected_at"`
	TTL          int64  `dynamodbav:"ttl"`
}

// New builds a keyed connection record.
func NewConnection(connectionID, principal, endpoint string, connectedAt, ttl int64) Connection {
	return Connection{
		PK:           wishlistkeys.ConnectionPK(connectionID),
		SK:           wishlistkeys.ConnectionSK(),
		ConnectionID: connectionID,
		Principal:    principal,
		Endpoint:     endpoint,
		ConnectedAt:  connectedAt,
		TTL:          ttl,
	}
}
