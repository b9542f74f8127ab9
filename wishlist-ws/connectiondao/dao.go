package connectiondao

import (
	"context"
	"fmt"

	wishlistkeys "github.com/shared-wishlist/wishlist-backend/wishlist-keys"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/savaki/ddb"
)

// DAO provides access to websocket connection records.
type DAO struct {
	table     *ddb.Table
	api       dynamodbiface.DynamoDBAPI
	tableName string
}

// New creates a new connections DAO.
func New(api dynamodbiface.DynamoDBAPI, tableName string) *DAO {
	return &DAO{
		table:     ddb.New(api).MustTable(tableName, Connection{}),
		api:       api,
		tableName: tableName,
	}
}

// Put stores a connection record; registering the same connection twice
// overwrites rather than duplicates.
func (d *DAO) Put(ctx context.Context, conn Connection) error {
	return d.table.Put(conn).RunWithContext(ctx)
}

// Get retrieves a connection record by ID. Returns nil if the connection is
// not registered.
func (d *DAO) Get(ctx context.Context, connectionID string) (*Connection, error) {
	var conn Connection
	err := d.table.Get(wishlistkeys.ConnectionPK(connectionID)).
		Range(wishlistkeys.ConnectionSK()).
		ScanWithContext(ctx, &conn)
	if err != nil {
		if ddb.IsItemNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get connection %v: %w", connectionID, err)
	}
	return &conn, nil
}

// Exists reports whether the connection is registered.
func (d *DAO) Exists(ctx context.Context, connectionID string) (bool, error) {
	conn, err := d.Get(ctx, connectionID)
	if err != nil {
		return false, err
	}
	return conn != nil, nil
}

// Delete removes a connection record by ID; deleting an absent record is a
// no-op.
func (d *DAO) Delete(ctx context.Context, connectionID string) error {
	return d.table.Delete(wishlistkeys.ConnectionPK(connectionID)).
		Range(wishlistkeys.ConnectionSK()).
		RunWithContext(ctx)
}
