package wishlistdao

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	wishlistkeys "github.com/shared-wishlist/wishlist-backend/wishlist-keys"
	wishlistws "github.com/shared-wishlist/wishlist-backend/wishlist-ws"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/savaki/ddb"
)

// DAO provides access to wishlist root records.
type DAO struct {
	table     *ddb.Table
	api       dynamodbiface.DynamoDBAPI
	tableName string
}

// New creates a new wishlists DAO.
func New(api dynamodbiface.DynamoDBAPI, tableName string) *DAO {
	return &DAO{
		table:     ddb.New(api).MustTable(tableName, Wishlist{}),
		api:       api,
		tableName: tableName,
	}
}

// Put stores a wishlist record, overwriting any previous version.
func (d *DAO) Put(ctx context.Context, wishlist Wishlist) error {
	return d.table.Put(wishlist).RunWithContext(ctx)
}

// Get retrieves a wishlist by id. Returns nil if no wishlist exists.
func (d *DAO) Get(ctx context.Context, wishlistID string) (*Wishlist, error) {
	var wishlist Wishlist
	err := d.table.Get(wishlistkeys.WishlistPK(wishlistID)).
		Range(wishlistkeys.WishlistSK(wishlistID)).
		ScanWithContext(ctx, &wishlist)
	if err != nil {
		if ddb.IsItemNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get wishlist %v: %w", wishlistID, err)
	}
	return &wishlist, nil
}

// Delete removes a wishlist root record; deleting an absent record is a
// no-op.
func (d *DAO) Delete(ctx context.Context, wishlistID string) error {
	return d.table.Delete(wishlistkeys.WishlistPK(wishlistID)).
		Range(wishlistkeys.WishlistSK(wishlistID)).
		RunWithContext(ctx)
}

// QueryByOwner returns one page of the wishlists owned by a user, plus an
// opaque cursor for the next page when more remain.
func (d *DAO) QueryByOwner(ctx context.Context, owner string, limit int64, cursor string) ([]Wishlist, string, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(d.tableName),
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("gsi1pk = :owner"),
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":owner": {S: aws.String(wishlistkeys.UserPK(owner))},
		},
		Limit: aws.Int64(limit),
	}

	if cursor != "" {
		startKey, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", err
		}
		input.ExclusiveStartKey = startKey
	}

	output, err := d.api.QueryWithContext(ctx, input)
	if err != nil {
		return nil, "", fmt.Errorf("failed to query wishlists for owner %v: %w", owner, err)
	}

	wishlists := make([]Wishlist, 0, len(output.Items))
	for _, item := range output.Items {
		var wishlist Wishlist
		if err := dynamodbattribute.UnmarshalMap(item, &wishlist); err != nil {
			return nil, "", fmt.Errorf("failed to unmarshal wishlist: %w", err)
		}
		wishlists = append(wishlists, wishlist)
	}

	next := ""
	if len(output.LastEvaluatedKey) > 0 {
		next, err = encodeCursor(output.LastEvaluatedKey)
		if err != nil {
			return nil, "", err
		}
	}

	return wishlists, next, nil
}

// AuthorizeRead verifies that the principal may view the wishlist.
func (d *DAO) AuthorizeRead(ctx context.Context, wishlistID, principal string) error {
	wishlist, err := d.Get(ctx, wishlistID)
	if err != nil {
		return err
	}
	if wishlist == nil {
		return wishlistws.ErrNotFound
	}
	if !wishlist.CanRead(principal) {
		return wishlistws.ErrForbidden
	}
	return nil
}

func encodeCursor(key map[string]*dynamodb.AttributeValue) (string, error) {
	plain := map[string]string{}
	for name, value := range key {
		if value.S == nil {
			return "", fmt.Errorf("unexpected non-string key attribute, %v", name)
		}
		plain[name] = *value.S
	}
	data, err := json.Marshal(plain)
	if err != nil {
		return "", fmt.Errorf("failed to encode cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

func decodeCursor(cursor string) (map[string]*dynamodb.AttributeValue, error) {
	data, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor: %w", err)
	}
	plain := map[string]string{}
	if err := json.Unmarshal(data, &plain); err != nil {
		return nil, fmt.Errorf("invalid cursor: %w", err)
	}
	key := map[string]*dynamodb.AttributeValue{}
	for name, value := range plain {
		key[name] = &dynamodb.AttributeValue{S: aws.String(value)}
	}
	return key, nil
}
