package productdao

import (
	"context"
	"fmt"

	wishlistkeys "github.com/shared-wishlist/wishlist-backend/wishlist-keys"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/savaki/ddb"
)

// DAO provides access to wishlist product records.
type DAO struct {
	table     *ddb.Table
	api       dynamodbiface.DynamoDBAPI
	tableName string
}

// New creates a new products DAO.
func New(api dynamodbiface.DynamoDBAPI, tableName string) *DAO {
	return &DAO{
		table:     ddb.New(api).MustTable(tableName, Product{}),
		api:       api,
		tableName: tableName,
	}
}

// Put stores a product record, overwriting any previous version.
func (d *DAO) Put(ctx context.Context, product Product) error {
	return d.table.Put(product).RunWithContext(ctx)
}

// Get retrieves a product from a wishlist. Returns nil if no product
// exists.
func (d *DAO) Get(ctx context.Context, wishlistID, productID string) (*Product, error) {
	var product Product
	err := d.table.Get(wishlistkeys.WishlistPK(wishlistID)).
		Range(wishlistkeys.ProductSK(productID)).
		ScanWithContext(ctx, &product)
	if err != nil {
		if ddb.IsItemNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product %v/%v: %w", wishlistID, productID, err)
	}
	return &product, nil
}

// Delete removes a product; deleting an absent record is a no-op.
func (d *DAO) Delete(ctx context.Context, wishlistID, productID string) error {
	return d.table.Delete(wishlistkeys.WishlistPK(wishlistID)).
		Range(wishlistkeys.ProductSK(productID)).
		RunWithContext(ctx)
}

// QueryByWishlist returns all products on a wishlist. The wishlist root
// record shares the partition, so the query narrows to the product sort-key
// prefix.
func (d *DAO) QueryByWishlist(ctx context.Context, wishlistID string) ([]Product, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(d.tableName),
		KeyConditionExpression: aws.String("pk = :pk and begins_with(sk, :prefix)"),
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":pk":     {S: aws.String(wishlistkeys.WishlistPK(wishlistID))},
			":prefix": {S: aws.String(wishlistkeys.ProductSKPrefix())},
		},
	}

	var products []Product
	err := d.api.QueryPagesWithContext(ctx, input, func(output *dynamodb.QueryOutput, lastPage bool) bool {
		for _, item := range output.Items {
			var product Product
			if err := dynamodbattribute.UnmarshalMap(item, &product); err != nil {
				continue
			}
			products = append(products, product)
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query products for wishlist %v: %w", wishlistID, err)
	}
	return products, nil
}
