package productdao

import wishlistkeys "github.com/shared-wishlist/wishlist-backend/wishlist-keys"

// Product is an item on a wishlist, stored as a child record in the
// wishlist's partition.
type Product struct {
	PK string `dynamodbav:"pk" ddb:"hash"`
	SK string `dynamodbav:"sk" ddb:"range"`

	ProductID string  `dynamodbav:"product_id"`
	Name      string  `dynamodbav:"name"`
	ImageURL  string  `dynamodbav:"image_url,omitempty"`
	Price     float64 `dynamodbav:"price"`
	AddedBy   string  `dynamodbav:"added_by"`
	CreatedAt string  `dynamodbav:"created_at"`
	UpdatedAt string  `dynamodbav:"updated_at"`
}

// New builds a keyed product record under the given wishlist.
func NewProduct(wishlistID, productID, name, imageURL string, price float64, addedBy, createdAt string) Product {
	return Product{
		PK:        wishlistkeys.WishlistPK(wishlistID),
		SK:        wishlistkeys.ProductSK(productID),
		ProductID: productID,
		Name:      name,
		ImageURL:  imageURL,
		Price:     price,
		AddedBy:   addedBy,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}
