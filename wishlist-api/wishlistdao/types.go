package wishlistdao

import wishlistkeys "github.com/shared-wishlist/wishlist-backend/wishlist-keys"

// Wishlist is the root record of a shared wishlist. GSI1 groups a user's
// wishlists by owner for listing.
type Wishlist struct {
	PK     string `dynamodbav:"pk" ddb:"hash"`
	SK     string `dynamodbav:"sk" ddb:"range"`
	GSI1PK string `dynamodbav:"gsi1pk" ddb:"gsi_hash:GSI1"`

	WishlistID   string   `dynamodbav:"wishlist_id"`
	Name         string   `dynamodbav:"name"`
	CreatedBy    string   `dynamodbav:"created_by"`
	InvitedUsers []string `dynamodbav:"invited_users,stringset,omitempty"`
	CreatedAt    string   `dynamodbav:"created_at"`
	UpdatedAt    string   `dynamodbav:"updated_at"`
}

// New builds a keyed wishlist record owned by the given user.
func NewWishlist(wishlistID, name, owner, createdAt string) Wishlist {
	return Wishlist{
		PK:         wishlistkeys.WishlistPK(wishlistID),
		SK:         wishlistkeys.WishlistSK(wishlistID),
		GSI1PK:     wishlistkeys.UserPK(owner),
		WishlistID: wishlistID,
		Name:       name,
		CreatedBy:  owner,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

// IsOwner reports whether the principal created the wishlist.
func (w Wishlist) IsOwner(principal string) bool {
	return w.CreatedBy == principal
}

// CanRead reports whether the principal may view the wishlist; owners and
// invited users can.
func (w Wishlist) CanRead(principal string) bool {
	if w.IsOwner(principal) {
		return true
	}
	for _, user := range w.InvitedUsers {
		if user == principal {
			return true
		}
	}
	return false
}
