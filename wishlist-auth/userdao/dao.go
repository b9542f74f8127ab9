package userdao

import (
	"context"
	"errors"
	"fmt"

	wishlistkeys "github.com/shared-wishlist/wishlist-backend/wishlist-keys"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/savaki/ddb"
)

// ErrUserExists is returned when creating an account for an email that is
// already registered.
var ErrUserExists = errors.New("user already exists")

// DAO provides access to user records.
type DAO struct {
	table     *ddb.Table
	api       dynamodbiface.DynamoDBAPI
	tableName string
}

// New creates a new users DAO.
func New(api dynamodbiface.DynamoDBAPI, tableName string) *DAO {
	return &DAO{
		table:     ddb.New(api).MustTable(tableName, User{}),
		api:       api,
		tableName: tableName,
	}
}

// Get retrieves a user by email. Returns nil if no account exists.
func (d *DAO) Get(ctx context.Context, email string) (*User, error) {
	var user User
	err := d.table.Get(wishlistkeys.UserPK(email)).
		Range(wishlistkeys.ProfileSK).
		ScanWithContext(ctx, &user)
	if err != nil {
		if ddb.IsItemNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user %v: %w", email, err)
	}
	return &user, nil
}

// Create stores a new user record; fails with ErrUserExists if the email is
// taken.
func (d *DAO) Create(ctx context.Context, user User) error {
	existing, err := d.Get(ctx, user.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrUserExists
	}
	return d.table.Put(user).RunWithContext(ctx)
}
