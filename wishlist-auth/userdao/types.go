package userdao

import wishlistkeys "github.com/shared-wishlist/wishlist-backend/wishlist-keys"

// User is a registered account. Only the bcrypt hash of the password is
// stored.
type User struct {
	PK string `dynamodbav:"pk" ddb:"hash"`
	SK string `dynamodbav:"sk" ddb:"range"`

	Email        string `dynamodbav:"email"`
	PasswordHash string `dynamodbav:"password_hash"`
	CreatedAt    string `dynamodbav:"created_at"`
}

// New builds a keyed user record.
func NewUser(email, passwordHash, createdAt string) User {
	return User{
		PK:           wishlistkeys.UserPK(email),
		SK:           wishlistkeys.ProfileSK,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
	}
}
