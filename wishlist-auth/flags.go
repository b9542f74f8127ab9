package wishlistauth

import (
	wishlistcli "github.com/shared-wishlist/wishlist-backend/wishlist-cli"
	wishlistsecret "github.com/shared-wishlist/wishlist-backend/wishlist-secret"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/urfave/cli/v2"
)

var AuthOpts struct {
	SigningSecret string
}

var SigningSecretFlag = wishlistcli.StringFlag("signing-secret", "The token signing secret (falls back to Secrets Manager when unset)", &AuthOpts.SigningSecret)

var AuthFlags = []cli.Flag{
	SigningSecretFlag,
}

// BuildTokens resolves the signing secret, preferring the flag/env value
// and falling back to Secrets Manager for deployed environments.
func BuildTokens(s *session.Session, env string) (*Tokens, error) {
	if AuthOpts.SigningSecret != "" {
		return NewTokens([]byte(AuthOpts.SigningSecret), DefaultTokenTTL), nil
	}

	var secret struct {
		SigningSecret string `json:"signing_secret"`
	}
	if err := wishlistsecret.LoadSecret(s, wishlistsecret.SecretName(env), &secret); err != nil {
		return nil, err
	}
	return NewTokens([]byte(secret.SigningSecret), DefaultTokenTTL), nil
}
