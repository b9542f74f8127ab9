package main

import (
	"log"
	"os"

	wishlistapi "github.com/shared-wishlist/wishlist-backend/wishlist-api"
	"github.com/shared-wishlist/wishlist-backend/wishlist-api/productdao"
	"github.com/shared-wishlist/wishlist-backend/wishlist-api/wishlistdao"
	wishlistauth "github.com/shared-wishlist/wishlist-backend/wishlist-auth"
	"github.com/shared-wishlist/wishlist-backend/wishlist-auth/userdao"
	wishlistcli "github.com/shared-wishlist/wishlist-backend/wishlist-cli"
	wishlistddb "github.com/shared-wishlist/wishlist-backend/wishlist-ddb"
	wishlistrest "github.com/shared-wishlist/wishlist-backend/wishlist-rest"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/go-chi/chi/v5"
	"github.com/urfave/cli/v2"
)

var service = wishlistcli.Service{
	Name:    "wishlist-api",
	Version: wishlistcli.CommitHash(),
}

func main() {
	app := wishlistcli.App(
		service,
		action,
		append(
			append(
				wishlistcli.CommonFlags,
				wishlistddb.DDBFlags...,
			),
			append(
				wishlistauth.AuthFlags,
				wishlistcli.PortFlag(5001),
			)...,
		)...,
	)
	err := app.Run(os.Args)
	if err != nil {
		log.Fatalln(err)
	}
}

func action(_ *cli.Context) error {
	sess := session.Must(session.NewSession())
	api, err := wishlistddb.DynamoDBAPI(sess)
	if err != nil {
		return err
	}

	env := wishlistcli.CommonOpts.Env
	tokens, err := wishlistauth.BuildTokens(sess, env)
	if err != nil {
		return err
	}

	server := &wishlistapi.Server{
		Users:     userdao.Build(api, env),
		Wishlists: wishlistdao.Build(api, env),
		Products:  productdao.Build(api, env),
		Tokens:    tokens,
	}

	routes := chi.NewRouter()
	wishlistrest.Middlewares(service, routes)
	server.Routes(routes)

	return wishlistrest.Webserver(service, routes)
}
