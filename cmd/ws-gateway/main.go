package main

import (
	"log"
	"os"

	"github.com/shared-wishlist/wishlist-backend/wishlist-api/wishlistdao"
	wishlistauth "github.com/shared-wishlist/wishlist-backend/wishlist-auth"
	wishlistcli "github.com/shared-wishlist/wishlist-backend/wishlist-cli"
	wishlistddb "github.com/shared-wishlist/wishlist-backend/wishlist-ddb"
	wishlistws "github.com/shared-wishlist/wishlist-backend/wishlist-ws"
	"github.com/shared-wishlist/wishlist-backend/wishlist-ws/connectiondao"
	"github.com/shared-wishlist/wishlist-backend/wishlist-ws/subscriptiondao"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/urfave/cli/v2"
)

var service = wishlistcli.Service{
	Name:    "wishlist-ws-gateway",
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
			wishlistauth.AuthFlags...,
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

	handler := &wishlistws.Handler{
		Connections: connectiondao.Build(api, env),
		Subs:        subscriptiondao.Build(api, env),
		Authorizer:  wishlistdao.Build(api, env),
		Tokens:      tokens,
		Sender:      wishlistws.NewSender(0),
		Logger:      wishlistcli.Logger(service),
	}

	lambda.Start(handler.HandleEvent)
	return nil
}
