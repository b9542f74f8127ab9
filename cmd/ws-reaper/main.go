package main

import (
	"log"
	"os"
	"time"

	wishlistcli "github.com/shared-wishlist/wishlist-backend/wishlist-cli"
	wishlistcron "github.com/shared-wishlist/wishlist-backend/wishlist-cron"
	wishlistddb "github.com/shared-wishlist/wishlist-backend/wishlist-ddb"
	wishlistws "github.com/shared-wishlist/wishlist-backend/wishlist-ws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/urfave/cli/v2"
)

var opts struct {
	GraceMinutes int
}

var service = wishlistcli.Service{
	Name:    "wishlist-ws-reaper",
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
			wishlistcli.IntFlag("grace-minutes", "slack past record ttl before sweeping", &opts.GraceMinutes, 60),
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
	reaper := &wishlistws.Reaper{
		API:       api,
		TableName: wishlistddb.TableName(env),
		Grace:     time.Duration(opts.GraceMinutes) * time.Minute,
		Logger:    wishlistcli.Logger(service),
	}

	handler := wishlistcron.NewHandler(service, reaper.Run)
	return handler.Start()
}
