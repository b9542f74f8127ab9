package main

import (
	"log"
	"os"

	wishlistcli "github.com/shared-wishlist/wishlist-backend/wishlist-cli"
	wishlistddb "github.com/shared-wishlist/wishlist-backend/wishlist-ddb"
	wishlistws "github.com/shared-wishlist/wishlist-backend/wishlist-ws"
	"github.com/shared-wishlist/wishlist-backend/wishlist-ws/subscriptiondao"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/urfave/cli/v2"
)

var opts struct {
	Concurrency int
}

var service = wishlistcli.Service{
	Name:    "wishlist-ws-broadcast",
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
			wishlistcli.IntFlag("concurrency", "max concurrent deliveries per change", &opts.Concurrency, 50),
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
	metrics := wishlistcli.NewMetrics(service, cloudwatch.New(sess))

	broadcaster := &wishlistws.Broadcaster{
		Subs:        subscriptiondao.Build(api, env),
		Sender:      wishlistws.NewSender(0),
		Logger:      wishlistcli.Logger(service),
		Metrics:     &metrics,
		Concurrency: opts.Concurrency,
	}

	handler := wishlistddb.NewBatchHandler(service, broadcaster.HandleStreamEvent)
	return handler.Start()
}
