package wishlistddb

import (
	wishlistcli "github.com/shared-wishlist/wishlist-backend/wishlist-cli"
	"github.com/urfave/cli/v2"
)

var DDBOpts struct {
	DAXCluster string
	TableName  string
}

var DAXClusterFlag = wishlistcli.StringFlag("dax-cluster", "The DAX cluster to connect to", &DDBOpts.DAXCluster)
var TableNameFlag = wishlistcli.StringFlag("table-name", "The table name to read streams from", &DDBOpts.TableName)

var DDBFlags = []cli.Flag{
	DAXClusterFlag,
	TableNameFlag,
}

// TableName returns the wishlist app table for the given environment,
// unless overridden by the table-name flag.
func TableName(env string) string {
	if DDBOpts.TableName != "" {
		return DDBOpts.TableName
	}
	return env + "-wishlist-app"
}
