package commands

import (
	"fmt"
	"time"

	"github.com/urfave/cli"

	"github.com/netmon-dev/netmon/resources"
)

func init() {
	command := cli.Command{
		Name:  "reconcile",
		Usage: "Run a single reconciliation cycle against the connection tracker",
		Flags: []cli.Flag{
			configFlag,
		},
		Action: reconcileOnce,
	}

	bootstrapCommands(command)
}

func reconcileOnce(c *cli.Context) error {
	res := resources.InitResources(c.String("config"))
	s := openStore(res)
	s.ensureIndexes(res.Log)

	engine := buildEngine(res, s, snapshotSource(res))
	result, err := engine.ReconcileSnapshot(time.Now().UTC())
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}

	fmt.Printf("Reconciled %d outbound flows: %d new devices, %d new hosts, %d new connections, %d dropped\n",
		result.FlowsSeen, result.DevicesUpserted, result.RemoteHostsUpserted,
		result.ConnectionsUpserted, result.ConnectionsDeleted)
	return nil
}
