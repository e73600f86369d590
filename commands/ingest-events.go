package commands

import (
	"fmt"
	"io/ioutil"
	"time"

	"github.com/urfave/cli"

	"github.com/netmon-dev/netmon/resources"
)

func init() {
	command := cli.Command{
		Name:      "ingest-events",
		Usage:     "Ingest a router collector event batch from a JSON file",
		ArgsUsage: "<batch file>",
		Flags: []cli.Flag{
			configFlag,
		},
		Action: ingestEvents,
	}

	bootstrapCommands(command)
}

func ingestEvents(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.NewExitError("Specify a batch file to ingest", -1)
	}

	raw, err := ioutil.ReadFile(c.Args().Get(0))
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}

	res := resources.InitResources(c.String("config"))
	s := openStore(res)
	s.ensureIndexes(res.Log)

	engine := buildEngine(res, s, snapshotSource(res))
	result, err := engine.IngestAgentBatch(raw, time.Now().UTC())
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}

	fmt.Printf("Ingested %d flows, %d heartbeats (%d ignored, %d rejected)\n",
		result.Flows, result.Heartbeats, result.Ignored, result.Rejected)
	return nil
}
