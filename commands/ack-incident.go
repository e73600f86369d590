package commands

import (
	"fmt"
	"time"

	"github.com/globalsign/mgo/bson"
	"github.com/urfave/cli"

	"github.com/netmon-dev/netmon/resources"
)

func init() {
	command := cli.Command{
		Name:      "ack-incident",
		Usage:     "Mark an incident as reviewed",
		ArgsUsage: "<incident id>",
		Flags: []cli.Flag{
			configFlag,
			cli.StringFlag{
				Name:  "notes, n",
				Usage: "attach review `NOTES` to the incident",
				Value: "",
			},
		},
		Action: ackIncident,
	}

	bootstrapCommands(command)
}

func ackIncident(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.NewExitError("Specify an incident id", -1)
	}
	id := c.Args().Get(0)
	if !bson.IsObjectIdHex(id) {
		return cli.NewExitError("Not a valid incident id: "+id, -1)
	}

	res := resources.InitResources(c.String("config"))
	s := openStore(res)

	err := s.incidents.Acknowledge(bson.ObjectIdHex(id), c.String("notes"), time.Now().UTC())
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}

	fmt.Println("Acknowledged incident", id)
	return nil
}
