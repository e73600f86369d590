package commands

import (
	"fmt"
	"strings"

	"github.com/urfave/cli"

	"github.com/netmon-dev/netmon/pkg/rules"
	"github.com/netmon-dev/netmon/resources"
)

func init() {
	deviceFlag := cli.StringFlag{
		Name:  "device, d",
		Usage: "scope the rule to `DEVICE_IP` instead of every device",
		Value: "",
	}
	notesFlag := cli.StringFlag{
		Name:  "notes, n",
		Usage: "attach `NOTES` explaining the rule",
		Value: "",
	}

	allowlist := cli.Command{
		Name:      "add-allowlist",
		Usage:     "Mark a destination pattern as known benign",
		ArgsUsage: "<kind> <value>",
		Flags: []cli.Flag{
			configFlag,
			deviceFlag,
			notesFlag,
		},
		Action: addAllowlist,
	}

	suppression := cli.Command{
		Name:      "add-suppression",
		Usage:     "Suppress one scoring reason for a destination pattern",
		ArgsUsage: "<code> <kind> <value>",
		Flags: []cli.Flag{
			configFlag,
			deviceFlag,
			notesFlag,
		},
		Action: addSuppression,
	}

	bootstrapCommands(allowlist, suppression)
}

func addAllowlist(c *cli.Context) error {
	if c.NArg() < 2 {
		return cli.NewExitError(
			"Specify a kind ("+strings.Join(rules.ValidKinds, ", ")+") and a value", -1)
	}

	res := resources.InitResources(c.String("config"))
	s := openStore(res)

	err := s.rules.AddAllowlist(c.Args().Get(0), c.Args().Get(1),
		c.String("device"), c.String("notes"))
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}

	fmt.Println("Added allowlist rule")
	return nil
}

func addSuppression(c *cli.Context) error {
	if c.NArg() < 3 {
		return cli.NewExitError(
			"Specify a reason code, a kind ("+strings.Join(rules.ValidKinds, ", ")+"), and a value", -1)
	}

	res := resources.InitResources(c.String("config"))
	s := openStore(res)

	err := s.rules.AddSuppression(c.Args().Get(0), c.Args().Get(1),
		c.Args().Get(2), c.String("device"), c.String("notes"))
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}

	fmt.Println("Added suppression rule")
	return nil
}
