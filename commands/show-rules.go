package commands

import (
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/netmon-dev/netmon/resources"
)

func init() {
	command := cli.Command{
		Name:  "show-rules",
		Usage: "Print the configured allowlist and suppression rules",
		Flags: []cli.Flag{
			configFlag,
		},
		Action: showRules,
	}

	bootstrapCommands(command)
}

func showRules(c *cli.Context) error {
	res := resources.InitResources(c.String("config"))
	s := openStore(res)

	allowlist, err := s.rules.ListAllowlist()
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}
	suppression, err := s.rules.ListSuppression()
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Type", "Code", "Kind", "Value", "Device", "Notes", "Created"})
	for _, rule := range allowlist {
		device := rule.DeviceIP
		if device == "" {
			device = "*"
		}
		table.Append([]string{"allowlist", "-", rule.Kind, rule.Value, device,
			rule.Notes, ts(rule.CreatedAt)})
	}
	for _, rule := range suppression {
		device := rule.DeviceIP
		if device == "" {
			device = "*"
		}
		table.Append([]string{"suppression", rule.Code, rule.Kind, rule.Value,
			device, rule.Notes, ts(rule.CreatedAt)})
	}
	table.Render()
	return nil
}
