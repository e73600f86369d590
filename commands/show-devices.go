package commands

import (
	"encoding/csv"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/netmon-dev/netmon/resources"
)

func init() {
	command := cli.Command{
		Name:  "show-devices",
		Usage: "Print the local devices seen originating outbound traffic",
		Flags: []cli.Flag{
			configFlag,
			humanFlag,
		},
		Action: showDevices,
	}

	bootstrapCommands(command)
}

func showDevices(c *cli.Context) error {
	res := resources.InitResources(c.String("config"))
	s := openStore(res)

	devices, err := s.devices.All()
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}

	if c.Bool("human-readable") {
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"IP", "Name", "First Seen", "Last Seen"})
		for _, dev := range devices {
			table.Append([]string{dev.IP, dev.Name, ts(dev.FirstSeenAt), ts(dev.LastSeenAt)})
		}
		table.Render()
		return nil
	}

	csvWriter := csv.NewWriter(os.Stdout)
	csvWriter.Write([]string{"ip", "name", "first_seen", "last_seen"})
	for _, dev := range devices {
		csvWriter.Write([]string{dev.IP, dev.Name, ts(dev.FirstSeenAt), ts(dev.LastSeenAt)})
	}
	csvWriter.Flush()
	return csvWriter.Error()
}
