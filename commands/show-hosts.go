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
		Name:  "show-hosts",
		Usage: "Print the remote hosts contacted by local devices",
		Flags: []cli.Flag{
			configFlag,
			humanFlag,
		},
		Action: showHosts,
	}

	bootstrapCommands(command)
}

func showHosts(c *cli.Context) error {
	res := resources.InitResources(c.String("config"))
	s := openStore(res)

	hosts, err := s.hosts.All()
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}

	if c.Bool("human-readable") {
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"IP", "rDNS", "Organization", "ASN", "Tag",
			"First Seen", "Last Seen"})
		for _, host := range hosts {
			table.Append([]string{host.IP, host.RDNSName, host.WhoisName,
				host.WhoisASN, host.Tag, ts(host.FirstSeenAt), ts(host.LastSeenAt)})
		}
		table.Render()
		return nil
	}

	csvWriter := csv.NewWriter(os.Stdout)
	csvWriter.Write([]string{"ip", "rdns_name", "whois_name", "whois_asn",
		"tag", "first_seen", "last_seen"})
	for _, host := range hosts {
		csvWriter.Write([]string{host.IP, host.RDNSName, host.WhoisName,
			host.WhoisASN, host.Tag, ts(host.FirstSeenAt), ts(host.LastSeenAt)})
	}
	csvWriter.Flush()
	return csvWriter.Error()
}
