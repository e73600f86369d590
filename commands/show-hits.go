package commands

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/netmon-dev/netmon/pkg/incident"
	"github.com/netmon-dev/netmon/resources"
)

func init() {
	command := cli.Command{
		Name:  "show-hits",
		Usage: "Print raw scored anomaly hits to standard out",
		Flags: []cli.Flag{
			configFlag,
			humanFlag,
			limitFlag,
		},
		Action: showHits,
	}

	bootstrapCommands(command)
}

func showHits(c *cli.Context) error {
	res := resources.InitResources(c.String("config"))
	s := openStore(res)

	hits, err := s.incidents.ListHits(c.Int("limit"))
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}

	if c.Bool("human-readable") {
		return showHitsReport(hits)
	}
	return showHitsCsv(hits)
}

func showHitsReport(hits []incident.Hit) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Occurred", "Device", "Destination", "Port",
		"Proto", "Score", "Bytes", "Alertable", "Summary"})

	for _, hit := range hits {
		table.Append([]string{
			ts(hit.OccurredAt), hit.DeviceIP, hit.DstIP, strconv.Itoa(hit.DstPort),
			hit.Proto, strconv.Itoa(hit.Score), i(hit.TotalBytes),
			strconv.FormatBool(hit.Alertable), hit.Summary,
		})
	}
	table.Render()
	return nil
}

func showHitsCsv(hits []incident.Hit) error {
	csvWriter := csv.NewWriter(os.Stdout)
	csvWriter.Write([]string{"occurred_at", "device_ip", "dst_ip", "dst_port",
		"proto", "score", "total_bytes", "alertable", "summary", "reasons"})

	for _, hit := range hits {
		csvWriter.Write([]string{
			ts(hit.OccurredAt), hit.DeviceIP, hit.DstIP, strconv.Itoa(hit.DstPort),
			hit.Proto, strconv.Itoa(hit.Score), i(hit.TotalBytes),
			strconv.FormatBool(hit.Alertable), hit.Summary, hit.ReasonsJSON,
		})
	}
	csvWriter.Flush()
	return csvWriter.Error()
}
