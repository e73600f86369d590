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
		Name:  "show-incidents",
		Usage: "Print grouped anomaly incidents to standard out",
		Flags: []cli.Flag{
			configFlag,
			humanFlag,
			limitFlag,
		},
		Action: showIncidents,
	}

	bootstrapCommands(command)
}

func showIncidents(c *cli.Context) error {
	res := resources.InitResources(c.String("config"))
	s := openStore(res)

	incidents, err := s.incidents.ListIncidents(c.Int("limit"))
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}

	if c.Bool("human-readable") {
		return showIncidentsReport(incidents)
	}
	return showIncidentsCsv(incidents)
}

func showIncidentsReport(incidents []incident.Incident) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Device", "Destination", "Port", "Proto",
		"Codes", "Count", "Max Score", "First Seen", "Last Seen", "Acknowledged"})

	for _, inc := range incidents {
		acked := "-"
		if !inc.AcknowledgedAt.IsZero() {
			acked = ts(inc.AcknowledgedAt)
		}
		table.Append([]string{
			inc.ID.Hex(), inc.DeviceIP, inc.DstIP, strconv.Itoa(inc.DstPort),
			inc.Proto, inc.CodesCSV, strconv.Itoa(inc.Count),
			strconv.Itoa(inc.MaxScore), ts(inc.FirstSeenAt), ts(inc.LastSeenAt), acked,
		})
	}
	table.Render()
	return nil
}

func showIncidentsCsv(incidents []incident.Incident) error {
	csvWriter := csv.NewWriter(os.Stdout)
	csvWriter.Write([]string{"id", "device_ip", "dst_ip", "dst_port", "proto",
		"codes", "count", "max_score", "first_seen", "last_seen", "acknowledged_at"})

	for _, inc := range incidents {
		acked := ""
		if !inc.AcknowledgedAt.IsZero() {
			acked = ts(inc.AcknowledgedAt)
		}
		csvWriter.Write([]string{
			inc.ID.Hex(), inc.DeviceIP, inc.DstIP, strconv.Itoa(inc.DstPort),
			inc.Proto, inc.CodesCSV, strconv.Itoa(inc.Count),
			strconv.Itoa(inc.MaxScore), ts(inc.FirstSeenAt), ts(inc.LastSeenAt), acked,
		})
	}
	csvWriter.Flush()
	return csvWriter.Error()
}
