package commands

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/netmon-dev/netmon/pkg/metrics"
	"github.com/netmon-dev/netmon/resources"
)

func init() {
	command := cli.Command{
		Name:  "show-metrics",
		Usage: "Print recent network metric samples and any flagged rates",
		Flags: []cli.Flag{
			configFlag,
			humanFlag,
			limitFlag,
		},
		Action: showMetrics,
	}

	bootstrapCommands(command)
}

func showMetrics(c *cli.Context) error {
	res := resources.InitResources(c.String("config"))
	s := openStore(res)

	samples, err := s.samples.Series(c.Int("limit"))
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}

	reporter := metrics.NewReporter(s.samples, s.hosts, s.conns)
	report, err := reporter.Current(time.Now().UTC())
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}

	if c.Bool("human-readable") {
		showMetricsReport(samples)
	} else if err := showMetricsCsv(samples); err != nil {
		return cli.NewExitError(err.Error(), -1)
	}

	fmt.Printf("\nCurrent window: %d new destinations, %d unique ports, %d uplink bytes, %d new ASNs\n",
		report.NewDstIPsLast10m, report.UniqueDportsLast10m,
		report.UplinkBytesLast10m, report.NewASNsLast1h)
	for _, flag := range report.Flags {
		fmt.Printf("[%s] %s\n", flag.Level, flag.Rule)
	}
	return nil
}

func showMetricsReport(samples []metrics.Sample) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Captured", "New Dsts 10m", "Ports 10m",
		"Uplink 10m", "Baseline P95", "New ASNs 1h"})
	for _, sample := range samples {
		table.Append([]string{
			ts(sample.CapturedAt), strconv.Itoa(sample.NewDstIPsLast10m),
			strconv.Itoa(sample.UniqueDportsLast10m), i(sample.UplinkBytesLast10m),
			i(sample.BaselineP95Uplink), strconv.Itoa(sample.NewASNsLast1h),
		})
	}
	table.Render()
}

func showMetricsCsv(samples []metrics.Sample) error {
	csvWriter := csv.NewWriter(os.Stdout)
	csvWriter.Write([]string{"captured_at", "new_dst_ips_10m", "unique_dports_10m",
		"uplink_bytes_10m", "baseline_p95_uplink", "new_asns_1h"})
	for _, sample := range samples {
		csvWriter.Write([]string{
			ts(sample.CapturedAt), strconv.Itoa(sample.NewDstIPsLast10m),
			strconv.Itoa(sample.UniqueDportsLast10m), i(sample.UplinkBytesLast10m),
			i(sample.BaselineP95Uplink), strconv.Itoa(sample.NewASNsLast1h),
		})
	}
	csvWriter.Flush()
	return csvWriter.Error()
}
