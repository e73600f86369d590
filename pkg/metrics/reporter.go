package metrics

import (
	"time"

	"github.com/netmon-dev/netmon/pkg/connection"
	"github.com/netmon-dev/netmon/pkg/remotehost"
)

//Reporter summarizes the current global traffic counters and flags
//threshold breaches
type Reporter struct {
	samples Repository
	hosts   remotehost.Repository
	conns   connection.Repository
}

//NewReporter creates a metrics Reporter
func NewReporter(samples Repository, hosts remotehost.Repository, conns connection.Repository) *Reporter {
	return &Reporter{
		samples: samples,
		hosts:   hosts,
		conns:   conns,
	}
}

//Flag marks one breached reporting threshold
type Flag struct {
	Rule  string
	Level string
}

//Report is the reporter's view of the last 10 minutes and hour
type Report struct {
	NewDstIPsLast10m    int
	UniqueDportsLast10m int
	UplinkBytesLast10m  int64
	BaselineP95Uplink   int64
	NewASNsLast1h       int
	NewASNsList         []string
	Flags               []Flag
}

//Current builds a point-in-time report
func (r *Reporter) Current(now time.Time) (Report, error) {
	window10m := now.Add(-10 * time.Minute)
	window1h := now.Add(-time.Hour)

	newDst, err := r.hosts.CountFirstSeenSince(window10m)
	if err != nil {
		return Report{}, err
	}

	window, err := r.conns.Window(window10m)
	if err != nil {
		return Report{}, err
	}

	asns, err := r.hosts.DistinctASNsFirstSeenSince(window1h)
	if err != nil {
		return Report{}, err
	}

	values, err := r.samples.RecentUplinkValues(now.Add(-baselineWindow), baselineSampleLimit)
	if err != nil {
		return Report{}, err
	}
	baselineP95 := roundRankPercentile(values, 0.95)

	report := Report{
		NewDstIPsLast10m:    newDst,
		UniqueDportsLast10m: window.UniqueDstPorts,
		UplinkBytesLast10m:  window.UplinkBytes,
		BaselineP95Uplink:   baselineP95,
		NewASNsLast1h:       len(asns),
		NewASNsList:         asns,
	}
	report.Flags = evaluateFlags(report)
	return report, nil
}

func evaluateFlags(report Report) []Flag {
	var flags []Flag
	if report.NewDstIPsLast10m > 50 {
		flags = append(flags, Flag{Rule: "new_dst_ips_last_10m > 50", Level: "suspicious"})
	}
	if report.UniqueDportsLast10m > 20 {
		flags = append(flags, Flag{Rule: "unique_dports_last_10m > 20", Level: "suspicious"})
	}
	if report.BaselineP95Uplink > 0 && report.UplinkBytesLast10m > report.BaselineP95Uplink*3 {
		flags = append(flags, Flag{Rule: "uplink_bytes_last_10m > baseline_p95 * 3", Level: "suspicious"})
	}
	if report.NewASNsLast1h > 10 {
		flags = append(flags, Flag{Rule: "new_asns_last_1h > 10", Level: "suspicious"})
	}
	return flags
}
