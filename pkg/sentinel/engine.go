package sentinel

import (
	"time"

	jsoniter "github.com/json-iterator/go"
	log "github.com/sirupsen/logrus"

	"github.com/netmon-dev/netmon/config"
	"github.com/netmon-dev/netmon/conntrack"
	"github.com/netmon-dev/netmon/pkg/anomaly"
	"github.com/netmon-dev/netmon/pkg/baseline"
	"github.com/netmon-dev/netmon/pkg/connection"
	"github.com/netmon-dev/netmon/pkg/device"
	"github.com/netmon-dev/netmon/pkg/incident"
	"github.com/netmon-dev/netmon/pkg/minute"
	"github.com/netmon-dev/netmon/pkg/remotehost"
	"github.com/netmon-dev/netmon/util"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

//statsWindow is the trailing span the scoring window statistics cover
const statsWindow = 10 * time.Minute

//asnLookback is how far back a device's ASN history counts as seen
const asnLookback = 7 * 24 * time.Hour

//Enricher refreshes a remote host's rDNS/WHOIS fields in place and
//returns the update to persist
type Enricher interface {
	Apply(host *remotehost.RemoteHost, now time.Time) remotehost.EnrichmentUpdate
}

//Grouper folds scored findings into hits and incidents
type Grouper interface {
	Emit(f incident.Finding, now time.Time) error
}

//Engine reconciles flow snapshots into the entity store and scores
//every outbound flow it sees
type Engine struct {
	conf      *config.Config
	log       *log.Logger
	snapshot  *conntrack.Snapshot
	filter    *Filter
	devices   device.Repository
	hosts     remotehost.Repository
	conns     connection.Repository
	minutes   minute.Repository
	baselines baseline.Repository
	matcher   anomaly.RuleMatcher
	enricher  Enricher
	grouper   Grouper
}

//NewEngine wires a reconciliation Engine
func NewEngine(conf *config.Config, logger *log.Logger, snapshot *conntrack.Snapshot,
	devices device.Repository, hosts remotehost.Repository, conns connection.Repository,
	minutes minute.Repository, baselines baseline.Repository, matcher anomaly.RuleMatcher,
	enricher Enricher, grouper Grouper) *Engine {
	return &Engine{
		conf:      conf,
		log:       logger,
		snapshot:  snapshot,
		filter:    NewFilter(conf),
		devices:   devices,
		hosts:     hosts,
		conns:     conns,
		minutes:   minutes,
		baselines: baselines,
		matcher:   matcher,
		enricher:  enricher,
		grouper:   grouper,
	}
}

//Result summarizes one reconciliation cycle
type Result struct {
	FlowsSeen           int
	DevicesUpserted     int
	RemoteHostsUpserted int
	ConnectionsUpserted int
	ConnectionsDeleted  int
}

//cycleStats accumulates one device's distinct counts for one minute
//bucket of a cycle. Snapshot cycles land in a single bucket; agent
//batches may spread across buckets when events arrive late.
type cycleStats struct {
	deviceIP  string
	bucket    time.Time
	dstIPs    map[string]bool
	newDstIPs map[string]bool
	dstPorts  map[int]bool
	asns      map[string]bool
	protos    map[string]bool
	rarePorts map[int]bool
}

func newCycleStats(deviceIP string, bucket time.Time) *cycleStats {
	return &cycleStats{
		deviceIP:  deviceIP,
		bucket:    bucket,
		dstIPs:    make(map[string]bool),
		newDstIPs: make(map[string]bool),
		dstPorts:  make(map[int]bool),
		asns:      make(map[string]bool),
		protos:    make(map[string]bool),
		rarePorts: make(map[int]bool),
	}
}

//ReconcileSnapshot runs one full cycle: read the snapshot, fold every
//outbound flow into the store, score it, and drop connections the
//tracker no longer reports
func (e *Engine) ReconcileSnapshot(now time.Time) (Result, error) {
	var result Result

	entries, err := e.snapshot.Read()
	if err != nil {
		return result, err
	}

	seenKeys := []string{}
	cycle := make(map[string]*cycleStats)

	for _, entry := range entries {
		if !e.filter.Outbound(entry) {
			continue
		}
		result.FlowsSeen++

		obs := observationFromEntry(entry)
		if err := e.ingestFlow(obs, now, &result, cycle); err != nil {
			return result, err
		}
		seenKeys = append(seenKeys, obs.Key())
	}

	for _, stats := range cycle {
		if err := e.foldCycleCardinality(stats); err != nil {
			return result, err
		}
	}

	result.ConnectionsDeleted, err = e.conns.DeleteMissing(seenKeys)
	if err != nil {
		return result, err
	}

	e.log.WithFields(log.Fields{
		"flows":   result.FlowsSeen,
		"deleted": result.ConnectionsDeleted,
	}).Debug("reconciled snapshot")
	return result, nil
}

//ingestFlow folds one outbound observation into the store and scores it
func (e *Engine) ingestFlow(obs connection.Observation, now time.Time, result *Result, cycle map[string]*cycleStats) error {
	dev, devCreated, err := e.devices.Upsert(obs.SrcIP, now)
	if err != nil {
		return err
	}
	if devCreated {
		result.DevicesUpserted++
	}

	host, hostCreated, err := e.hosts.Upsert(obs.DstIP, now)
	if err != nil {
		return err
	}
	if hostCreated {
		result.RemoteHostsUpserted++
	}

	if update := e.enricher.Apply(&host, now); update.RDNSChecked || update.WhoisChecked {
		if err := e.hosts.SaveEnrichment(host.IP, update); err != nil {
			return err
		}
	}

	conn, connCreated, delta, err := e.conns.Upsert(obs, now)
	if err != nil {
		return err
	}
	if connCreated {
		result.ConnectionsUpserted++
	}

	if err := e.minutes.IncrementDevice(dev.IP, now, delta); err != nil {
		return err
	}
	if err := e.minutes.IncrementRemoteHost(host.IP, now, delta); err != nil {
		return err
	}

	if obs.DstPort > 0 {
		if err := e.hosts.TouchPort(host.IP, obs.DstPort, now, connCreated || delta.Positive()); err != nil {
			return err
		}
	}

	e.trackCycle(cycle, dev.IP, obs, host, now)

	return e.scoreFlow(conn, dev, host, connCreated, now)
}

func (e *Engine) trackCycle(cycle map[string]*cycleStats, deviceIP string, obs connection.Observation, host remotehost.RemoteHost, now time.Time) {
	bucket := util.TruncateToMinute(now)
	key := deviceIP + "|" + bucket.Format(time.RFC3339)
	stats, ok := cycle[key]
	if !ok {
		stats = newCycleStats(deviceIP, bucket)
		cycle[key] = stats
	}

	stats.dstIPs[host.IP] = true
	newWindow := time.Duration(e.conf.S.Scoring.NewWindowSeconds) * time.Second
	if !host.FirstSeenAt.IsZero() && !host.FirstSeenAt.Before(now.Add(-newWindow)) {
		stats.newDstIPs[host.IP] = true
	}
	if obs.DstPort > 0 {
		stats.dstPorts[obs.DstPort] = true
		if !util.IntInSlice(obs.DstPort, e.conf.S.Scoring.CommonPorts) {
			stats.rarePorts[obs.DstPort] = true
		}
	}
	if asn := host.ASN(); asn != "" {
		stats.asns[asn] = true
	}
	if obs.Proto != "" {
		stats.protos[obs.Proto] = true
	}
}

//foldCycleCardinality raises the device's minute bucket to this
//cycle's distinct counts
func (e *Engine) foldCycleCardinality(stats *cycleStats) error {
	return e.minutes.FoldDeviceCardinality(stats.deviceIP, stats.bucket, minute.Cardinality{
		NewDstIPs:      len(stats.newDstIPs),
		UniqueDstIPs:   len(stats.dstIPs),
		UniqueDstPorts: len(stats.dstPorts),
		UniqueDstASNs:  len(stats.asns),
		UniqueProtos:   len(stats.protos),
		RarePorts:      len(stats.rarePorts),
	})
}

//scoreFlow evaluates one stored connection and hands the finding to the
//grouper when it clears the anomaly threshold
func (e *Engine) scoreFlow(conn connection.Connection, dev device.Device, host remotehost.RemoteHost, connCreated bool, now time.Time) error {
	windowStart := now.Add(-statsWindow)

	deviceWindow, err := e.minutes.DeviceWindow(dev.IP, windowStart)
	if err != nil {
		return err
	}
	portWindow, err := e.conns.PortWindow(dev.IP, windowStart)
	if err != nil {
		return err
	}
	bl, err := e.baselines.Get(dev.IP)
	if err != nil {
		return err
	}
	newASN, err := e.isNewASN(dev.IP, host, conn.TupleKey, connCreated, now)
	if err != nil {
		return err
	}

	score, reasons := anomaly.ScoreConnection(anomaly.Input{
		Proto:    conn.Proto,
		DstPort:  conn.DstPort,
		DeviceIP: dev.IP,
		Host:     host,
		Baseline: bl,
		Window: anomaly.WindowStats{
			UplinkBytes10m:  deviceWindow.UplinkBytes,
			NewDstIPs10m:    deviceWindow.NewDstIPs,
			UniquePorts10m:  portWindow.UniquePorts,
			UniqueDstIPs10m: portWindow.UniqueDstIPs,
			TopPortShare:    portWindow.TopPortShare,
		},
		NewASN: newASN,
		Now:    now,
	}, e.conf.S.Scoring, e.matcher)

	reasonsJSON, err := json.MarshalToString(reasons)
	if err != nil {
		return err
	}
	if err := e.conns.SetScore(conn.TupleKey, score, reasonsJSON); err != nil {
		return err
	}

	if score < e.conf.S.Scoring.AnomalyThreshold || len(reasons) == 0 {
		return nil
	}

	return e.grouper.Emit(incident.Finding{
		DeviceIP:     dev.IP,
		RemoteHostIP: host.IP,
		Proto:        conn.Proto,
		SrcIP:        conn.SrcIP,
		DstIP:        conn.DstIP,
		DstPort:      conn.DstPort,
		Score:        score,
		TotalBytes:   conn.UplinkBytes + conn.DownlinkBytes,
		Reasons:      reasons,
	}, now)
}

//isNewASN reports whether the device lacks recent history with the
//host's ASN. A connection that already existed counts as history, so
//only a freshly created connection excludes itself from the lookup.
func (e *Engine) isNewASN(deviceIP string, host remotehost.RemoteHost, tupleKey string, connCreated bool, now time.Time) (bool, error) {
	asn := host.ASN()
	if asn == "" {
		return false, nil
	}

	ips, err := e.hosts.IPsWithASN(asn)
	if err != nil {
		return false, err
	}

	excludeKey := ""
	if connCreated {
		excludeKey = tupleKey
	}
	seen, err := e.conns.ExistsToAny(deviceIP, ips, now.Add(-asnLookback), excludeKey)
	if err != nil {
		return false, err
	}
	return !seen, nil
}

func observationFromEntry(entry *conntrack.Entry) connection.Observation {
	flags := ""
	for i, flag := range entry.Flags {
		if i > 0 {
			flags += ","
		}
		flags += flag
	}

	return connection.Observation{
		Proto:   entry.Proto,
		SrcIP:   entry.Orig.Src,
		SrcPort: entry.Orig.SrcPort,
		DstIP:   entry.Orig.Dst,
		DstPort: entry.Orig.DstPort,
		State:   entry.State,
		Flags:   flags,
		Counters: connection.Counters{
			UplinkBytes:     entry.Orig.Bytes,
			DownlinkBytes:   entry.Reply.Bytes,
			UplinkPackets:   entry.Orig.Packets,
			DownlinkPackets: entry.Reply.Packets,
		},
	}
}
