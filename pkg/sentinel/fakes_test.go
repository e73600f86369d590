package sentinel

import (
	"sort"
	"strconv"
	"time"

	"github.com/netmon-dev/netmon/pkg/baseline"
	"github.com/netmon-dev/netmon/pkg/connection"
	"github.com/netmon-dev/netmon/pkg/device"
	"github.com/netmon-dev/netmon/pkg/incident"
	"github.com/netmon-dev/netmon/pkg/minute"
	"github.com/netmon-dev/netmon/pkg/remotehost"
	"github.com/netmon-dev/netmon/util"
)

type fakeDevices struct {
	devices map[string]device.Device
}

func newFakeDevices() *fakeDevices {
	return &fakeDevices{devices: make(map[string]device.Device)}
}

func (f *fakeDevices) CreateIndexes() error { return nil }

func (f *fakeDevices) Upsert(ip string, now time.Time) (device.Device, bool, error) {
	dev, ok := f.devices[ip]
	if !ok {
		dev = device.Device{IP: ip, Name: ip, FirstSeenAt: now}
	}
	dev.LastSeenAt = now
	f.devices[ip] = dev
	return dev, !ok, nil
}

func (f *fakeDevices) All() ([]device.Device, error) {
	var all []device.Device
	for _, dev := range f.devices {
		all = append(all, dev)
	}
	return all, nil
}

type fakeHosts struct {
	hosts map[string]remotehost.RemoteHost
	ports map[string]int64
}

func newFakeHosts() *fakeHosts {
	return &fakeHosts{
		hosts: make(map[string]remotehost.RemoteHost),
		ports: make(map[string]int64),
	}
}

func (f *fakeHosts) CreateIndexes() error { return nil }

func (f *fakeHosts) Upsert(ip string, now time.Time) (remotehost.RemoteHost, bool, error) {
	host, ok := f.hosts[ip]
	prevLastSeen := host.LastSeenAt
	if !ok {
		host = remotehost.RemoteHost{IP: ip, FirstSeenAt: now, Tag: remotehost.TagUnknown}
	}
	host.LastSeenAt = now
	f.hosts[ip] = host
	host.PrevLastSeenAt = prevLastSeen
	return host, !ok, nil
}

func (f *fakeHosts) SaveEnrichment(ip string, update remotehost.EnrichmentUpdate) error {
	host := f.hosts[ip]
	if update.RDNSChecked {
		host.RDNSName = update.RDNSName
		host.RDNSCheckedAt = update.CheckedAt
	}
	if update.WhoisChecked {
		host.WhoisName = update.WhoisName
		host.WhoisRawLine = update.WhoisRawLine
		host.WhoisASN = update.WhoisASN
		host.WhoisCheckedAt = update.CheckedAt
	}
	f.hosts[ip] = host
	return nil
}

func (f *fakeHosts) TouchPort(ip string, dstPort int, now time.Time, countSighting bool) error {
	if countSighting {
		f.ports[portKey(ip, dstPort)]++
	} else if _, ok := f.ports[portKey(ip, dstPort)]; !ok {
		f.ports[portKey(ip, dstPort)] = 0
	}
	return nil
}

func portKey(ip string, port int) string {
	return ip + "|" + strconv.Itoa(port)
}

func (f *fakeHosts) All() ([]remotehost.RemoteHost, error) {
	var hosts []remotehost.RemoteHost
	for _, host := range f.hosts {
		hosts = append(hosts, host)
	}
	sort.Slice(hosts, func(i, j int) bool { return hosts[i].LastSeenAt.After(hosts[j].LastSeenAt) })
	return hosts, nil
}

func (f *fakeHosts) IPsWithASN(value string) ([]string, error) {
	var ips []string
	for ip, host := range f.hosts {
		if host.WhoisASN == value || host.WhoisName == value {
			ips = append(ips, ip)
		}
	}
	return ips, nil
}

func (f *fakeHosts) CountFirstSeenSince(since time.Time) (int, error) {
	count := 0
	for _, host := range f.hosts {
		if !host.FirstSeenAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (f *fakeHosts) DistinctASNsFirstSeenSince(since time.Time) ([]string, error) {
	seen := make(map[string]bool)
	for _, host := range f.hosts {
		if !host.FirstSeenAt.Before(since) && host.WhoisASN != "" {
			seen[host.WhoisASN] = true
		}
	}
	var asns []string
	for asn := range seen {
		asns = append(asns, asn)
	}
	sort.Strings(asns)
	return asns, nil
}

type fakeConns struct {
	conns map[string]connection.Connection
}

func newFakeConns() *fakeConns {
	return &fakeConns{conns: make(map[string]connection.Connection)}
}

func (f *fakeConns) CreateIndexes() error { return nil }

func (f *fakeConns) Upsert(obs connection.Observation, now time.Time) (connection.Connection, bool, connection.Counters, error) {
	key := obs.Key()
	conn, ok := f.conns[key]
	delta := connection.ComputeDelta(!ok, connection.Counters{
		UplinkBytes:     conn.LastUplinkBytes,
		DownlinkBytes:   conn.LastDownlinkBytes,
		UplinkPackets:   conn.LastUplinkPackets,
		DownlinkPackets: conn.LastDownlinkPackets,
	}, obs.Counters)

	if !ok {
		firstSeen := obs.FirstSeen
		if firstSeen.IsZero() {
			firstSeen = now
		}
		conn = connection.Connection{
			TupleKey:    key,
			Proto:       obs.Proto,
			SrcIP:       obs.SrcIP,
			SrcPort:     obs.SrcPort,
			DstIP:       obs.DstIP,
			DstPort:     obs.DstPort,
			FirstSeenAt: firstSeen,
		}
	}

	lastSeen := obs.LastSeen
	if lastSeen.IsZero() {
		lastSeen = now
	}
	conn.State = obs.State
	conn.Flags = obs.Flags
	conn.UplinkBytes = obs.Counters.UplinkBytes
	conn.DownlinkBytes = obs.Counters.DownlinkBytes
	conn.UplinkPackets = obs.Counters.UplinkPackets
	conn.DownlinkPackets = obs.Counters.DownlinkPackets
	conn.LastUplinkBytes = obs.Counters.UplinkBytes
	conn.LastDownlinkBytes = obs.Counters.DownlinkBytes
	conn.LastUplinkPackets = obs.Counters.UplinkPackets
	conn.LastDownlinkPackets = obs.Counters.DownlinkPackets
	conn.LastDeltaAt = now
	conn.LastSeenAt = lastSeen
	f.conns[key] = conn
	return conn, !ok, delta, nil
}

func (f *fakeConns) SetScore(tupleKey string, score int, reasonsJSON string) error {
	conn := f.conns[tupleKey]
	conn.AnomalyScore = score
	conn.AnomalyReasons = reasonsJSON
	f.conns[tupleKey] = conn
	return nil
}

func (f *fakeConns) DeleteMissing(seenKeys []string) (int, error) {
	seen := make(map[string]bool, len(seenKeys))
	for _, key := range seenKeys {
		seen[key] = true
	}
	deleted := 0
	for key := range f.conns {
		if !seen[key] {
			delete(f.conns, key)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeConns) PortWindow(deviceIP string, since time.Time) (connection.PortWindow, error) {
	var window connection.PortWindow
	ports := make(map[int]int)
	ips := make(map[string]bool)
	for _, conn := range f.conns {
		if conn.SrcIP != deviceIP || conn.LastSeenAt.Before(since) {
			continue
		}
		window.TotalConns++
		ips[conn.DstIP] = true
		if conn.DstPort > 0 {
			ports[conn.DstPort]++
		}
	}
	window.UniquePorts = len(ports)
	window.UniqueDstIPs = len(ips)
	top := 0
	for _, count := range ports {
		if count > top {
			top = count
		}
	}
	if window.TotalConns > 0 {
		window.TopPortShare = float64(top) / float64(window.TotalConns)
	}
	return window, nil
}

func (f *fakeConns) Window(since time.Time) (connection.GlobalWindow, error) {
	var window connection.GlobalWindow
	ports := make(map[int]bool)
	for _, conn := range f.conns {
		if conn.LastSeenAt.Before(since) {
			continue
		}
		window.UplinkBytes += conn.UplinkBytes
		if conn.DstPort > 0 {
			ports[conn.DstPort] = true
		}
	}
	window.UniqueDstPorts = len(ports)
	return window, nil
}

func (f *fakeConns) ExistsToAny(deviceIP string, dstIPs []string, since time.Time, excludeKey string) (bool, error) {
	targets := make(map[string]bool, len(dstIPs))
	for _, ip := range dstIPs {
		targets[ip] = true
	}
	for key, conn := range f.conns {
		if key == excludeKey || conn.SrcIP != deviceIP || conn.LastSeenAt.Before(since) {
			continue
		}
		if targets[conn.DstIP] {
			return true, nil
		}
	}
	return false, nil
}

type fakeMinutes struct {
	device map[string]*minute.DeviceMinute
	remote map[string]*minute.RemoteHostMinute
}

func newFakeMinutes() *fakeMinutes {
	return &fakeMinutes{
		device: make(map[string]*minute.DeviceMinute),
		remote: make(map[string]*minute.RemoteHostMinute),
	}
}

func (f *fakeMinutes) CreateIndexes() error { return nil }

func minuteKey(ip string, bucket time.Time) string {
	return ip + "|" + bucket.Format(time.RFC3339)
}

func (f *fakeMinutes) IncrementDevice(deviceIP string, bucketTS time.Time, delta connection.Counters) error {
	bucket := util.TruncateToMinute(bucketTS)
	key := minuteKey(deviceIP, bucket)
	m, ok := f.device[key]
	if !ok {
		m = &minute.DeviceMinute{DeviceIP: deviceIP, BucketTS: bucket}
		f.device[key] = m
	}
	m.ConnCount++
	m.UplinkBytes += delta.UplinkBytes
	m.DownlinkBytes += delta.DownlinkBytes
	m.UplinkPackets += delta.UplinkPackets
	m.DownlinkPackets += delta.DownlinkPackets
	return nil
}

func (f *fakeMinutes) IncrementRemoteHost(hostIP string, bucketTS time.Time, delta connection.Counters) error {
	bucket := util.TruncateToMinute(bucketTS)
	key := minuteKey(hostIP, bucket)
	m, ok := f.remote[key]
	if !ok {
		m = &minute.RemoteHostMinute{HostIP: hostIP, BucketTS: bucket}
		f.remote[key] = m
	}
	m.ConnCount++
	m.UplinkBytes += delta.UplinkBytes
	m.DownlinkBytes += delta.DownlinkBytes
	return nil
}

func (f *fakeMinutes) FoldDeviceCardinality(deviceIP string, bucketTS time.Time, card minute.Cardinality) error {
	bucket := util.TruncateToMinute(bucketTS)
	key := minuteKey(deviceIP, bucket)
	m, ok := f.device[key]
	if !ok {
		m = &minute.DeviceMinute{DeviceIP: deviceIP, BucketTS: bucket}
		f.device[key] = m
	}
	m.NewDstIPs = util.Max(m.NewDstIPs, card.NewDstIPs)
	m.UniqueDstIPs = util.Max(m.UniqueDstIPs, card.UniqueDstIPs)
	m.UniqueDstPorts = util.Max(m.UniqueDstPorts, card.UniqueDstPorts)
	m.UniqueDstASNs = util.Max(m.UniqueDstASNs, card.UniqueDstASNs)
	m.UniqueProtos = util.Max(m.UniqueProtos, card.UniqueProtos)
	m.RarePorts = util.Max(m.RarePorts, card.RarePorts)
	return nil
}

func (f *fakeMinutes) DeviceRange(deviceIP string, since time.Time) ([]minute.DeviceMinute, error) {
	var minutes []minute.DeviceMinute
	for _, m := range f.device {
		if m.DeviceIP == deviceIP && !m.BucketTS.Before(since) {
			minutes = append(minutes, *m)
		}
	}
	sort.Slice(minutes, func(i, j int) bool { return minutes[i].BucketTS.Before(minutes[j].BucketTS) })
	return minutes, nil
}

func (f *fakeMinutes) DeviceWindow(deviceIP string, since time.Time) (minute.DeviceWindow, error) {
	var window minute.DeviceWindow
	for _, m := range f.device {
		if m.DeviceIP == deviceIP && !m.BucketTS.Before(since) {
			window.UplinkBytes += m.UplinkBytes
			window.NewDstIPs += m.NewDstIPs
		}
	}
	return window, nil
}

type fakeBaselines struct {
	baselines map[string]baseline.Baseline
}

func newFakeBaselines() *fakeBaselines {
	return &fakeBaselines{baselines: make(map[string]baseline.Baseline)}
}

func (f *fakeBaselines) CreateIndexes() error { return nil }

func (f *fakeBaselines) Get(deviceIP string) (baseline.Baseline, error) {
	if b, ok := f.baselines[deviceIP]; ok {
		return b, nil
	}
	return baseline.Baseline{DeviceIP: deviceIP}, nil
}

func (f *fakeBaselines) Put(b baseline.Baseline) error {
	f.baselines[b.DeviceIP] = b
	return nil
}

type openMatcher struct{}

func (openMatcher) Allowed(kind, value, deviceIP string) bool          { return false }
func (openMatcher) Suppressed(code, kind, value, deviceIP string) bool { return false }

type noopEnricher struct{}

func (noopEnricher) Apply(host *remotehost.RemoteHost, now time.Time) remotehost.EnrichmentUpdate {
	return remotehost.EnrichmentUpdate{}
}

type recordingGrouper struct {
	findings []incident.Finding
}

func (g *recordingGrouper) Emit(f incident.Finding, now time.Time) error {
	g.findings = append(g.findings, f)
	return nil
}
