package connection

import (
	"time"

	"github.com/globalsign/mgo/bson"

	"github.com/netmon-dev/netmon/conntrack"
)

//Repository for the connections collection
type Repository interface {
	CreateIndexes() error
	//Upsert writes one observed flow and returns the stored connection,
	//whether it was created, and the counter deltas since the previous
	//observation of the same 5-tuple
	Upsert(obs Observation, now time.Time) (Connection, bool, Counters, error)
	//SetScore stores the anomaly score and its reason list for a 5-tuple
	SetScore(tupleKey string, score int, reasonsJSON string) error
	//DeleteMissing removes every connection whose tuple key is not in
	//seenKeys. An empty seenKeys removes all connections.
	DeleteMissing(seenKeys []string) (int, error)
	//PortWindow summarizes a device's destination ports and IPs over
	//connections seen since the given time
	PortWindow(deviceIP string, since time.Time) (PortWindow, error)
	//Window summarizes every device's connections seen since the given
	//time
	Window(since time.Time) (GlobalWindow, error)
	//ExistsToAny reports whether the device has a connection seen since
	//the given time to any of the destination IPs. excludeKey, when not
	//empty, names a tuple key to ignore.
	ExistsToAny(deviceIP string, dstIPs []string, since time.Time, excludeKey string) (bool, error)
}

//Connection is one observed outbound 5-tuple with its latest counters
type Connection struct {
	ID                  bson.ObjectId `bson:"_id,omitempty"`
	TupleKey            string        `bson:"tuple_key"`
	Proto               string        `bson:"proto"`
	SrcIP               string        `bson:"src_ip"`
	SrcPort             int           `bson:"src_port"`
	DstIP               string        `bson:"dst_ip"`
	DstPort             int           `bson:"dst_port"`
	State               string        `bson:"state"`
	Flags               string        `bson:"flags"`
	UplinkBytes         int64         `bson:"uplink_bytes"`
	DownlinkBytes       int64         `bson:"downlink_bytes"`
	UplinkPackets       int64         `bson:"uplink_packets"`
	DownlinkPackets     int64         `bson:"downlink_packets"`
	LastUplinkBytes     int64         `bson:"last_uplink_bytes"`
	LastDownlinkBytes   int64         `bson:"last_downlink_bytes"`
	LastUplinkPackets   int64         `bson:"last_uplink_packets"`
	LastDownlinkPackets int64         `bson:"last_downlink_packets"`
	AnomalyScore        int           `bson:"anomaly_score"`
	AnomalyReasons      string        `bson:"anomaly_reasons"`
	FirstSeenAt         time.Time     `bson:"first_seen_at"`
	LastSeenAt          time.Time     `bson:"last_seen_at"`
	LastDeltaAt         time.Time     `bson:"last_delta_at"`
}

//Observation is one sighting of a flow, from a conntrack snapshot or an
//agent event. Zero FirstSeen/LastSeen default to the cycle time.
type Observation struct {
	Proto     string
	SrcIP     string
	SrcPort   int
	DstIP     string
	DstPort   int
	State     string
	Flags     string
	Counters  Counters
	FirstSeen time.Time
	LastSeen  time.Time
}

//Key returns the canonical 5-tuple key for the observation
func (o Observation) Key() string {
	return conntrack.TupleKey(o.Proto, o.SrcIP, o.SrcPort, o.DstIP, o.DstPort)
}

//PortWindow summarizes a device's recent destinations
type PortWindow struct {
	UniquePorts  int
	UniqueDstIPs int
	TotalConns   int
	TopPortShare float64
}

//GlobalWindow summarizes all devices' recent traffic for the metrics
//sampler
type GlobalWindow struct {
	UniqueDstPorts int
	UplinkBytes    int64
}
