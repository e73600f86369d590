package minute

import (
	"time"

	"github.com/globalsign/mgo/bson"

	"github.com/netmon-dev/netmon/pkg/connection"
)

//Repository for the per-minute traffic buckets
type Repository interface {
	CreateIndexes() error
	//IncrementDevice folds one flow sighting into the device's bucket
	//for the minute containing bucketTS
	IncrementDevice(deviceIP string, bucketTS time.Time, delta connection.Counters) error
	//IncrementRemoteHost folds one flow sighting into the remote host's
	//bucket for the minute containing bucketTS
	IncrementRemoteHost(hostIP string, bucketTS time.Time, delta connection.Counters) error
	//FoldDeviceCardinality raises the bucket's cardinality fields to at
	//least the given per-cycle distinct counts
	FoldDeviceCardinality(deviceIP string, bucketTS time.Time, card Cardinality) error
	//DeviceRange returns the device's buckets since the given time in
	//bucket order
	DeviceRange(deviceIP string, since time.Time) ([]DeviceMinute, error)
	//DeviceWindow sums the device's uplink bytes and new destination
	//counts over the buckets since the given time
	DeviceWindow(deviceIP string, since time.Time) (DeviceWindow, error)
}

//DeviceMinute is one device's traffic for one minute
type DeviceMinute struct {
	ID              bson.ObjectId `bson:"_id,omitempty"`
	DeviceIP        string        `bson:"device_ip"`
	BucketTS        time.Time     `bson:"bucket_ts"`
	ConnCount       int           `bson:"conn_count"`
	UplinkBytes     int64         `bson:"uplink_bytes"`
	DownlinkBytes   int64         `bson:"downlink_bytes"`
	UplinkPackets   int64         `bson:"uplink_packets"`
	DownlinkPackets int64         `bson:"downlink_packets"`
	NewDstIPs       int           `bson:"new_dst_ips"`
	UniqueDstIPs    int           `bson:"unique_dst_ips"`
	UniqueDstPorts  int           `bson:"unique_dst_ports"`
	UniqueDstASNs   int           `bson:"unique_dst_asns"`
	UniqueProtos    int           `bson:"unique_protos"`
	RarePorts       int           `bson:"rare_ports"`
}

//RemoteHostMinute is one remote host's traffic for one minute
type RemoteHostMinute struct {
	ID              bson.ObjectId `bson:"_id,omitempty"`
	HostIP          string        `bson:"host_ip"`
	BucketTS        time.Time     `bson:"bucket_ts"`
	ConnCount       int           `bson:"conn_count"`
	UplinkBytes     int64         `bson:"uplink_bytes"`
	DownlinkBytes   int64         `bson:"downlink_bytes"`
	UplinkPackets   int64         `bson:"uplink_packets"`
	DownlinkPackets int64         `bson:"downlink_packets"`
}

//Cardinality holds a cycle's distinct counts for one device and minute
type Cardinality struct {
	NewDstIPs      int
	UniqueDstIPs   int
	UniqueDstPorts int
	UniqueDstASNs  int
	UniqueProtos   int
	RarePorts      int
}

//DeviceWindow holds the sums used by the scoring window
type DeviceWindow struct {
	UplinkBytes int64
	NewDstIPs   int
}
