package minute

import (
	"time"

	"github.com/globalsign/mgo"
	"github.com/globalsign/mgo/bson"

	"github.com/netmon-dev/netmon/config"
	"github.com/netmon-dev/netmon/database"
	"github.com/netmon-dev/netmon/pkg/connection"
	"github.com/netmon-dev/netmon/util"
)

type repo struct {
	database *database.DB
	config   *config.Config
}

//NewMongoRepository create new repository
func NewMongoRepository(db *database.DB, conf *config.Config) Repository {
	return &repo{
		database: db,
		config:   conf,
	}
}

func (r *repo) CreateIndexes() error {
	session := r.database.Session.Copy()
	defer session.Close()

	db := session.DB(r.database.GetSelectedDB())

	err := db.C(r.config.T.Structure.DeviceMinuteTable).EnsureIndex(mgo.Index{
		Key:    []string{"device_ip", "bucket_ts"},
		Unique: true,
	})
	if err != nil {
		return err
	}

	return db.C(r.config.T.Structure.RemoteHostMinuteTable).EnsureIndex(mgo.Index{
		Key:    []string{"host_ip", "bucket_ts"},
		Unique: true,
	})
}

func (r *repo) IncrementDevice(deviceIP string, bucketTS time.Time, delta connection.Counters) error {
	session := r.database.Session.Copy()
	defer session.Close()

	bucket := util.TruncateToMinute(bucketTS)
	_, err := session.DB(r.database.GetSelectedDB()).C(r.config.T.Structure.DeviceMinuteTable).
		Upsert(
			bson.M{"device_ip": deviceIP, "bucket_ts": bucket},
			bson.M{
				"$setOnInsert": bson.M{"device_ip": deviceIP, "bucket_ts": bucket},
				"$inc": bson.M{
					"conn_count":       1,
					"uplink_bytes":     delta.UplinkBytes,
					"downlink_bytes":   delta.DownlinkBytes,
					"uplink_packets":   delta.UplinkPackets,
					"downlink_packets": delta.DownlinkPackets,
				},
			},
		)
	return err
}

func (r *repo) IncrementRemoteHost(hostIP string, bucketTS time.Time, delta connection.Counters) error {
	session := r.database.Session.Copy()
	defer session.Close()

	bucket := util.TruncateToMinute(bucketTS)
	_, err := session.DB(r.database.GetSelectedDB()).C(r.config.T.Structure.RemoteHostMinuteTable).
		Upsert(
			bson.M{"host_ip": hostIP, "bucket_ts": bucket},
			bson.M{
				"$setOnInsert": bson.M{"host_ip": hostIP, "bucket_ts": bucket},
				"$inc": bson.M{
					"conn_count":       1,
					"uplink_bytes":     delta.UplinkBytes,
					"downlink_bytes":   delta.DownlinkBytes,
					"uplink_packets":   delta.UplinkPackets,
					"downlink_packets": delta.DownlinkPackets,
				},
			},
		)
	return err
}

func (r *repo) FoldDeviceCardinality(deviceIP string, bucketTS time.Time, card Cardinality) error {
	session := r.database.Session.Copy()
	defer session.Close()

	bucket := util.TruncateToMinute(bucketTS)
	_, err := session.DB(r.database.GetSelectedDB()).C(r.config.T.Structure.DeviceMinuteTable).
		Upsert(
			bson.M{"device_ip": deviceIP, "bucket_ts": bucket},
			bson.M{
				"$setOnInsert": bson.M{"device_ip": deviceIP, "bucket_ts": bucket},
				"$max": bson.M{
					"new_dst_ips":      card.NewDstIPs,
					"unique_dst_ips":   card.UniqueDstIPs,
					"unique_dst_ports": card.UniqueDstPorts,
					"unique_dst_asns":  card.UniqueDstASNs,
					"unique_protos":    card.UniqueProtos,
					"rare_ports":       card.RarePorts,
				},
			},
		)
	return err
}

func (r *repo) DeviceRange(deviceIP string, since time.Time) ([]DeviceMinute, error) {
	session := r.database.Session.Copy()
	defer session.Close()

	var minutes []DeviceMinute
	err := session.DB(r.database.GetSelectedDB()).C(r.config.T.Structure.DeviceMinuteTable).
		Find(bson.M{"device_ip": deviceIP, "bucket_ts": bson.M{"$gte": since}}).
		Sort("bucket_ts").All(&minutes)
	return minutes, err
}

func (r *repo) DeviceWindow(deviceIP string, since time.Time) (DeviceWindow, error) {
	session := r.database.Session.Copy()
	defer session.Close()

	var result struct {
		UplinkBytes int64 `bson:"uplink_bytes"`
		NewDstIPs   int   `bson:"new_dst_ips"`
	}
	err := session.DB(r.database.GetSelectedDB()).C(r.config.T.Structure.DeviceMinuteTable).
		Pipe([]bson.M{
			{"$match": bson.M{"device_ip": deviceIP, "bucket_ts": bson.M{"$gte": since}}},
			{"$group": bson.M{
				"_id":          nil,
				"uplink_bytes": bson.M{"$sum": "$uplink_bytes"},
				"new_dst_ips":  bson.M{"$sum": "$new_dst_ips"},
			}},
		}).One(&result)
	if err == mgo.ErrNotFound {
		return DeviceWindow{}, nil
	}
	if err != nil {
		return DeviceWindow{}, err
	}
	return DeviceWindow{UplinkBytes: result.UplinkBytes, NewDstIPs: result.NewDstIPs}, nil
}
