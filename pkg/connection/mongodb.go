package connection

import (
	"time"

	"github.com/globalsign/mgo"
	"github.com/globalsign/mgo/bson"

	"github.com/netmon-dev/netmon/config"
	"github.com/netmon-dev/netmon/database"
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

	coll := session.DB(r.database.GetSelectedDB()).C(r.config.T.Structure.ConnTable)

	indexes := []mgo.Index{
		{Key: []string{"tuple_key"}, Unique: true},
		{Key: []string{"src_ip", "last_seen_at"}},
		{Key: []string{"dst_ip"}},
		{Key: []string{"anomaly_score"}},
	}
	for _, index := range indexes {
		if err := coll.EnsureIndex(index); err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) Upsert(obs Observation, now time.Time) (Connection, bool, Counters, error) {
	session := r.database.Session.Copy()
	defer session.Close()

	coll := session.DB(r.database.GetSelectedDB()).C(r.config.T.Structure.ConnTable)
	key := obs.Key()

	var prev Connection
	created := false
	err := coll.Find(bson.M{"tuple_key": key}).One(&prev)
	if err == mgo.ErrNotFound {
		created = true
	} else if err != nil {
		return Connection{}, false, Counters{}, err
	}

	delta := ComputeDelta(created, Counters{
		UplinkBytes:     prev.LastUplinkBytes,
		DownlinkBytes:   prev.LastDownlinkBytes,
		UplinkPackets:   prev.LastUplinkPackets,
		DownlinkPackets: prev.LastDownlinkPackets,
	}, obs.Counters)

	firstSeen := obs.FirstSeen
	if firstSeen.IsZero() {
		firstSeen = now
	}
	lastSeen := obs.LastSeen
	if lastSeen.IsZero() {
		lastSeen = now
	}

	set := bson.M{
		"uplink_bytes":          obs.Counters.UplinkBytes,
		"downlink_bytes":        obs.Counters.DownlinkBytes,
		"uplink_packets":        obs.Counters.UplinkPackets,
		"downlink_packets":      obs.Counters.DownlinkPackets,
		"last_uplink_bytes":     obs.Counters.UplinkBytes,
		"last_downlink_bytes":   obs.Counters.DownlinkBytes,
		"last_uplink_packets":   obs.Counters.UplinkPackets,
		"last_downlink_packets": obs.Counters.DownlinkPackets,
		"last_delta_at":         now,
		"last_seen_at":          lastSeen,
		"state":                 obs.State,
		"flags":                 obs.Flags,
	}

	query := bson.M{
		"$setOnInsert": bson.M{
			"tuple_key":     key,
			"proto":         obs.Proto,
			"src_ip":        obs.SrcIP,
			"src_port":      obs.SrcPort,
			"dst_ip":        obs.DstIP,
			"dst_port":      obs.DstPort,
			"first_seen_at": firstSeen,
		},
		"$set": set,
	}

	if _, err := coll.Upsert(bson.M{"tuple_key": key}, query); err != nil {
		return Connection{}, false, Counters{}, err
	}

	var result Connection
	err = coll.Find(bson.M{"tuple_key": key}).One(&result)
	return result, created, delta, err
}

func (r *repo) SetScore(tupleKey string, score int, reasonsJSON string) error {
	session := r.database.Session.Copy()
	defer session.Close()

	return session.DB(r.database.GetSelectedDB()).C(r.config.T.Structure.ConnTable).
		Update(bson.M{"tuple_key": tupleKey}, bson.M{"$set": bson.M{
			"anomaly_score":   score,
			"anomaly_reasons": reasonsJSON,
		}})
}

func (r *repo) DeleteMissing(seenKeys []string) (int, error) {
	session := r.database.Session.Copy()
	defer session.Close()

	coll := session.DB(r.database.GetSelectedDB()).C(r.config.T.Structure.ConnTable)

	selector := bson.M{}
	if len(seenKeys) > 0 {
		selector["tuple_key"] = bson.M{"$nin": seenKeys}
	}

	info, err := coll.RemoveAll(selector)
	if err != nil {
		return 0, err
	}
	return info.Removed, nil
}

func (r *repo) PortWindow(deviceIP string, since time.Time) (PortWindow, error) {
	session := r.database.Session.Copy()
	defer session.Close()

	coll := session.DB(r.database.GetSelectedDB()).C(r.config.T.Structure.ConnTable)
	scope := bson.M{"src_ip": deviceIP, "last_seen_at": bson.M{"$gte": since}}

	var stats PortWindow

	var ports []int
	err := coll.Find(bson.M{
		"src_ip":       deviceIP,
		"last_seen_at": bson.M{"$gte": since},
		"dst_port":     bson.M{"$gt": 0},
	}).Distinct("dst_port", &ports)
	if err != nil {
		return stats, err
	}
	stats.UniquePorts = len(ports)

	var ips []string
	if err := coll.Find(scope).Distinct("dst_ip", &ips); err != nil {
		return stats, err
	}
	stats.UniqueDstIPs = len(ips)

	stats.TotalConns, err = coll.Find(scope).Count()
	if err != nil {
		return stats, err
	}

	var topPort struct {
		Count int `bson:"count"`
	}
	err = coll.Pipe([]bson.M{
		{"$match": bson.M{
			"src_ip":       deviceIP,
			"last_seen_at": bson.M{"$gte": since},
			"dst_port":     bson.M{"$gt": 0},
		}},
		{"$group": bson.M{"_id": "$dst_port", "count": bson.M{"$sum": 1}}},
		{"$sort": bson.M{"count": -1}},
		{"$limit": 1},
	}).One(&topPort)
	if err != nil && err != mgo.ErrNotFound {
		return stats, err
	}

	if stats.TotalConns > 0 {
		stats.TopPortShare = float64(topPort.Count) / float64(stats.TotalConns)
	}
	return stats, nil
}

func (r *repo) ExistsToAny(deviceIP string, dstIPs []string, since time.Time, excludeKey string) (bool, error) {
	if len(dstIPs) == 0 {
		return false, nil
	}

	session := r.database.Session.Copy()
	defer session.Close()

	selector := bson.M{
		"src_ip":       deviceIP,
		"dst_ip":       bson.M{"$in": dstIPs},
		"last_seen_at": bson.M{"$gte": since},
	}
	if excludeKey != "" {
		selector["tuple_key"] = bson.M{"$ne": excludeKey}
	}

	count, err := session.DB(r.database.GetSelectedDB()).C(r.config.T.Structure.ConnTable).
		Find(selector).Count()
	return count > 0, err
}

func (r *repo) Window(since time.Time) (GlobalWindow, error) {
	session := r.database.Session.Copy()
	defer session.Close()

	coll := session.DB(r.database.GetSelectedDB()).C(r.config.T.Structure.ConnTable)

	var window GlobalWindow

	var ports []int
	err := coll.Find(bson.M{
		"last_seen_at": bson.M{"$gte": since},
		"dst_port":     bson.M{"$gt": 0},
	}).Distinct("dst_port", &ports)
	if err != nil {
		return window, err
	}
	window.UniqueDstPorts = len(ports)

	var sum struct {
		UplinkBytes int64 `bson:"uplink_bytes"`
	}
	err = coll.Pipe([]bson.M{
		{"$match": bson.M{"last_seen_at": bson.M{"$gte": since}}},
		{"$group": bson.M{"_id": nil, "uplink_bytes": bson.M{"$sum": "$uplink_bytes"}}},
	}).One(&sum)
	if err == mgo.ErrNotFound {
		return window, nil
	}
	if err != nil {
		return window, err
	}
	window.UplinkBytes = sum.UplinkBytes
	return window, nil
}
