package baseline

import (
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

	return session.DB(r.database.GetSelectedDB()).C(r.config.T.Anomaly.BaselineTable).
		EnsureIndex(mgo.Index{Key: []string{"device_ip"}, Unique: true})
}

func (r *repo) Get(deviceIP string) (Baseline, error) {
	session := r.database.Session.Copy()
	defer session.Close()

	var result Baseline
	err := session.DB(r.database.GetSelectedDB()).C(r.config.T.Anomaly.BaselineTable).
		Find(bson.M{"device_ip": deviceIP}).One(&result)
	if err == mgo.ErrNotFound {
		return Baseline{DeviceIP: deviceIP}, nil
	}
	return result, err
}

func (r *repo) Put(b Baseline) error {
	session := r.database.Session.Copy()
	defer session.Close()

	_, err := session.DB(r.database.GetSelectedDB()).C(r.config.T.Anomaly.BaselineTable).
		Upsert(bson.M{"device_ip": b.DeviceIP}, bson.M{"$set": bson.M{
			"device_ip":                b.DeviceIP,
			"window_minutes":           b.WindowMinutes,
			"p95_uplink_bytes_per_min": b.P95UplinkBytesPerMin,
			"p95_conn_count_per_min":   b.P95ConnCountPerMin,
			"p95_new_dst_ips_per_10m":  b.P95NewDstIPsPer10m,
			"p95_unique_ports_per_10m": b.P95UniquePortsPer10m,
			"updated_at":               b.UpdatedAt,
		}})
	return err
}
