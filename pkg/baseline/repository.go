package baseline

import (
	"time"

	"github.com/globalsign/mgo/bson"
)

//Repository for the device_baselines collection
type Repository interface {
	CreateIndexes() error
	//Get returns the device's baseline. A device with no stored baseline
	//gets a zero baseline, which disables the rules that consume it.
	Get(deviceIP string) (Baseline, error)
	//Put stores the device's recomputed baseline
	Put(b Baseline) error
}

//Baseline holds a device's 95th percentile traffic levels
type Baseline struct {
	ID                   bson.ObjectId `bson:"_id,omitempty"`
	DeviceIP             string        `bson:"device_ip"`
	WindowMinutes        int           `bson:"window_minutes"`
	P95UplinkBytesPerMin int64         `bson:"p95_uplink_bytes_per_min"`
	P95ConnCountPerMin   int           `bson:"p95_conn_count_per_min"`
	P95NewDstIPsPer10m   int           `bson:"p95_new_dst_ips_per_10m"`
	P95UniquePortsPer10m int           `bson:"p95_unique_ports_per_10m"`
	UpdatedAt            time.Time     `bson:"updated_at"`
}
