package metrics

import (
	"time"

	"github.com/globalsign/mgo/bson"
)

//Repository for the metric_samples collection
type Repository interface {
	CreateIndexes() error
	//LastCapturedAt returns the newest sample time, or the zero time
	//when no samples exist
	LastCapturedAt() (time.Time, error)
	Insert(sample Sample) error
	//RecentUplinkValues returns the uplink field of up to limit samples
	//captured since the given time, newest first
	RecentUplinkValues(since time.Time, limit int) ([]int64, error)
	//Series returns up to limit samples in ascending capture order
	Series(limit int) ([]Sample, error)
}

//Sample is one point of the global traffic time series
type Sample struct {
	ID                  bson.ObjectId `bson:"_id,omitempty"`
	CapturedAt          time.Time     `bson:"captured_at"`
	NewDstIPsLast10m    int           `bson:"new_dst_ips_last_10m"`
	UniqueDportsLast10m int           `bson:"unique_dports_last_10m"`
	UplinkBytesLast10m  int64         `bson:"uplink_bytes_last_10m"`
	BaselineP95Uplink   int64         `bson:"baseline_p95_uplink_bytes_last_10m"`
	NewASNsLast1h       int           `bson:"new_asns_last_1h"`
}
