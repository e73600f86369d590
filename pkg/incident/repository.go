package incident

import (
	"time"

	"github.com/globalsign/mgo/bson"
)

//Repository for the anomaly_hits and incidents collections
type Repository interface {
	CreateIndexes() error
	//HitSuppressed reports whether a recent hit with the same
	//fingerprint is still inside its dedup window
	HitSuppressed(fingerprint string, now time.Time) (bool, error)
	//RecordHit stores one raw scored finding
	RecordHit(hit Hit) error
	//UpsertIncident extends the open incident matching the fingerprint
	//when its last sighting is inside the window, otherwise creates a
	//new incident. Returns true when a new incident was created.
	UpsertIncident(upd Update, now time.Time, window time.Duration) (bool, error)
	//Acknowledge marks an incident as reviewed
	Acknowledge(id bson.ObjectId, notes string, now time.Time) error
	ListIncidents(limit int) ([]Incident, error)
	ListHits(limit int) ([]Hit, error)
}

//Hit is one raw scored finding
type Hit struct {
	ID              bson.ObjectId `bson:"_id,omitempty"`
	OccurredAt      time.Time     `bson:"occurred_at"`
	DeviceIP        string        `bson:"device_ip"`
	RemoteHostIP    string        `bson:"remote_host_ip"`
	Proto           string        `bson:"proto"`
	SrcIP           string        `bson:"src_ip"`
	DstIP           string        `bson:"dst_ip"`
	DstPort         int           `bson:"dst_port"`
	Score           int           `bson:"score"`
	TotalBytes      int64         `bson:"total_bytes"`
	Summary         string        `bson:"summary"`
	ReasonsJSON     string        `bson:"reasons_json"`
	Fingerprint     string        `bson:"fingerprint"`
	Alertable       bool          `bson:"alertable"`
	SuppressedUntil time.Time     `bson:"suppressed_until"`
}

//Incident is a deduplicated group of alertable findings
type Incident struct {
	ID             bson.ObjectId `bson:"_id,omitempty"`
	Fingerprint    string        `bson:"fingerprint"`
	DeviceIP       string        `bson:"device_ip"`
	DstIP          string        `bson:"dst_ip"`
	DstPort        int           `bson:"dst_port"`
	Proto          string        `bson:"proto"`
	CodesCSV       string        `bson:"codes_csv"`
	FirstSeenAt    time.Time     `bson:"first_seen_at"`
	LastSeenAt     time.Time     `bson:"last_seen_at"`
	Count          int           `bson:"count"`
	MaxScore       int           `bson:"max_score"`
	AcknowledgedAt time.Time     `bson:"acknowledged_at,omitempty"`
	AckNotes       string        `bson:"ack_notes"`
}

//Update carries the fields an incident upsert writes
type Update struct {
	Fingerprint string
	DeviceIP    string
	DstIP       string
	DstPort     int
	Proto       string
	CodesCSV    string
	Score       int
}
