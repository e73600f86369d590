package remotehost

import (
	"time"

	"github.com/globalsign/mgo/bson"
)

//Tag values a user can assign to a remote host
const (
	TagUnknown   = "unknown"
	TagKnownGood = "known_good"
	TagSuspicious = "suspicious"
)

//Repository for the remote_hosts collection
type Repository interface {
	CreateIndexes() error
	//Upsert creates or refreshes the remote host observed at ip. The
	//boolean is true when the host was created by this call.
	Upsert(ip string, now time.Time) (RemoteHost, bool, error)
	//SaveEnrichment persists refreshed rDNS/WHOIS lookup results
	SaveEnrichment(ip string, update EnrichmentUpdate) error
	//TouchPort rolls a (host, dst port) sighting into remote_host_ports
	TouchPort(ip string, dstPort int, now time.Time, countSighting bool) error
	//IPsWithASN lists hosts whose ASN or WHOIS organization equals value
	IPsWithASN(value string) ([]string, error)
	//All lists every known remote host, most recently seen first
	All() ([]RemoteHost, error)
	CountFirstSeenSince(since time.Time) (int, error)
	DistinctASNsFirstSeenSince(since time.Time) ([]string, error)
}

//RemoteHost is a non-local endpoint contacted by a device
type RemoteHost struct {
	ID             bson.ObjectId `bson:"_id,omitempty"`
	IP             string        `bson:"ip"`
	FirstSeenAt    time.Time     `bson:"first_seen_at"`
	LastSeenAt     time.Time     `bson:"last_seen_at"`
	RDNSName       string        `bson:"rdns_name"`
	WhoisName      string        `bson:"whois_name"`
	WhoisRawLine   string        `bson:"whois_raw_line"`
	WhoisASN       string        `bson:"whois_asn"`
	RDNSCheckedAt  time.Time     `bson:"rdns_checked_at"`
	WhoisCheckedAt time.Time     `bson:"whois_checked_at"`
	Tag            string        `bson:"tag"`
	Notes          string        `bson:"notes"`
	//PrevLastSeenAt is the last_seen_at value before the upsert that
	//produced this struct. Zero for a host created by that upsert.
	PrevLastSeenAt time.Time `bson:"-"`
}

//EnrichmentUpdate carries refreshed lookup results for a host.
//Only the sections whose Checked flag is set are written.
type EnrichmentUpdate struct {
	RDNSName     string
	RDNSChecked  bool
	WhoisName    string
	WhoisRawLine string
	WhoisASN     string
	WhoisChecked bool
	CheckedAt    time.Time
}

//ASN returns the host's ASN, falling back to the WHOIS organization
//name when no ASN was parsed
func (h *RemoteHost) ASN() string {
	if h.WhoisASN != "" {
		return h.WhoisASN
	}
	return h.WhoisName
}

//Port is a per (host, destination port) sighting rollup
type Port struct {
	ID          bson.ObjectId `bson:"_id,omitempty"`
	HostIP      string        `bson:"host_ip"`
	DstPort     int           `bson:"dst_port"`
	FirstSeenAt time.Time     `bson:"first_seen_at"`
	LastSeenAt  time.Time     `bson:"last_seen_at"`
	SeenCount   int64         `bson:"seen_count"`
}
