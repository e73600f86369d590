package remotehost

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

	db := session.DB(r.database.GetSelectedDB())

	hostIndexes := []mgo.Index{
		{Key: []string{"ip"}, Unique: true},
		{Key: []string{"first_seen_at"}},
		{Key: []string{"tag"}},
	}
	for _, index := range hostIndexes {
		if err := db.C(r.config.T.Structure.RemoteHostTable).EnsureIndex(index); err != nil {
			return err
		}
	}

	portIndexes := []mgo.Index{
		{Key: []string{"host_ip", "dst_port"}, Unique: true},
	}
	for _, index := range portIndexes {
		if err := db.C(r.config.T.Structure.RemoteHostPortTable).EnsureIndex(index); err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) Upsert(ip string, now time.Time) (RemoteHost, bool, error) {
	session := r.database.Session.Copy()
	defer session.Close()

	coll := session.DB(r.database.GetSelectedDB()).C(r.config.T.Structure.RemoteHostTable)

	var prev RemoteHost
	prevErr := coll.Find(bson.M{"ip": ip}).One(&prev)
	if prevErr != nil && prevErr != mgo.ErrNotFound {
		return RemoteHost{}, false, prevErr
	}

	query := bson.M{
		"$setOnInsert": bson.M{
			"ip":            ip,
			"first_seen_at": now,
			"tag":           TagUnknown,
		},
		"$set": bson.M{"last_seen_at": now},
	}

	info, err := coll.Upsert(bson.M{"ip": ip}, query)
	if err != nil {
		return RemoteHost{}, false, err
	}

	var result RemoteHost
	err = coll.Find(bson.M{"ip": ip}).One(&result)
	result.PrevLastSeenAt = prev.LastSeenAt
	return result, info.UpsertedId != nil, err
}

func (r *repo) SaveEnrichment(ip string, update EnrichmentUpdate) error {
	session := r.database.Session.Copy()
	defer session.Close()

	fields := bson.M{}
	if update.RDNSChecked {
		fields["rdns_name"] = update.RDNSName
		fields["rdns_checked_at"] = update.CheckedAt
	}
	if update.WhoisChecked {
		fields["whois_name"] = update.WhoisName
		fields["whois_raw_line"] = update.WhoisRawLine
		fields["whois_asn"] = update.WhoisASN
		fields["whois_checked_at"] = update.CheckedAt
	}
	if len(fields) == 0 {
		return nil
	}

	return session.DB(r.database.GetSelectedDB()).C(r.config.T.Structure.RemoteHostTable).
		Update(bson.M{"ip": ip}, bson.M{"$set": fields})
}

func (r *repo) TouchPort(ip string, dstPort int, now time.Time, countSighting bool) error {
	session := r.database.Session.Copy()
	defer session.Close()

	query := bson.M{
		"$setOnInsert": bson.M{
			"host_ip":       ip,
			"dst_port":      dstPort,
			"first_seen_at": now,
		},
		"$set": bson.M{"last_seen_at": now},
	}
	if countSighting {
		query["$inc"] = bson.M{"seen_count": 1}
	}

	_, err := session.DB(r.database.GetSelectedDB()).C(r.config.T.Structure.RemoteHostPortTable).
		Upsert(bson.M{"host_ip": ip, "dst_port": dstPort}, query)
	return err
}

func (r *repo) IPsWithASN(value string) ([]string, error) {
	session := r.database.Session.Copy()
	defer session.Close()

	var ips []string
	err := session.DB(r.database.GetSelectedDB()).C(r.config.T.Structure.RemoteHostTable).
		Find(bson.M{"$or": []bson.M{
			{"whois_asn": value},
			{"whois_name": value},
		}}).Distinct("ip", &ips)
	return ips, err
}

func (r *repo) All() ([]RemoteHost, error) {
	session := r.database.Session.Copy()
	defer session.Close()

	var hosts []RemoteHost
	err := session.DB(r.database.GetSelectedDB()).C(r.config.T.Structure.RemoteHostTable).
		Find(nil).Sort("-last_seen_at").All(&hosts)
	return hosts, err
}

func (r *repo) CountFirstSeenSince(since time.Time) (int, error) {
	session := r.database.Session.Copy()
	defer session.Close()

	return session.DB(r.database.GetSelectedDB()).C(r.config.T.Structure.RemoteHostTable).
		Find(bson.M{"first_seen_at": bson.M{"$gte": since}}).Count()
}

func (r *repo) DistinctASNsFirstSeenSince(since time.Time) ([]string, error) {
	session := r.database.Session.Copy()
	defer session.Close()

	var asns []string
	err := session.DB(r.database.GetSelectedDB()).C(r.config.T.Structure.RemoteHostTable).
		Find(bson.M{
			"first_seen_at": bson.M{"$gte": since},
			"whois_asn":     bson.M{"$nin": []interface{}{nil, ""}},
		}).Distinct("whois_asn", &asns)
	return asns, err
}
