package incident

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

	hitIndexes := []mgo.Index{
		{Key: []string{"fingerprint", "-suppressed_until"}},
		{Key: []string{"-occurred_at"}},
		{Key: []string{"device_ip"}},
	}
	for _, index := range hitIndexes {
		if err := db.C(r.config.T.Anomaly.HitTable).EnsureIndex(index); err != nil {
			return err
		}
	}

	incidentIndexes := []mgo.Index{
		{Key: []string{"fingerprint", "-last_seen_at"}},
		{Key: []string{"-last_seen_at"}},
	}
	for _, index := range incidentIndexes {
		if err := db.C(r.config.T.Anomaly.IncidentTable).EnsureIndex(index); err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) HitSuppressed(fingerprint string, now time.Time) (bool, error) {
	session := r.database.Session.Copy()
	defer session.Close()

	count, err := session.DB(r.database.GetSelectedDB()).C(r.config.T.Anomaly.HitTable).
		Find(bson.M{
			"fingerprint":      fingerprint,
			"suppressed_until": bson.M{"$gt": now},
		}).Count()
	return count > 0, err
}

func (r *repo) RecordHit(hit Hit) error {
	session := r.database.Session.Copy()
	defer session.Close()

	return session.DB(r.database.GetSelectedDB()).C(r.config.T.Anomaly.HitTable).Insert(hit)
}

func (r *repo) UpsertIncident(upd Update, now time.Time, window time.Duration) (bool, error) {
	session := r.database.Session.Copy()
	defer session.Close()

	coll := session.DB(r.database.GetSelectedDB()).C(r.config.T.Anomaly.IncidentTable)

	var open Incident
	err := coll.Find(bson.M{
		"fingerprint":  upd.Fingerprint,
		"last_seen_at": bson.M{"$gte": now.Add(-window)},
	}).Sort("-last_seen_at").One(&open)

	if err == nil {
		return false, coll.UpdateId(open.ID, bson.M{
			"$inc": bson.M{"count": 1},
			"$set": bson.M{"last_seen_at": now},
			"$max": bson.M{"max_score": upd.Score},
		})
	}
	if err != mgo.ErrNotFound {
		return false, err
	}

	return true, coll.Insert(Incident{
		Fingerprint: upd.Fingerprint,
		DeviceIP:    upd.DeviceIP,
		DstIP:       upd.DstIP,
		DstPort:     upd.DstPort,
		Proto:       upd.Proto,
		CodesCSV:    upd.CodesCSV,
		FirstSeenAt: now,
		LastSeenAt:  now,
		Count:       1,
		MaxScore:    upd.Score,
	})
}

func (r *repo) Acknowledge(id bson.ObjectId, notes string, now time.Time) error {
	session := r.database.Session.Copy()
	defer session.Close()

	return session.DB(r.database.GetSelectedDB()).C(r.config.T.Anomaly.IncidentTable).
		UpdateId(id, bson.M{"$set": bson.M{
			"acknowledged_at": now,
			"ack_notes":       notes,
		}})
}

func (r *repo) ListIncidents(limit int) ([]Incident, error) {
	session := r.database.Session.Copy()
	defer session.Close()

	var results []Incident
	err := session.DB(r.database.GetSelectedDB()).C(r.config.T.Anomaly.IncidentTable).
		Find(nil).Sort("-last_seen_at").Limit(limit).All(&results)
	return results, err
}

func (r *repo) ListHits(limit int) ([]Hit, error) {
	session := r.database.Session.Copy()
	defer session.Close()

	var results []Hit
	err := session.DB(r.database.GetSelectedDB()).C(r.config.T.Anomaly.HitTable).
		Find(nil).Sort("-occurred_at").Limit(limit).All(&results)
	return results, err
}
