package rules

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

	err := db.C(r.config.T.Anomaly.AllowlistTable).EnsureIndex(mgo.Index{
		Key: []string{"kind", "value", "device_ip"},
	})
	if err != nil {
		return err
	}

	return db.C(r.config.T.Anomaly.SuppressionTable).EnsureIndex(mgo.Index{
		Key: []string{"code", "kind", "value", "device_ip"},
	})
}

func (r *repo) AddAllowlist(kind, value, deviceIP, notes string) error {
	if err := validate(kind, value); err != nil {
		return err
	}

	session := r.database.Session.Copy()
	defer session.Close()

	return session.DB(r.database.GetSelectedDB()).C(r.config.T.Anomaly.AllowlistTable).
		Insert(AllowlistRule{
			Kind:      kind,
			Value:     value,
			DeviceIP:  deviceIP,
			Notes:     notes,
			CreatedAt: time.Now(),
		})
}

func (r *repo) AddSuppression(code, kind, value, deviceIP, notes string) error {
	if code == "" {
		return ErrEmptyValue
	}
	if err := validate(kind, value); err != nil {
		return err
	}

	session := r.database.Session.Copy()
	defer session.Close()

	return session.DB(r.database.GetSelectedDB()).C(r.config.T.Anomaly.SuppressionTable).
		Insert(SuppressionRule{
			Code:      code,
			Kind:      kind,
			Value:     value,
			DeviceIP:  deviceIP,
			Notes:     notes,
			CreatedAt: time.Now(),
		})
}

//deviceScope matches rules bound to the device or bound to no device
func deviceScope(deviceIP string) bson.M {
	return bson.M{"$in": []string{"", deviceIP}}
}

func (r *repo) Allowed(kind, value, deviceIP string) (bool, error) {
	session := r.database.Session.Copy()
	defer session.Close()

	count, err := session.DB(r.database.GetSelectedDB()).C(r.config.T.Anomaly.AllowlistTable).
		Find(bson.M{"kind": kind, "value": value, "device_ip": deviceScope(deviceIP)}).Count()
	return count > 0, err
}

func (r *repo) Suppressed(code, kind, value, deviceIP string) (bool, error) {
	session := r.database.Session.Copy()
	defer session.Close()

	count, err := session.DB(r.database.GetSelectedDB()).C(r.config.T.Anomaly.SuppressionTable).
		Find(bson.M{"code": code, "kind": kind, "value": value, "device_ip": deviceScope(deviceIP)}).Count()
	return count > 0, err
}

func (r *repo) ListAllowlist() ([]AllowlistRule, error) {
	session := r.database.Session.Copy()
	defer session.Close()

	var results []AllowlistRule
	err := session.DB(r.database.GetSelectedDB()).C(r.config.T.Anomaly.AllowlistTable).
		Find(nil).Sort("kind", "value").All(&results)
	return results, err
}

func (r *repo) ListSuppression() ([]SuppressionRule, error) {
	session := r.database.Session.Copy()
	defer session.Close()

	var results []SuppressionRule
	err := session.DB(r.database.GetSelectedDB()).C(r.config.T.Anomaly.SuppressionTable).
		Find(nil).Sort("code", "kind", "value").All(&results)
	return results, err
}
