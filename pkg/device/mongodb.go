package device

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

	coll := session.DB(r.database.GetSelectedDB()).C(r.config.T.Structure.DeviceTable)

	indexes := []mgo.Index{
		{Key: []string{"ip"}, Unique: true},
		{Key: []string{"last_seen_at"}},
	}

	for _, index := range indexes {
		err := coll.EnsureIndex(index)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) Upsert(ip string, now time.Time) (Device, bool, error) {
	session := r.database.Session.Copy()
	defer session.Close()

	coll := session.DB(r.database.GetSelectedDB()).C(r.config.T.Structure.DeviceTable)

	query := bson.M{
		"$setOnInsert": bson.M{
			"ip":            ip,
			"name":          ip,
			"first_seen_at": now,
		},
		"$set": bson.M{"last_seen_at": now},
	}

	info, err := coll.Upsert(bson.M{"ip": ip}, query)
	if err != nil {
		return Device{}, false, err
	}

	var result Device
	err = coll.Find(bson.M{"ip": ip}).One(&result)
	return result, info.UpsertedId != nil, err
}

func (r *repo) All() ([]Device, error) {
	session := r.database.Session.Copy()
	defer session.Close()

	var devices []Device
	err := session.DB(r.database.GetSelectedDB()).C(r.config.T.Structure.DeviceTable).
		Find(nil).Sort("ip").All(&devices)
	return devices, err
}
