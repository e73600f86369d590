package metrics

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

	return session.DB(r.database.GetSelectedDB()).C(r.config.T.Metrics.SampleTable).
		EnsureIndex(mgo.Index{Key: []string{"-captured_at"}})
}

func (r *repo) LastCapturedAt() (time.Time, error) {
	session := r.database.Session.Copy()
	defer session.Close()

	var last Sample
	err := session.DB(r.database.GetSelectedDB()).C(r.config.T.Metrics.SampleTable).
		Find(nil).Sort("-captured_at").One(&last)
	if err == mgo.ErrNotFound {
		return time.Time{}, nil
	}
	return last.CapturedAt, err
}

func (r *repo) Insert(sample Sample) error {
	session := r.database.Session.Copy()
	defer session.Close()

	return session.DB(r.database.GetSelectedDB()).C(r.config.T.Metrics.SampleTable).Insert(sample)
}

func (r *repo) RecentUplinkValues(since time.Time, limit int) ([]int64, error) {
	session := r.database.Session.Copy()
	defer session.Close()

	var samples []Sample
	err := session.DB(r.database.GetSelectedDB()).C(r.config.T.Metrics.SampleTable).
		Find(bson.M{"captured_at": bson.M{"$gte": since}}).
		Sort("-captured_at").Limit(limit).All(&samples)
	if err != nil {
		return nil, err
	}

	values := make([]int64, len(samples))
	for i, sample := range samples {
		values[i] = sample.UplinkBytesLast10m
	}
	return values, nil
}

func (r *repo) Series(limit int) ([]Sample, error) {
	session := r.database.Session.Copy()
	defer session.Close()

	var samples []Sample
	err := session.DB(r.database.GetSelectedDB()).C(r.config.T.Metrics.SampleTable).
		Find(nil).Sort("-captured_at").Limit(limit).All(&samples)
	if err != nil {
		return nil, err
	}

	// reverse into ascending capture order
	for i, j := 0, len(samples)-1; i < j; i, j = i+1, j-1 {
		samples[i], samples[j] = samples[j], samples[i]
	}
	return samples, nil
}
