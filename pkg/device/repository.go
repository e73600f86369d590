package device

import (
	"time"

	"github.com/globalsign/mgo/bson"
)

//Repository for the devices collection
type Repository interface {
	CreateIndexes() error
	//Upsert creates or refreshes the device observed at ip. The boolean
	//is true when the device was created by this call.
	Upsert(ip string, now time.Time) (Device, bool, error)
	All() ([]Device, error)
}

//Device is a local machine observed originating outbound flows
type Device struct {
	ID          bson.ObjectId `bson:"_id,omitempty"`
	IP          string        `bson:"ip"`
	Name        string        `bson:"name"`
	FirstSeenAt time.Time     `bson:"first_seen_at"`
	LastSeenAt  time.Time     `bson:"last_seen_at"`
}
