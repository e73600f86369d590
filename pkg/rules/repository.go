package rules

import (
	"errors"
	"time"

	"github.com/globalsign/mgo/bson"

	"github.com/netmon-dev/netmon/util"
)

//Rule kinds. A rule's value is interpreted according to its kind.
const (
	KindIP         = "ip"
	KindASN        = "asn"
	KindOrg        = "org"
	KindRDNSSuffix = "rdns_suffix"
	KindPort       = "port"
	KindDevicePort = "device_port"
)

//ValidKinds lists every accepted rule kind
var ValidKinds = []string{KindIP, KindASN, KindOrg, KindRDNSSuffix, KindPort, KindDevicePort}

//ErrInvalidKind is returned when a rule is created with an unknown kind
var ErrInvalidKind = errors.New("invalid rule kind")

//ErrEmptyValue is returned when a rule is created without a value
var ErrEmptyValue = errors.New("rule value must not be empty")

//Repository for the allowlist and suppression rule collections
type Repository interface {
	CreateIndexes() error
	//AddAllowlist creates an allowlist rule. deviceIP scopes the rule to
	//one device; empty means every device.
	AddAllowlist(kind, value, deviceIP, notes string) error
	//AddSuppression creates a suppression rule for one reason code
	AddSuppression(code, kind, value, deviceIP, notes string) error
	//Allowed reports whether an allowlist rule matches (kind, value) for
	//the device
	Allowed(kind, value, deviceIP string) (bool, error)
	//Suppressed reports whether a suppression rule matches (code, kind,
	//value) for the device
	Suppressed(code, kind, value, deviceIP string) (bool, error)
	ListAllowlist() ([]AllowlistRule, error)
	ListSuppression() ([]SuppressionRule, error)
}

//AllowlistRule marks a pattern as known benign
type AllowlistRule struct {
	ID        bson.ObjectId `bson:"_id,omitempty"`
	Kind      string        `bson:"kind"`
	Value     string        `bson:"value"`
	DeviceIP  string        `bson:"device_ip"`
	Notes     string        `bson:"notes"`
	CreatedAt time.Time     `bson:"created_at"`
}

//SuppressionRule removes one reason code from findings matching a pattern
type SuppressionRule struct {
	ID        bson.ObjectId `bson:"_id,omitempty"`
	Code      string        `bson:"code"`
	Kind      string        `bson:"kind"`
	Value     string        `bson:"value"`
	DeviceIP  string        `bson:"device_ip"`
	Notes     string        `bson:"notes"`
	CreatedAt time.Time     `bson:"created_at"`
}

func validate(kind, value string) error {
	if !util.StringInSlice(kind, ValidKinds) {
		return ErrInvalidKind
	}
	if value == "" {
		return ErrEmptyValue
	}
	return nil
}
