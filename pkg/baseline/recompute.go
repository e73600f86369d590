package baseline

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/netmon-dev/netmon/pkg/device"
	"github.com/netmon-dev/netmon/pkg/minute"
)

//LookbackHours is how far back the recompute batch reads minute buckets
const LookbackHours = 24

//Recomputer rebuilds every device's baseline from its minute buckets
type Recomputer struct {
	devices   device.Repository
	minutes   minute.Repository
	baselines Repository
	log       *log.Logger
}

//NewRecomputer creates a baseline Recomputer
func NewRecomputer(devices device.Repository, minutes minute.Repository, baselines Repository, logger *log.Logger) *Recomputer {
	return &Recomputer{
		devices:   devices,
		minutes:   minutes,
		baselines: baselines,
		log:       logger,
	}
}

//Run recomputes baselines for every known device and returns how many
//were written. progress, when not nil, is called once per device.
func (r *Recomputer) Run(now time.Time, progress func()) (int, error) {
	devices, err := r.devices.All()
	if err != nil {
		return 0, err
	}

	written := 0
	for _, dev := range devices {
		if err := r.RecomputeDevice(dev.IP, now); err != nil {
			return written, err
		}
		written++
		if progress != nil {
			progress()
		}
	}
	return written, nil
}

//RecomputeDevice rebuilds one device's baseline
func (r *Recomputer) RecomputeDevice(deviceIP string, now time.Time) error {
	since := now.Add(-LookbackHours * time.Hour)
	minutes, err := r.minutes.DeviceRange(deviceIP, since)
	if err != nil {
		return err
	}

	b := Compute(deviceIP, minutes, now)
	if err := r.baselines.Put(b); err != nil {
		return err
	}

	r.log.WithFields(log.Fields{
		"device":              deviceIP,
		"minutes":             len(minutes),
		"p95_uplink_bytes":    b.P95UplinkBytesPerMin,
		"p95_new_dst_per_10m": b.P95NewDstIPsPer10m,
	}).Debug("recomputed device baseline")
	return nil
}
