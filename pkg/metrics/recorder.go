package metrics

import (
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/netmon-dev/netmon/pkg/connection"
	"github.com/netmon-dev/netmon/pkg/remotehost"
)

//SampleInterval bounds how often RecordIfDue writes a sample
const SampleInterval = 60 * time.Second

//baselineWindow is the sample span the p95 reference is computed over
const baselineWindow = 7 * 24 * time.Hour

//baselineSampleLimit caps how many samples feed the p95 reference
const baselineSampleLimit = 2000

//Recorder periodically captures the global traffic counters into the
//metric sample series
type Recorder struct {
	samples Repository
	hosts   remotehost.Repository
	conns   connection.Repository
	log     *log.Logger
}

//NewRecorder creates a metrics Recorder
func NewRecorder(samples Repository, hosts remotehost.Repository, conns connection.Repository, logger *log.Logger) *Recorder {
	return &Recorder{
		samples: samples,
		hosts:   hosts,
		conns:   conns,
		log:     logger,
	}
}

//RecordIfDue writes a sample unless one was captured within the sample
//interval. Returns true when a sample was written.
func (r *Recorder) RecordIfDue(now time.Time) (bool, error) {
	last, err := r.samples.LastCapturedAt()
	if err != nil {
		return false, err
	}
	if !last.IsZero() && !last.Before(now.Add(-SampleInterval)) {
		return false, nil
	}

	_, err = r.Record(now)
	return err == nil, err
}

//Record captures and stores one sample
func (r *Recorder) Record(now time.Time) (Sample, error) {
	sample, err := r.buildSample(now)
	if err != nil {
		return Sample{}, err
	}
	return sample, r.samples.Insert(sample)
}

func (r *Recorder) buildSample(now time.Time) (Sample, error) {
	window10m := now.Add(-10 * time.Minute)
	window1h := now.Add(-time.Hour)

	newDst, err := r.hosts.CountFirstSeenSince(window10m)
	if err != nil {
		return Sample{}, err
	}

	window, err := r.conns.Window(window10m)
	if err != nil {
		return Sample{}, err
	}

	asns, err := r.hosts.DistinctASNsFirstSeenSince(window1h)
	if err != nil {
		return Sample{}, err
	}

	baselineP95, err := r.baselineP95Uplink(now)
	if err != nil {
		return Sample{}, err
	}

	return Sample{
		CapturedAt:          now,
		NewDstIPsLast10m:    newDst,
		UniqueDportsLast10m: window.UniqueDstPorts,
		UplinkBytesLast10m:  window.UplinkBytes,
		BaselineP95Uplink:   baselineP95,
		NewASNsLast1h:       len(asns),
	}, nil
}

//baselineP95Uplink is the round-rank p95 of the trailing week of
//uplink samples
func (r *Recorder) baselineP95Uplink(now time.Time) (int64, error) {
	values, err := r.samples.RecentUplinkValues(now.Add(-baselineWindow), baselineSampleLimit)
	if err != nil {
		return 0, err
	}
	return roundRankPercentile(values, 0.95), nil
}

//roundRankPercentile rounds the fractional rank to the nearest index
//rather than taking the ceiling, matching the sample series' reference
func roundRankPercentile(values []int64, p float64) int64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]int64, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	rank := int(float64(len(sorted)-1)*p + 0.5)
	return sorted[rank]
}
