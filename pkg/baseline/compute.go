package baseline

import (
	"sort"
	"time"

	"github.com/netmon-dev/netmon/pkg/minute"
	"github.com/netmon-dev/netmon/util"
)

//WindowMinutes is the bucket span a baseline summarizes
const WindowMinutes = 60

//rollingWindow is the span, in buckets, of the fanout and port windows
const rollingWindow = 10

//Compute derives a device's baseline from its minute buckets. Buckets
//must be in ascending bucket order. An empty slice yields a zero
//baseline.
func Compute(deviceIP string, minutes []minute.DeviceMinute, now time.Time) Baseline {
	uplink := make([]int64, len(minutes))
	conns := make([]int64, len(minutes))
	newDst := make([]int64, len(minutes))
	ports := make([]int64, len(minutes))
	for i, m := range minutes {
		uplink[i] = m.UplinkBytes
		conns[i] = int64(m.ConnCount)
		newDst[i] = int64(m.NewDstIPs)
		ports[i] = int64(m.UniqueDstPorts)
	}

	return Baseline{
		DeviceIP:             deviceIP,
		WindowMinutes:        WindowMinutes,
		P95UplinkBytesPerMin: Percentile(uplink, 0.95),
		P95ConnCountPerMin:   int(Percentile(conns, 0.95)),
		P95NewDstIPsPer10m:   int(Percentile(rollingSum(newDst, rollingWindow), 0.95)),
		P95UniquePortsPer10m: int(Percentile(rollingMax(ports, rollingWindow), 0.95)),
		UpdatedAt:            now,
	}
}

//Percentile returns the nearest-rank percentile of values, where rank is
//the ceiling of p times the last index of the ascending sort
func Percentile(values []int64, p float64) int64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]int64, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	rank := int(float64(len(sorted)-1) * p)
	if float64(rank) < float64(len(sorted)-1)*p {
		rank++
	}
	return sorted[rank]
}

//rollingSum returns, for each index, the sum of the trailing window
func rollingSum(values []int64, window int) []int64 {
	if len(values) == 0 {
		return nil
	}
	sums := make([]int64, len(values))
	for i := range values {
		start := util.Max(i-window+1, 0)
		var sum int64
		for _, v := range values[start : i+1] {
			sum += v
		}
		sums[i] = sum
	}
	return sums
}

//rollingMax returns, for each index, the maximum of the trailing window
func rollingMax(values []int64, window int) []int64 {
	if len(values) == 0 {
		return nil
	}
	maxes := make([]int64, len(values))
	for i := range values {
		start := util.Max(i-window+1, 0)
		max := values[start]
		for _, v := range values[start : i+1] {
			if v > max {
				max = v
			}
		}
		maxes[i] = max
	}
	return maxes
}
