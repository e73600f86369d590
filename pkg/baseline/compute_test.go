package baseline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/netmon-dev/netmon/pkg/minute"
)

func TestPercentileNearestRank(t *testing.T) {
	values := []int64{100, 200, 300, 400, 500, 600, 700, 800, 900, 1000}
	assert.EqualValues(t, 1000, Percentile(values, 0.95))
	assert.EqualValues(t, 600, Percentile(values, 0.5))
	assert.EqualValues(t, 100, Percentile(values, 0))
}

func TestPercentileEmptyInput(t *testing.T) {
	assert.EqualValues(t, 0, Percentile(nil, 0.95))
}

func TestPercentileSingleValue(t *testing.T) {
	assert.EqualValues(t, 42, Percentile([]int64{42}, 0.95))
}

func TestRollingSumTrailingWindow(t *testing.T) {
	sums := rollingSum([]int64{1, 2, 3, 4, 5}, 3)
	assert.Equal(t, []int64{1, 3, 6, 9, 12}, sums)
}

func TestRollingMaxTrailingWindow(t *testing.T) {
	maxes := rollingMax([]int64{5, 1, 2, 7, 3}, 3)
	assert.Equal(t, []int64{5, 5, 5, 7, 7}, maxes)
}

func TestComputeEmptyMinutesYieldsZeroBaseline(t *testing.T) {
	now := time.Now()
	b := Compute("10.0.0.24", nil, now)

	assert.Equal(t, "10.0.0.24", b.DeviceIP)
	assert.EqualValues(t, 0, b.P95UplinkBytesPerMin)
	assert.Equal(t, 0, b.P95ConnCountPerMin)
	assert.Equal(t, 0, b.P95NewDstIPsPer10m)
	assert.Equal(t, 0, b.P95UniquePortsPer10m)
	assert.Equal(t, WindowMinutes, b.WindowMinutes)
	assert.Equal(t, now, b.UpdatedAt)
}

func TestComputeFromMinutes(t *testing.T) {
	base := time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)
	var minutes []minute.DeviceMinute
	for i := 0; i < 10; i++ {
		minutes = append(minutes, minute.DeviceMinute{
			DeviceIP:       "10.0.0.24",
			BucketTS:       base.Add(time.Duration(i) * time.Minute),
			ConnCount:      i + 1,
			UplinkBytes:    int64((i + 1) * 100),
			NewDstIPs:      1,
			UniqueDstPorts: i + 1,
		})
	}

	b := Compute("10.0.0.24", minutes, base.Add(10*time.Minute))
	assert.EqualValues(t, 1000, b.P95UplinkBytesPerMin)
	assert.Equal(t, 10, b.P95ConnCountPerMin)
	assert.Equal(t, 10, b.P95NewDstIPsPer10m)
	assert.Equal(t, 10, b.P95UniquePortsPer10m)
}
