package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMinMax(t *testing.T) {
	assert.Equal(t, 1, Min(1, 2))
	assert.Equal(t, 2, Max(1, 2))
	assert.Equal(t, int64(200), MaxInt64(100, 200))
}

func TestStringInSlice(t *testing.T) {
	assert.True(t, StringInSlice("tcp", []string{"tcp", "udp"}))
	assert.False(t, StringInSlice("icmp", []string{"tcp", "udp"}))
}

func TestIntInSlice(t *testing.T) {
	assert.True(t, IntInSlice(443, []int{53, 80, 443}))
	assert.False(t, IntInSlice(4444, []int{53, 80, 443}))
}

func TestTruncateToMinute(t *testing.T) {
	ts := time.Date(2026, 2, 6, 12, 30, 45, 999, time.UTC)
	assert.Equal(t, time.Date(2026, 2, 6, 12, 30, 0, 0, time.UTC), TruncateToMinute(ts))
}
