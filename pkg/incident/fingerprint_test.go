package incident

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintSortsAndDeduplicatesCodes(t *testing.T) {
	fp := Fingerprint("10.0.0.24", "203.0.113.10", 4444, "tcp",
		[]string{"RARE_PORT", "NEW_DST", "RARE_PORT"}, nil)
	assert.Equal(t, "10.0.0.24|203.0.113.10|4444|tcp|NEW_DST,RARE_PORT", fp)
}

func TestFingerprintDropsNoiseCode(t *testing.T) {
	fp := Fingerprint("10.0.0.24", "203.0.113.10", 4444, "tcp",
		[]string{"NO_RDNS", "RARE_PORT"}, nil)
	assert.Equal(t, "10.0.0.24|203.0.113.10|4444|tcp|RARE_PORT", fp)
}

func TestFingerprintRequiredCodesIntersection(t *testing.T) {
	fp := Fingerprint("10.0.0.24", "203.0.113.10", 4444, "tcp",
		[]string{"NEW_DST", "RARE_PORT"}, []string{"RARE_PORT"})
	assert.Equal(t, "10.0.0.24|203.0.113.10|4444|tcp|RARE_PORT", fp)

	// no intersection falls back to the full code set
	fp = Fingerprint("10.0.0.24", "203.0.113.10", 4444, "tcp",
		[]string{"NEW_DST"}, []string{"RARE_PORT"})
	assert.Equal(t, "10.0.0.24|203.0.113.10|4444|tcp|NEW_DST", fp)
}

func TestDeviceFingerprint(t *testing.T) {
	assert.Equal(t, "DEVICE|10.0.0.24|HIGH_FANOUT", DeviceFingerprint("10.0.0.24", "HIGH_FANOUT"))
}
