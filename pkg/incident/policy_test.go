package incident

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/netmon-dev/netmon/config"
)

func testAlertCfg() config.AlertStaticCfg {
	return config.AlertStaticCfg{
		ThresholdScore:        70,
		RequiredCodes:         []string{"RARE_PORT"},
		SuppressIfOnlyCodes:   []string{"NO_RDNS"},
		IncidentWindowSeconds: 600,
	}
}

func TestAlertableBelowThreshold(t *testing.T) {
	assert.False(t, Alertable(60, []string{"RARE_PORT"}, testAlertCfg()))
}

func TestAlertableMissingRequiredCode(t *testing.T) {
	assert.False(t, Alertable(90, []string{"NEW_DST"}, testAlertCfg()))
	assert.True(t, Alertable(90, []string{"NEW_DST", "RARE_PORT"}, testAlertCfg()))
}

func TestAlertableNoRequiredCodesConfigured(t *testing.T) {
	cfg := testAlertCfg()
	cfg.RequiredCodes = nil
	assert.True(t, Alertable(80, []string{"NEW_DST"}, cfg))
}

func TestAlertableSuppressIfOnly(t *testing.T) {
	cfg := testAlertCfg()
	cfg.RequiredCodes = nil
	assert.False(t, Alertable(90, []string{"NO_RDNS"}, cfg))
	assert.True(t, Alertable(90, []string{"NO_RDNS", "NEW_DST"}, cfg))
}
