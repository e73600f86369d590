package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTestingConfigDefaults(t *testing.T) {
	conf, err := LoadTestingConfig("mongodb://localhost:27017")
	require.NoError(t, err)

	assert.Equal(t, []int{53, 80, 123, 443}, conf.S.Scoring.CommonPorts)
	assert.Equal(t, []string{"tcp", "udp"}, conf.S.Scoring.CommonProtos)
	assert.Equal(t, 600, conf.S.Scoring.NewWindowSeconds)
	assert.Equal(t, 30, conf.S.Scoring.DormantRemoteDays)
	assert.Equal(t, 70, conf.S.Alert.ThresholdScore)
	assert.Equal(t, []string{"NO_RDNS"}, conf.S.Alert.SuppressIfOnlyCodes)
	assert.Equal(t, "devices", conf.T.Structure.DeviceTable)
	assert.Equal(t, "incidents", conf.T.Anomaly.IncidentTable)
}

func TestRunningConfigParsesSubnets(t *testing.T) {
	conf, err := LoadTestingConfig("mongodb://localhost:27017")
	require.NoError(t, err)

	require.Len(t, conf.R.Filtering.LocalSubnets, 1)
	assert.Equal(t, "10.0.0.0/24", conf.R.Filtering.LocalSubnets[0].String())
	assert.Len(t, conf.R.Filtering.ExcludeSubnets, 5)
}

func TestStaticConfigOverrides(t *testing.T) {
	config := new(StaticCfg)
	require.NoError(t, parseStaticConfig([]byte(`
Scoring:
    CommonPorts: [22, 443]
    HighFanoutThreshold: 5
`), config))

	assert.Equal(t, []int{22, 443}, config.Scoring.CommonPorts)
	assert.Equal(t, 5, config.Scoring.HighFanoutThreshold)
}
