//go:build integration

package connection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netmon-dev/netmon/resources"
)

func testObservation(bytes int64) Observation {
	return Observation{
		Proto:   "tcp",
		SrcIP:   "10.0.0.24",
		SrcPort: 51000,
		DstIP:   "93.184.216.34",
		DstPort: 443,
		State:   "ESTABLISHED",
		Counters: Counters{
			UplinkBytes:   bytes,
			UplinkPackets: bytes / 100,
		},
	}
}

func TestUpsertTracksCounterShadows(t *testing.T) {
	res := resources.InitIntegrationTestingResources(t)
	testRepo := NewMongoRepository(res.DB, res.Config)
	require.NoError(t, testRepo.CreateIndexes())

	now := time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)

	conn, created, delta, err := testRepo.Upsert(testObservation(1200), now)
	require.NoError(t, err)
	assert.True(t, created)
	assert.EqualValues(t, 0, delta.UplinkBytes)
	assert.EqualValues(t, 1200, conn.UplinkBytes)
	assert.EqualValues(t, 1200, conn.LastUplinkBytes)

	conn, created, delta, err = testRepo.Upsert(testObservation(1800), now.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, created)
	assert.EqualValues(t, 600, delta.UplinkBytes)
	assert.EqualValues(t, 1800, conn.UplinkBytes)

	// a counter reset yields a clamped zero delta
	_, _, delta, err = testRepo.Upsert(testObservation(50), now.Add(2*time.Second))
	require.NoError(t, err)
	assert.EqualValues(t, 0, delta.UplinkBytes)
}

func TestSetScoreAndDeleteMissing(t *testing.T) {
	res := resources.InitIntegrationTestingResources(t)
	testRepo := NewMongoRepository(res.DB, res.Config)
	require.NoError(t, testRepo.CreateIndexes())

	now := time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)
	obs := testObservation(1200)

	conn, _, _, err := testRepo.Upsert(obs, now)
	require.NoError(t, err)

	require.NoError(t, testRepo.SetScore(conn.TupleKey, 65, `[{"code":"NEW_DST"}]`))

	deleted, err := testRepo.DeleteMissing([]string{"tcp|10.0.0.1|1|2.2.2.2|2"})
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
}
