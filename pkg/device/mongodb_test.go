//go:build integration

package device

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netmon-dev/netmon/resources"
)

func TestUpsertDevice(t *testing.T) {
	res := resources.InitIntegrationTestingResources(t)
	testRepo := NewMongoRepository(res.DB, res.Config)
	require.NoError(t, testRepo.CreateIndexes())

	now := time.Date(2026, 2, 3, 12, 0, 0, 0, time.UTC)
	later := now.Add(time.Minute)

	created, wasNew, err := testRepo.Upsert("10.0.0.24", now)
	require.NoError(t, err)
	assert.True(t, wasNew)
	assert.Equal(t, "10.0.0.24", created.IP)
	assert.Equal(t, "10.0.0.24", created.Name)
	assert.Equal(t, now, created.FirstSeenAt.UTC())

	updated, wasNew, err := testRepo.Upsert("10.0.0.24", later)
	require.NoError(t, err)
	assert.False(t, wasNew)
	assert.Equal(t, now, updated.FirstSeenAt.UTC())
	assert.Equal(t, later, updated.LastSeenAt.UTC())
}
