package commands

import (
	"testing"

	"github.com/blang/semver"
	"github.com/stretchr/testify/assert"
)

func TestVersionDiffIndex(t *testing.T) {
	v1 := semver.Version{Major: 2, Minor: 0, Patch: 0}
	v2 := semver.Version{Major: 1, Minor: 9, Patch: 9}
	assert.Equal(t, 0, versionDiffIndex(v1, v2))

	v1 = semver.Version{Major: 1, Minor: 10, Patch: 0}
	assert.Equal(t, 1, versionDiffIndex(v1, v2))

	v1 = semver.Version{Major: 1, Minor: 9, Patch: 10}
	assert.Equal(t, 2, versionDiffIndex(v1, v2))
}

func TestInformUser(t *testing.T) {
	local := semver.Version{Major: 1, Minor: 0, Patch: 0}
	remote := semver.Version{Major: 1, Minor: 1, Patch: 0}
	notice := informUser(local, remote)
	assert.Contains(t, notice, "Minor")
	assert.Contains(t, notice, "1.1.0")
}
