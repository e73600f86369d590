package util

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsIP(t *testing.T) {
	assert.True(t, IsIP("192.168.1.1"))
	assert.False(t, IsIP("not an ip"))
}

func TestParseSubnets(t *testing.T) {
	// single IPs should be treated as /32 ranges
	parsed, err := ParseSubnets([]string{"10.0.0.1", "1.2.0.0/16"})
	assert.NoError(t, err)
	assert.Len(t, parsed, 2)
	assert.Equal(t, "10.0.0.1/32", parsed[0].String())
	assert.Equal(t, "1.2.0.0/16", parsed[1].String())

	_, err = ParseSubnets([]string{"garbage"})
	assert.Error(t, err)
}

func TestContainsIP(t *testing.T) {
	subnets, err := ParseSubnets([]string{"10.0.0.0/24", "172.16.0.0/12"})
	assert.NoError(t, err)

	assert.True(t, ContainsIP(subnets, net.ParseIP("10.0.0.24")))
	assert.True(t, ContainsIP(subnets, net.ParseIP("172.20.1.1")))
	assert.False(t, ContainsIP(subnets, net.ParseIP("192.82.242.219")))
}
