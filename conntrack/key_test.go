package conntrack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntryKey(t *testing.T) {
	entry := &Entry{
		Proto: "tcp",
		Orig: Tuple{
			Src:     "10.0.0.24",
			Dst:     "192.82.242.219",
			SrcPort: 60004,
			DstPort: 443,
		},
	}

	assert.Equal(t, "tcp|10.0.0.24|60004|192.82.242.219|443", entry.Key())
}

func TestTupleKeyMatchesEntryKey(t *testing.T) {
	entry := &Entry{
		Proto: "udp",
		Orig:  Tuple{Src: "10.0.0.5", Dst: "8.8.8.8", SrcPort: 5353, DstPort: 53},
	}

	assert.Equal(t, TupleKey("udp", "10.0.0.5", 5353, "8.8.8.8", 53), entry.Key())
}
