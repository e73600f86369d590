package connection

import "github.com/netmon-dev/netmon/util"

//Counters holds the four conntrack byte/packet counters of a flow
type Counters struct {
	UplinkBytes     int64
	DownlinkBytes   int64
	UplinkPackets   int64
	DownlinkPackets int64
}

//Positive is true when any counter is greater than zero
func (c Counters) Positive() bool {
	return c.UplinkBytes > 0 || c.DownlinkBytes > 0 ||
		c.UplinkPackets > 0 || c.DownlinkPackets > 0
}

//ComputeDelta returns the per-counter growth since the previous sighting
//of a connection. A connection seen for the first time contributes zero.
//Negative differences are clamped to zero so kernel counter resets do not
//produce phantom traffic.
func ComputeDelta(created bool, prev Counters, cur Counters) Counters {
	if created {
		return Counters{}
	}
	return Counters{
		UplinkBytes:     util.MaxInt64(cur.UplinkBytes-prev.UplinkBytes, 0),
		DownlinkBytes:   util.MaxInt64(cur.DownlinkBytes-prev.DownlinkBytes, 0),
		UplinkPackets:   util.MaxInt64(cur.UplinkPackets-prev.UplinkPackets, 0),
		DownlinkPackets: util.MaxInt64(cur.DownlinkPackets-prev.DownlinkPackets, 0),
	}
}
