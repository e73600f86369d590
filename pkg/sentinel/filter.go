package sentinel

import (
	"net"

	"github.com/netmon-dev/netmon/config"
	"github.com/netmon-dev/netmon/conntrack"
	"github.com/netmon-dev/netmon/util"
)

//Filter selects the outbound flows the engine tracks
type Filter struct {
	localSubnets   []*net.IPNet
	excludeSubnets []*net.IPNet
}

//NewFilter builds a Filter from the parsed subnet configuration
func NewFilter(conf *config.Config) *Filter {
	return &Filter{
		localSubnets:   conf.R.Filtering.LocalSubnets,
		excludeSubnets: conf.R.Filtering.ExcludeSubnets,
	}
}

//Outbound reports whether the entry left the local network: the
//original source must be local and the original destination must fall
//outside every excluded subnet. Entries with unparseable addresses are
//not outbound.
func (f *Filter) Outbound(entry *conntrack.Entry) bool {
	return f.OutboundPair(entry.Orig.Src, entry.Orig.Dst)
}

//OutboundPair applies the same test to a bare address pair
func (f *Filter) OutboundPair(src, dst string) bool {
	srcIP := net.ParseIP(src)
	dstIP := net.ParseIP(dst)
	if srcIP == nil || dstIP == nil {
		return false
	}

	if !util.ContainsIP(f.localSubnets, srcIP) {
		return false
	}
	return !util.ContainsIP(f.excludeSubnets, dstIP)
}
