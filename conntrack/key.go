package conntrack

import (
	"fmt"
)

//Key returns the stable 5-tuple identity of an entry's original direction
func (e *Entry) Key() string {
	return TupleKey(e.Proto, e.Orig.Src, e.Orig.SrcPort, e.Orig.Dst, e.Orig.DstPort)
}

//TupleKey builds the canonical 5-tuple key string
func TupleKey(proto, srcIP string, srcPort int, dstIP string, dstPort int) string {
	return fmt.Sprintf("%s|%s|%d|%s|%d", proto, srcIP, srcPort, dstIP, dstPort)
}
