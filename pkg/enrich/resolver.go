package enrich

import "net"

var defaultResolver = &net.Resolver{}
