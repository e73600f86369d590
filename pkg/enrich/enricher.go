package enrich

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/bluele/gcache"
	log "github.com/sirupsen/logrus"

	"github.com/netmon-dev/netmon/config"
	"github.com/netmon-dev/netmon/pkg/remotehost"
	"github.com/netmon-dev/netmon/resources"
)

const cacheSize = 4096

//Enricher refreshes a remote host's reverse DNS name and WHOIS
//ownership. Lookups are throttled two ways: the persisted checked-at
//stamps bound how often a host is re-examined at all, and a TTL cache
//absorbs repeat lookups for the same address inside one process.
type Enricher struct {
	conf       *config.Config
	log        *log.Logger
	rdnsCache  gcache.Cache
	whoisCache gcache.Cache

	//overridable for tests
	lookupAddr func(ctx context.Context, ip string) (string, error)
	lookupWhois func(ctx context.Context, ip string) (WhoisResult, error)
}

//NewEnricher creates an Enricher using the system resolver and the
//whois command line client
func NewEnricher(res *resources.Resources) *Enricher {
	e := &Enricher{
		conf:       res.Config,
		log:        res.Log,
		rdnsCache:  gcache.New(cacheSize).LRU().Build(),
		whoisCache: gcache.New(cacheSize).LRU().Build(),
	}
	e.lookupAddr = resolveAddr
	e.lookupWhois = runWhois
	return e
}

//Apply refreshes the host's enrichment fields in place when their TTLs
//have lapsed and returns the update to persist. An empty update means
//nothing was due.
func (e *Enricher) Apply(host *remotehost.RemoteHost, now time.Time) remotehost.EnrichmentUpdate {
	update := remotehost.EnrichmentUpdate{CheckedAt: now}
	cfg := e.conf.R.Enrichment
	timeout := cfg.LookupTimeout

	if host.RDNSCheckedAt.IsZero() || host.RDNSCheckedAt.Before(now.Add(-cfg.RDNSTTL)) {
		host.RDNSName = e.reverseDNS(host.IP, timeout, cfg.RDNSTTL)
		host.RDNSCheckedAt = now
		update.RDNSName = host.RDNSName
		update.RDNSChecked = true
	}

	if host.WhoisCheckedAt.IsZero() || host.WhoisCheckedAt.Before(now.Add(-cfg.WhoisTTL)) {
		result := e.whois(host.IP, timeout, cfg.WhoisTTL)
		host.WhoisName = result.Name
		host.WhoisRawLine = result.RawLine
		host.WhoisASN = result.ASN
		host.WhoisCheckedAt = now
		update.WhoisName = result.Name
		update.WhoisRawLine = result.RawLine
		update.WhoisASN = result.ASN
		update.WhoisChecked = true
	}

	return update
}

func (e *Enricher) reverseDNS(ip string, timeout, ttl time.Duration) string {
	if cached, err := e.rdnsCache.Get(ip); err == nil {
		return cached.(string)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	name, err := e.lookupAddr(ctx, ip)
	if err != nil {
		name = ""
	}
	if err := e.rdnsCache.SetWithExpire(ip, name, ttl); err != nil {
		e.log.WithFields(log.Fields{"ip": ip, "error": err.Error()}).
			Warn("could not cache rdns result")
	}
	return name
}

func (e *Enricher) whois(ip string, timeout, ttl time.Duration) WhoisResult {
	if cached, err := e.whoisCache.Get(ip); err == nil {
		return cached.(WhoisResult)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result, err := e.lookupWhois(ctx, ip)
	if err != nil {
		result = WhoisResult{}
	}
	if err := e.whoisCache.SetWithExpire(ip, result, ttl); err != nil {
		e.log.WithFields(log.Fields{"ip": ip, "error": err.Error()}).
			Warn("could not cache whois result")
	}
	return result
}

func resolveAddr(ctx context.Context, ip string) (string, error) {
	names, err := defaultResolver.LookupAddr(ctx, ip)
	if err != nil || len(names) == 0 {
		return "", err
	}
	return strings.TrimSuffix(names[0], "."), nil
}

func runWhois(ctx context.Context, ip string) (WhoisResult, error) {
	out, err := exec.CommandContext(ctx, "whois", ip).CombinedOutput()
	if err != nil {
		return WhoisResult{}, err
	}
	return ParseWhois(string(out)), nil
}
