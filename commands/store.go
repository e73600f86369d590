package commands

import (
	log "github.com/sirupsen/logrus"

	"github.com/netmon-dev/netmon/conntrack"
	"github.com/netmon-dev/netmon/pkg/baseline"
	"github.com/netmon-dev/netmon/pkg/connection"
	"github.com/netmon-dev/netmon/pkg/device"
	"github.com/netmon-dev/netmon/pkg/enrich"
	"github.com/netmon-dev/netmon/pkg/incident"
	"github.com/netmon-dev/netmon/pkg/metrics"
	"github.com/netmon-dev/netmon/pkg/minute"
	"github.com/netmon-dev/netmon/pkg/remotehost"
	"github.com/netmon-dev/netmon/pkg/rules"
	"github.com/netmon-dev/netmon/pkg/sentinel"
	"github.com/netmon-dev/netmon/resources"
)

//store bundles the repositories a command needs
type store struct {
	devices   device.Repository
	hosts     remotehost.Repository
	conns     connection.Repository
	minutes   minute.Repository
	baselines baseline.Repository
	rules     rules.Repository
	incidents incident.Repository
	samples   metrics.Repository
}

func openStore(res *resources.Resources) *store {
	return &store{
		devices:   device.NewMongoRepository(res.DB, res.Config),
		hosts:     remotehost.NewMongoRepository(res.DB, res.Config),
		conns:     connection.NewMongoRepository(res.DB, res.Config),
		minutes:   minute.NewMongoRepository(res.DB, res.Config),
		baselines: baseline.NewMongoRepository(res.DB, res.Config),
		rules:     rules.NewMongoRepository(res.DB, res.Config),
		incidents: incident.NewMongoRepository(res.DB, res.Config),
		samples:   metrics.NewMongoRepository(res.DB, res.Config),
	}
}

//ensureIndexes creates the collection indexes, logging failures
//without aborting the command
func (s *store) ensureIndexes(logger *log.Logger) {
	repos := map[string]interface{ CreateIndexes() error }{
		"devices":      s.devices,
		"remote_hosts": s.hosts,
		"connections":  s.conns,
		"minutes":      s.minutes,
		"baselines":    s.baselines,
		"rules":        s.rules,
		"incidents":    s.incidents,
		"metrics":      s.samples,
	}
	for name, repo := range repos {
		if err := repo.CreateIndexes(); err != nil {
			logger.WithFields(log.Fields{
				"collection": name,
				"error":      err.Error(),
			}).Error("could not ensure indexes")
		}
	}
}

//buildEngine wires the reconciliation engine over the store
func buildEngine(res *resources.Resources, s *store, snapshot *conntrack.Snapshot) *sentinel.Engine {
	matcher := rules.NewMatcher(s.rules, res.Log)
	enricher := enrich.NewEnricher(res)
	grouper := incident.NewGrouper(s.incidents, res.Config, res.Log)

	return sentinel.NewEngine(res.Config, res.Log, snapshot,
		s.devices, s.hosts, s.conns, s.minutes, s.baselines,
		matcher, enricher, grouper)
}

//snapshotSource honors the configured conntrack input override
func snapshotSource(res *resources.Resources) *conntrack.Snapshot {
	return &conntrack.Snapshot{
		InputFile: res.Config.S.Daemon.ConntrackInputFile,
	}
}
