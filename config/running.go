package config

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io/ioutil"
	"net"
	"time"

	"github.com/activecm/mgosec"
	"github.com/blang/semver"

	"github.com/netmon-dev/netmon/util"
)

type (
	//RunningCfg holds configuration options that are parsed at run time
	RunningCfg struct {
		MongoDB    MongoDBRunningCfg
		Filtering  FilteringRunningCfg
		Enrichment EnrichmentRunningCfg
		Version    semver.Version
	}

	//MongoDBRunningCfg holds parsed information for connecting to MongoDB
	MongoDBRunningCfg struct {
		AuthMechanismParsed mgosec.AuthMechanism
		TLS                 struct {
			TLSConfig *tls.Config
		}
	}

	//FilteringRunningCfg holds the parsed subnet lists
	FilteringRunningCfg struct {
		LocalSubnets   []*net.IPNet
		ExcludeSubnets []*net.IPNet
	}

	//EnrichmentRunningCfg holds the parsed enrichment TTLs
	EnrichmentRunningCfg struct {
		RDNSTTL       time.Duration
		WhoisTTL      time.Duration
		LookupTimeout time.Duration
	}
)

// initRunningConfig deserializes data in the static config
func initRunningConfig(config *StaticCfg, running *RunningCfg) error {
	var err error

	//parse the tls configuration
	if config.MongoDB.TLS.Enabled {
		tlsConf := &tls.Config{}
		if !config.MongoDB.TLS.VerifyCertificate {
			tlsConf.InsecureSkipVerify = true
		}
		if len(config.MongoDB.TLS.CAFile) > 0 {
			pem, err2 := ioutil.ReadFile(config.MongoDB.TLS.CAFile)
			err = err2
			if err != nil {
				fmt.Println("[!] Could not read MongoDB CA file")
			} else {
				tlsConf.RootCAs = x509.NewCertPool()
				tlsConf.RootCAs.AppendCertsFromPEM(pem)
			}
		}
		running.MongoDB.TLS.TLSConfig = tlsConf
	}

	//parse out the mongo authentication mechanism
	authMechanism, err := mgosec.ParseAuthMechanism(
		config.MongoDB.AuthMechanism,
	)
	if err != nil {
		authMechanism = mgosec.None
		fmt.Println("[!] Could not parse MongoDB authentication mechanism")
	}
	running.MongoDB.AuthMechanismParsed = authMechanism

	running.Filtering.LocalSubnets, err = util.ParseSubnets(config.Filtering.LocalSubnets)
	if err != nil {
		return err
	}
	running.Filtering.ExcludeSubnets, err = util.ParseSubnets(config.Filtering.ExcludeSubnets)
	if err != nil {
		return err
	}

	running.Enrichment.RDNSTTL = time.Duration(config.Enrichment.RDNSTTLHours) * time.Hour
	running.Enrichment.WhoisTTL = time.Duration(config.Enrichment.WhoisTTLDays) * 24 * time.Hour
	running.Enrichment.LookupTimeout = time.Duration(config.Enrichment.LookupTimeoutSeconds) * time.Second

	running.Version, err = semver.ParseTolerant(config.Version)
	if err != nil {
		fmt.Printf("\t[!] Version filled in incorrectly during compilation: %s\n", err.Error())
		err = nil
	}

	return err
}
