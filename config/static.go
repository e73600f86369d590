package config

import (
	"io/ioutil"
	"os"
	"reflect"
	"time"

	"github.com/creasty/defaults"
	yaml "gopkg.in/yaml.v2"
)

type (
	//StaticCfg is the container for other static config sections
	StaticCfg struct {
		MongoDB      MongoDBStaticCfg    `yaml:"MongoDB"`
		Log          LogStaticCfg        `yaml:"LogConfig"`
		UserConfig   UserCfgStaticCfg    `yaml:"UserConfig"`
		Filtering    FilteringStaticCfg  `yaml:"Filtering"`
		Scoring      ScoringStaticCfg    `yaml:"Scoring"`
		Alert        AlertStaticCfg      `yaml:"Alert"`
		Daemon       DaemonStaticCfg     `yaml:"Daemon"`
		Enrichment   EnrichmentStaticCfg `yaml:"Enrichment"`
		Version      string
		ExactVersion string
	}

	//MongoDBStaticCfg contains the means for connecting to MongoDB
	MongoDBStaticCfg struct {
		ConnectionString string        `yaml:"ConnectionString" default:"mongodb://localhost:27017"`
		AuthMechanism    string        `yaml:"AuthenticationMechanism" default:""`
		SocketTimeout    time.Duration `yaml:"SocketTimeout" default:"2"`
		Database         string        `yaml:"Database" default:"netmon"`
		TLS              TLSStaticCfg  `yaml:"TLS"`
	}

	//TLSStaticCfg contains the means for connecting to MongoDB over TLS
	TLSStaticCfg struct {
		Enabled           bool   `yaml:"Enable" default:"false"`
		VerifyCertificate bool   `yaml:"VerifyCertificate" default:"false"`
		CAFile            string `yaml:"CAFile" default:""`
	}

	//LogStaticCfg contains the configuration for logging
	LogStaticCfg struct {
		LogLevel    int    `yaml:"LogLevel" default:"2"`
		LogPath     string `yaml:"LogPath" default:"/var/lib/netmon/logs"`
		LogToFile   bool   `yaml:"LogToFile" default:"true"`
		LogToDB     bool   `yaml:"LogToDB" default:"true"`
	}

	//UserCfgStaticCfg contains user defined preferences
	UserCfgStaticCfg struct {
		UpdateCheckFrequency int `yaml:"UpdateCheckFrequency" default:"14"`
	}

	//FilteringStaticCfg controls the outbound flow filter
	FilteringStaticCfg struct {
		LocalSubnets   []string `yaml:"LocalSubnets" default:"[\"10.0.0.0/24\"]"`
		ExcludeSubnets []string `yaml:"ExcludeSubnets" default:"[\"10.0.0.0/8\",\"172.16.0.0/12\",\"192.168.0.0/16\",\"127.0.0.0/8\",\"169.254.0.0/16\"]"`
	}

	//ScoringStaticCfg is used to control the anomaly scoring rules
	ScoringStaticCfg struct {
		CommonPorts              []int    `yaml:"CommonPorts" default:"[53,80,123,443]"`
		CommonProtos             []string `yaml:"CommonProtos" default:"[\"tcp\",\"udp\"]"`
		NewWindowSeconds         int      `yaml:"NewWindowSeconds" default:"600"`
		DormantRemoteDays        int      `yaml:"DormantRemoteDays" default:"30"`
		HighFanoutThreshold      int      `yaml:"HighFanoutThreshold" default:"30"`
		HighUniquePortsThreshold int      `yaml:"HighUniquePortsThreshold" default:"20"`
		AnomalyThreshold         int      `yaml:"AnomalyThreshold" default:"40"`
		DedupSuppressSeconds     int      `yaml:"DedupSuppressSeconds" default:"300"`
	}

	//AlertStaticCfg gates which scored findings become incidents
	AlertStaticCfg struct {
		ThresholdScore        int      `yaml:"ThresholdScore" default:"70"`
		RequiredCodes         []string `yaml:"RequiredCodes" default:"[]"`
		SuppressIfOnlyCodes   []string `yaml:"SuppressIfOnlyCodes" default:"[\"NO_RDNS\"]"`
		IncidentWindowSeconds int      `yaml:"IncidentWindowSeconds" default:"600"`
	}

	//DaemonStaticCfg controls the polling loop and background schedules
	DaemonStaticCfg struct {
		IntervalSeconds          int    `yaml:"IntervalSeconds" default:"1"`
		ConntrackInputFile       string `yaml:"ConntrackInputFile" default:""`
		BaselineRecomputeMinutes int    `yaml:"BaselineRecomputeMinutes" default:"60"`
		MetricsSampleSeconds     int    `yaml:"MetricsSampleSeconds" default:"60"`
	}

	//EnrichmentStaticCfg controls the rDNS/WHOIS host enricher
	EnrichmentStaticCfg struct {
		RDNSTTLHours         int `yaml:"RDNSTTLHours" default:"6"`
		WhoisTTLDays         int `yaml:"WhoisTTLDays" default:"7"`
		LookupTimeoutSeconds int `yaml:"LookupTimeoutSeconds" default:"3"`
	}
)

// loadStaticConfig attempts to parse a config file
func loadStaticConfig(cfgPath string) (*StaticCfg, error) {
	var config = new(StaticCfg)

	if err := defaults.Set(config); err != nil {
		return config, err
	}

	_, err := os.Stat(cfgPath)
	if os.IsNotExist(err) {
		return config, err
	}

	cfgFile, err := ioutil.ReadFile(cfgPath)
	if err != nil {
		return config, err
	}

	if err := parseStaticConfig(cfgFile, config); err != nil {
		return config, err
	}

	return config, nil
}

// parseStaticConfig loads the yaml into cfg and finalizes it
func parseStaticConfig(data []byte, config *StaticCfg) error {
	err := yaml.Unmarshal(data, config)
	if err != nil {
		return err
	}

	// expand env variables, config is a pointer
	// so we have to call elem on the reflect value
	expandConfig(reflect.ValueOf(config).Elem())

	// set the socket time out in hours
	config.MongoDB.SocketTimeout *= time.Hour

	// grab the version constants set by the build process
	config.Version = Version
	config.ExactVersion = ExactVersion

	return nil
}
