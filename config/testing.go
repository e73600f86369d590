package config

import (
	"github.com/creasty/defaults"
)

const testConfig = `
MongoDB:
    ConnectionString: null
    AuthenticationMechanism: null
    SocketTimeout: 2
    Database: netmon-test
    TLS:
        Enable: false
        VerifyCertificate: false
        CAFile: null
LogConfig:
    LogLevel: 3
    LogPath: null
    LogToFile: false
    LogToDB: false
Filtering:
    LocalSubnets: ["10.0.0.0/24"]
    ExcludeSubnets: ["10.0.0.0/8","172.16.0.0/12","192.168.0.0/16","127.0.0.0/8","169.254.0.0/16"]
Scoring:
    CommonPorts: [53, 80, 123, 443]
    CommonProtos: ["tcp", "udp"]
    NewWindowSeconds: 600
    DormantRemoteDays: 30
    HighFanoutThreshold: 30
    HighUniquePortsThreshold: 20
    AnomalyThreshold: 40
    DedupSuppressSeconds: 1
Alert:
    ThresholdScore: 70
    RequiredCodes: []
    SuppressIfOnlyCodes: ["NO_RDNS"]
    IncidentWindowSeconds: 600
Daemon:
    IntervalSeconds: 1
    ConntrackInputFile: null
`

//LoadTestingConfig loads the hard coded testing config
func LoadTestingConfig(mongoURI string) (*Config, error) {
	config := &Config{}

	// Initialize table config to the default values
	if err := defaults.Set(&config.T); err != nil {
		return nil, err
	}

	// Initialize static config to the default values
	if err := defaults.Set(&config.S); err != nil {
		return nil, err
	}

	config.S.MongoDB.ConnectionString = mongoURI

	// Deserialize the yaml file contents into the static config
	if err := parseStaticConfig([]byte(testConfig), &config.S); err != nil {
		return nil, err
	}

	config.S.Version = "v0.0.0+testing"
	config.S.ExactVersion = "v0.0.0+testing"

	// Use the static config to initialize the running config
	if err := initRunningConfig(&config.S, &config.R); err != nil {
		return nil, err
	}

	return config, nil
}
