package config

import (
	"github.com/creasty/defaults"
)

type (
	//TableCfg is the container for other table config sections
	TableCfg struct {
		Log       LogTableCfg
		Structure StructureTableCfg
		Anomaly   AnomalyTableCfg
		Metrics   MetricsTableCfg
	}

	//LogTableCfg contains the configuration for logging
	LogTableCfg struct {
		LogTable string `default:"logs"`
	}

	//StructureTableCfg contains the names of the base level collections
	StructureTableCfg struct {
		DeviceTable           string `default:"devices"`
		RemoteHostTable       string `default:"remote_hosts"`
		RemoteHostPortTable   string `default:"remote_host_ports"`
		ConnTable             string `default:"connections"`
		DeviceMinuteTable     string `default:"device_minutes"`
		RemoteHostMinuteTable string `default:"remote_host_minutes"`
	}

	//AnomalyTableCfg contains the anomaly pipeline collection names
	AnomalyTableCfg struct {
		BaselineTable    string `default:"device_baselines"`
		AllowlistTable   string `default:"allowlist_rules"`
		SuppressionTable string `default:"suppression_rules"`
		HitTable         string `default:"anomaly_hits"`
		IncidentTable    string `default:"incidents"`
	}

	//MetricsTableCfg contains the metrics collection names
	MetricsTableCfg struct {
		SampleTable string `default:"metric_samples"`
	}
)

// loadTableConfig initializes the table config to its default values
func loadTableConfig() (*TableCfg, error) {
	config := new(TableCfg)
	if err := defaults.Set(config); err != nil {
		return config, err
	}
	return config, nil
}
