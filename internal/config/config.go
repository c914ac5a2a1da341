// YAML run-configuration loader with CUE validation integration
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Routing protocols supported by the harness.
const (
	ProtocolAODV = "AODV"
	ProtocolOLSR = "OLSR"
	ProtocolDSDV = "DSDV"
	ProtocolDSR  = "DSR"
)

// Traffic shapes the constant-rate generators installed on each node class.
type Traffic struct {
	PacketSize        int     `yaml:"packet_size"`
	NormalInterval    float64 `yaml:"normal_interval"`
	MaliciousInterval float64 `yaml:"malicious_interval"`
}

// Config is the root configuration for one simulation run.
type Config struct {
	FixedNodes       int     `yaml:"fixed_nodes"`
	MobileNodes      int     `yaml:"mobile_nodes"`
	MaliciousNodes   int     `yaml:"malicious_nodes"`
	InterferingNodes int     `yaml:"interfering_nodes"`
	SimTime          float64 `yaml:"sim_time"`
	RoutingProtocol  string  `yaml:"routing_protocol"`
	ConfigName       string  `yaml:"config_name"`
	OutputDir        string  `yaml:"output_dir"`
	Seed             uint64  `yaml:"seed"`
	Traffic          Traffic `yaml:"traffic"`
}

// Default returns the configuration used when no file is given, matching the
// reference scenario of the study (20 fixed, 10 mobile, AODV, 60 s).
func Default() *Config {
	return &Config{
		FixedNodes:      20,
		MobileNodes:     10,
		SimTime:         60.0,
		RoutingProtocol: ProtocolAODV,
		ConfigName:      "baseline",
		OutputDir:       "simulation_results",
		Seed:            1,
		Traffic: Traffic{
			PacketSize:        512,
			NormalInterval:    2.0,
			MaliciousInterval: 0.01,
		},
	}
}

// Load reads a YAML config, validating it against the CUE schema first.
// Fields absent from the file keep their defaults.
func Load(configPath, cueSchemaPath string) (*Config, error) {
	if cueSchemaPath != "" {
		if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// TotalNodes returns the node count summed across all categories.
func (c *Config) TotalNodes() int {
	return c.FixedNodes + c.MobileNodes + c.MaliciousNodes + c.InterferingNodes
}

// Validate reports the fatal configuration errors: an unsupported routing
// protocol or an empty topology aborts the run before anything is scheduled.
func (c *Config) Validate() error {
	switch c.RoutingProtocol {
	case ProtocolAODV, ProtocolOLSR, ProtocolDSDV, ProtocolDSR:
	default:
		return fmt.Errorf("unsupported routing protocol %q", c.RoutingProtocol)
	}
	if c.TotalNodes() == 0 {
		return fmt.Errorf("no nodes configured")
	}
	if c.SimTime <= 0 {
		return fmt.Errorf("sim_time must be positive, got %v", c.SimTime)
	}
	if c.Traffic.PacketSize <= 0 {
		return fmt.Errorf("packet_size must be positive, got %d", c.Traffic.PacketSize)
	}
	if c.Traffic.NormalInterval <= 0 || c.Traffic.MaliciousInterval <= 0 {
		return fmt.Errorf("traffic intervals must be positive")
	}
	return nil
}
