// Package config provides configuration loading for the ray-path service
// from YAML files or SQLite databases.
package config

import "fmt"

// ConfigProvider is the interface for configuration backends
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetModels() ([]ModelData, error)
	GetStorageConfig() (*StorageData, error)
	GetRESTConfig() (*RESTServerData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Models  []ModelData    `json:"models"`
	Storage StorageData    `json:"storage,omitempty"`
	REST    RESTServerData `json:"rest,omitempty"`
}

// ModelData holds one named seismic velocity model: a deepest-first layer
// stack plus the default source depth for traces against it
type ModelData struct {
	Name        string      `json:"name"`
	SourceDepth float64     `json:"source_depth"`
	Layers      []LayerData `json:"layers"`
}

// LayerData is one [base, top, velocity] layer triple
type LayerData struct {
	Base     float64 `json:"base"`
	Top      float64 `json:"top"`
	Velocity float64 `json:"velocity"`
}

// StorageData holds the trace archive configuration
type StorageData struct {
	Postgres *PostgresData `json:"postgres,omitempty"`
}

// PostgresData holds the Postgres archive connection configuration
type PostgresData struct {
	ConnectionString string `json:"connection-string"`
}

// RESTServerData holds configuration specific to the REST server
type RESTServerData struct {
	HTTPPort          int    `json:"http_port,omitempty"`
	DefaultListenAddr string `json:"default_listen_addr,omitempty"`
	TLSCertPath       string `json:"tls_cert_path,omitempty"`
	TLSKeyPath        string `json:"tls_key_path,omitempty"`
}

// ModelByName returns the named model from the configuration
func (c *ConfigData) ModelByName(name string) (*ModelData, error) {
	for i := range c.Models {
		if c.Models[i].Name == name {
			return &c.Models[i], nil
		}
	}
	return nil, fmt.Errorf("no model named %q in configuration", name)
}
