package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	// Load into temporary struct with YAML tags
	var yamlConfig struct {
		Models  []ModelYAML `yaml:"models"`
		Storage StorageYAML `yaml:"storage,omitempty"`
		REST    RESTYAML    `yaml:"rest,omitempty"`
	}

	err = yaml.Unmarshal(cfgFile, &yamlConfig)
	if err != nil {
		return nil, err
	}

	// Convert to our internal format
	config := &ConfigData{
		Models: make([]ModelData, len(yamlConfig.Models)),
	}

	for i, model := range yamlConfig.Models {
		layers := make([]LayerData, len(model.Layers))
		for j, triple := range model.Layers {
			if len(triple) != 3 {
				return nil, fmt.Errorf("model %q layer %d: expected [base, top, velocity], got %d values",
					model.Name, j, len(triple))
			}
			layers[j] = LayerData{Base: triple[0], Top: triple[1], Velocity: triple[2]}
		}
		config.Models[i] = ModelData{
			Name:        model.Name,
			SourceDepth: model.SourceDepth,
			Layers:      layers,
		}
	}

	config.Storage = StorageData{}
	if yamlConfig.Storage.Postgres != nil {
		config.Storage.Postgres = &PostgresData{
			ConnectionString: yamlConfig.Storage.Postgres.ConnectionString,
		}
	}

	config.REST = RESTServerData{
		HTTPPort:          yamlConfig.REST.HTTPPort,
		DefaultListenAddr: yamlConfig.REST.DefaultListenAddr,
		TLSCertPath:       yamlConfig.REST.TLSCertPath,
		TLSKeyPath:        yamlConfig.REST.TLSKeyPath,
	}

	y.config = config
	return config, nil
}

// GetModels returns the configured seismic models
func (y *YAMLProvider) GetModels() ([]ModelData, error) {
	if err := y.ensureLoaded(); err != nil {
		return nil, err
	}
	return y.config.Models, nil
}

// GetStorageConfig returns the storage configuration
func (y *YAMLProvider) GetStorageConfig() (*StorageData, error) {
	if err := y.ensureLoaded(); err != nil {
		return nil, err
	}
	return &y.config.Storage, nil
}

// GetRESTConfig returns the REST server configuration
func (y *YAMLProvider) GetRESTConfig() (*RESTServerData, error) {
	if err := y.ensureLoaded(); err != nil {
		return nil, err
	}
	return &y.config.REST, nil
}

// IsReadOnly returns true; YAML configurations are never written back
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML providers
func (y *YAMLProvider) Close() error {
	return nil
}

func (y *YAMLProvider) ensureLoaded() error {
	if y.config != nil {
		return nil
	}
	_, err := y.LoadConfig()
	return err
}

// ModelYAML is the YAML shape of one named model: layers are raw
// [base, top, velocity] triples, deepest first
type ModelYAML struct {
	Name        string      `yaml:"name"`
	SourceDepth float64     `yaml:"source_depth"`
	Layers      [][]float64 `yaml:"layers"`
}

// StorageYAML is the YAML shape of the storage section
type StorageYAML struct {
	Postgres *PostgresYAML `yaml:"postgres,omitempty"`
}

// PostgresYAML is the YAML shape of the Postgres archive configuration
type PostgresYAML struct {
	ConnectionString string `yaml:"connection-string"`
}

// RESTYAML is the YAML shape of the REST server section
type RESTYAML struct {
	HTTPPort          int    `yaml:"http_port,omitempty"`
	DefaultListenAddr string `yaml:"default_listen_addr,omitempty"`
	TLSCertPath       string `yaml:"tls_cert_path,omitempty"`
	TLSKeyPath        string `yaml:"tls_key_path,omitempty"`
}
