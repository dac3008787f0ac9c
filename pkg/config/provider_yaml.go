package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// YAML-tagged mirror structs. Kept separate from the JSON-tagged config
// model so the on-disk format can drift without touching consumers.
type sourceYAML struct {
	Name         string `yaml:"name"`
	Type         string `yaml:"type"`
	Enabled      bool   `yaml:"enabled"`
	SerialDevice string `yaml:"serial_device,omitempty"`
	Baud         int    `yaml:"baud,omitempty"`
	Hostname     string `yaml:"hostname,omitempty"`
	Port         string `yaml:"port,omitempty"`
	ListenAddr   string `yaml:"listen_addr,omitempty"`
}

type compassYAML struct {
	SmoothingAlpha float64 `yaml:"smoothing_alpha,omitempty"`
	Declination    float64 `yaml:"declination,omitempty"`
	UseTrueNorth   bool    `yaml:"use_true_north,omitempty"`
	Units          string  `yaml:"units,omitempty"`
	TickDensity    int     `yaml:"tick_density,omitempty"`
	LogSize        int     `yaml:"log_size,omitempty"`
}

type storageYAML struct {
	Snapshot *struct {
		Path string `yaml:"path"`
	} `yaml:"snapshot,omitempty"`
	TimescaleDB *struct {
		ConnectionString string `yaml:"connection_string"`
	} `yaml:"timescaledb,omitempty"`
}

type controllerYAML struct {
	Type string `yaml:"type"`
	REST *struct {
		Cert       string `yaml:"cert,omitempty"`
		Key        string `yaml:"key,omitempty"`
		Port       int    `yaml:"port,omitempty"`
		ListenAddr string `yaml:"listen_addr,omitempty"`
	} `yaml:"rest,omitempty"`
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from the YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	var yamlConfig struct {
		Sources     []sourceYAML     `yaml:"sources"`
		Compass     compassYAML      `yaml:"compass,omitempty"`
		Storage     storageYAML      `yaml:"storage,omitempty"`
		Controllers []controllerYAML `yaml:"controllers,omitempty"`
	}

	err = yaml.Unmarshal(cfgFile, &yamlConfig)
	if err != nil {
		return nil, err
	}

	config := &ConfigData{
		Sources:     make([]SourceData, len(yamlConfig.Sources)),
		Controllers: make([]ControllerData, len(yamlConfig.Controllers)),
	}

	for i, source := range yamlConfig.Sources {
		config.Sources[i] = SourceData{
			Name:         source.Name,
			Type:         source.Type,
			Enabled:      source.Enabled,
			SerialDevice: source.SerialDevice,
			Baud:         source.Baud,
			Hostname:     source.Hostname,
			Port:         source.Port,
			ListenAddr:   source.ListenAddr,
		}
	}

	config.Compass = CompassData{
		SmoothingAlpha: yamlConfig.Compass.SmoothingAlpha,
		Declination:    yamlConfig.Compass.Declination,
		UseTrueNorth:   yamlConfig.Compass.UseTrueNorth,
		Units:          yamlConfig.Compass.Units,
		TickDensity:    yamlConfig.Compass.TickDensity,
		LogSize:        yamlConfig.Compass.LogSize,
	}

	config.Storage = StorageData{}
	if yamlConfig.Storage.Snapshot != nil {
		config.Storage.Snapshot = &SnapshotData{
			Path: yamlConfig.Storage.Snapshot.Path,
		}
	}
	if yamlConfig.Storage.TimescaleDB != nil {
		config.Storage.TimescaleDB = &TimescaleDBData{
			ConnectionString: yamlConfig.Storage.TimescaleDB.ConnectionString,
		}
	}

	for i, controller := range yamlConfig.Controllers {
		config.Controllers[i] = ControllerData{
			Type: controller.Type,
		}
		if controller.REST != nil {
			config.Controllers[i].REST = &RESTServerData{
				Cert:       controller.REST.Cert,
				Key:        controller.REST.Key,
				Port:       controller.REST.Port,
				ListenAddr: controller.REST.ListenAddr,
			}
		}
	}

	y.config = config
	return config, nil
}

// GetSources returns heading source configurations
func (y *YAMLProvider) GetSources() ([]SourceData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return y.config.Sources, nil
}

// GetStorageConfig returns the storage configuration
func (y *YAMLProvider) GetStorageConfig() (*StorageData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return &y.config.Storage, nil
}

// GetControllers returns controller configurations
func (y *YAMLProvider) GetControllers() ([]ControllerData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return y.config.Controllers, nil
}

// IsReadOnly returns true; YAML configuration is never written back
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML providers
func (y *YAMLProvider) Close() error {
	return nil
}
