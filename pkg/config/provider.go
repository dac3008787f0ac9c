// Package config defines the configuration model for compassd and the
// providers that load it from YAML files or SQLite databases.
package config

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetSources() ([]SourceData, error)
	GetStorageConfig() (*StorageData, error)
	GetControllers() ([]ControllerData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Sources     []SourceData     `json:"sources"`
	Compass     CompassData      `json:"compass"`
	Storage     StorageData      `json:"storage,omitempty"`
	Controllers []ControllerData `json:"controllers,omitempty"`
}

// SourceData holds configuration specific to heading input sources
type SourceData struct {
	Name         string `json:"name"`
	Type         string `json:"type,omitempty"`
	Enabled      bool   `json:"enabled"`
	SerialDevice string `json:"serial_device,omitempty"`
	Baud         int    `json:"baud,omitempty"`
	Hostname     string `json:"hostname,omitempty"`
	Port         string `json:"port,omitempty"`
	ListenAddr   string `json:"listen_addr,omitempty"`
}

// CompassData holds the engine defaults applied before any persisted
// snapshot is hydrated over them.
type CompassData struct {
	SmoothingAlpha float64 `json:"smoothing_alpha,omitempty"`
	Declination    float64 `json:"declination,omitempty"`
	UseTrueNorth   bool    `json:"use_true_north,omitempty"`
	Units          string  `json:"units,omitempty"`
	TickDensity    int     `json:"tick_density,omitempty"`
	LogSize        int     `json:"log_size,omitempty"`
}

// StorageData holds the configuration for storage backends
type StorageData struct {
	Snapshot    *SnapshotData    `json:"snapshot,omitempty"`
	TimescaleDB *TimescaleDBData `json:"timescaledb,omitempty"`
}

// SnapshotData configures the durable snapshot key-value store
type SnapshotData struct {
	Path string `json:"path"`
}

// TimescaleDBData configures the long-term heading archive
type TimescaleDBData struct {
	ConnectionString string `json:"connection_string"`
}

// ControllerData holds the configuration for controller backends
type ControllerData struct {
	Type string          `json:"type,omitempty"`
	REST *RESTServerData `json:"rest,omitempty"`
}

// RESTServerData configures the REST API controller
type RESTServerData struct {
	Cert       string `json:"cert,omitempty"`
	Key        string `json:"key,omitempty"`
	Port       int    `json:"port,omitempty"`
	ListenAddr string `json:"listen_addr,omitempty"`
}
