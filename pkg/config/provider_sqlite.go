package config

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from the SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	sources, err := s.GetSources()
	if err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}
	config.Sources = sources

	compass, err := s.getCompass()
	if err != nil {
		return nil, fmt.Errorf("failed to load compass config: %w", err)
	}
	config.Compass = *compass

	storage, err := s.GetStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}
	config.Storage = *storage

	controllers, err := s.GetControllers()
	if err != nil {
		return nil, fmt.Errorf("failed to load controllers: %w", err)
	}
	config.Controllers = controllers

	return config, nil
}

// GetSources returns heading source configurations from the database
func (s *SQLiteProvider) GetSources() ([]SourceData, error) {
	query := `
		SELECT name, type, enabled, serial_device, baud, hostname, port, listen_addr
		FROM sources
		ORDER BY name
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sources: %w", err)
	}
	defer rows.Close()

	var sources []SourceData
	for rows.Next() {
		var source SourceData
		var serialDevice, hostname, port, listenAddr sql.NullString
		var baud sql.NullInt64

		err := rows.Scan(
			&source.Name, &source.Type, &source.Enabled,
			&serialDevice, &baud, &hostname, &port, &listenAddr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}

		source.SerialDevice = serialDevice.String
		source.Baud = int(baud.Int64)
		source.Hostname = hostname.String
		source.Port = port.String
		source.ListenAddr = listenAddr.String

		sources = append(sources, source)
	}

	return sources, rows.Err()
}

// getCompass returns the compass defaults row from the database
func (s *SQLiteProvider) getCompass() (*CompassData, error) {
	query := `
		SELECT smoothing_alpha, declination, use_true_north, units, tick_density, log_size
		FROM compass
		LIMIT 1
	`

	compass := &CompassData{}
	var alpha, declination sql.NullFloat64
	var useTrueNorth sql.NullBool
	var units sql.NullString
	var tickDensity, logSize sql.NullInt64

	err := s.db.QueryRow(query).Scan(&alpha, &declination, &useTrueNorth, &units, &tickDensity, &logSize)
	if err == sql.ErrNoRows {
		return compass, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query compass config: %w", err)
	}

	compass.SmoothingAlpha = alpha.Float64
	compass.Declination = declination.Float64
	compass.UseTrueNorth = useTrueNorth.Bool
	compass.Units = units.String
	compass.TickDensity = int(tickDensity.Int64)
	compass.LogSize = int(logSize.Int64)

	return compass, nil
}

// GetStorageConfig returns the storage configuration from the database
func (s *SQLiteProvider) GetStorageConfig() (*StorageData, error) {
	query := `SELECT backend, path, connection_string FROM storage`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query storage config: %w", err)
	}
	defer rows.Close()

	storage := &StorageData{}
	for rows.Next() {
		var backend string
		var path, connectionString sql.NullString

		if err := rows.Scan(&backend, &path, &connectionString); err != nil {
			return nil, fmt.Errorf("failed to scan storage row: %w", err)
		}

		switch backend {
		case "snapshot":
			storage.Snapshot = &SnapshotData{Path: path.String}
		case "timescaledb":
			storage.TimescaleDB = &TimescaleDBData{ConnectionString: connectionString.String}
		}
	}

	return storage, rows.Err()
}

// GetControllers returns controller configurations from the database
func (s *SQLiteProvider) GetControllers() ([]ControllerData, error) {
	query := `SELECT type, cert, key, port, listen_addr FROM controllers`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query controllers: %w", err)
	}
	defer rows.Close()

	var controllers []ControllerData
	for rows.Next() {
		var controller ControllerData
		var cert, key, listenAddr sql.NullString
		var port sql.NullInt64

		if err := rows.Scan(&controller.Type, &cert, &key, &port, &listenAddr); err != nil {
			return nil, fmt.Errorf("failed to scan controller row: %w", err)
		}

		if controller.Type == "rest" {
			controller.REST = &RESTServerData{
				Cert:       cert.String,
				Key:        key.String,
				Port:       int(port.Int64),
				ListenAddr: listenAddr.String,
			}
		}

		controllers = append(controllers, controller)
	}

	return controllers, rows.Err()
}

// IsReadOnly returns false; SQLite configuration can be updated in place
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
