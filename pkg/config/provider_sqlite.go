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

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	models, err := s.GetModels()
	if err != nil {
		return nil, fmt.Errorf("failed to load models: %w", err)
	}
	config.Models = models

	storage, err := s.GetStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}
	config.Storage = *storage

	rest, err := s.GetRESTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load REST config: %w", err)
	}
	config.REST = *rest

	return config, nil
}

// GetModels returns the seismic model configurations from the database
func (s *SQLiteProvider) GetModels() ([]ModelData, error) {
	query := `
		SELECT id, name, source_depth
		FROM models
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')
		ORDER BY name`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query models: %w", err)
	}
	defer rows.Close()

	var models []ModelData
	var ids []int64
	for rows.Next() {
		var id int64
		var m ModelData
		if err := rows.Scan(&id, &m.Name, &m.SourceDepth); err != nil {
			return nil, fmt.Errorf("failed to scan model row: %w", err)
		}
		ids = append(ids, id)
		models = append(models, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, id := range ids {
		layers, err := s.getLayers(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load layers for model %q: %w", models[i].Name, err)
		}
		models[i].Layers = layers
	}

	return models, nil
}

func (s *SQLiteProvider) getLayers(modelID int64) ([]LayerData, error) {
	query := `
		SELECT base_altitude, top_altitude, velocity
		FROM layers
		WHERE model_id = ?
		ORDER BY base_altitude`

	rows, err := s.db.Query(query, modelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var layers []LayerData
	for rows.Next() {
		var l LayerData
		if err := rows.Scan(&l.Base, &l.Top, &l.Velocity); err != nil {
			return nil, err
		}
		layers = append(layers, l)
	}
	return layers, rows.Err()
}

// GetStorageConfig returns the storage configuration from the database
func (s *SQLiteProvider) GetStorageConfig() (*StorageData, error) {
	query := `
		SELECT postgres_connection_string
		FROM storage_configs
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')`

	storage := &StorageData{}
	var connStr sql.NullString
	err := s.db.QueryRow(query).Scan(&connStr)
	if err == sql.ErrNoRows {
		return storage, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query storage config: %w", err)
	}
	if connStr.Valid && connStr.String != "" {
		storage.Postgres = &PostgresData{ConnectionString: connStr.String}
	}
	return storage, nil
}

// GetRESTConfig returns the REST server configuration from the database
func (s *SQLiteProvider) GetRESTConfig() (*RESTServerData, error) {
	query := `
		SELECT http_port, default_listen_addr, tls_cert_path, tls_key_path
		FROM rest_configs
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')`

	rest := &RESTServerData{}
	var listenAddr, certPath, keyPath sql.NullString
	var port sql.NullInt64
	err := s.db.QueryRow(query).Scan(&port, &listenAddr, &certPath, &keyPath)
	if err == sql.ErrNoRows {
		return rest, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query REST config: %w", err)
	}
	rest.HTTPPort = int(port.Int64)
	rest.DefaultListenAddr = listenAddr.String
	rest.TLSCertPath = certPath.String
	rest.TLSKeyPath = keyPath.String
	return rest, nil
}

// IsReadOnly returns false; SQLite configurations support updates
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}
