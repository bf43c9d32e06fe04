package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_StorageConfig(t *testing.T) {
	os.Setenv("STORAGE_BUCKET", "facility-attachments")
	os.Setenv("STORAGE_ENDPOINT", "http://minio:9000")
	os.Setenv("STORAGE_PATH_STYLE", "true")
	defer func() {
		os.Unsetenv("STORAGE_BUCKET")
		os.Unsetenv("STORAGE_ENDPOINT")
		os.Unsetenv("STORAGE_PATH_STYLE")
	}()

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, "facility-attachments", cfg.Storage.Bucket)
	assert.Equal(t, "http://minio:9000", cfg.Storage.Endpoint)
	assert.True(t, cfg.Storage.PathStyle)
}

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("DB_HOST")
	os.Unsetenv("SERVER_PORT")

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "facilitycare", cfg.Database.Database)
	assert.Equal(t, "attachments", cfg.Storage.KeyPrefix)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "app",
		Password: "secret",
		Database: "facilitycare",
		SSLMode:  "disable",
	}

	assert.Equal(t,
		"host=db port=5432 user=app password=secret dbname=facilitycare sslmode=disable",
		cfg.DatabaseDSN())
}
