package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load("")

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 8, cfg.Catalog.PublicPageSize)
	assert.Equal(t, 5, cfg.Catalog.AdminPageSize)
	assert.False(t, cfg.Catalog.LegacyNameFilters)
	assert.Equal(t, 15, cfg.JWT.AccessExpiry)
	assert.Equal(t, "beststore.products", cfg.Kafka.Topic)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("CATALOG_PUBLIC_PAGE_SIZE", "12")
	t.Setenv("CATALOG_LEGACY_NAME_FILTERS", "true")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("SERVER_BASE_URL", "https://shop.example.com/")

	cfg := Load("")

	assert.Equal(t, 12, cfg.Catalog.PublicPageSize)
	assert.True(t, cfg.Catalog.LegacyNameFilters)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "https://shop.example.com", cfg.Server.BaseURL)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beststore.env")
	require.NoError(t, os.WriteFile(path, []byte("CATALOG_ADMIN_PAGE_SIZE=25\nSERVER_ENV=production\n"), 0o600))

	cfg := Load(path)

	assert.Equal(t, 25, cfg.Catalog.AdminPageSize)
	assert.Equal(t, "production", cfg.Server.Env)
	assert.False(t, cfg.Server.IsDevelopment())
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"a", "b"}, splitList(" a ,, b "))
}
