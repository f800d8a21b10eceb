// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			UserID: "WORKER01",
		},
		Gateway: GatewayConfig{
			TimeEntryServiceURL:    "http://localhost:8100/entries",
			OrderServiceURL:        "http://localhost:8100/orders",
			ConfirmationServiceURL: "http://localhost:8100/confirmations",
			PersonnelServiceURL:    "http://localhost:8100/personnel",
		},
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.ValidateAndSetDefaults())

	assert.Equal(t, DefaultBusinessTimezone, cfg.Engine.BusinessTimezone)
	assert.Equal(t, DefaultOverheadActivityType, cfg.Engine.OverheadActivityType)
	assert.Equal(t, DefaultTickInterval, cfg.Engine.TickInterval)
	assert.Equal(t, DefaultRequestTimeout, cfg.Gateway.RequestTimeout)
	assert.Equal(t, DefaultOrderType, cfg.Gateway.OrderType)
	assert.Equal(t, DefaultOrderCreatedSince, cfg.Gateway.OrderCreatedSince)
}

func TestValidateRequiredFields(t *testing.T) {
	cfg := validConfig()
	cfg.Engine.UserID = ""
	assert.Error(t, cfg.ValidateAndSetDefaults())

	cfg = validConfig()
	cfg.Gateway.ConfirmationServiceURL = ""
	assert.Error(t, cfg.ValidateAndSetDefaults())

	cfg = validConfig()
	cfg.Database = &DatabaseConfig{}
	assert.Error(t, cfg.ValidateAndSetDefaults())
}

func TestValidateKeepsExplicitValues(t *testing.T) {
	cfg := validConfig()
	cfg.Engine.BusinessTimezone = "Europe/Berlin"
	cfg.Engine.TickInterval = 5 * time.Second
	assert.NoError(t, cfg.ValidateAndSetDefaults())
	assert.Equal(t, "Europe/Berlin", cfg.Engine.BusinessTimezone)
	assert.Equal(t, 5*time.Second, cfg.Engine.TickInterval)
}

func TestNewConfigReadsYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
log:
  level: debug
engine:
  userID: WORKER01
  businessTimezone: America/Chicago
gateway:
  timeEntryServiceURL: http://localhost:8100/entries
  orderServiceURL: http://localhost:8100/orders
  confirmationServiceURL: http://localhost:8100/confirmations
  personnelServiceURL: http://localhost:8100/personnel
apiService:
  httpServer:
    address: ":8802"
`)
	assert.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := NewConfig(path)
	assert.NoError(t, err)
	assert.Equal(t, "WORKER01", cfg.Engine.UserID)
	assert.Equal(t, "America/Chicago", cfg.Engine.BusinessTimezone)
	assert.Equal(t, ":8802", cfg.ApiService.HttpServer.Address)
	assert.NoError(t, cfg.ValidateAndSetDefaults())
}

func TestNewConfigMissingFile(t *testing.T) {
	_, err := NewConfig("/does/not/exist.yaml")
	assert.Error(t, err)
}
