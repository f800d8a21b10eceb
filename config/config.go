// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type (
	Config struct {
		// Log is the logging config
		Log Logger `yaml:"log"`

		// Gateway holds the endpoints of the remote backend collaborators
		Gateway GatewayConfig `yaml:"gateway"`

		// Engine is the config for the time entry lifecycle engine
		Engine EngineConfig `yaml:"engine"`

		// ApiService is the API service config
		ApiService ApiServiceConfig `yaml:"apiService"`

		// Database optionally configures a SQL store for durable timer
		// sessions. When omitted the engine keeps timer sessions in memory
		// and reconstructs them from the remote store on reload.
		Database *DatabaseConfig `yaml:"database"`
	}

	GatewayConfig struct {
		// TimeEntryServiceURL is the collection URL of the remote time entry store
		TimeEntryServiceURL string `yaml:"timeEntryServiceURL"`
		// OrderServiceURL is the order catalog collection URL
		OrderServiceURL string `yaml:"orderServiceURL"`
		// ConfirmationServiceURL is the confirmation posting collection URL
		ConfirmationServiceURL string `yaml:"confirmationServiceURL"`
		// PersonnelServiceURL resolves user ids to personnel numbers
		PersonnelServiceURL string `yaml:"personnelServiceURL"`
		// RequestTimeout bounds every remote call. Default 30s.
		RequestTimeout time.Duration `yaml:"requestTimeout"`
		// OrderType restricts the order catalog query. Default "EREF".
		OrderType string `yaml:"orderType"`
		// OrderCreatedSince restricts the order catalog query to orders
		// created after this zone-less UTC instant.
		OrderCreatedSince string `yaml:"orderCreatedSince"`
	}

	EngineConfig struct {
		// UserID identifies the worker this session confirms time for
		UserID string `yaml:"userID"`
		// BusinessTimezone is the fixed IANA zone of the backend clock.
		// Default "America/Chicago".
		BusinessTimezone string `yaml:"businessTimezone"`
		// OverheadActivityType is the fixed activity code used for the
		// overhead confirmation phase. Default "OVRHD".
		OverheadActivityType string `yaml:"overheadActivityType"`
		// TickInterval is the period of the elapsed-time recomputation loop.
		// Default 1s.
		TickInterval time.Duration `yaml:"tickInterval"`
	}

	ApiServiceConfig struct {
		// HttpServer is the config for starting http.Server
		HttpServer HttpServerConfig `yaml:"httpServer"`
	}

	// HttpServerConfig is the config that will be mapped into http.Server
	HttpServerConfig struct {
		// Address optionally specifies the TCP address for the server to listen on,
		// in the form "host:port". If empty, ":http" (port 80) is used.
		Address string `yaml:"address"`
		// ReadTimeout is the maximum duration for reading the entire
		// request, including the body.
		ReadTimeout time.Duration `yaml:"readTimeout"`
		// WriteTimeout is the maximum duration before timing out
		// writes of the response.
		WriteTimeout time.Duration `yaml:"writeTimeout"`
		// TLSConfig optionally provides a TLS configuration for use
		// by ServeTLS and ListenAndServeTLS
		TLSConfig *tls.Config `yaml:"tlsConfig"`
		// the rest are less frequently used
		ReadHeaderTimeout time.Duration `yaml:"readHeaderTimeout"`
		IdleTimeout       time.Duration `yaml:"idleTimeout"`
		MaxHeaderBytes    int           `yaml:"maxHeaderBytes"`
	}

	DatabaseConfig struct {
		// SQL is the SQL database config for the timer session store
		SQL *SQL `yaml:"sql"`
	}
)

// NewConfig returns a new decoded Config struct from the given file path
func NewConfig(configPath string) (*Config, error) {
	log.Printf("Loading configuration for file %v", configPath)

	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	d := yaml.NewDecoder(file)
	if err := d.Decode(&config); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) String() string {
	out, err := json.Marshal(c)
	if err != nil {
		return fmt.Sprintf("failed to serialize config: %v", err)
	}
	return string(out)
}

const (
	DefaultBusinessTimezone     = "America/Chicago"
	DefaultOverheadActivityType = "OVRHD"
	DefaultTickInterval         = time.Second
	DefaultRequestTimeout       = 30 * time.Second
	DefaultOrderType            = "EREF"
	DefaultOrderCreatedSince    = "2025-06-01T00:00:00Z"
)

func (c *Config) ValidateAndSetDefaults() error {
	if c.Engine.UserID == "" {
		return fmt.Errorf("engine.userID is required")
	}
	if c.Gateway.TimeEntryServiceURL == "" {
		return fmt.Errorf("gateway.timeEntryServiceURL is required")
	}
	if c.Gateway.ConfirmationServiceURL == "" {
		return fmt.Errorf("gateway.confirmationServiceURL is required")
	}
	if c.Gateway.PersonnelServiceURL == "" {
		return fmt.Errorf("gateway.personnelServiceURL is required")
	}
	if c.Gateway.OrderServiceURL == "" {
		return fmt.Errorf("gateway.orderServiceURL is required")
	}
	if c.Gateway.RequestTimeout <= 0 {
		c.Gateway.RequestTimeout = DefaultRequestTimeout
	}
	if c.Gateway.OrderType == "" {
		c.Gateway.OrderType = DefaultOrderType
	}
	if c.Gateway.OrderCreatedSince == "" {
		c.Gateway.OrderCreatedSince = DefaultOrderCreatedSince
	}
	if c.Engine.BusinessTimezone == "" {
		c.Engine.BusinessTimezone = DefaultBusinessTimezone
	}
	if c.Engine.OverheadActivityType == "" {
		c.Engine.OverheadActivityType = DefaultOverheadActivityType
	}
	if c.Engine.TickInterval <= 0 {
		c.Engine.TickInterval = DefaultTickInterval
	}
	if c.Database != nil && c.Database.SQL == nil {
		return fmt.Errorf("database.sql is required when database is configured")
	}
	return nil
}
