/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. DB_HOST.
const EnvPrefix = "DB"

var supportedTypes = []string{TypeMySQL, TypePostgres, TypeSQLite}

// LoadConfig builds a Config from DefaultConfig, the YAML file at path (skipped
// when path is empty), an optional .env file and DB_* environment variables,
// in that order of precedence from lowest to highest.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to parse config file %s", path)
		}
	}
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.ConnectionConfig.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads the given env files, or ".env" when none are given.
// Missing files are skipped and variables already set are kept.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return errors.Wrapf(err, "failed to load env file %s", f)
		}
	}
	return nil
}

// ApplyEnv overrides cfg from DB_* environment variables. Unset variables
// leave the current value alone.
func ApplyEnv(cfg *Config) error {
	targets := []any{&cfg.ConnectionConfig, &cfg.DataMigrateConfig, &cfg.DataInitConfig}
	for _, t := range targets {
		if err := envconfig.Process(EnvPrefix, t); err != nil {
			return errors.Wrap(err, "failed to read environment overrides")
		}
	}
	return nil
}

// Validate checks the database type and postgres driver.
func (c *ConnectionConfig) Validate() error {
	switch c.Type {
	case TypeMySQL, TypeSQLite:
	case TypePostgres:
		if c.Driver != "" && c.Driver != DriverPQ && c.Driver != DriverPGX {
			return errors.Newf("unsupported postgres driver: %s, supported drivers: %v", c.Driver, []string{DriverPQ, DriverPGX})
		}
	default:
		return errors.Newf("unsupported database type: %s, supported types: %v", c.Type, supportedTypes)
	}
	return nil
}
