/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Exprtree Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/exprtree/core/expr"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable that points at a config file
const EnvConfigPath = "EXPRTREE_CONFIG"

// Config holds the complete application configuration
type Config struct {
	Parser ParserConfig `toml:"parser" yaml:"parser"`
	Output OutputConfig `toml:"output" yaml:"output"`
	Server ServerConfig `toml:"server" yaml:"server"`
}

// ParserConfig holds parser limits
type ParserConfig struct {
	// MaxDepth bounds tree nesting. Unset means 10000; a negative value
	// disables the limit.
	MaxDepth int `toml:"max_depth" yaml:"max_depth"`
}

// OutputConfig holds presentation settings for the command line
type OutputConfig struct {
	Format string `toml:"format" yaml:"format"` // debug, tree, repr, json or proto
	Color  string `toml:"color" yaml:"color"`   // auto, always or never
}

// ServerConfig holds settings for the parse server
type ServerConfig struct {
	Host         string   `toml:"host" yaml:"host"`
	Port         int      `toml:"port" yaml:"port"`
	ReadTimeout  Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout" yaml:"write_timeout"`
	MaxExprBytes int      `toml:"max_expr_bytes" yaml:"max_expr_bytes"`
}

// Duration wraps time.Duration so it can be written as "5s" in config files
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file is present
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads a TOML or YAML config file, chosen by extension
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadFromEnv loads the file named by EXPRTREE_CONFIG, or the first default
// location that exists. Without any file it returns Default().
func LoadFromEnv() (*Config, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return Load(path)
	}

	defaultPaths := []string{
		"./exprtree.toml",
		"./exprtree.yaml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		defaultPaths = append(defaultPaths, filepath.Join(home, ".config/exprtree/config.toml"))
	}
	for _, p := range defaultPaths {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}
	return Default(), nil
}

func (c *Config) applyDefaults() {
	if c.Parser.MaxDepth == 0 {
		c.Parser.MaxDepth = 10000
	}
	if c.Output.Format == "" {
		c.Output.Format = "debug"
	}
	if c.Output.Color == "" {
		c.Output.Color = "auto"
	}
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8097
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 5 * time.Second
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = 10 * time.Second
	}
	if c.Server.MaxExprBytes == 0 {
		c.Server.MaxExprBytes = 64 * 1024
	}
}

// Validate checks the values a file may have set out of range
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "debug", "tree", "repr", "json", "proto":
	default:
		return fmt.Errorf("unknown output.format %q", c.Output.Format)
	}
	switch c.Output.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("unknown output.color %q", c.Output.Color)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Server.MaxExprBytes < 0 {
		return fmt.Errorf("server.max_expr_bytes must not be negative, got %d", c.Server.MaxExprBytes)
	}
	return nil
}

// ParserOptions returns the expr options matching the parser section
func (c *Config) ParserOptions() []expr.Option {
	return []expr.Option{expr.WithMaxDepth(c.Parser.MaxDepth)}
}

// Address returns the host:port the server listens on
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}
