package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultDialTimeout is the default dial timeout for node connections.
	DefaultDialTimeout = 4 * time.Second
	// DefaultRequestTimeout is the default timeout of a single RPC request.
	DefaultRequestTimeout = 4 * time.Second
)

// Version is the version of the tool, set at build time.
var Version string

// Config is the top level struct representing the configuration file.
type Config struct {
	ApplicationConfiguration ApplicationConfiguration `yaml:"ApplicationConfiguration"`
}

// LoadFile loads the configuration from the given YAML file. Unknown fields
// are an error.
func LoadFile(configPath string) (Config, error) {
	configData, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}
	return Load(configData)
}

// Load parses the YAML configuration and validates it.
func Load(configData []byte) (Config, error) {
	config := Config{
		ApplicationConfiguration: ApplicationConfiguration{
			DialTimeout:    DefaultDialTimeout,
			RequestTimeout: DefaultRequestTimeout,
		},
	}

	decoder := yaml.NewDecoder(bytes.NewReader(configData))
	decoder.KnownFields(true)
	err := decoder.Decode(&config)
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	err = config.ApplicationConfiguration.Validate()
	if err != nil {
		return Config{}, err
	}
	return config, nil
}
