// Package config resolves settings from defaults, an optional JSON or YAML
// config file and environment variables, in that order.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port int `json:"port" yaml:"port"`

	TVLBase    string `json:"tvl_url" yaml:"tvl_url"`
	CoinsBase  string `json:"coins_url" yaml:"coins_url"`
	YieldsBase string `json:"yields_url" yaml:"yields_url"`

	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	Limits Limits `json:"limits" yaml:"limits"`
}

type Limits struct {
	Protocols   int `json:"protocols" yaml:"protocols"`
	Pools       int `json:"pools" yaml:"pools"`
	ChartPoints int `json:"chart_points" yaml:"chart_points"`
}

func Default() Config {
	return Config{
		Port: 8080,

		TVLBase:    "https://api.llama.fi",
		CoinsBase:  "https://coins.llama.fi",
		YieldsBase: "https://yields.llama.fi",

		Timeout: 30 * time.Second,

		Limits: Limits{
			Protocols:   20,
			Pools:       30,
			ChartPoints: 30,
		},
	}
}

// Load builds the effective configuration. path may be empty.
func Load(path string) (Config, error) {
	config := Default()

	if path != "" {
		if err := parseFile(path, &config); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&config)

	return config, nil
}

func parseFile(path string, config *Config) error {
	data, err := os.ReadFile(path)

	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, config); err == nil {
		return nil
	}

	if err := yaml.Unmarshal(data, config); err == nil {
		return nil
	}

	return errors.New("failed to parse config file")
}

func applyEnv(config *Config) {
	if port, err := strconv.Atoi(os.Getenv("PORT")); err == nil && port > 0 {
		config.Port = port
	}

	if url := os.Getenv("DEFILLAMA_TVL_URL"); url != "" {
		config.TVLBase = url
	}

	if url := os.Getenv("DEFILLAMA_COINS_URL"); url != "" {
		config.CoinsBase = url
	}

	if url := os.Getenv("DEFILLAMA_YIELDS_URL"); url != "" {
		config.YieldsBase = url
	}

	if timeout, err := time.ParseDuration(os.Getenv("DEFILLAMA_TIMEOUT")); err == nil && timeout > 0 {
		config.Timeout = timeout
	}
}
