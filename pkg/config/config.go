package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EndpointEnvVar   = "NIMBUS_ENDPOINT"
	TokenEnvVar      = "NIMBUS_TOKEN"
	NamespacesEnvVar = "NIMBUS_NAMESPACES"
)

type Config struct {
	Endpoint   string   `yaml:"endpoint"`
	Token      string   `yaml:"token"`
	Namespaces []string `yaml:"namespaces"`

	WaitTimeout  time.Duration `yaml:"waitTimeout"`
	PollInterval time.Duration `yaml:"pollInterval"`
}

// Load assembles the configuration in increasing precedence: YAML file, env
// file, process environment. Both file arguments are optional.
func Load(configFile, envFile string) (*Config, error) {
	cfg := &Config{}

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	} else {
		_ = godotenv.Load() // optional .env in the working directory
	}

	if env := os.Getenv(EndpointEnvVar); env != "" {
		cfg.Endpoint = env
	}
	if env := os.Getenv(TokenEnvVar); env != "" {
		cfg.Token = env
	}
	if env := os.Getenv(NamespacesEnvVar); env != "" {
		cfg.Namespaces = nil
		for _, ns := range strings.Split(env, ",") {
			if ns = strings.TrimSpace(ns); ns != "" {
				cfg.Namespaces = append(cfg.Namespaces, ns)
			}
		}
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is empty; set it via config file or %s", EndpointEnvVar)
	}

	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint URL: %w", err)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid endpoint: missing host in %q", c.Endpoint)
	}

	if c.WaitTimeout < 0 {
		return fmt.Errorf("waitTimeout cannot be negative")
	}
	if c.PollInterval < 0 {
		return fmt.Errorf("pollInterval cannot be negative")
	}

	return nil
}
