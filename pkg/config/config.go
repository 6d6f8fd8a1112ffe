package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	xdgAppName = "taskdump"
	configFile = "config.yaml"

	// EnvPrefix prefixes environment overrides, e.g. TASKDUMP_API_KEY.
	EnvPrefix = "TASKDUMP"
)

// Configuration keys, shared by the config file, the environment and flags.
const (
	KeySource       = "source"
	KeyAPIKey       = "api_key"
	KeyAPIURL       = "api_url"
	KeyTaskBin      = "task_bin"
	KeyExportFormat = "export_format"
	KeyExportPath   = "export_path"
	KeyPretty       = "pretty"
	KeyTimeout      = "timeout"
)

type Config struct {
	Source       string        `yaml:"source,omitempty" mapstructure:"source"`
	APIKey       string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	APIURL       string        `yaml:"api_url,omitempty" mapstructure:"api_url"`
	TaskBin      string        `yaml:"task_bin,omitempty" mapstructure:"task_bin"`
	ExportFormat string        `yaml:"export_format,omitempty" mapstructure:"export_format"`
	ExportPath   string        `yaml:"export_path,omitempty" mapstructure:"export_path"`
	Pretty       bool          `yaml:"pretty,omitempty" mapstructure:"pretty"`
	Timeout      time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`
}

// Keys lists every key accepted by Set, sorted.
func Keys() []string {
	keys := []string{KeySource, KeyAPIKey, KeyAPIURL, KeyTaskBin, KeyExportFormat, KeyExportPath, KeyPretty, KeyTimeout}
	sort.Strings(keys)
	return keys
}

func GetConfigPath() (string, error) {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, xdgAppName, configFile), nil
	}
	xdgHome, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(xdgHome, ".config", xdgAppName, configFile), nil
}

// NewViper returns a viper instance reading TASKDUMP_* environment variables
// and the config file. cfgFile overrides the default location; a missing
// default file is not an error.
func NewViper(cfgFile string) (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault(KeySource, "")
	v.SetDefault(KeyAPIKey, "")
	v.SetDefault(KeyAPIURL, "")
	v.SetDefault(KeyTaskBin, "task")
	v.SetDefault(KeyExportFormat, "")
	v.SetDefault(KeyExportPath, "")
	v.SetDefault(KeyPretty, false)
	v.SetDefault(KeyTimeout, time.Minute)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", cfgFile, err)
		}
		return v, nil
	}

	path, err := GetConfigPath()
	if err != nil {
		return v, nil
	}
	if _, err := os.Stat(path); err != nil {
		return v, nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return v, nil
}

// FromViper decodes the effective configuration.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config file only, without environment overrides. A missing
// file yields an empty config.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	encoder := yaml.NewEncoder(f)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return err
	}
	return encoder.Close()
}

// Set assigns a single key from its string form.
func (c *Config) Set(key, value string) error {
	switch key {
	case KeySource:
		if value != "local" && value != "remote" {
			return fmt.Errorf("source must be %q or %q, got %q", "local", "remote", value)
		}
		c.Source = value
	case KeyAPIKey:
		c.APIKey = value
	case KeyAPIURL:
		c.APIURL = value
	case KeyTaskBin:
		c.TaskBin = value
	case KeyExportFormat:
		c.ExportFormat = value
	case KeyExportPath:
		c.ExportPath = value
	case KeyPretty:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("pretty must be a boolean: %w", err)
		}
		c.Pretty = b
	case KeyTimeout:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("timeout must be a duration such as 30s: %w", err)
		}
		c.Timeout = d
	default:
		return fmt.Errorf("unknown config key %q (known keys: %s)", key, strings.Join(Keys(), ", "))
	}
	return nil
}
