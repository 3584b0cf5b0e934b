package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"
)

var xdgConfigPath string

func init() {
	// The xdg package resolves its paths once at import time, and on
	// non-*nix systems it disagrees with where this file should live. Pin
	// XDG_CONFIG_HOME to the freedesktop default before asking it for a
	// path.
	if os.Getenv("XDG_CONFIG_HOME") == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			panic(errors.Wrap(err, "error determining user home directory"))
		}
		if err = os.Setenv(
			"XDG_CONFIG_HOME",
			filepath.Join(userHome, ".config"),
		); err != nil {
			panic(errors.Wrap(err, "error setting XDG_CONFIG_HOME"))
		}
		xdg.Reload()
	}
	var err error
	if xdgConfigPath, err =
		xdg.ConfigFile(filepath.Join("foundation", "config")); err != nil {
		panic(errors.Wrap(err, "error determining XDG config path"))
	}
}

// CLIConfig represents the CLI's stored preferences. Every field here only
// supplies a default; the corresponding command line flags always win.
type CLIConfig struct {
	// DefaultCluster is the cluster commands target when --cluster is not
	// given. Empty means the current kubeconfig context.
	DefaultCluster string `json:"defaultCluster,omitempty"`
	// DefaultRegion is the AWS region commands use when --region is not
	// given.
	DefaultRegion string `json:"defaultRegion,omitempty"`
}

// LoadCLIConfig loads CLI configuration from a file in the foundation home
// directory. A missing file is not an error; it simply yields the zero
// configuration.
func LoadCLIConfig() (CLIConfig, error) {
	return loadCLIConfig(xdgConfigPath)
}

func loadCLIConfig(configPath string) (CLIConfig, error) {
	var cfg CLIConfig
	if _, err := os.Stat(configPath); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrap(err, "os.Stat")
	}
	configBytes, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, errors.Wrapf(
			err,
			"error reading configuration file at %s",
			configPath,
		)
	}
	if err := yaml.Unmarshal(configBytes, &cfg); err != nil {
		return cfg, errors.Wrapf(
			err,
			"error parsing configuration file at %s",
			configPath,
		)
	}
	return cfg, nil
}

// SaveCLIConfig saves CLI configuration to a file in the foundation home
// directory.
func SaveCLIConfig(config CLIConfig) error {
	return saveCLIConfig(config, xdgConfigPath)
}

func saveCLIConfig(config CLIConfig, configPath string) error {
	configBytes, err := yaml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "error marshaling config")
	}
	if err :=
		os.WriteFile(configPath, configBytes, 0600); err != nil {
		return errors.Wrapf(err, "error writing to %s", configPath)
	}
	return nil
}

// DeleteCLIConfig deletes the CLI configuration file from the foundation home
// directory.
func DeleteCLIConfig() error {
	return deleteCLIConfig(xdgConfigPath)
}

func deleteCLIConfig(configPath string) error {
	if err := os.RemoveAll(configPath); err != nil {
		return errors.Wrap(err, "error deleting configuration")
	}
	return nil
}
