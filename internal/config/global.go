// Package config loads the mujson configuration and resolves the path of
// the account database.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ssrmu/mujson/internal/account"
	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/mujson/config.yml.
type GlobalConfig struct {
	MudbFile  string         `yaml:"mudb_file,omitempty"`
	IndexFile string         `yaml:"index_file,omitempty"`
	Defaults  DefaultsConfig `yaml:"defaults,omitempty"`
}

// DefaultsConfig overrides the values new accounts start from.
type DefaultsConfig struct {
	Method     string  `yaml:"method,omitempty"`
	Protocol   string  `yaml:"protocol,omitempty"`
	Obfs       string  `yaml:"obfs,omitempty"`
	TransferGB float64 `yaml:"transfer_gb,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "mujson"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
	// DefaultMudbFile is used when no database path is configured.
	DefaultMudbFile = "mudb.json"
	// EnvMudbFile overrides mudb_file from the config file.
	EnvMudbFile = "MUJSON_MUDB_FILE"
	// EnvConfigFile points at an alternative config file.
	EnvConfigFile = "MUJSON_CONFIG"
)

// GlobalConfigPath returns the path to the global config file.
// Respects MUJSON_CONFIG and XDG_CONFIG_HOME, defaults to
// ~/.config/mujson/config.yml.
func GlobalConfigPath() string {
	if path := os.Getenv(EnvConfigFile); path != "" {
		return ExpandTilde(path)
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path. A missing file yields an empty
// config.
func LoadFile(path string) (*GlobalConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	if cfg.MudbFile != "" {
		cfg.MudbFile = ExpandTilde(cfg.MudbFile)
	}
	if cfg.IndexFile != "" {
		cfg.IndexFile = ExpandTilde(cfg.IndexFile)
	}
	if cfg.Defaults.TransferGB < 0 {
		return nil, fmt.Errorf("invalid defaults.transfer_gb: %v", cfg.Defaults.TransferGB)
	}

	return &cfg, nil
}

// ResolveMudbFile picks the database path. Precedence: flagValue, then
// MUJSON_MUDB_FILE, then mudb_file, then mudb.json in the working directory.
func (c *GlobalConfig) ResolveMudbFile(flagValue string) string {
	if flagValue != "" {
		return ExpandTilde(flagValue)
	}
	if env := os.Getenv(EnvMudbFile); env != "" {
		return ExpandTilde(env)
	}
	if c.MudbFile != "" {
		return c.MudbFile
	}
	return DefaultMudbFile
}

// ResolveIndexFile returns the SQLite index path for the database at
// mudbFile. Unless index_file is set, the index sits next to the database
// as a hidden file.
func (c *GlobalConfig) ResolveIndexFile(mudbFile string) string {
	if c.IndexFile != "" {
		return c.IndexFile
	}
	dir, base := filepath.Split(mudbFile)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "."+base+".index.db")
}

// AccountDefaults returns the configured defaults for new accounts. Unset
// fields fall back to the built-in values.
func (c *GlobalConfig) AccountDefaults() account.Defaults {
	d := account.BuiltinDefaults()
	if c.Defaults.Method != "" {
		d.Method = c.Defaults.Method
	}
	if c.Defaults.Protocol != "" {
		d.Protocol = c.Defaults.Protocol
	}
	if c.Defaults.Obfs != "" {
		d.Obfs = c.Defaults.Obfs
	}
	if c.Defaults.TransferGB > 0 {
		d.TransferEnable = GBToBytes(c.Defaults.TransferGB)
	}
	return d
}

// GBToBytes converts a quota in GiB to bytes, truncating any fraction of a
// byte.
func GBToBytes(gb float64) int64 {
	return int64(gb * float64(account.GiB))
}

// ExpandTilde expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandTilde(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
