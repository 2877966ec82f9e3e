package repo

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is the repository config file, kept at the repo root.
const ConfigFileName = "config.toml"

// Storage backends.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
)

// Config stores repository-local settings.
type Config struct {
	User    UserConfig    `toml:"user"`
	Storage StorageConfig `toml:"storage"`
	Sign    SignConfig    `toml:"sign"`
}

// UserConfig identifies the author stamped into commits.
type UserConfig struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

// StorageConfig selects and tunes the storage backend.
type StorageConfig struct {
	// Backend is "file" (loose objects + ref files) or "badger".
	Backend string `toml:"backend"`
	// Compression stores file-backend objects zstd-compressed at rest.
	Compression bool `toml:"compression"`
}

// SignConfig configures commit signing.
type SignConfig struct {
	// Key is the path to an SSH private key; empty disables signing.
	Key string `toml:"key"`
}

// DefaultConfig returns the settings Init uses when given none.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{Backend: BackendFile, Compression: true},
	}
}

// LoadConfig reads a TOML config file. The caller distinguishes a missing
// file via os.IsNotExist.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if strings.TrimSpace(cfg.Storage.Backend) == "" {
		cfg.Storage.Backend = BackendFile
	}
	return cfg, nil
}

// WriteConfig atomically writes a TOML config file.
func WriteConfig(path string, cfg *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: encode: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write config: rename: %w", err)
	}
	return nil
}

// identity renders the configured user as "Name <email>", falling back to
// a bare name or a neutral default.
func (r *Repo) identity() string {
	name := strings.TrimSpace(r.Config.User.Name)
	email := strings.TrimSpace(r.Config.User.Email)
	switch {
	case name != "" && email != "":
		return fmt.Sprintf("%s <%s>", name, email)
	case name != "":
		return name
	default:
		return "grove"
	}
}
