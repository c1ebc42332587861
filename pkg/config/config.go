// Package config loads crateup's optional TOML configuration file.
//
// The file lives at $XDG_CONFIG_HOME/crateup/config.toml, falling back to
// ~/.config/crateup/config.toml. A missing file is not an error; every key
// has a default. Command-line flags override whatever the file sets.
//
//	cargo        = "/opt/rust/bin/cargo"
//	registry_url = "https://crates.io/api/v1"
//	timeout      = "15s"
//	attempts     = 3
//	locked       = true
//	ignore       = ["cargo-edit"]
//
//	[serve]
//	addr = ":8080"
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	cerrors "github.com/matzehuels/crateup/pkg/errors"
	"github.com/matzehuels/crateup/pkg/integrations"
	"github.com/matzehuels/crateup/pkg/integrations/crates"
)

const (
	appName  = "crateup"
	fileName = "config.toml"

	// DefaultAddr is where "serve" listens when nothing else is configured.
	DefaultAddr = "127.0.0.1:8080"
)

// Duration is a time.Duration written as a string such as "10s" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the decoded configuration file.
type Config struct {
	Cargo       string   `toml:"cargo"`        // cargo executable
	RegistryURL string   `toml:"registry_url"` // crates.io API root
	UserAgent   string   `toml:"user_agent"`   // replaces the default User-Agent when set
	Timeout     Duration `toml:"timeout"`      // per-request registry timeout
	Attempts    int      `toml:"attempts"`     // registry attempts per crate, including the first
	Locked      bool     `toml:"locked"`       // always pass --locked on update
	Strict      bool     `toml:"strict"`       // abort on the first failed lookup
	Ignore      []string `toml:"ignore"`       // crates never reinstalled
	Serve       Serve    `toml:"serve"`
}

// Serve configures the HTTP report server.
type Serve struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Cargo:       "cargo",
		RegistryURL: crates.DefaultBaseURL,
		Timeout:     Duration{integrations.DefaultTimeout},
		Attempts:    1,
		Serve:       Serve{Addr: DefaultAddr},
	}
}

// DefaultPath returns the configuration file location.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, fileName), nil
}

// Load reads the configuration at path, layered over [Default].
//
// When explicit is false a missing file yields the defaults. When the user
// named the file explicitly it must exist.
func Load(path string, explicit bool) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return nil, cerrors.Wrap(cerrors.ErrCodeInvalidConfig, err, "read %s", path)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, cerrors.Wrap(cerrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, cerrors.New(cerrors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Cargo == "" {
		return cerrors.New(cerrors.ErrCodeInvalidConfig, "cargo must not be empty")
	}
	if err := cerrors.ValidateURL(c.RegistryURL); err != nil {
		return cerrors.Wrap(cerrors.ErrCodeInvalidConfig, err, "registry_url")
	}
	if c.Timeout.Duration <= 0 {
		return cerrors.New(cerrors.ErrCodeInvalidConfig, "timeout must be positive, got %s", c.Timeout)
	}
	if c.Attempts < 1 {
		return cerrors.New(cerrors.ErrCodeInvalidConfig, "attempts must be at least 1, got %d", c.Attempts)
	}
	for _, name := range c.Ignore {
		if err := cerrors.ValidateCrateName(name); err != nil {
			return cerrors.Wrap(cerrors.ErrCodeInvalidConfig, err, "ignore")
		}
	}
	if c.Serve.Addr == "" {
		return cerrors.New(cerrors.ErrCodeInvalidConfig, "serve.addr must not be empty")
	}
	return nil
}
