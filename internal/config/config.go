package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SheetConfig describes one subscribed spreadsheet that the scheduler
// re-converts on the refresh cron. One-shot CLI and web conversions do
// not need subscriptions.
type SheetConfig struct {
	// Link is the shareable spreadsheet link.
	Link string `yaml:"link" json:"link"`
	// ID names the output calendar file (<id>.ics) and tags log lines.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the Web UI and API.
	Listen string `yaml:"listen" json:"listen"`

	// OutputDir receives scheduled re-conversion output.
	OutputDir string `yaml:"output_dir" json:"output_dir"`

	// TempDir receives per-request web conversion output, served back
	// via /download/.
	TempDir string `yaml:"temp_dir" json:"temp_dir"`

	// NameProbe and BirthdayProbe are the phrases column titles are
	// scored against when guessing which column is which.
	NameProbe     string `yaml:"name_probe" json:"name_probe"`
	BirthdayProbe string `yaml:"birthday_probe" json:"birthday_probe"`

	// RefreshCron is a cron-style schedule (e.g. "0 3 * * *") for
	// re-converting the subscribed sheets. Empty disables the scheduler.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// Sheets is the list of subscribed spreadsheets.
	Sheets []SheetConfig `yaml:"sheets" json:"sheets"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:        "127.0.0.1:8000",
		OutputDir:     "./calendars",
		TempDir:       os.TempDir(),
		NameProbe:     "your name",
		BirthdayProbe: "your birthday",
		RefreshCron:   "",
		Sheets:        []SheetConfig{},
		LogLevel:      "info",
		BasicAuth:     nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly. Empty probes would
// make similarity scoring degenerate, so they always get a default.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8000"
	}
	if c.OutputDir == "" {
		c.OutputDir = "./calendars"
	}
	if c.TempDir == "" {
		c.TempDir = os.TempDir()
	}
	if c.NameProbe == "" {
		c.NameProbe = "your name"
	}
	if c.BirthdayProbe == "" {
		c.BirthdayProbe = "your birthday"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Sheets == nil {
		c.Sheets = []SheetConfig{}
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist: create parent directory if needed,
//     write a default config with 0600 perms, and return the default.
//   - If the file exists: read YAML, unmarshal, normalize defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Return cfg with the error so the caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path atomically
// (temp file + rename) with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".complendar-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save is a convenience method that delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
