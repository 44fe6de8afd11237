package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the persistent application configuration
type Config struct {
	// Research API the dashboard and CLI talk to
	API APIConfig `json:"api"`

	// Terminal UI preferences
	UI UIConfig `json:"ui"`

	// Development backend
	Dev DevConfig `json:"dev"`
}

// APIConfig holds the remote API settings
type APIConfig struct {
	URL      string   `json:"url"`
	Timeout  Duration `json:"timeout"` // 0 disables the per-request timeout
	Username string   `json:"username,omitempty"`
	Password string   `json:"password,omitempty"`
}

// UIConfig holds UI preferences
type UIConfig struct {
	RowHeight    int  `json:"row_height"`    // lines per article row
	AutoLogin    bool `json:"auto_login"`    // log in with the stored credentials on start
	DebugOverlay bool `json:"debug_overlay"` // open with the debug overlay visible
}

// DevConfig holds settings for minescope-devserver
type DevConfig struct {
	Addr           string   `json:"addr"`
	DBPath         string   `json:"db_path"`
	ArxivURL       string   `json:"arxiv_url"`
	ArxivQuery     string   `json:"arxiv_query"`
	ArxivMax       int      `json:"arxiv_max_results"`
	JWTSecret      string   `json:"jwt_secret,omitempty"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// Duration is a time.Duration that reads and writes as "30s" in JSON. Plain
// numbers are taken as seconds.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var secs float64
		if err2 := json.Unmarshal(data, &secs); err2 != nil {
			return fmt.Errorf("duration: %w", err)
		}
		*d = Duration(secs * float64(time.Second))
		return nil
	}
	v, err := parseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func parseDuration(s string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("duration %q: %w", s, err)
	}
	return v, nil
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			URL:     "http://localhost:5000",
			Timeout: Duration(30 * time.Second),
		},
		UI: UIConfig{
			RowHeight: 5,
		},
		Dev: DevConfig{
			Addr:           ":5000",
			DBPath:         "minescope.db",
			ArxivURL:       "http://export.arxiv.org/api/query",
			ArxivQuery:     `cat:cs.LG AND (mining OR metallurgy OR "mineral processing")`,
			ArxivMax:       100,
			AllowedOrigins: []string{"*"},
		},
	}
}

// Dir returns the minescope state directory
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".minescope")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(Dir(), "config.json")
}

// Load reads the config file at ConfigPath, a .env file in the working
// directory if present, and environment overrides.
func Load() (*Config, error) {
	cfg, err := LoadFile(ConfigPath())
	if err != nil {
		return nil, err
	}
	if err := cfg.LoadEnvFile(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	cfg.AutoPopulateFromEnv()
	return cfg, nil
}

// LoadFile reads config from path, or returns defaults when it does not
// exist. Fields missing from the file keep their defaults.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes config to ConfigPath
func (c *Config) Save() error {
	return c.SaveFile(ConfigPath())
}

// SaveFile writes config to path
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600) // holds credentials
}

// AutoPopulateFromEnv applies MINESCOPE_* environment overrides
func (c *Config) AutoPopulateFromEnv() {
	c.apply(os.Getenv)
}

// LoadEnvFile applies MINESCOPE_* keys from a dotenv file without touching
// the process environment. Keys already set in the environment win.
func (c *Config) LoadEnvFile(path string) error {
	vars, err := godotenv.Read(path)
	if err != nil {
		return err
	}
	c.apply(func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return vars[key]
	})
	return nil
}

func (c *Config) apply(getenv func(string) string) {
	if v := getenv("MINESCOPE_API_URL"); v != "" {
		c.API.URL = v
	}
	if v := getenv("MINESCOPE_API_TIMEOUT"); v != "" {
		if d, err := parseDuration(v); err == nil {
			c.API.Timeout = Duration(d)
		}
	}
	if v := getenv("MINESCOPE_USERNAME"); v != "" {
		c.API.Username = v
	}
	if v := getenv("MINESCOPE_PASSWORD"); v != "" {
		c.API.Password = v
	}
	if v := getenv("MINESCOPE_DEV_ADDR"); v != "" {
		c.Dev.Addr = v
	}
	if v := getenv("MINESCOPE_DEV_DB"); v != "" {
		c.Dev.DBPath = v
	}
	if v := getenv("MINESCOPE_ARXIV_URL"); v != "" {
		c.Dev.ArxivURL = v
	}
	if v := getenv("MINESCOPE_JWT_SECRET"); v != "" {
		c.Dev.JWTSecret = v
	}
}

// HasCredentials reports whether both username and password are set
func (c *Config) HasCredentials() bool {
	return c.API.Username != "" && c.API.Password != ""
}
