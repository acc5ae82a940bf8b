package config

import (
	"errors"
	"os"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultPrefsDBName    = "prefs.db"
	DefaultLogFileName    = "taskdeck.log"
	DefaultAPIBaseURL     = "http://localhost:9000/todo"

	defaultRequestTimeoutSeconds = 15
)

type Keymap struct {
	Quit     string `toml:"quit"`
	Add      string `toml:"add"`
	Up       string `toml:"up"`
	Down     string `toml:"down"`
	Toggle   string `toml:"toggle"`
	Delete   string `toml:"delete"`
	Edit     string `toml:"edit"`
	Search   string `toml:"search"`
	Priority string `toml:"priority"`
	Theme    string `toml:"theme"`
	Reload   string `toml:"reload"`
	Confirm  string `toml:"confirm"`
	Cancel   string `toml:"cancel"`
}

type Config struct {
	APIBaseURL            string `toml:"api_base_url"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	PrefsDBPath           string `toml:"prefs_db_path"`
	LogPath               string `toml:"log_path"`
	Keys                  Keymap `toml:"keys"`
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	fillDefaults(&cfg)
	return cfg, nil
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func fillDefaults(cfg *Config) {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	if cfg.RequestTimeoutSeconds <= 0 {
		cfg.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}
	if cfg.PrefsDBPath == "" {
		cfg.PrefsDBPath = DefaultPrefsDBName
	}
	if cfg.LogPath == "" {
		cfg.LogPath = DefaultLogFileName
	}
}

func defaultConfig() Config {
	return Config{
		APIBaseURL:            DefaultAPIBaseURL,
		RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
		PrefsDBPath:           DefaultPrefsDBName,
		LogPath:               DefaultLogFileName,
		Keys: Keymap{
			Quit:     "q",
			Add:      "a",
			Up:       "k",
			Down:     "j",
			Toggle:   " ",
			Delete:   "d",
			Edit:     "e",
			Search:   "/",
			Priority: "p",
			Theme:    "t",
			Reload:   "r",
			Confirm:  "enter",
			Cancel:   "esc",
		},
	}
}
