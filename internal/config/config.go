package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

const (
	defaultAPIBaseURL = "http://localhost:8911"
	defaultDBPath     = "feeddeck.db"
	defaultPageSize   = 20
)

// Config holds runtime settings for the app.
type Config struct {
	APIBaseURL string
	DBPath     string
	PageSize   int
	LogPath    string
}

func LoadFromEnv() (Config, error) {
	cfg := Config{
		APIBaseURL: os.Getenv("FEEDDECK_API_BASE_URL"),
		DBPath:     os.Getenv("FEEDDECK_DB_PATH"),
		LogPath:    os.Getenv("FEEDDECK_LOG_PATH"),
	}

	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}

	if raw := os.Getenv("FEEDDECK_PAGE_SIZE"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("FEEDDECK_PAGE_SIZE must be an integer: %s", raw)
		}
		cfg.PageSize = size
	} else {
		cfg.PageSize = defaultPageSize
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.APIBaseURL == "" {
		return errors.New("APIBaseURL is required")
	}
	if c.APIBaseURL[len(c.APIBaseURL)-1] == '/' {
		return fmt.Errorf("APIBaseURL must not end with '/': %s", c.APIBaseURL)
	}
	if c.DBPath == "" {
		return errors.New("DBPath is required")
	}
	if c.PageSize < 1 {
		return fmt.Errorf("PageSize must be positive: %d", c.PageSize)
	}
	return nil
}
