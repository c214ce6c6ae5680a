package main

import (
	"errors"
	"fmt"

	"github.com/xo/dburl"
)

type Config struct {
	Addr        string
	DatabaseDSN string
	TokenSecret string
	Production  bool
}

// loadConfig reads the process configuration through lookup, which is
// os.LookupEnv outside of tests.
func loadConfig(lookup func(string) (string, bool)) (Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return v
	}

	raw := get("DATABASE_URL")
	if raw == "" {
		return Config{}, errors.New("DATABASE_URL is not set")
	}
	dsn, err := parseDatabaseURL(raw)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Addr:        get("ADDR"),
		DatabaseDSN: dsn,
		TokenSecret: get("TOKEN_SECRET"),
		Production:  get("APP_ENV") == "production",
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	return cfg, nil
}

// parseDatabaseURL turns a connection URL such as sqlite:blog.db into the
// DSN handed to the sqlite driver.
func parseDatabaseURL(raw string) (string, error) {
	u, err := dburl.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing DATABASE_URL: %w", err)
	}
	switch u.Driver {
	case "sqlite3", "sqlite", "moderncsqlite":
	default:
		return "", fmt.Errorf("unsupported storage driver %q", u.Driver)
	}
	if u.DSN == "" {
		return "", errors.New("DATABASE_URL has no database path")
	}
	return u.DSN, nil
}
