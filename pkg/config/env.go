package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/labelsheet/pkg/errors"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "LABELSHEET_"

// envVar binds one environment variable to a configuration field.
type envVar struct {
	name  string
	apply func(c *Config, v string) error
}

// envVars lists the recognized variables without prefix.
var envVars = []envVar{
	{"START", func(c *Config, v string) error {
		n, err := atoi(v)
		if err != nil {
			return err
		}
		c.StartOverride = &n
		return nil
	}},
	{"OUTPUT", setString(func(c *Config) *string { return &c.Output })},
	{"OUTPUT_DIR", setString(func(c *Config) *string { return &c.OutputDir })},
	{"FORMAT", setString(func(c *Config) *string { return &c.Format })},
	{"FONT", setString(func(c *Config) *string { return &c.Font })},
	{"ROWS", setInt(func(c *Config) *int { return &c.Sheet.Rows })},
	{"COLUMNS", setInt(func(c *Config) *int { return &c.Sheet.Columns })},
	{"PAGE_SIZE", setString(func(c *Config) *string { return &c.Sheet.PageSize })},
	{"ORIENTATION", setString(func(c *Config) *string { return &c.Sheet.Orientation })},
	{"FONT_SIZE", setFloat(func(c *Config) *float64 { return &c.Sheet.FontSize })},
	{"STORE", setString(func(c *Config) *string { return &c.Store.Backend })},
	{"STORE_PATH", setString(func(c *Config) *string { return &c.Store.Path })},
	{"STORE_NAME", setString(func(c *Config) *string { return &c.Store.Name })},
	{"STORE_ADDR", setString(func(c *Config) *string { return &c.Store.Addr })},
	{"STORE_PASSWORD", setString(func(c *Config) *string { return &c.Store.Password })},
	{"STORE_URI", setString(func(c *Config) *string { return &c.Store.URI })},
	{"STORE_DSN", setString(func(c *Config) *string { return &c.Store.DSN })},
	{"STORE_TABLE", setString(func(c *Config) *string { return &c.Store.Table })},
	{"STORE_LOCK_TTL", setDuration(func(c *Config) *time.Duration { return &c.Store.LockTTL })},
	{"STORE_LOCK_TIMEOUT", setDuration(func(c *Config) *time.Duration { return &c.Store.LockTimeout })},
	{"SERVER_ADDR", setString(func(c *Config) *string { return &c.Server.Addr })},
	{"JWT_SECRET", setString(func(c *Config) *string { return &c.Server.JWTSecret })},
}

// EnvNames returns the full names of the recognized variables.
func EnvNames() []string {
	names := make([]string, len(envVars))
	for i, e := range envVars {
		names[i] = EnvPrefix + e.name
	}
	return names
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		return nil
	}
	for _, e := range envVars {
		v, ok := lookup(EnvPrefix + e.name)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		if err := e.apply(c, strings.TrimSpace(v)); err != nil {
			return errors.Wrap(errors.ErrCodeConfiguration, err, "%s%s", EnvPrefix, e.name)
		}
	}
	return nil
}

func setString(field func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}

func setInt(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func setFloat(field func(*Config) *float64) func(*Config, string) error {
	return func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*field(c) = f
		return nil
	}
}

func atoi(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New(errors.ErrCodeConfiguration, "%q is not an integer", v)
	}
	return n, nil
}

func setDuration(field func(*Config) *time.Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*field(c) = d
		return nil
	}
}
