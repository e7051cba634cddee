// Package config builds the immutable configuration snapshot of a run.
//
// Layers are applied in increasing precedence:
//
//  1. built-in defaults ([Default])
//  2. the TOML file (labelsheet.toml unless --config names another)
//  3. LABELSHEET_* environment variables
//  4. command-line flags the user actually set
//
// A missing file is not an error. The snapshot is taken once at startup
// and never re-read. The persisted label counter is not part of it: the
// counter store owns that value (see package counter).
//
// # Start number
//
// The file's start key is the initial value, used only while nothing has
// been persisted. A start given through the environment or a flag is an
// explicit override and lands in [Config.StartOverride].
//
// # Example file
//
//	start = 1
//	output = "label-sheet.pdf"
//
//	[sheet]
//	rows = 27
//	columns = 7
//	page_size = "A4"
//
//	[sheet.margins]
//	left = 0.8
//	top = 1.0
//
//	[store]
//	backend = "redis"
//	addr = "localhost:6379"
//	name = "scanner"
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/labelsheet/pkg/counter"
	"github.com/matzehuels/labelsheet/pkg/document"
	"github.com/matzehuels/labelsheet/pkg/errors"
	"github.com/matzehuels/labelsheet/pkg/render"
	"github.com/matzehuels/labelsheet/pkg/render/sink"
)

// DefaultFile is the configuration file looked up in the working directory.
const DefaultFile = "labelsheet.toml"

// DefaultOutput is the file name of the generated sheet.
const DefaultOutput = "label-sheet.pdf"

// Store backends.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendMySQL    = "mysql"
)

// Backends lists the valid store backends.
var Backends = []string{BackendFile, BackendMemory, BackendRedis, BackendMongo, BackendPostgres, BackendMySQL}

// DefaultCounterName names the counter in shared backends.
const DefaultCounterName = "default"

// DefaultServerAddr is the listen address of the HTTP server.
const DefaultServerAddr = "localhost:8080"

// Config is the configuration snapshot of one process.
type Config struct {
	Start     int               `toml:"start"`
	Output    string            `toml:"output"`
	OutputDir string            `toml:"output_dir"`
	Format    string            `toml:"format"`
	Font      string            `toml:"font"`
	Sheet     document.Geometry `toml:"sheet"`
	Store     Store             `toml:"store"`
	Server    Server            `toml:"server"`

	// StartOverride is set when start came from the environment or a flag.
	StartOverride *int `toml:"-"`

	// File is the configuration file path. It is set by Load even if the
	// file does not exist, since the file store creates it on first commit.
	File string `toml:"-"`

	// Found reports whether File existed and was read.
	Found bool `toml:"-"`

	// Undecoded lists keys of the file that were not recognized.
	Undecoded []string `toml:"-"`
}

// Store selects and configures the counter backend.
type Store struct {
	Backend string `toml:"backend"`

	// Path of the file backend. Defaults to the configuration file.
	Path string `toml:"path"`

	// Shared backends.
	Name        string        `toml:"name"`
	Addr        string        `toml:"addr"`
	Password    string        `toml:"password"`
	DB          int           `toml:"db"`
	URI         string        `toml:"uri"`
	Database    string        `toml:"database"`
	Collection  string        `toml:"collection"`
	DSN         string        `toml:"dsn"`
	Table       string        `toml:"table"`
	CreateTable bool          `toml:"create_table"`
	LockTTL     time.Duration `toml:"lock_ttl"`

	// LockTimeout bounds how long a run waits for the store lock.
	LockTimeout time.Duration `toml:"lock_timeout"`
}

// Server configures the HTTP surface.
type Server struct {
	Addr      string `toml:"addr"`
	JWTSecret string `toml:"jwt_secret"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Start:  counter.DefaultStart,
		Output: DefaultOutput,
		Format: render.FormatPDF,
		Font:   "Helvetica",
		Sheet:  document.DefaultGeometry(),
		Store: Store{
			Backend:     BackendFile,
			Name:        DefaultCounterName,
			LockTimeout: counter.DefaultLockTimeout,
		},
		Server: Server{Addr: DefaultServerAddr},
	}
}

// Validate checks the snapshot. Geometry errors are reported before any
// number is allocated.
func (c *Config) Validate() error {
	if c.Start < 0 {
		return errors.New(errors.ErrCodeConfiguration, "start must not be negative, got %d", c.Start)
	}
	if c.StartOverride != nil && *c.StartOverride < 0 {
		return errors.New(errors.ErrCodeConfiguration, "start must not be negative, got %d", *c.StartOverride)
	}
	if err := render.ValidateFormat(c.Format); err != nil {
		return errors.Wrap(errors.ErrCodeConfiguration, err, "format")
	}
	if c.Format == render.FormatPDF {
		if err := sink.ValidateFont(c.Font); err != nil {
			return err
		}
	}
	if err := errors.ValidateOutputName(c.Output); err != nil {
		return err
	}
	if err := c.Sheet.Validate(); err != nil {
		return err
	}
	return c.Store.Validate()
}

// Validate checks the backend selection.
func (s Store) Validate() error {
	if s.LockTimeout < 0 || s.LockTTL < 0 {
		return errors.New(errors.ErrCodeConfiguration, "lock durations must not be negative")
	}
	switch s.Backend {
	case BackendFile, BackendMemory:
		return nil
	case BackendRedis, BackendMongo, BackendPostgres, BackendMySQL:
		return errors.ValidateCounterName(s.Name)
	default:
		return errors.New(errors.ErrCodeConfiguration, "unknown store backend %q (must be one of: %s)",
			s.Backend, strings.Join(Backends, ", "))
	}
}

// Load builds a snapshot from defaults, the file at path and the process
// environment. An empty path means DefaultFile.
func Load(path string) (*Config, error) {
	return LoadWith(path, os.LookupEnv)
}

// LoadWith is Load with an explicit environment lookup.
func LoadWith(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultFile
	}
	cfg.File = path
	if err := cfg.readFile(path); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfiguration, err, "read %s", path)
	}

	var file fileConfig
	file.Config = c
	md, err := toml.Decode(string(data), &file)
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfiguration, err, "parse %s", path)
	}
	if file.RawStart != nil {
		c.Start = int(*file.RawStart)
	}
	for _, k := range md.Undecoded() {
		c.Undecoded = append(c.Undecoded, k.String())
	}
	c.Found = true
	return nil
}

// fileConfig decodes start separately so a quoted number, as written by
// older tools, is accepted.
type fileConfig struct {
	*Config
	RawStart *startValue `toml:"start"`
}

type startValue int64

// UnmarshalTOML implements toml.Unmarshaler.
func (v *startValue) UnmarshalTOML(data any) error {
	switch x := data.(type) {
	case int64:
		*v = startValue(x)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return errors.New(errors.ErrCodeConfiguration, "start: %q is not a number", x)
		}
		*v = startValue(n)
	default:
		return errors.New(errors.ErrCodeConfiguration, "start: want an integer, got %T", data)
	}
	return nil
}

// StorePath returns the file backing the file store.
func (c *Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	if c.File != "" {
		return c.File
	}
	return DefaultFile
}
