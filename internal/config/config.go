// Package config handles loading and validating application configuration.
//
// Values are resolved in this order (later sources win):
//  1. env-default tags on the structs below
//  2. an optional YAML file (CONFIG_PATH env var or --config flag)
//  3. a .env file in the working directory, if one exists
//  4. real environment variables
//
// Every key can be supplied through the environment alone, so a bare
// `PORT=3000 DATABASE_NAME=school students-api` works without any file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Runtime environments accepted in NODE_ENV.
const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

// Database dialects the connector knows how to open.
const (
	DialectMySQL    = "mysql"
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden by the
// corresponding environment variable (env:"...").
type Config struct {
	// Env selects log format, gin mode and schema-sync behaviour.
	Env string `yaml:"env" env:"NODE_ENV" env-default:"development" validate:"oneof=development test production"`

	HTTPServer `yaml:"http_server"`

	Database Database `yaml:"database"`
}

// HTTPServer holds settings specific to the HTTP server.
type HTTPServer struct {
	Host string `yaml:"host" env:"HOST"`
	Port int    `yaml:"port" env:"PORT" env-default:"3000" validate:"min=1,max=65535"`
}

// Addr is the TCP address the server listens on, e.g. ":3000".
func (s HTTPServer) Addr() string {
	return s.Host + ":" + strconv.Itoa(s.Port)
}

// Database describes how to reach the relational database.
//
// For the sqlite dialect Name is the path of the database file
// (or a "file:...?mode=memory" URI) and the network fields are ignored.
type Database struct {
	Dialect  string `yaml:"dialect" env:"DATABASE_DIALECT" env-default:"mysql" validate:"oneof=mysql postgres sqlite"`
	Host     string `yaml:"host" env:"DATABASE_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"DATABASE_PORT" validate:"min=0,max=65535"`
	Name     string `yaml:"name" env:"DATABASE_NAME"`
	User     string `yaml:"user" env:"DATABASE_USER" env-default:"root"`
	Password string `yaml:"password" env:"DATABASE_PASSWORD"`

	// ResetSequence rewinds the students id counter after each successful
	// delete so numbering restarts from the lowest free id.
	ResetSequence bool `yaml:"reset_sequence" env:"DATABASE_RESET_SEQUENCE" env-default:"false"`
}

// EffectivePort returns Port, or the dialect's well-known port when unset.
func (d Database) EffectivePort() int {
	if d.Port != 0 {
		return d.Port
	}
	switch d.Dialect {
	case DialectPostgres:
		return 5432
	case DialectMySQL:
		return 3306
	}
	return 0
}

// ForceSync reports whether startup should drop and recreate the schema.
// Only the test environment does this.
func (c *Config) ForceSync() bool {
	return c.Env == EnvTest
}

// Load reads configuration from the optional YAML file at path (pass ""
// to skip the file) and the environment, then validates the result.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config.Load: read .env: %w", err)
	}

	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config.Load: config file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: read env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad resolves the config path from CONFIG_PATH or the --config flag
// and calls Load. Functions prefixed with "Must" may terminate the
// process: if this returns, the config is valid.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot load config: %s", err.Error())
	}
	return cfg
}

func (c *Config) validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: invalid value %v (%s)", e.Namespace(), e.Value(), e.ActualTag()))
	}
	return fmt.Errorf("config: %s", strings.Join(msgs, "; "))
}
