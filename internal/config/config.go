// Package config reads the process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/switchyard/internal/logging"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Prefix is prepended to every variable name.
const Prefix = "SWITCHYARD_"

// ErrParsingConfig is returned when environment variables cannot be parsed into Config.
var ErrParsingConfig = errors.New("failed to parse environment variables into config")

// Config holds the settings shared by the commands. Flags override it.
type Config struct {
	Dir           string `env:"DIR" envDefault:"."`             // Dir is the machine catalog directory.
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`    // LogLevel is debug, info, warn or error.
	LogFormat     string `env:"LOG_FORMAT" envDefault:"text"`   // LogFormat is text or json.
	MaxChainDepth int    `env:"MAX_CHAIN_DEPTH" envDefault:"0"` // MaxChainDepth bounds one Advance; 0 keeps the engine default.

	HTTP HTTP `envPrefix:"HTTP_"`
	MCP  MCP  `envPrefix:"MCP_"`
}

// HTTP configures the serve command.
type HTTP struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
	Metrics         bool          `env:"METRICS" envDefault:"true"`
}

// MCP configures the mcp command.
type MCP struct {
	Transport string `env:"TRANSPORT" envDefault:"stdio"` // stdio or sse
	Port      int    `env:"PORT" envDefault:"8081"`
}

// Load reads the optional dotenv files (".env" when none are given) and then
// parses the environment. Variables already set win over dotenv values.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load dotenv: %w", err)
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: Prefix}); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// Logger builds the logger described by the config.
func (c Config) Logger() (*slog.Logger, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(c.LogFormat)
	if err != nil {
		return nil, err
	}
	return logging.NewWriter(os.Stderr, level, format), nil
}
