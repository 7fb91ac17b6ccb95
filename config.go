package bridge

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Options are the options that can be used to configure the bridge.
// They can be read from environment variables with LoadOptions().
type Options struct {
	// Base URL of the Plexio addon, like "https://plexio.stream/addon/XXXXXXXX".
	// When empty, stream requests are answered with a "500 Internal Server Error" and an empty stream list.
	// Default "".
	PlexioAddonBase string `env:"PLEXIO_ADDON_BASE"`
	// Timeout for requests to Plexio.
	// Default 10 seconds.
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT"`
	// The interface to bind to.
	// "0.0.0.0" to bind to all interfaces. "localhost" to *exclude* requests from other machines.
	// Default "0.0.0.0".
	BindAddr string `env:"BIND_ADDR"`
	// The port to listen on.
	// Default 7000.
	Port int `env:"PORT"`
	// You can set a custom logger, or leave this empty to create a new one
	// with sane defaults and the LoggingLevel in these options.
	// Default nil.
	Logger *zap.Logger
	// The logging level.
	// Only logs with the same or a higher log level will be shown.
	// Accepts "debug", "info", "warn" and "error".
	// Default "info".
	LoggingLevel string `env:"LOG_LEVEL"`
	// The logging encoding. Accepts "console" and "json".
	// Default "console".
	LoggingEncoding string `env:"LOG_ENCODING"`
	// Flag for indicating whether requests should be logged.
	// Default false (meaning requests will be logged by default).
	DisableRequestLogging bool `env:"DISABLE_REQUEST_LOGGING"`
	// Flag for indicating whether IP addresses should be logged.
	// Default false.
	LogIPs bool `env:"LOG_IPS"`
	// Flag for indicating whether the user agent header should be logged.
	// Default false.
	LogUserAgent bool `env:"LOG_USER_AGENT"`
	// Flag for indicating whether the "/metrics" endpoint should be exposed.
	// Default false.
	Metrics bool `env:"METRICS"`
	// Flag for indicating whether you want to expose URL handlers for the Go profiler.
	// The URLs are be the standard ones: "/debug/pprof/...".
	// Default false.
	Profiling bool `env:"PROFILING"`
	// Flag for indicating whether the "ETag" header should be set for the manifest and the "If-None-Match" header checked.
	// Default false.
	HandleEtagManifest bool `env:"HANDLE_ETAG_MANIFEST"`
}

// DefaultOptions is an Options object with default values.
// For fields that aren't set here the zero value is the default value.
var DefaultOptions = Options{
	UpstreamTimeout: 10 * time.Second,
	BindAddr:        "0.0.0.0",
	Port:            7000,
	LoggingLevel:    "info",
	LoggingEncoding: "console",
}

// LoadOptions reads the options from environment variables.
// If a ".env" file exists in the working directory, its values are loaded into the environment first,
// without overriding variables that are already set.
// Options that aren't set are filled with the values from DefaultOptions.
func LoadOptions() (Options, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Options{}, fmt.Errorf("couldn't load .env file: %w", err)
	}
	opts := DefaultOptions
	if err := env.Parse(&opts); err != nil {
		return Options{}, fmt.Errorf("couldn't parse environment variables: %w", err)
	}
	return opts.withDefaults(), nil
}

// withDefaults returns a copy of opts where zero values are replaced by the values from DefaultOptions.
func (opts Options) withDefaults() Options {
	if opts.UpstreamTimeout == 0 {
		opts.UpstreamTimeout = DefaultOptions.UpstreamTimeout
	}
	if opts.BindAddr == "" {
		opts.BindAddr = DefaultOptions.BindAddr
	}
	if opts.Port == 0 {
		opts.Port = DefaultOptions.Port
	}
	if opts.LoggingLevel == "" {
		opts.LoggingLevel = DefaultOptions.LoggingLevel
	}
	if opts.LoggingEncoding == "" {
		opts.LoggingEncoding = DefaultOptions.LoggingEncoding
	}
	return opts
}
