package bridge

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// Addon is the bridge between Stremio-compatible clients and a Plexio addon.
// You can create one with NewAddon() and then run it with Run().
type Addon struct {
	manifest  Manifest
	upstream  Upstream
	forwarder *Forwarder
	opts      Options
	logger    *zap.Logger
	metrics   *metrics.Set
}

// NewAddon creates a new Addon object that can be started with Run().
// A proper manifest must be supplied. The upstream is required, but doesn't have to be configured:
// an unconfigured upstream leads to empty stream responses instead of a startup error.
func NewAddon(manifest Manifest, upstream Upstream, opts Options) (*Addon, error) {
	// Precondition checks
	if manifest.ID == "" || manifest.Name == "" || manifest.Description == "" || manifest.Version == "" {
		return nil, errors.New("an empty manifest was passed")
	} else if upstream == nil {
		return nil, errors.New("no upstream was passed")
	}

	opts = opts.withDefaults()

	// Configure logger if no custom one is set
	if opts.Logger == nil {
		var err error
		if opts.Logger, err = NewLogger(opts.LoggingLevel, opts.LoggingEncoding); err != nil {
			return nil, fmt.Errorf("couldn't create new logger: %w", err)
		}
	}

	set := metrics.NewSet()

	return &Addon{
		manifest:  manifest.clone(),
		upstream:  upstream,
		forwarder: NewForwarder(upstream, set, opts.Logger.Named("forwarder")),
		opts:      opts,
		logger:    opts.Logger,
		metrics:   set,
	}, nil
}

// App creates the fiber app with all middlewares and routes of the addon.
// Run() uses it, but it can also be used for testing or for serving the addon with a custom server.
func (a *Addon) App() *fiber.App {
	logger := a.logger

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		// Timeouts to avoid Slowloris attacks.
		// Writing can take as long as the upstream request.
		ReadTimeout:  5 * time.Second,
		WriteTimeout: a.opts.UpstreamTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	})

	// Middlewares

	app.Use(recover.New())
	app.Use(corsMiddleware()) // Stremio doesn't show stream responses when no CORS middleware is used!
	if !a.opts.DisableRequestLogging {
		app.Use(createLoggingMiddleware(logger, a.opts.LogIPs, a.opts.LogUserAgent))
	}

	// Optional endpoints

	if a.opts.Profiling {
		registerProfilingHandlers(app)
	}
	if a.opts.Metrics {
		app.Get("/metrics", createMetricsHandler(a.metrics))
	}

	// Stremio endpoints

	app.Get("/", createRootHandler(a.upstream.Configured(), logger))
	app.Get("/health", createHealthHandler(logger))
	app.Get("/manifest.json", createManifestHandler(a.manifest, a.opts.HandleEtagManifest, logger))
	// The wildcard also matches IDs that contain ".json" themselves
	app.Get("/stream/:type/*", createStreamHandler(a.forwarder, logger))

	// Everything else
	app.Use(createNotFoundHandler(logger))

	return app
}

// Run starts the addon. It sets up an HTTP server that handles requests to "/manifest.json" etc. and gracefully handles shutdowns.
// The optional stoppingChan lets the package user react to the server being shut down.
// It receives a value before the server is shut down.
func (a *Addon) Run(stoppingChan chan bool) error {
	logger := a.logger
	defer logger.Sync()

	logger.Info("Setting up server...")
	app := a.App()
	logger.Info("Finished setting up server")

	addr := a.opts.BindAddr + ":" + strconv.Itoa(a.opts.Port)

	var stopping atomic.Bool
	errChan := make(chan error, 1)

	logger.Info("Starting server", zap.String("address", addr))
	go func() {
		if err := app.Listen(addr); err != nil {
			if !stopping.Load() {
				errChan <- fmt.Errorf("couldn't start server: %w", err)
				return
			}
			logger.Error("Error in app.Listen() during server shutdown (probably context deadline expired before the server could shutdown cleanly)", zap.Error(err))
		}
	}()

	// Graceful shutdown

	c := make(chan os.Signal, 1)
	// Accept SIGINT (Ctrl+C) and SIGTERM (`docker stop`)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errChan:
		return err
	case sig := <-c:
		logger.Info("Received signal, shutting down server...", zap.Stringer("signal", sig))
	}
	stopping.Store(true)
	if stoppingChan != nil {
		stoppingChan <- true
	}
	// `docker stop` gives us 10 seconds.
	if err := app.ShutdownWithTimeout(9 * time.Second); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	logger.Info("Finished shutting down server")
	return nil
}

// Logger returns the addon's logger.
func (a *Addon) Logger() *zap.Logger {
	return a.logger
}

// Manifest returns a copy of the manifest the addon serves.
func (a *Addon) Manifest() Manifest {
	return a.manifest.clone()
}
