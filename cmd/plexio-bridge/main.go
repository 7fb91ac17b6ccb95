package main

import (
	"log"

	"go.uber.org/zap"

	bridge "github.com/p3u1/plexio-bridge"
	"github.com/p3u1/plexio-bridge/pkg/plexio"
)

func main() {
	opts, err := bridge.LoadOptions()
	if err != nil {
		log.Fatalf("Couldn't load options: %v", err)
	}

	// Create the logger first, so the client and the addon log the same way
	logger, err := bridge.NewLogger(opts.LoggingLevel, opts.LoggingEncoding)
	if err != nil {
		log.Fatalf("Couldn't create logger: %v", err)
	}
	opts.Logger = logger

	// A missing base URL isn't fatal. Stream requests are answered with an empty list until it's set.
	if opts.PlexioAddonBase == "" {
		logger.Error("Missing PLEXIO_ADDON_BASE env var")
	} else {
		logger.Info("Using PLEXIO_ADDON_BASE", zap.String("plexioAddonBase", opts.PlexioAddonBase))
	}

	client := plexio.NewClient(plexio.ClientOptions{
		BaseURL: opts.PlexioAddonBase,
		Timeout: opts.UpstreamTimeout,
	}, logger.Named("plexio"))

	addon, err := bridge.NewAddon(bridge.GetManifest(), client, opts)
	if err != nil {
		logger.Fatal("Couldn't create addon", zap.Error(err))
	}

	if err := addon.Run(nil); err != nil {
		logger.Fatal("Addon stopped with error", zap.Error(err))
	}
}
