package bridge

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	netpprof "net/http/pprof"
	"net/url"
	"strconv"
	"strings"

	"github.com/VictoriaMetrics/metrics"
	"github.com/cespare/xxhash/v2"
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func createHealthHandler(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		logger.Debug("healthHandler called")
		return c.SendString("OK")
	}
}

func createRootHandler(upstreamConfigured bool, logger *zap.Logger) fiber.Handler {
	body := healthResponse{
		Status:               "ok",
		Service:              ServiceName,
		PlexioBaseConfigured: upstreamConfigured,
	}
	return func(c *fiber.Ctx) error {
		logger.Debug("rootHandler called")
		return c.JSON(body)
	}
}

func createManifestHandler(manifest Manifest, handleEtag bool, logger *zap.Logger) fiber.Handler {
	manifestBody, err := json.Marshal(manifest)
	if err != nil {
		logger.Fatal("Couldn't marshal manifest", zap.Error(err))
	}
	eTag := strconv.FormatUint(xxhash.Sum64(manifestBody), 16)

	return func(c *fiber.Ctx) error {
		logger.Debug("manifestHandler called", zap.String("ip", c.IP()))

		if handleEtag {
			ifNoneMatch := c.Get(fiber.HeaderIfNoneMatch)
			c.Set(fiber.HeaderETag, eTag)
			if ifNoneMatch == "*" || ifNoneMatch == eTag {
				logger.Debug("ETag matches, responding with 304", zap.String("If-None-Match", ifNoneMatch), zap.String("ETag", eTag))
				return c.SendStatus(fiber.StatusNotModified)
			}
		}

		logger.Debug("Responding", zap.ByteString("body", manifestBody))
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(manifestBody)
	}
}

func createStreamHandler(forwarder *Forwarder, logger *zap.Logger) fiber.Handler {
	logger = logger.With(zap.String("handler", "streamHandler"))

	return func(c *fiber.Ctx) error {
		rawID, ok := trimStreamID(c.Params("*"))
		if !ok {
			// Not a stream request, let the not found handler respond
			return c.Next()
		}
		requestedType := unescapeParam(c.Params("type"), logger)
		requestedID := unescapeParam(rawID, logger)
		// Opaque, forwarded byte-for-byte
		rawQuery := string(c.Context().URI().QueryString())

		logger.Debug("streamHandler called", zap.String("requestedType", requestedType), zap.String("requestedID", requestedID), zap.String("query", rawQuery))

		res := forwarder.LookupStreams(c.Context(), requestedType, requestedID, rawQuery)

		resBody, err := marshalStreams(res.Streams)
		if err != nil {
			logger.Error("Couldn't marshal response", zap.Error(err), zap.String("requestedType", requestedType), zap.String("requestedID", requestedID))
			resBody = []byte(`{"streams":[]}`)
		}

		status := fiber.StatusOK
		if res.Outcome == OutcomeNotConfigured {
			status = fiber.StatusInternalServerError
		}

		logger.Debug("Responding", zap.ByteString("body", resBody), zap.Stringer("outcome", res.Outcome))
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Status(status).Send(resBody)
	}
}

func createNotFoundHandler(logger *zap.Logger) fiber.Handler {
	body := errorResponse{Error: NotFound.Error()}
	return func(c *fiber.Ctx) error {
		logger.Info("Unknown path", zap.String("method", c.Method()), zap.String("url", c.OriginalURL()))
		return c.Status(fiber.StatusNotFound).JSON(body)
	}
}

func createMetricsHandler(set *metrics.Set) fiber.Handler {
	return adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeMetrics(w, set)
	})
}

func writeMetrics(w io.Writer, set *metrics.Set) {
	set.WritePrometheus(w)
	metrics.WriteProcessMetrics(w)
}

func registerProfilingHandlers(app *fiber.App) {
	app.Get("/debug/pprof/cmdline", adaptor.HTTPHandlerFunc(netpprof.Cmdline))
	app.Get("/debug/pprof/profile", adaptor.HTTPHandlerFunc(netpprof.Profile))
	app.Get("/debug/pprof/symbol", adaptor.HTTPHandlerFunc(netpprof.Symbol))
	app.Get("/debug/pprof/trace", adaptor.HTTPHandlerFunc(netpprof.Trace))
	// Index also serves the named profiles like "/debug/pprof/heap"
	app.Get("/debug/pprof/*", adaptor.HTTPHandlerFunc(netpprof.Index))
	app.Get("/debug/pprof", func(c *fiber.Ctx) error {
		return c.Redirect("/debug/pprof/", fiber.StatusMovedPermanently)
	})
}

// trimStreamID returns the still escaped ID from the path remainder after "/stream/:type/",
// which must be a single non-empty segment followed by ".json".
// Only the last ".json" is removed, so "a.json.json" leads to the ID "a.json".
func trimStreamID(rest string) (string, bool) {
	// Non-strict routing, like for the other routes
	rest = strings.TrimSuffix(rest, "/")
	if strings.Contains(rest, "/") {
		return "", false
	}
	id, found := strings.CutSuffix(rest, ".json")
	if !found || id == "" {
		return "", false
	}
	return id, true
}

// unescapeParam returns the unescaped path parameter,
// or the parameter as is if it isn't validly escaped.
func unescapeParam(param string, logger *zap.Logger) string {
	unescaped, err := url.PathUnescape(param)
	if err != nil {
		logger.Warn("Path parameter couldn't be unescaped, using it as is", zap.String("param", param), zap.Error(err))
		return param
	}
	return unescaped
}

// marshalStreams encodes the stream list without escaping HTML characters,
// so that "&" in stream URLs stays as it came from the upstream.
func marshalStreams(streams []json.RawMessage) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(streamsResponse{Streams: streams}); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
