package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"go.uber.org/zap"

	"github.com/p3u1/plexio-bridge/pkg/plexio"
)

// Upstream is the addon service that stream lookups are forwarded to.
// *plexio.Client implements it.
type Upstream interface {
	// Configured reports whether a request can be sent at all.
	Configured() bool
	// GetStreams does a single request for the streams of the given media type and ID.
	// rawQuery must be forwarded unmodified.
	GetStreams(ctx context.Context, mediaType, mediaID, rawQuery string) ([]json.RawMessage, error)
}

var _ Upstream = (*plexio.Client)(nil)

// Outcome is the result category of a stream lookup.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeNotConfigured
	OutcomeTransportError
	OutcomeUpstreamStatus
	OutcomeDecodeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeNotConfigured:
		return "not_configured"
	case OutcomeTransportError:
		return "transport_error"
	case OutcomeUpstreamStatus:
		return "upstream_status"
	case OutcomeDecodeError:
		return "decode_error"
	}
	return "unknown"
}

// StreamResult is the result of a stream lookup.
// It's either a success with the streams from the upstream (which can be empty),
// or a failure with an empty stream list and the error that caused it.
// Clients get the same response shape in both cases.
type StreamResult struct {
	Outcome Outcome
	// Never nil.
	Streams []json.RawMessage
	// Only set for failures.
	Err error
}

// OK returns true if the lookup didn't fail.
func (r StreamResult) OK() bool {
	return r.Outcome == OutcomeSuccess
}

// Forwarder forwards stream lookups to the upstream.
type Forwarder struct {
	upstream Upstream
	logger   *zap.Logger

	lookups          map[Outcome]*metrics.Counter
	upstreamDuration *metrics.Histogram
}

// NewForwarder creates a new Forwarder.
// Its metrics are registered in the given set.
func NewForwarder(upstream Upstream, set *metrics.Set, logger *zap.Logger) *Forwarder {
	lookups := make(map[Outcome]*metrics.Counter)
	for _, o := range []Outcome{OutcomeSuccess, OutcomeNotConfigured, OutcomeTransportError, OutcomeUpstreamStatus, OutcomeDecodeError} {
		lookups[o] = set.GetOrCreateCounter(`plexio_bridge_stream_lookups_total{outcome="` + o.String() + `"}`)
	}
	return &Forwarder{
		upstream:         upstream,
		logger:           logger,
		lookups:          lookups,
		upstreamDuration: set.GetOrCreateHistogram("plexio_bridge_upstream_request_duration_seconds"),
	}
}

// LookupStreams sends exactly one request to the upstream, without retries.
// Errors are not returned, but turned into a failed StreamResult.
func (f *Forwarder) LookupStreams(ctx context.Context, mediaType, mediaID, rawQuery string) StreamResult {
	logger := f.logger.With(zap.String("type", mediaType), zap.String("id", mediaID))

	if !f.upstream.Configured() {
		logger.Error("Stream lookup aborted: Plexio base URL not set")
		return f.result(OutcomeNotConfigured, nil, plexio.ErrNotConfigured)
	}

	start := time.Now()
	streams, err := f.upstream.GetStreams(ctx, mediaType, mediaID, rawQuery)
	f.upstreamDuration.UpdateDuration(start)
	if err != nil {
		var statusErr *plexio.StatusError
		var decodeErr *plexio.DecodeError
		switch {
		case errors.Is(err, plexio.ErrNotConfigured):
			logger.Error("Stream lookup aborted: Plexio base URL not set")
			return f.result(OutcomeNotConfigured, nil, err)
		case errors.As(err, &statusErr):
			logger.Warn("Plexio responded with non-OK status", zap.Int("status", statusErr.StatusCode), zap.String("body", statusErr.Body))
			return f.result(OutcomeUpstreamStatus, nil, err)
		case errors.As(err, &decodeErr):
			logger.Error("Couldn't decode Plexio response", zap.Error(err))
			return f.result(OutcomeDecodeError, nil, err)
		default:
			logger.Error("Couldn't get streams from Plexio", zap.Error(err))
			return f.result(OutcomeTransportError, nil, err)
		}
	}

	logger.Info("Returning streams to client", zap.Int("count", len(streams)))
	return f.result(OutcomeSuccess, streams, nil)
}

func (f *Forwarder) result(outcome Outcome, streams []json.RawMessage, err error) StreamResult {
	f.lookups[outcome].Inc()
	if streams == nil {
		streams = []json.RawMessage{}
	}
	return StreamResult{
		Outcome: outcome,
		Streams: streams,
		Err:     err,
	}
}
