package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/VictoriaMetrics/metrics"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/p3u1/plexio-bridge/pkg/plexio"
)

// fakeUpstream records its calls and returns the preset streams or error.
type fakeUpstream struct {
	configured bool
	streams    []json.RawMessage
	err        error

	calls       int
	gotType     string
	gotID       string
	gotRawQuery string
}

func (u *fakeUpstream) Configured() bool {
	return u.configured
}

func (u *fakeUpstream) GetStreams(_ context.Context, mediaType, mediaID, rawQuery string) ([]json.RawMessage, error) {
	u.calls++
	u.gotType, u.gotID, u.gotRawQuery = mediaType, mediaID, rawQuery
	return u.streams, u.err
}

func TestLookupStreams(t *testing.T) {
	streams := []json.RawMessage{
		json.RawMessage(`{"url":"http://example.com/a.mkv","title":"1080p"}`),
		json.RawMessage(`{"url":"http://example.com/b.mkv","title":"720p"}`),
	}

	tests := []struct {
		name     string
		upstream *fakeUpstream
		outcome  Outcome
		streams  []json.RawMessage
		calls    int
	}{
		{
			name:     "success",
			upstream: &fakeUpstream{configured: true, streams: streams},
			outcome:  OutcomeSuccess,
			streams:  streams,
			calls:    1,
		},
		{
			name:     "zero streams",
			upstream: &fakeUpstream{configured: true, streams: []json.RawMessage{}},
			outcome:  OutcomeSuccess,
			streams:  []json.RawMessage{},
			calls:    1,
		},
		{
			name:     "nil streams",
			upstream: &fakeUpstream{configured: true},
			outcome:  OutcomeSuccess,
			streams:  []json.RawMessage{},
			calls:    1,
		},
		{
			name:     "not configured",
			upstream: &fakeUpstream{configured: false, streams: streams},
			outcome:  OutcomeNotConfigured,
			streams:  []json.RawMessage{},
			calls:    0,
		},
		{
			name:     "transport error",
			upstream: &fakeUpstream{configured: true, err: fmt.Errorf("couldn't GET: %w", &net.OpError{Op: "dial", Err: errors.New("connection refused")})},
			outcome:  OutcomeTransportError,
			streams:  []json.RawMessage{},
			calls:    1,
		},
		{
			name:     "body too large",
			upstream: &fakeUpstream{configured: true, err: fmt.Errorf("%w: more than 4194304 bytes", plexio.ErrBodyTooLarge)},
			outcome:  OutcomeTransportError,
			streams:  []json.RawMessage{},
			calls:    1,
		},
		{
			name:     "upstream status",
			upstream: &fakeUpstream{configured: true, err: &plexio.StatusError{StatusCode: 404, Body: "Not found"}},
			outcome:  OutcomeUpstreamStatus,
			streams:  []json.RawMessage{},
			calls:    1,
		},
		{
			name:     "decode error",
			upstream: &fakeUpstream{configured: true, err: &plexio.DecodeError{Err: errors.New("invalid character '<'")}},
			outcome:  OutcomeDecodeError,
			streams:  []json.RawMessage{},
			calls:    1,
		},
		{
			name:     "not configured reported by upstream",
			upstream: &fakeUpstream{configured: true, err: plexio.ErrNotConfigured},
			outcome:  OutcomeNotConfigured,
			streams:  []json.RawMessage{},
			calls:    1,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			set := metrics.NewSet()
			f := NewForwarder(test.upstream, set, zaptest.NewLogger(t))

			res := f.LookupStreams(context.Background(), "movie", "tt1234567", "videoId=abc&lang=en")
			require.Equal(t, test.outcome, res.Outcome)
			require.Equal(t, test.outcome == OutcomeSuccess, res.OK())
			require.NotNil(t, res.Streams)
			require.Equal(t, test.streams, res.Streams)
			require.Equal(t, test.calls, test.upstream.calls)
			if res.OK() {
				require.NoError(t, res.Err)
			} else {
				require.Error(t, res.Err)
			}
			require.Equal(t, uint64(1), f.lookups[test.outcome].Get())
		})
	}
}

func TestLookupStreamsPassesRequestThrough(t *testing.T) {
	upstream := &fakeUpstream{configured: true}
	f := NewForwarder(upstream, metrics.NewSet(), zaptest.NewLogger(t))

	f.LookupStreams(context.Background(), "series", "tt0944947:1:1", "b=2&a=1")
	require.Equal(t, "series", upstream.gotType)
	require.Equal(t, "tt0944947:1:1", upstream.gotID)
	require.Equal(t, "b=2&a=1", upstream.gotRawQuery)
}

func TestOutcomeString(t *testing.T) {
	require.Equal(t, "success", OutcomeSuccess.String())
	require.Equal(t, "not_configured", OutcomeNotConfigured.String())
	require.Equal(t, "transport_error", OutcomeTransportError.String())
	require.Equal(t, "upstream_status", OutcomeUpstreamStatus.String())
	require.Equal(t, "decode_error", OutcomeDecodeError.String())
	require.Equal(t, "unknown", Outcome(42).String())
}
