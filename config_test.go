package bridge

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadOptionsDefaults(t *testing.T) {
	// Run in an empty directory so that no .env file is picked up
	chdir(t, t.TempDir())
	for _, key := range []string{"PLEXIO_ADDON_BASE", "PORT", "BIND_ADDR", "LOG_LEVEL", "LOG_ENCODING", "UPSTREAM_TIMEOUT"} {
		t.Setenv(key, "")
	}

	opts, err := LoadOptions()
	require.NoError(t, err)
	require.Equal(t, "", opts.PlexioAddonBase)
	require.Equal(t, 7000, opts.Port)
	require.Equal(t, "0.0.0.0", opts.BindAddr)
	require.Equal(t, "info", opts.LoggingLevel)
	require.Equal(t, "console", opts.LoggingEncoding)
	require.Equal(t, 10*time.Second, opts.UpstreamTimeout)
	require.False(t, opts.Metrics)
}

func TestLoadOptionsFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PLEXIO_ADDON_BASE", "https://plexio.stream/addon/abc")
	t.Setenv("PORT", "8081")
	t.Setenv("BIND_ADDR", "localhost")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_ENCODING", "json")
	t.Setenv("UPSTREAM_TIMEOUT", "3s")
	t.Setenv("METRICS", "true")
	t.Setenv("LOG_IPS", "true")

	opts, err := LoadOptions()
	require.NoError(t, err)
	require.Equal(t, "https://plexio.stream/addon/abc", opts.PlexioAddonBase)
	require.Equal(t, 8081, opts.Port)
	require.Equal(t, "localhost", opts.BindAddr)
	require.Equal(t, "debug", opts.LoggingLevel)
	require.Equal(t, "json", opts.LoggingEncoding)
	require.Equal(t, 3*time.Second, opts.UpstreamTimeout)
	require.True(t, opts.Metrics)
	require.True(t, opts.LogIPs)
}

func TestLoadOptionsInvalid(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "not-a-number")

	_, err := LoadOptions()
	require.Error(t, err)
}

// chdir mirrors testing.T.Chdir (Go 1.24+): change the working directory
// for the duration of the test and restore it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
