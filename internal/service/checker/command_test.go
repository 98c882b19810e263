package checker

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/ulmotion/internal/config"
)

// TestRun_Unreachable fails a single check when nothing listens.
func TestRun_Unreachable(t *testing.T) {
	t.Parallel()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	require.NoError(t, l.Close())

	settings := config.Default()
	settings.Timeout = 300 * time.Millisecond
	cfgPath := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, config.Save(cfgPath, settings))

	err = Run(context.Background(), &Options{ConfigPath: cfgPath, ServerAddress: addr})
	require.Error(t, err)
}

// TestRun_WatchStopsOnCancel returns cleanly once the context is canceled.
func TestRun_WatchStopsOnCancel(t *testing.T) {
	t.Parallel()

	cfgPath := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, config.Save(cfgPath, config.Default()))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := Run(ctx, &Options{ConfigPath: cfgPath, Watch: true, PollInterval: time.Hour})
	require.NoError(t, err)
}
