package daemon

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/emotion-constellation/constellation-core/internal/dataset"
	"github.com/emotion-constellation/constellation-core/pkg/config"
	"github.com/emotion-constellation/constellation-core/pkg/models"
	"github.com/emotion-constellation/constellation-core/pkg/utils"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Seed = 5
	cfg.Dataset.Dir = "../../data"
	cfg.Dataset.Watch = false
	cfg.Server.HTTPAddr = "127.0.0.1:0"
	cfg.Server.GRPCAddr = "127.0.0.1:0"
	cfg.Server.ClientQueueSize = 64
	return cfg
}

func newDaemon(t *testing.T, cfg *config.Config) (*Daemon, *utils.ManualClock) {
	t.Helper()
	loader := dataset.NewLoader(cfg.Dataset.Dir)
	ds, err := loader.Load(cfg.Dataset.Locale)
	require.NoError(t, err)

	clock := utils.NewManualClock(t0)
	d, err := New(cfg, ds, loader, clock)
	require.NoError(t, err)
	return d, clock
}

func TestNew_RequiresDataset(t *testing.T) {
	_, err := New(testConfig(), nil, nil, nil)
	assert.Error(t, err)
}

func TestDaemon_Dispatch(t *testing.T) {
	d, clock := newDaemon(t, testConfig())

	require.NoError(t, d.Dispatch(Command{Type: CmdSelectEmotion, ID: "fear"}))
	clock.Advance(16 * time.Millisecond)
	f := d.Scheduler().Step()
	assert.Equal(t, models.ModeEmotion, f.Selection.Mode)
	assert.Equal(t, "fear", f.Selection.SelectedID)
	assert.True(t, d.Pipeline().Simulation().RotationPaused())

	require.NoError(t, d.Dispatch(Command{Type: CmdDeselect}))
	f = d.Scheduler().Step()
	assert.Equal(t, models.ModeIdle, f.Selection.Mode)

	assert.ErrorIs(t, d.Dispatch(Command{Type: "explode"}), ErrUnknownCommand)
	assert.ErrorIs(t, d.Dispatch(Command{Type: CmdSelectNeed}), ErrInvalidCommand)
}

func TestDaemon_DispatchInboxFull(t *testing.T) {
	cfg := testConfig()
	cfg.Frame.InboxSize = 1
	d, _ := newDaemon(t, cfg)

	require.NoError(t, d.Dispatch(Command{Type: CmdHoverEnd}))
	assert.ErrorIs(t, d.Dispatch(Command{Type: CmdHoverEnd}), ErrInboxFull)
}

func TestDaemon_SetLocale(t *testing.T) {
	d, _ := newDaemon(t, testConfig())
	assert.Equal(t, "en", d.Locale())

	require.NoError(t, d.Dispatch(Command{Type: CmdLocale, Locale: "es"}))
	assert.Equal(t, "es", d.Locale())

	d.Scheduler().Step()
	fear, ok := d.Pipeline().Graph().Emotion("fear")
	require.True(t, ok)
	assert.Equal(t, "Miedo", fear.Label)

	assert.ErrorIs(t, d.SetLocale("xx"), ErrInvalidCommand)
}

func TestDaemon_SetLocaleFallsBack(t *testing.T) {
	d, _ := newDaemon(t, testConfig())
	require.NoError(t, d.SetLocale("ko"))
	assert.Equal(t, dataset.DefaultLocale, d.Locale())
}

func TestDaemon_WatcherLocale(t *testing.T) {
	cfg := testConfig()
	cfg.Dataset.Watch = true
	d, _ := newDaemon(t, cfg)
	require.NotNil(t, d.watcher)

	require.NoError(t, d.SetLocale("es"))
	assert.Equal(t, "es", d.watcher.Locale())
	assert.Equal(t, "es", d.Locale())
	d.watcher.Stop()
}

func TestDaemon_AnnotationsFollowFrames(t *testing.T) {
	d, _ := newDaemon(t, testConfig())
	assert.Nil(t, d.Annotator().Latest())

	d.Scheduler().Step()
	a := d.Annotator().Latest()
	require.NotNil(t, a)
	assert.Len(t, a.Needs, 6)
}

func TestDaemon_Run(t *testing.T) {
	d, _ := newDaemon(t, testConfig())
	ctx, cancel := context.WithCancel(context.Background())

	check := func() healthpb.HealthCheckResponse_ServingStatus {
		resp, err := d.Health().Check(context.Background(), &healthpb.HealthCheckRequest{Service: FrameService})
		require.NoError(t, err)
		return resp.Status
	}
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check())

	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	require.Eventually(t, func() bool {
		return d.Scheduler().Running() && check() == healthpb.HealthCheckResponse_SERVING
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, d.Scheduler().Running())
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check())
}

func TestDaemon_RunListenError(t *testing.T) {
	cfg := testConfig()
	cfg.Server.GRPCAddr = "256.0.0.1:bad"
	d, _ := newDaemon(t, cfg)

	err := d.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen for gRPC")
	assert.False(t, d.Scheduler().Running())
}
