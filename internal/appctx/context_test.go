package appctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glambook/glambook-cli/internal/config"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	t.Setenv("GLAMBOOK_NO_KEYRING", "1")
	cfg := config.Default()
	cfg.SecretsDir = t.TempDir()
	return NewApp(cfg)
}

func TestNewAppWiresComponents(t *testing.T) {
	app := newTestApp(t)
	require.NotNil(t, app.Session)
	require.NotNil(t, app.API)
	require.NotNil(t, app.Secrets)
	require.NotNil(t, app.Output)
	require.NotNil(t, app.Collector)
	require.NotNil(t, app.Hooks)
	assert.Same(t, app.Collector, app.Hooks.Collector)
}

func TestApplyFlagsVerbose(t *testing.T) {
	app := newTestApp(t)
	app.Flags.Verbose = 2
	app.ApplyFlags()
	assert.Equal(t, 2, app.Hooks.Level)
}

func TestApplyFlagsDebugEnv(t *testing.T) {
	t.Setenv("GBK_DEBUG", "true")
	app := newTestApp(t)
	app.ApplyFlags()
	assert.Equal(t, 2, app.Hooks.Level)

	t.Setenv("GBK_DEBUG", "1")
	app = newTestApp(t)
	app.ApplyFlags()
	assert.Equal(t, 1, app.Hooks.Level)
}

func TestContextRoundTrip(t *testing.T) {
	app := newTestApp(t)
	ctx := WithApp(context.Background(), app)
	assert.Same(t, app, FromContext(ctx))
	assert.Nil(t, FromContext(context.Background()))
}

func TestIsInteractiveFalseForMachineOutput(t *testing.T) {
	app := newTestApp(t)
	app.Flags.JSON = true
	assert.False(t, app.IsInteractive())

	app.Flags.JSON = false
	app.Flags.Quiet = true
	assert.False(t, app.IsInteractive())
}
