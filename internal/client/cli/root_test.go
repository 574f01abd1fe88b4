package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/vaultsync/internal/client/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubRunApp(t *testing.T, err error) *[]*config.Config {
	t.Helper()
	var seen []*config.Config
	origRun, origLoad := runApp, loadConfig
	t.Cleanup(func() { runApp, loadConfig = origRun, origLoad })

	loadConfig = func() *config.Config {
		c := &config.Config{}
		c.LoadDefaults()
		return c
	}
	runApp = func(_ context.Context, cfg *config.Config) error {
		seen = append(seen, cfg)
		return err
	}
	return &seen
}

func TestRootCommand_RunsApp(t *testing.T) {
	seen := stubRunApp(t, nil)

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"-a", "host:1", "-k"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	require.Len(t, *seen, 1)
}

func TestRootCommand_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	stubRunApp(t, boom)

	cmd := NewRootCommand()
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	require.ErrorIs(t, cmd.ExecuteContext(context.Background()), boom)
}

func TestRootCommand_Help(t *testing.T) {
	seen := stubRunApp(t, nil)

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"-h"})
	require.NoError(t, cmd.Execute())

	assert.Empty(t, *seen)
	assert.Contains(t, out.String(), "offline cache file")
}

func TestVersionCommand(t *testing.T) {
	seen := stubRunApp(t, nil)

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())

	assert.Empty(t, *seen)
	assert.Contains(t, out.String(), "vaultcli version dev")
}
