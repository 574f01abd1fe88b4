package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/vaultsync/internal/common"
	"github.com/dmitrijs2005/vaultsync/internal/logging"
	"github.com/dmitrijs2005/vaultsync/internal/server/config"
	"github.com/dmitrijs2005/vaultsync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/vaultsync/internal/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingArchiver struct {
	mu    sync.Mutex
	blobs []string
	err   error
}

func (a *recordingArchiver) Archive(ctx context.Context, username, data string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.blobs = append(a.blobs, username+":"+data)
	return a.err
}

var alice = Credentials{Username: "alice", RemoteKey: "remote-key"}

func newService(t *testing.T, mut ...func(*config.Config)) (*VaultService, *recordingArchiver) {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	for _, m := range mut {
		m(cfg)
	}
	arch := &recordingArchiver{}
	return NewVaultService(repomanager.NewMemoryRepositoryManager(), arch, logging.Nop{}, cfg), arch
}

func TestConfig_PublishesSalts(t *testing.T) {
	s, _ := newService(t, func(c *config.Config) {
		c.LocalKeySalt, c.RemoteKeySalt, c.Difficulty, c.Demo = "l", "r", 99, true
	})

	got := s.Config()
	assert.Equal(t, "l", got.LocalKeySalt)
	assert.Equal(t, "r", got.RemoteKeySalt)
	assert.Equal(t, 99, got.Difficulty)
	assert.True(t, got.Demo)
	assert.NotEmpty(t, got.Version)
}

func TestPull_UnknownUserIsEmpty(t *testing.T) {
	s, _ := newService(t)

	data, token, err := s.Pull(context.Background(), alice)
	require.NoError(t, err)
	assert.Empty(t, data)
	assert.Empty(t, token)
}

func TestPull_EmptyCredentials(t *testing.T) {
	s, _ := newService(t)

	_, _, err := s.Pull(context.Background(), Credentials{Username: "alice"})
	require.ErrorIs(t, err, common.ErrBadRemoteCredentials)
	_, _, err = s.Pull(context.Background(), Credentials{RemoteKey: "k"})
	require.ErrorIs(t, err, common.ErrBadRemoteCredentials)
}

func TestPush_CreateThenFastForward(t *testing.T) {
	s, arch := newService(t)
	ctx := context.Background()

	_, err := s.Push(ctx, alice, PushInput{NewData: "d1", NewHash: "h1"})
	require.NoError(t, err)

	data, _, err := s.Pull(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "d1", data)

	_, err = s.Push(ctx, alice, PushInput{NewData: "d2", NewHash: "h2", OldHash: "h1"})
	require.NoError(t, err)

	data, _, err = s.Pull(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "d2", data)
	assert.Equal(t, []string{"alice:d1"}, arch.blobs)
}

func TestPush_StaleHashLeavesDataUnchanged(t *testing.T) {
	s, arch := newService(t)
	ctx := context.Background()

	_, err := s.Push(ctx, alice, PushInput{NewData: "d1", NewHash: "h1"})
	require.NoError(t, err)

	_, err = s.Push(ctx, alice, PushInput{NewData: "other", NewHash: "hx", OldHash: "h0"})
	require.ErrorIs(t, err, common.ErrNotFastForward)

	// an empty old hash against an existing account is stale too
	_, err = s.Push(ctx, alice, PushInput{NewData: "other", NewHash: "hx"})
	require.ErrorIs(t, err, common.ErrNotFastForward)

	data, _, err := s.Pull(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "d1", data)
	assert.Empty(t, arch.blobs)
}

func TestPush_UnknownUserWithOldHash(t *testing.T) {
	s, _ := newService(t)

	_, err := s.Push(context.Background(), alice, PushInput{NewData: "d", NewHash: "h", OldHash: "h0"})
	require.ErrorIs(t, err, common.ErrNotFastForward)

	_, err = s.Push(context.Background(), alice, PushInput{NewData: "d", NewHash: "h", OldHash: "h0", Force: true})
	require.NoError(t, err)
}

func TestPush_Force(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	_, err := s.Push(ctx, alice, PushInput{NewData: "d1", NewHash: "h1"})
	require.NoError(t, err)
	_, err = s.Push(ctx, alice, PushInput{NewData: "d2", NewHash: "h2", OldHash: "stale", Force: true})
	require.NoError(t, err)

	data, _, err := s.Pull(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "d2", data)
}

func TestPush_WrongKey(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	_, err := s.Push(ctx, alice, PushInput{NewData: "d1", NewHash: "h1"})
	require.NoError(t, err)

	mallory := Credentials{Username: "alice", RemoteKey: "guess"}
	_, err = s.Push(ctx, mallory, PushInput{NewData: "evil", NewHash: "h2", OldHash: "h1"})
	require.ErrorIs(t, err, common.ErrBadRemoteCredentials)
	_, _, err = s.Pull(ctx, mallory)
	require.ErrorIs(t, err, common.ErrBadRemoteCredentials)
}

func TestPush_RotatesVerifier(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	_, err := s.Push(ctx, alice, PushInput{NewData: "d1", NewHash: "h1"})
	require.NoError(t, err)
	_, err = s.Push(ctx, alice, PushInput{NewData: "d2", NewHash: "h2", OldHash: "h1", NewPassword: "new-key"})
	require.NoError(t, err)

	_, _, err = s.Pull(ctx, alice)
	require.ErrorIs(t, err, common.ErrBadRemoteCredentials)

	data, _, err := s.Pull(ctx, Credentials{Username: "alice", RemoteKey: "new-key"})
	require.NoError(t, err)
	assert.Equal(t, "d2", data)
}

func TestPush_RotationRejectedWithStaleHashKeepsOldKey(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	_, err := s.Push(ctx, alice, PushInput{NewData: "d1", NewHash: "h1"})
	require.NoError(t, err)
	_, err = s.Push(ctx, alice, PushInput{NewData: "d2", NewHash: "h2", OldHash: "h0", NewPassword: "new-key"})
	require.ErrorIs(t, err, common.ErrNotFastForward)

	_, _, err = s.Pull(ctx, alice)
	require.NoError(t, err)
}

func TestPush_DemoMode(t *testing.T) {
	s, _ := newService(t, func(c *config.Config) { c.Demo = true })

	_, err := s.Push(context.Background(), alice, PushInput{NewData: "d", NewHash: "h"})
	require.ErrorIs(t, err, common.ErrDemoMode)
	require.ErrorIs(t, s.SetupTfa(context.Background(), alice, totp.GenerateSecret(), "000000"), common.ErrDemoMode)
}

func TestPush_ArchiveFailureDoesNotFailPush(t *testing.T) {
	s, arch := newService(t)
	arch.err = errors.New("s3 down")
	ctx := context.Background()

	_, err := s.Push(ctx, alice, PushInput{NewData: "d1", NewHash: "h1"})
	require.NoError(t, err)
	_, err = s.Push(ctx, alice, PushInput{NewData: "d2", NewHash: "h2", OldHash: "h1"})
	require.NoError(t, err)
}

func TestTwoFactor(t *testing.T) {
	s, _ := newService(t)
	now := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := s.Push(ctx, alice, PushInput{NewData: "d1", NewHash: "h1"})
	require.NoError(t, err)

	secret := totp.GenerateSecret()
	code, err := totp.Code(secret, now)
	require.NoError(t, err)

	require.ErrorIs(t, s.SetupTfa(ctx, alice, secret, "000000x"), common.ErrTfaConfirmFailed)
	require.ErrorIs(t, s.SetupTfa(ctx, alice, "not base32!", code), common.ErrTfaConfirmFailed)
	require.ErrorIs(t, s.SetupTfa(ctx, Credentials{Username: "bob", RemoteKey: "k"}, secret, code), common.ErrBadRemoteCredentials)
	require.NoError(t, s.SetupTfa(ctx, alice, secret, code))

	// now a second factor is needed
	_, _, err = s.Pull(ctx, alice)
	require.ErrorIs(t, err, common.ErrTfaRequired)

	withCode := alice
	withCode.TfaMethod, withCode.TfaRequest = common.TfaMethodTOTP, "123"
	_, _, err = s.Pull(ctx, withCode)
	require.ErrorIs(t, err, common.ErrTfaFailed)
	require.NotErrorIs(t, err, common.ErrTfaRequired)

	withCode.TfaRequest = code
	data, token, err := s.Pull(ctx, withCode)
	require.NoError(t, err)
	assert.Equal(t, "d1", data)
	require.NotEmpty(t, token)

	withToken := alice
	withToken.TfaMethod, withToken.TfaRequest = common.TfaMethodToken, token
	_, err = s.Push(ctx, withToken, PushInput{NewData: "d2", NewHash: "h2", OldHash: "h1"})
	require.NoError(t, err)

	// the token is bound to the user it was issued for
	_, err = s.Push(ctx, Credentials{Username: "bob", RemoteKey: "bk"}, PushInput{NewData: "b", NewHash: "hb"})
	require.NoError(t, err)
	require.NoError(t, s.SetupTfa(ctx, Credentials{Username: "bob", RemoteKey: "bk"}, secret, code))
	_, _, err = s.Pull(ctx, Credentials{Username: "bob", RemoteKey: "bk", TfaMethod: common.TfaMethodToken, TfaRequest: token})
	require.ErrorIs(t, err, common.ErrTfaFailed)

	unknown := alice
	unknown.TfaMethod, unknown.TfaRequest = "sms", "1"
	_, _, err = s.Pull(ctx, unknown)
	require.ErrorIs(t, err, common.ErrTfaFailed)
}

func TestPush_ConcurrentWritersOneWins(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()

	_, err := s.Push(ctx, alice, PushInput{NewData: "d0", NewHash: "h0"})
	require.NoError(t, err)

	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Push(ctx, alice, PushInput{NewData: "d", NewHash: string(rune('a' + i)), OldHash: "h0"})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	wins := 0
	for err := range errs {
		if err == nil {
			wins++
			continue
		}
		require.ErrorIs(t, err, common.ErrNotFastForward)
	}
	assert.Equal(t, 1, wins)
}

func TestVerifier(t *testing.T) {
	assert.Len(t, Verifier("k"), 32)
	assert.Equal(t, Verifier("k"), Verifier("k"))
	assert.NotEqual(t, Verifier("k"), Verifier("K"))
}
