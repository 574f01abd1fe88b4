// Package services contains the server-side vault logic: authenticating a
// remote key against the stored verifier, the two-factor gate and the
// fast-forward rule for pushes.
package services

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/vaultsync/internal/buildinfo"
	"github.com/dmitrijs2005/vaultsync/internal/common"
	"github.com/dmitrijs2005/vaultsync/internal/logging"
	"github.com/dmitrijs2005/vaultsync/internal/server/archive"
	"github.com/dmitrijs2005/vaultsync/internal/server/auth"
	"github.com/dmitrijs2005/vaultsync/internal/server/config"
	"github.com/dmitrijs2005/vaultsync/internal/server/models"
	"github.com/dmitrijs2005/vaultsync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/vaultsync/internal/totp"
)

// Credentials accompany every vault request.
type Credentials struct {
	Username   string
	RemoteKey  string
	TfaMethod  string
	TfaRequest string
}

// PushInput is a request to replace the stored blob.
type PushInput struct {
	NewData     string
	NewHash     string
	OldHash     string
	NewPassword string
	Force       bool
}

// PublicConfig is what any client may learn before authenticating.
type PublicConfig struct {
	Version       string
	LocalKeySalt  string
	RemoteKeySalt string
	Difficulty    int
	Demo          bool
}

// VaultService implements pull, push and two-factor setup over a
// vaults.Repository.
type VaultService struct {
	repomanager repomanager.RepositoryManager
	archive     archive.Archiver
	logger      logging.Logger
	cfg         *config.Config
	jwtSecret   []byte
	now         func() time.Time
}

// NewVaultService wires the service. archiver may be nil.
func NewVaultService(m repomanager.RepositoryManager, archiver archive.Archiver, l logging.Logger, cfg *config.Config) *VaultService {
	if archiver == nil {
		archiver = archive.Noop{}
	}
	return &VaultService{
		repomanager: m,
		archive:     archiver,
		logger:      l.With("module", "vault_service"),
		cfg:         cfg,
		jwtSecret:   []byte(cfg.SecretKey),
		now:         time.Now,
	}
}

// Verifier is what the server stores in place of the remote key.
func Verifier(remoteKey string) []byte {
	sum := sha256.Sum256([]byte(remoteKey))
	return sum[:]
}

func (s *VaultService) Config() PublicConfig {
	return PublicConfig{
		Version:       buildinfo.Version,
		LocalKeySalt:  s.cfg.LocalKeySalt,
		RemoteKeySalt: s.cfg.RemoteKeySalt,
		Difficulty:    s.cfg.Difficulty,
		Demo:          s.cfg.Demo,
	}
}

func checkKey(v *models.Vault, remoteKey string) error {
	if subtle.ConstantTimeCompare(v.Verifier, Verifier(remoteKey)) != 1 {
		return common.ErrBadRemoteCredentials
	}
	return nil
}

// checkTfa enforces the second factor when the account has one. A
// successful TOTP code is answered with a token the client can present
// instead of further codes.
func (s *VaultService) checkTfa(v *models.Vault, c Credentials) (string, error) {
	if v.TfaSecret == "" {
		return "", nil
	}

	switch c.TfaMethod {
	case "":
		return "", common.ErrTfaRequired
	case common.TfaMethodToken:
		username, err := auth.UsernameFromTfaToken(c.TfaRequest, s.jwtSecret)
		if err != nil || username != v.Username {
			return "", common.ErrTfaFailed
		}
		return "", nil
	case common.TfaMethodTOTP:
		if !totp.Verify(c.TfaRequest, v.TfaSecret, s.now()) {
			return "", common.ErrTfaFailed
		}
		token, err := auth.GenerateTfaToken(v.Username, s.jwtSecret, s.cfg.TfaTokenValidityDuration)
		if err != nil {
			return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
		}
		return token, nil
	default:
		return "", common.ErrTfaFailed
	}
}

// authenticate loads the vault of c.Username and checks both factors.
func (s *VaultService) authenticate(ctx context.Context, c Credentials) (*models.Vault, string, error) {
	if c.Username == "" || c.RemoteKey == "" {
		return nil, "", common.ErrBadRemoteCredentials
	}

	v, err := s.repomanager.Vaults().Get(ctx, c.Username)
	if err != nil {
		return nil, "", err
	}
	if err := checkKey(v, c.RemoteKey); err != nil {
		return nil, "", err
	}
	token, err := s.checkTfa(v, c)
	if err != nil {
		return nil, "", err
	}
	return v, token, nil
}

// Pull returns the stored blob. A user without a vault gets empty data so
// that a first login looks like an empty vault.
func (s *VaultService) Pull(ctx context.Context, c Credentials) (data, tfaToken string, err error) {
	v, token, err := s.authenticate(ctx, c)
	if errors.Is(err, common.ErrorNotFound) {
		return "", "", nil
	}
	if err != nil {
		return "", "", err
	}
	return v.Data, token, nil
}

// Push stores in.NewData if in.OldHash matches the stored fingerprint, or
// unconditionally when in.Force is set. The first push of an unknown user
// creates the account. A non-empty in.NewPassword replaces the verifier in
// the same write.
func (s *VaultService) Push(ctx context.Context, c Credentials, in PushInput) (string, error) {
	if s.cfg.Demo {
		return "", common.ErrDemoMode
	}

	repo := s.repomanager.Vaults()

	cur, token, err := s.authenticate(ctx, c)
	if errors.Is(err, common.ErrorNotFound) {
		return "", s.create(ctx, c, in)
	}
	if err != nil {
		return "", err
	}

	if !in.Force && in.OldHash != cur.Hash {
		return "", common.ErrNotFastForward
	}

	next := &models.Vault{
		Username: cur.Username,
		Verifier: cur.Verifier,
		Data:     in.NewData,
		Hash:     in.NewHash,
	}
	if in.NewPassword != "" {
		next.Verifier = Verifier(in.NewPassword)
	}

	// swap against what was read; a concurrent push in between loses
	if err := repo.CompareAndSwap(ctx, cur.Hash, next); err != nil {
		return "", err
	}

	if err := s.archive.Archive(ctx, cur.Username, cur.Data); err != nil {
		s.logger.Warn(ctx, "archive failed", "username", cur.Username, "error", err)
	}

	s.logger.Info(ctx, "vault pushed", "username", cur.Username, "bytes", len(in.NewData), "force", in.Force, "rotated", in.NewPassword != "")
	return token, nil
}

func (s *VaultService) create(ctx context.Context, c Credentials, in PushInput) error {
	if in.OldHash != "" && !in.Force {
		return common.ErrNotFastForward
	}

	key := c.RemoteKey
	if in.NewPassword != "" {
		key = in.NewPassword
	}

	err := s.repomanager.Vaults().Create(ctx, &models.Vault{
		Username: c.Username,
		Verifier: Verifier(key),
		Data:     in.NewData,
		Hash:     in.NewHash,
	})
	if errors.Is(err, common.ErrorAlreadyExists) {
		return common.ErrNotFastForward
	}
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "vault created", "username", c.Username)
	return nil
}

// SetupTfa enables TOTP once code proves the client holds secret.
func (s *VaultService) SetupTfa(ctx context.Context, c Credentials, secret, code string) error {
	if s.cfg.Demo {
		return common.ErrDemoMode
	}

	v, _, err := s.authenticate(ctx, c)
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrBadRemoteCredentials
	}
	if err != nil {
		return err
	}

	if !totp.ValidSecret(secret) || !totp.Verify(code, secret, s.now()) {
		return common.ErrTfaConfirmFailed
	}

	if err := s.repomanager.Vaults().SetTfaSecret(ctx, v.Username, secret); err != nil {
		return err
	}
	s.logger.Info(ctx, "two-factor enabled", "username", v.Username)
	return nil
}
