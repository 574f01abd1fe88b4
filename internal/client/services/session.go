package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/vaultsync/internal/client/client"
	"github.com/dmitrijs2005/vaultsync/internal/client/vaultdb"
	"github.com/dmitrijs2005/vaultsync/internal/common"
	"github.com/dmitrijs2005/vaultsync/internal/cryptox"
	"github.com/dmitrijs2005/vaultsync/internal/logging"
)

// State is the lifecycle state of a Session.
type State int

const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
	Syncing
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case Syncing:
		return "syncing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var errOffline = fmt.Errorf("%w: session is offline", common.ErrNetwork)

// deriveKeysFn is a seam for counting key derivations in tests.
var deriveKeysFn = cryptox.DeriveKeys

// tfaCredential is bound to the login it was provided for. An empty
// username means the next login.
type tfaCredential struct {
	username string
	method   string
	request  string
}

// Session owns the credentials, the record store and the last known server
// fingerprint of one login. Operations are serialized by an internal mutex,
// so at most one network operation is in flight per session.
type Session struct {
	mu sync.Mutex

	client    client.Client
	cache     *Cache
	logger    logging.Logger
	storeOpts []vaultdb.Option

	state           State
	config          *client.ServerConfig
	username        string
	keys            cryptox.Keys
	db              *vaultdb.Store
	lastFingerprint string
	offline         bool
	tfa             *tfaCredential
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithCache enables the offline cache.
func WithCache(c *Cache) SessionOption {
	return func(s *Session) { s.cache = c }
}

func WithLogger(l logging.Logger) SessionOption {
	return func(s *Session) { s.logger = l }
}

// WithStoreOptions is passed to every record store the session builds.
func WithStoreOptions(opts ...vaultdb.Option) SessionOption {
	return func(s *Session) { s.storeOpts = append(s.storeOpts, opts...) }
}

// NewSession returns an unauthenticated session talking to c.
func NewSession(c client.Client, opts ...SessionOption) *Session {
	s := &Session{client: c, logger: logging.Nop{}}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Session) setState(ctx context.Context, st State) {
	if s.state != st {
		s.logger.Debug(ctx, "session state", "from", s.state.String(), "to", st.String())
	}
	s.state = st
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Username returns the authenticated user, or "".
func (s *Session) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

// Offline reports whether the session was opened from the local cache.
func (s *Session) Offline() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offline
}

// LastFingerprint returns the fingerprint the session believes the server
// holds. It is empty for a vault that was never pushed.
func (s *Session) LastFingerprint() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastFingerprint
}

// ServerConfig returns the cached server config, if any.
func (s *Session) ServerConfig() (client.ServerConfig, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.config == nil {
		return client.ServerConfig{}, false
	}
	return *s.config, true
}

// Ping checks that the server is reachable.
func (s *Session) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *Session) params() cryptox.KDFParams {
	if s.config.Legacy() {
		return cryptox.LegacyParams(s.username, s.config.Difficulty)
	}
	return cryptox.KDFParams{
		LocalSalt:  s.config.LocalKeySalt,
		RemoteSalt: s.config.RemoteKeySalt,
		Difficulty: s.config.Difficulty,
	}
}

func (s *Session) deriveKeys(secret []byte) cryptox.Keys {
	p := s.params()
	if s.config.Legacy() {
		// the username already is the salt
		return deriveKeysFn(secret, "", p)
	}
	return deriveKeysFn(secret, s.username, p)
}

func (s *Session) auth() client.Auth {
	a := client.Auth{Username: s.username, RemoteKey: s.keys.Remote}
	if s.tfa != nil {
		a.TfaMethod, a.TfaRequest = s.tfa.method, s.tfa.request
	}
	return a
}

// observe updates two-factor state after a server round trip.
func (s *Session) observe(token string, err error) {
	switch {
	case err == nil && token != "":
		s.tfa = &tfaCredential{username: s.username, method: common.TfaMethodToken, request: token}
	case errors.Is(err, common.ErrTfaFailed):
		s.tfa = nil
	}
}

func (s *Session) reset() {
	s.username = ""
	s.keys = cryptox.Keys{}
	s.db = nil
	s.lastFingerprint = ""
	s.offline = false
}

// open decrypts and parses an envelope and returns the store with the
// fingerprint of its plaintext. An empty envelope is a new, empty vault.
func (s *Session) open(envelope string, keys cryptox.Keys) (*vaultdb.Store, string, error) {
	if envelope == "" {
		return vaultdb.New(s.storeOpts...), "", nil
	}
	plaintext, err := cryptox.Decrypt(keys.Local, envelope)
	if err != nil {
		return nil, "", err
	}
	db, err := vaultdb.Deserialize(plaintext, s.storeOpts...)
	if err != nil {
		return nil, "", err
	}
	return db, cryptox.Fingerprint(plaintext, keys.Local, s.config.Difficulty), nil
}

func (s *Session) pull(ctx context.Context) (*vaultdb.Store, string, string, error) {
	res, err := s.client.Pull(ctx, s.auth())
	s.observe(tokenOf(res), err)
	if err != nil {
		return nil, "", "", err
	}
	db, fp, err := s.open(res.Data, s.keys)
	if err != nil {
		return nil, "", "", err
	}
	return db, fp, res.Data, nil
}

func tokenOf(res *client.PullResult) string {
	if res == nil {
		return ""
	}
	return res.TfaToken
}

func (s *Session) remember(ctx context.Context, envelope, fingerprint string) {
	if s.cache == nil || s.offline {
		return
	}
	err := s.cache.Save(ctx, s.username, CachedVault{Config: *s.config, Envelope: envelope, Fingerprint: fingerprint})
	if err != nil {
		s.logger.Warn(ctx, "offline cache not updated", "username", s.username, "error", err)
	}
}

// Auth fetches the server config unless already known, derives the keys
// from secret and pulls the vault.
//
// A two-factor failure leaves the session Authenticating with the derived
// keys kept, so that ResumeAuth can retry after ProvideTfa. Any other
// failure leaves it Unauthenticated.
func (s *Session) Auth(ctx context.Context, username string, secret []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	if s.tfa != nil && s.tfa.username != "" && s.tfa.username != username {
		s.tfa = nil
	}
	s.setState(ctx, Authenticating)

	if s.config == nil {
		cfg, err := s.client.GetConfig(ctx)
		if err != nil {
			return s.authFailed(ctx, username, fmt.Errorf("get config: %w", err))
		}
		s.config = cfg
	}

	s.username = username
	s.keys = s.deriveKeys(secret)
	if s.tfa != nil {
		s.tfa.username = username
	}

	return s.finishAuth(ctx)
}

// ResumeAuth repeats the pull of a login that stopped at a two-factor
// challenge, with the keys derived then and the credential set by
// ProvideTfa.
func (s *Session) ResumeAuth(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Authenticating || s.keys.Remote == "" {
		return common.ErrNotAuthenticated
	}
	return s.finishAuth(ctx)
}

func (s *Session) finishAuth(ctx context.Context) error {
	db, fp, envelope, err := s.pull(ctx)
	if err != nil {
		return s.authFailed(ctx, s.username, err)
	}

	s.db, s.lastFingerprint = db, fp
	s.remember(ctx, envelope, fp)
	s.setState(ctx, Authenticated)
	return nil
}

func (s *Session) authFailed(ctx context.Context, username string, err error) error {
	s.logger.Warn(ctx, "authentication failed", "username", username, "error", err)
	if errors.Is(err, common.ErrTfaFailed) && s.keys.Remote != "" {
		return err
	}
	s.reset()
	s.setState(ctx, Unauthenticated)
	return err
}

// AuthOffline opens the vault from the local cache. The session is read
// only: Save and friends fail with common.ErrNetwork.
func (s *Session) AuthOffline(ctx context.Context, username string, secret []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache == nil {
		return fmt.Errorf("%w: no offline cache", common.ErrNetwork)
	}

	s.reset()
	s.setState(ctx, Authenticating)

	cached, err := s.cache.Load(ctx, username)
	if err == nil {
		s.config = &cached.Config
		s.username = username
		s.keys = s.deriveKeys(secret)
		s.db, s.lastFingerprint, err = s.open(cached.Envelope, s.keys)
	}
	if err != nil {
		s.reset()
		s.setState(ctx, Unauthenticated)
		return err
	}

	s.offline = true
	s.setState(ctx, Authenticated)
	return nil
}

func (s *Session) requireAuth() error {
	if s.state != Authenticated || s.db == nil {
		return common.ErrNotAuthenticated
	}
	return nil
}

func (s *Session) requireOnline() error {
	if err := s.requireAuth(); err != nil {
		return err
	}
	if s.offline {
		return errOffline
	}
	return nil
}

// View calls fn with the record store. fn must not keep the pointer.
func (s *Session) View(fn func(db *vaultdb.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireAuth(); err != nil {
		return err
	}
	return fn(s.db)
}

// Mutate calls fn with the record store for local changes. Changes reach
// the server on the next Save.
func (s *Session) Mutate(fn func(db *vaultdb.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOnline(); err != nil {
		return err
	}
	return fn(s.db)
}

// Refresh replaces the local store with the server's current copy. Unsaved
// local changes are discarded.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOnline(); err != nil {
		return err
	}

	s.setState(ctx, Syncing)
	defer s.setState(ctx, Authenticated)

	db, fp, envelope, err := s.pull(ctx)
	if err != nil {
		return err
	}
	s.db, s.lastFingerprint = db, fp
	s.remember(ctx, envelope, fp)
	return nil
}

// Save pushes the store. The revision is bumped even if nothing changed so
// two pushes never share a fingerprint. On common.ErrNotFastForward the
// server is unchanged; the caller decides whether to Refresh or
// PullAndMerge before retrying.
func (s *Session) Save(ctx context.Context) error {
	return s.push(ctx, false)
}

// ForceSave overwrites the server copy regardless of its fingerprint.
func (s *Session) ForceSave(ctx context.Context) error {
	return s.push(ctx, true)
}

func (s *Session) push(ctx context.Context, force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOnline(); err != nil {
		return err
	}

	s.setState(ctx, Syncing)
	defer s.setState(ctx, Authenticated)

	envelope, fp, err := s.seal(s.keys)
	if err != nil {
		return err
	}

	res, err := s.client.Push(ctx, s.auth(), client.PushRequest{
		NewData: envelope,
		NewHash: fp,
		OldHash: s.lastFingerprint,
		Force:   force,
	})
	s.observe(pushToken(res), err)
	if err != nil {
		s.logger.Warn(ctx, "push rejected", "username", s.username, "error", err)
		return err
	}

	s.lastFingerprint = fp
	s.remember(ctx, envelope, fp)
	return nil
}

func pushToken(res *client.PushResult) string {
	if res == nil {
		return ""
	}
	return res.TfaToken
}

// seal bumps the revision, then serializes, encrypts and fingerprints the
// store under keys.
func (s *Session) seal(keys cryptox.Keys) (string, string, error) {
	s.db.BumpRevision()
	plaintext, err := s.db.Serialize()
	if err != nil {
		return "", "", err
	}
	envelope, err := cryptox.Encrypt(keys.Local, plaintext)
	if err != nil {
		return "", "", err
	}
	return envelope, cryptox.Fingerprint(plaintext, keys.Local, s.config.Difficulty), nil
}

// PullAndMerge fetches the server copy and merges it into the local store.
// Afterwards the session tracks the server's fingerprint, so the next Save
// fast-forwards. A *vaultdb.MergeConflictError leaves the local store as it
// was.
func (s *Session) PullAndMerge(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOnline(); err != nil {
		return err
	}

	s.setState(ctx, Syncing)
	defer s.setState(ctx, Authenticated)

	remote, fp, envelope, err := s.pull(ctx)
	if err != nil {
		return err
	}

	merged, err := vaultdb.Merge(s.db, remote, s.storeOpts...)
	if err != nil {
		return err
	}

	s.db, s.lastFingerprint = merged, fp
	s.remember(ctx, envelope, fp)
	return nil
}

// UpdateMasterPassword re-encrypts the vault under keys derived from
// newSecret and asks the server to rotate the remote key in the same write.
func (s *Session) UpdateMasterPassword(ctx context.Context, newSecret []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOnline(); err != nil {
		return err
	}

	s.setState(ctx, Syncing)
	defer s.setState(ctx, Authenticated)

	newKeys := s.deriveKeys(newSecret)
	envelope, fp, err := s.seal(newKeys)
	if err != nil {
		return err
	}

	res, err := s.client.Push(ctx, s.auth(), client.PushRequest{
		NewData:     envelope,
		NewHash:     fp,
		OldHash:     s.lastFingerprint,
		NewPassword: newKeys.Remote,
	})
	s.observe(pushToken(res), err)
	if err != nil {
		return err
	}

	s.keys = newKeys
	s.lastFingerprint = fp
	s.remember(ctx, envelope, fp)
	s.logger.Info(ctx, "master password updated", "username", s.username)
	return nil
}

// ProvideTfa attaches a two-factor credential to the next request. It
// belongs to the pending or current login, or to the next one if there is
// neither.
func (s *Session) ProvideTfa(method, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tfa = &tfaCredential{username: s.username, method: method, request: code}
}

// EnableTfa turns on TOTP for the account once code matches secret.
func (s *Session) EnableTfa(ctx context.Context, secret, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireOnline(); err != nil {
		return err
	}
	return s.client.SetupTfa(ctx, s.auth(), secret, code)
}

// Logout drops every secret the session holds.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	s.tfa = nil
	s.setState(ctx, Unauthenticated)
}
