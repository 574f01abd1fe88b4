package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/vaultsync/internal/client/keyring"
	"github.com/dmitrijs2005/vaultsync/internal/client/services"
	"github.com/dmitrijs2005/vaultsync/internal/common"
	"github.com/dmitrijs2005/vaultsync/internal/totp"
)

// progressInterval is how often a dot is printed while keys are derived.
var progressInterval = 500 * time.Millisecond

var errUsernameRequired = errors.New("username is required")

// masterSecret returns the secret for username from the keyring when
// enabled, prompting otherwise. fromKeyring tells which one happened.
func (a *App) masterSecret(username string) (secret []byte, fromKeyring bool, err error) {
	if a.config.UseKeyring {
		if s, err := keyring.Load(a.config.ServerEndpointAddr, username); err == nil {
			return []byte(s), true, nil
		}
	}
	secret, err = getPassword("Master password", a.out)
	return secret, false, err
}

// unlock runs fn on its own goroutine and prints progress until it is done.
func (a *App) unlock(ctx context.Context, fn func(ctx context.Context) error) error {
	f := services.Go(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})

	fmt.Fprint(a.out, "Unlocking")
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-f.Done():
			fmt.Fprintln(a.out)
			_, err := f.Wait(ctx)
			return err
		case <-ticker.C:
			fmt.Fprint(a.out, ".")
		}
	}
}

// Login unlocks the vault of the given (or prompted) user.
//
// A two-factor challenge prompts for a code and resumes the login once; a
// rejected code can be retried with "code". When the
// server cannot be reached and the offline cache is enabled, the cached
// copy is opened read only.
func (a *App) Login(ctx context.Context, args []string) error {
	var (
		username string
		err      error
	)
	if len(args) > 0 {
		username = args[0]
	} else if username, err = getSimpleText(a.reader, "Enter username", a.out); err != nil {
		return err
	}
	if username == "" {
		return errUsernameRequired
	}

	secret, fromKeyring, err := a.masterSecret(username)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(secret)

	auth := func(ctx context.Context) error { return a.session.Auth(ctx, username, secret) }

	err = a.unlock(ctx, auth)
	if errors.Is(err, common.ErrTfaRequired) {
		code, cerr := getSimpleText(a.reader, "Enter two-factor code", a.out)
		if cerr != nil {
			return cerr
		}
		a.session.ProvideTfa(common.TfaMethodTOTP, code)
		err = a.session.ResumeAuth(ctx)
	}

	mode := ModeOnline
	if errors.Is(err, common.ErrNetwork) && a.config.CacheFile != "" {
		fmt.Fprintln(a.out, "Server unavailable, trying offline login...")
		err = a.unlock(ctx, func(ctx context.Context) error {
			return a.session.AuthOffline(ctx, username, secret)
		})
		mode = ModeOffline
	}

	if err != nil {
		if fromKeyring && (errors.Is(err, common.ErrBadRemoteCredentials) || errors.Is(err, common.ErrCannotDecrypt)) {
			if ferr := keyring.Forget(a.config.ServerEndpointAddr, username); ferr != nil {
				a.logger.Warn(ctx, "keyring entry not removed", "error", ferr)
			}
		}
		return err
	}

	if a.config.UseKeyring && !fromKeyring {
		if kerr := keyring.Save(a.config.ServerEndpointAddr, username, string(secret)); kerr != nil {
			a.logger.Warn(ctx, "master password not stored in keyring", "error", kerr)
		}
	}

	a.setMode(mode)
	a.current = ""
	if mode == ModeOffline {
		fmt.Fprintf(a.out, "Opened the cached vault of %s (read only)\n", username)
	} else {
		fmt.Fprintf(a.out, "Logged in as %s\n", username)
	}
	return nil
}

// Logout forgets the session. The keyring entry stays.
func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	a.current = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// Passwd re-encrypts the vault under a new master password.
func (a *App) Passwd(ctx context.Context) error {
	if !a.isLoggedIn() {
		return common.ErrNotAuthenticated
	}

	secret, err := getNewPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(secret)

	err = a.unlock(ctx, func(ctx context.Context) error {
		return a.session.UpdateMasterPassword(ctx, secret)
	})
	if err != nil {
		return err
	}

	if a.config.UseKeyring {
		if kerr := keyring.Save(a.config.ServerEndpointAddr, a.session.Username(), string(secret)); kerr != nil {
			a.logger.Warn(ctx, "keyring not updated", "error", kerr)
		}
	}
	fmt.Fprintln(a.out, "Master password changed")
	return nil
}

// EnableTfa generates a TOTP secret, shows it for the authenticator app and
// turns two-factor authentication on once the user echoes a valid code.
func (a *App) EnableTfa(ctx context.Context) error {
	if !a.isLoggedIn() {
		return common.ErrNotAuthenticated
	}

	key, err := totp.NewKey(a.session.Username())
	if err != nil {
		return err
	}
	secret := key.Secret()
	fmt.Fprintf(a.out, "Secret: %s\n", secret)
	fmt.Fprintf(a.out, "URI:    %s\n", key.URL())

	code, err := getSimpleText(a.reader, "Enter the code shown by your authenticator", a.out)
	if err != nil {
		return err
	}

	if err := a.session.EnableTfa(ctx, secret, code); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Two-factor authentication enabled")
	return nil
}

// ProvideCode attaches a TOTP code to the next request. A login waiting
// for its second factor is completed right away.
func (a *App) ProvideCode(ctx context.Context, args []string) error {
	if len(args) != 1 {
		printlnFn("Usage: code <code>")
		return nil
	}
	a.session.ProvideTfa(common.TfaMethodTOTP, args[0])
	if a.session.State() != services.Authenticating {
		return nil
	}

	if err := a.session.ResumeAuth(ctx); err != nil {
		return err
	}
	a.setMode(ModeOnline)
	a.current = ""
	fmt.Fprintf(a.out, "Logged in as %s\n", a.session.Username())
	return nil
}
