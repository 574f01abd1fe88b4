package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/vaultsync/internal/common"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. *App implements
// it; tests use a recording stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
	List(ctx context.Context, args []string) error
	Find(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	Remove(ctx context.Context, args []string) error
	Use(ctx context.Context, args []string) error
	Save(ctx context.Context, args []string) error
	Refresh(ctx context.Context) error
	Sync(ctx context.Context) error
	Passwd(ctx context.Context) error
	EnableTfa(ctx context.Context) error
	ProvideCode(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: login [user], code <code>, help, exit"
	helpLoggedIn  = "Available commands: (l)ist [filter], find <text>, show [id], add, edit [id], rm [id], use <id>, " +
		"save [-f], refresh, sync, passwd, tfa, code <code>, logout, exit"
)

// runREPL reads commands from r until EOF, "exit" or "quit".
//
// The first word of a line selects the command, the rest are its
// arguments. Handler errors are reported and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, r *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("vs %s> ", statusFn()))

		line, err := r.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "login":
			cmdErr = a.Login(ctx, args)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "l", "list":
			cmdErr = a.List(ctx, args)

		case "find":
			cmdErr = a.Find(ctx, args)

		case "show":
			cmdErr = a.Show(ctx, args)

		case "add":
			cmdErr = a.Add(ctx)

		case "edit":
			cmdErr = a.Edit(ctx, args)

		case "rm":
			cmdErr = a.Remove(ctx, args)

		case "use":
			cmdErr = a.Use(ctx, args)

		case "save":
			cmdErr = a.Save(ctx, args)

		case "refresh":
			cmdErr = a.Refresh(ctx)

		case "sync":
			cmdErr = a.Sync(ctx)

		case "passwd":
			cmdErr = a.Passwd(ctx)

		case "tfa":
			cmdErr = a.EnableTfa(ctx)

		case "code":
			cmdErr = a.ProvideCode(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn(describe(cmdErr))
		}

		if err != nil {
			return
		}
	}
}

// describe turns a command error into a line for the user.
func describe(err error) string {
	switch {
	case errors.Is(err, common.ErrNotAuthenticated):
		return "Not logged in. Use 'login' first."
	case errors.Is(err, common.ErrNotFastForward):
		return "The server copy changed since your last pull. Run 'sync' to merge or 'refresh' to discard local changes."
	case errors.Is(err, common.ErrBadRemoteCredentials), errors.Is(err, common.ErrCannotDecrypt):
		return "Wrong username or master password."
	case errors.Is(err, common.ErrTfaRequired):
		return "Two-factor code required. Enter it with 'code <code>' and retry."
	case errors.Is(err, common.ErrTfaFailed):
		return "Two-factor code rejected. Try another with 'code <code>'."
	case errors.Is(err, common.ErrTfaConfirmFailed):
		return "Code does not match the new secret; two-factor authentication stays off."
	case errors.Is(err, common.ErrDemoMode):
		return "The server is in demo mode and does not accept changes."
	case errors.Is(err, common.ErrRateLimited):
		return "Too many requests, try again in a moment."
	case errors.Is(err, common.ErrNetwork):
		return "Server unavailable: " + err.Error()
	default:
		return "error: " + err.Error()
	}
}
