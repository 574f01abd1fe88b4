package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/vaultsync/internal/client/models"
	"github.com/dmitrijs2005/vaultsync/internal/client/vaultdb"
	"github.com/dmitrijs2005/vaultsync/internal/common"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Save pushes local changes. "save -f" overwrites the server copy even if
// it changed since the last pull.
func (a *App) Save(ctx context.Context, args []string) error {
	save := a.session.Save
	if len(args) > 0 && args[0] == "-f" {
		save = a.session.ForceSave
	}
	if err := save(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Saved")
	return nil
}

// Refresh replaces the local vault with the server copy.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.session.Refresh(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Refreshed from server")
	return nil
}

// Sync saves; if the server copy moved on, it pulls, merges and saves
// again. A merge conflict is printed and nothing is written.
func (a *App) Sync(ctx context.Context) error {
	err := a.session.Save(ctx)
	if err == nil {
		fmt.Fprintln(a.out, "Saved")
		return nil
	}
	if !errors.Is(err, common.ErrNotFastForward) {
		return err
	}

	fmt.Fprintln(a.out, "Server copy changed, merging...")
	if err := a.session.PullAndMerge(ctx); err != nil {
		var conflict *vaultdb.MergeConflictError
		if errors.As(err, &conflict) {
			fmt.Fprint(a.out, renderConflict(conflict))
			fmt.Fprintln(a.out, "Nothing was saved. Use 'refresh' to take the server copy, edit the entry to match and 'sync' again, or 'save -f' to overwrite the server.")
		}
		return err
	}

	if err := a.session.Save(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Merged and saved")
	return nil
}

// renderConflict shows both values of the conflicting field as an inline
// diff: [-local-]{+server+}. Passwords are never printed.
func renderConflict(c *vaultdb.MergeConflictError) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Conflict in entry %s, field %s:\n", c.ID, c.Field)

	if c.Field == string(models.FieldPassword) {
		b.WriteString("  the password was changed differently here and on the server\n")
		return b.String()
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(c.A, c.B, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	b.WriteString("  ")
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			b.WriteString(d.Text)
		case diffmatchpatch.DiffDelete:
			b.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			b.WriteString("{+" + d.Text + "+}")
		}
	}
	b.WriteString("\n")
	return b.String()
}
