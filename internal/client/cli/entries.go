package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/vaultsync/internal/client/models"
	"github.com/dmitrijs2005/vaultsync/internal/client/vaultdb"
	"github.com/dmitrijs2005/vaultsync/internal/common"
)

const clearMarker = "-"

var errAmbiguous = errors.New("ambiguous entry")

// printEntries writes a table of entries. Hidden entries are skipped unless
// all is set.
func (a *App) printEntries(entries []models.Entry, all bool) {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tLOGIN\tURL")
	n := 0
	for _, e := range entries {
		if e.Hidden && !all {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ID, e.Title, e.Login, e.URL)
		n++
	}
	tw.Flush()
	fmt.Fprintf(a.out, "%d entries\n", n)
}

// List prints visible entries matching the optional filter.
func (a *App) List(_ context.Context, args []string) error {
	filter := strings.Join(args, " ")
	return a.session.View(func(db *vaultdb.Store) error {
		a.printEntries(db.Find(filter), false)
		return nil
	})
}

// Find prints every entry matching the text, hidden ones included.
func (a *App) Find(_ context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: find <text>")
		return nil
	}
	filter := strings.Join(args, " ")
	return a.session.View(func(db *vaultdb.Store) error {
		a.printEntries(db.Find(filter), true)
		return nil
	})
}

// resolve maps the argument, or the current selection, to an entry id. An
// exact id wins; otherwise the text must match exactly one entry.
func resolve(db *vaultdb.Store, args []string, current string) (string, error) {
	if len(args) == 0 {
		if current == "" {
			return "", fmt.Errorf("%w: no entry selected, pass an id or run 'use'", common.ErrNoSuchEntry)
		}
		return current, nil
	}

	key := strings.Join(args, " ")
	if _, err := db.Get(key); err == nil {
		return key, nil
	}

	found := db.Find(key)
	switch len(found) {
	case 0:
		return "", fmt.Errorf("%w: %s", common.ErrNoSuchEntry, key)
	case 1:
		return found[0].ID, nil
	default:
		return "", fmt.Errorf("%w: %q matches %d entries", errAmbiguous, key, len(found))
	}
}

// Use selects the entry later commands act on.
func (a *App) Use(_ context.Context, args []string) error {
	if len(args) == 0 {
		printlnFn("Usage: use <id or text>")
		return nil
	}
	return a.session.View(func(db *vaultdb.Store) error {
		id, err := resolve(db, args, a.current)
		if err != nil {
			return err
		}
		a.current = id
		e, _ := db.Get(id)
		fmt.Fprintf(a.out, "Using %s (%s)\n", e.Title, e.ID)
		return nil
	})
}

// Show prints one entry and counts the view as a use when the session can
// write.
func (a *App) Show(ctx context.Context, args []string) error {
	var id string
	err := a.session.View(func(db *vaultdb.Store) error {
		var err error
		if id, err = resolve(db, args, a.current); err != nil {
			return err
		}
		e, err := db.Get(id)
		if err != nil {
			return err
		}
		a.printEntry(e)
		return nil
	})
	if err != nil {
		return err
	}

	if a.session.Offline() {
		return nil
	}
	if err := a.session.Mutate(func(db *vaultdb.Store) error { return db.EntryUsed(id) }); err != nil {
		a.logger.Debug(ctx, "usage not counted", "id", id, "error", err)
	}
	return nil
}

func (a *App) printEntry(e models.Entry) {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "id:\t%s\n", e.ID)
	fmt.Fprintf(tw, "title:\t%s\n", e.Title)
	fmt.Fprintf(tw, "url:\t%s\n", e.URL)
	fmt.Fprintf(tw, "login:\t%s\n", e.Login)
	fmt.Fprintf(tw, "password:\t%s\n", e.Password)
	fmt.Fprintf(tw, "created:\t%s\n", e.Created.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(tw, "updated:\t%s\n", e.Updated.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(tw, "used:\t%d times\n", e.UsageCount)
	if e.ReuseCount > 0 {
		fmt.Fprintf(tw, "reused:\tby %d other entries\n", e.ReuseCount)
	}
	if e.Hidden {
		fmt.Fprintln(tw, "hidden:\tyes")
	}
	tw.Flush()
}

// Add prompts for the content fields and creates an entry. The new entry
// becomes the current one.
func (a *App) Add(_ context.Context) error {
	if !a.isLoggedIn() {
		return common.ErrNotAuthenticated
	}

	var e models.Entry
	for _, f := range models.ContentFields {
		v, err := getSimpleText(a.reader, "Enter "+string(f), a.out)
		if err != nil {
			return err
		}
		e.Set(f, v)
	}
	if e.Title == "" {
		return errors.New("title is required")
	}

	return a.session.Mutate(func(db *vaultdb.Store) error {
		a.current = db.Add(e)
		fmt.Fprintf(a.out, "Added %s. Run 'save' to store it on the server.\n", a.current)
		return nil
	})
}

// Edit prompts for every content field of an entry. An empty answer keeps
// the value; "-" clears it.
func (a *App) Edit(_ context.Context, args []string) error {
	var (
		id  string
		old models.Entry
	)
	err := a.session.View(func(db *vaultdb.Store) error {
		var err error
		if id, err = resolve(db, args, a.current); err != nil {
			return err
		}
		old, err = db.Get(id)
		return err
	})
	if err != nil {
		return err
	}

	var p models.Patch
	for _, f := range models.ContentFields {
		v, err := getSimpleText(a.reader, fmt.Sprintf("%s [%s]", f, old.Get(f)), a.out)
		if err != nil {
			return err
		}
		switch v {
		case "":
		case clearMarker:
			p.Clear = append(p.Clear, f)
		default:
			p.Set(f, v)
		}
	}

	return a.session.Mutate(func(db *vaultdb.Store) error {
		if err := db.Update(id, p); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Updated %s\n", id)
		return nil
	})
}

// Remove deletes an entry.
func (a *App) Remove(_ context.Context, args []string) error {
	var id string
	err := a.session.View(func(db *vaultdb.Store) error {
		var err error
		id, err = resolve(db, args, a.current)
		return err
	})
	if err != nil {
		return err
	}

	return a.session.Mutate(func(db *vaultdb.Store) error {
		if err := db.Remove(id); err != nil {
			return err
		}
		if a.current == id {
			a.current = ""
		}
		fmt.Fprintf(a.out, "Removed %s\n", id)
		return nil
	})
}
