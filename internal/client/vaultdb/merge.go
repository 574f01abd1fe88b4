package vaultdb

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dmitrijs2005/vaultsync/internal/client/models"
	"github.com/dmitrijs2005/vaultsync/internal/common"
)

// MergeResult is the reconciled entry set, ordered by id.
type MergeResult struct {
	Result []models.Entry
}

// MergeConflictError reports a field that was edited differently on both
// sides of a merge. A and B hold the two values; Error never prints them.
type MergeConflictError struct {
	ID    string
	Field string
	A     string
	B     string
}

func (e *MergeConflictError) Error() string {
	return fmt.Sprintf("%v: entry %s field %s", common.ErrIrreconcilableMerge, e.ID, e.Field)
}

func (e *MergeConflictError) Unwrap() error {
	return common.ErrIrreconcilableMerge
}

func index(entries []models.Entry) (map[string]models.Entry, error) {
	m := make(map[string]models.Entry, len(entries))
	for _, e := range entries {
		if _, dup := m[e.ID]; dup {
			return nil, fmt.Errorf("%w: %s", common.ErrDuplicateEntry, e.ID)
		}
		m[e.ID] = e
	}
	return m, nil
}

// MergeVaultsIfPossible reconciles two snapshots of the same vault. Entries
// present on one side only are carried over. Entries present on both sides
// are merged field by field; divergent text is a conflict. The result does
// not depend on argument order.
//
// Without a common ancestor a blank field cannot be told from a cleared
// one: a field emptied with Patch.Clear on one side gets the other side's
// value back, and an entry removed on one side only comes back too.
func MergeVaultsIfPossible(a, b []models.Entry) (MergeResult, error) {
	ma, err := index(a)
	if err != nil {
		return MergeResult{}, err
	}
	mb, err := index(b)
	if err != nil {
		return MergeResult{}, err
	}

	ids := make([]string, 0, len(ma)+len(mb))
	for id := range ma {
		ids = append(ids, id)
	}
	for id := range mb {
		if _, ok := ma[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	out := make([]models.Entry, 0, len(ids))
	for _, id := range ids {
		ea, inA := ma[id]
		eb, inB := mb[id]
		switch {
		case !inB:
			out = append(out, ea)
		case !inA:
			out = append(out, eb)
		default:
			m, err := mergeEntry(ea, eb)
			if err != nil {
				return MergeResult{}, err
			}
			out = append(out, m)
		}
	}

	for i := range out {
		out[i].ReuseCount = 0
	}
	return MergeResult{Result: out}, nil
}

func mergeEntry(a, b models.Entry) (models.Entry, error) {
	if !a.Created.Equal(b.Created) {
		return models.Entry{}, &MergeConflictError{
			ID:    a.ID,
			Field: "created",
			A:     a.Created.Format(time.RFC3339Nano),
			B:     b.Created.Format(time.RFC3339Nano),
		}
	}

	m := a
	for _, f := range models.ContentFields {
		v, err := mergeText(a.Get(f), b.Get(f))
		if err != nil {
			return models.Entry{}, &MergeConflictError{ID: a.ID, Field: string(f), A: a.Get(f), B: b.Get(f)}
		}
		m.Set(f, v)
	}

	m.UsageCount = max(a.UsageCount, b.UsageCount)
	m.PasswordStrength = max(a.PasswordStrength, b.PasswordStrength)

	switch {
	case a.Updated.After(b.Updated):
		m.Updated, m.Hidden = a.Updated, a.Hidden
	case b.Updated.After(a.Updated):
		m.Updated, m.Hidden = b.Updated, b.Hidden
	default:
		m.Hidden = a.Hidden || b.Hidden
	}
	return m, nil
}

var errDivergent = errors.New("divergent")

func mergeText(a, b string) (string, error) {
	switch {
	case a == b:
		return a, nil
	case a == "":
		return b, nil
	case b == "":
		return a, nil
	default:
		return "", errDivergent
	}
}

// Merge combines two stores into a new one whose revision is past both.
func Merge(a, b *Store, opts ...Option) (*Store, error) {
	res, err := MergeVaultsIfPossible(a.sorted(), b.sorted())
	if err != nil {
		return nil, err
	}
	s := New(opts...)
	for _, e := range res.Result {
		s.entries[e.ID] = e
	}
	s.revision = max(a.revision, b.revision) + 1
	return s, nil
}
