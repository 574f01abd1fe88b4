package vaultdb

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/vaultsync/internal/client/models"
	"github.com/dmitrijs2005/vaultsync/internal/common"
)

const (
	// FormatVersion is the value of the "v" field written by Serialize.
	FormatVersion = 2
	// MinLength is the serialized length of an empty store.
	MinLength = 1024
	// BytesPerEntry is the padding quantum added for every entry.
	BytesPerEntry = 512
)

type document struct {
	Entries  []models.Entry `json:"entries"`
	Version  int            `json:"v"`
	Revision int            `json:"r"`
}

// PaddedLength returns the serialized length for a store of n entries whose
// JSON form takes raw bytes. Oversized payloads grow by whole quanta.
func PaddedLength(n, raw int) int {
	target := MinLength + n*BytesPerEntry
	if raw > target {
		over := raw - target
		target += (over + BytesPerEntry - 1) / BytesPerEntry * BytesPerEntry
	}
	return target
}

// Serialize encodes the store as JSON followed by space padding, so the
// output length reveals only a bound on the number of entries.
func (s *Store) Serialize() (string, error) {
	entries := s.sorted()
	b, err := json.Marshal(document{Entries: entries, Version: FormatVersion, Revision: s.revision})
	if err != nil {
		return "", fmt.Errorf("encode vault: %w", err)
	}

	var sb strings.Builder
	size := PaddedLength(len(entries), len(b))
	sb.Grow(size)
	sb.Write(b)
	sb.WriteString(strings.Repeat(" ", size-len(b)))
	return sb.String(), nil
}

// Deserialize parses data produced by Serialize.
func Deserialize(data string, opts ...Option) (*Store, error) {
	var doc document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrBadServerResponse, err)
	}

	s := New(opts...)
	for _, e := range doc.Entries {
		if _, dup := s.entries[e.ID]; dup {
			return nil, fmt.Errorf("%w: %s", common.ErrDuplicateEntry, e.ID)
		}
		e.ReuseCount = 0
		s.entries[e.ID] = e
	}

	if doc.Version != FormatVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", common.ErrFormatVersionMismatch, doc.Version, FormatVersion)
	}

	s.revision = doc.Revision
	return s, nil
}
