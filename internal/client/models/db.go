package models

import "time"

// Entry is one credential record stored in the vault.
type Entry struct {
	// ID is unique within a vault and never changes once assigned.
	ID string `json:"id"`

	Title    string `json:"title"`
	URL      string `json:"url"`
	Login    string `json:"login"`
	Password string `json:"password"`

	// Created and Updated are stored in UTC.
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`

	// UsageCount is incremented every time the entry is used.
	UsageCount int `json:"usage_count"`

	// ReuseCount is the number of other entries sharing Password. It is
	// recomputed from the entry set and never persisted.
	ReuseCount int `json:"-"`

	Hidden bool `json:"hidden"`

	// PasswordStrength is an externally computed score carried as is.
	PasswordStrength int `json:"password_strength_indication"`
}

// Clone returns a structural copy of e.
func (e Entry) Clone() Entry {
	return e
}
