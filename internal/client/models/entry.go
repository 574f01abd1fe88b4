package models

import (
	"errors"
	"fmt"
	"strings"
)

// Field names a patchable content field of an Entry.
type Field string

const (
	FieldTitle    Field = "title"
	FieldURL      Field = "url"
	FieldLogin    Field = "login"
	FieldPassword Field = "password"
)

// ContentFields lists the free-text fields in a fixed order.
var ContentFields = []Field{FieldTitle, FieldURL, FieldLogin, FieldPassword}

var ErrUnknownField = errors.New("unknown field")

// ParseField maps a user supplied name to a Field.
func ParseField(s string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	for _, c := range ContentFields {
		if f == c {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// Get returns the value of field f.
func (e *Entry) Get(f Field) string {
	switch f {
	case FieldTitle:
		return e.Title
	case FieldURL:
		return e.URL
	case FieldLogin:
		return e.Login
	case FieldPassword:
		return e.Password
	}
	return ""
}

// Set assigns v to field f.
func (e *Entry) Set(f Field, v string) {
	switch f {
	case FieldTitle:
		e.Title = v
	case FieldURL:
		e.URL = v
	case FieldLogin:
		e.Login = v
	case FieldPassword:
		e.Password = v
	}
}

// Patch is a partial update. A nil or empty string pointer keeps the
// previous value; fields listed in Clear are blanked explicitly.
type Patch struct {
	Title    *string
	URL      *string
	Login    *string
	Password *string

	Hidden           *bool
	PasswordStrength *int

	Clear []Field
}

func (p Patch) value(f Field) *string {
	switch f {
	case FieldTitle:
		return p.Title
	case FieldURL:
		return p.URL
	case FieldLogin:
		return p.Login
	case FieldPassword:
		return p.Password
	}
	return nil
}

// Apply writes the patch into e and reports whether anything changed.
func (p Patch) Apply(e *Entry) bool {
	changed := false

	for _, f := range p.Clear {
		if e.Get(f) != "" {
			e.Set(f, "")
			changed = true
		}
	}

	for _, f := range ContentFields {
		v := p.value(f)
		if v == nil || *v == "" {
			continue
		}
		if e.Get(f) != *v {
			e.Set(f, *v)
			changed = true
		}
	}

	if p.Hidden != nil && e.Hidden != *p.Hidden {
		e.Hidden = *p.Hidden
		changed = true
	}
	if p.PasswordStrength != nil && e.PasswordStrength != *p.PasswordStrength {
		e.PasswordStrength = *p.PasswordStrength
		changed = true
	}

	return changed
}

// PatchFromEntry builds a patch carrying every non-empty content field of e
// together with its flags.
func PatchFromEntry(e Entry) Patch {
	p := Patch{
		Hidden:           &e.Hidden,
		PasswordStrength: &e.PasswordStrength,
	}
	for _, f := range ContentFields {
		if v := e.Get(f); v != "" {
			p.set(f, v)
		}
	}
	return p
}

func (p *Patch) set(f Field, v string) {
	switch f {
	case FieldTitle:
		p.Title = &v
	case FieldURL:
		p.URL = &v
	case FieldLogin:
		p.Login = &v
	case FieldPassword:
		p.Password = &v
	}
}

// Set records v for field f.
func (p *Patch) Set(f Field, v string) {
	p.set(f, v)
}
