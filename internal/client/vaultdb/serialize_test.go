package vaultdb

import (
	"strings"
	"testing"

	"github.com/dmitrijs2005/vaultsync/internal/client/models"
	"github.com/dmitrijs2005/vaultsync/internal/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialize_PaddingInvariant(t *testing.T) {
	s, _ := newTestStore(t)

	for n := 0; n < 6; n++ {
		out, err := s.Serialize()
		require.NoError(t, err)
		assert.Len(t, out, MinLength+s.Size()*BytesPerEntry, "entries=%d", n)
		assert.True(t, strings.HasPrefix(out, "{"))
		s.Add(models.Entry{Title: "entry", Login: "user", Password: "pw", URL: "https://example.com"})
	}
}

func TestSerialize_OversizedRoundsUpByQuantum(t *testing.T) {
	s, _ := newTestStore(t)
	s.Add(models.Entry{Title: strings.Repeat("x", 3000)})

	out, err := s.Serialize()
	require.NoError(t, err)

	assert.Greater(t, len(out), MinLength+BytesPerEntry)
	assert.Zero(t, (len(out)-MinLength)%BytesPerEntry)

	back, err := Deserialize(out)
	require.NoError(t, err)
	assert.Equal(t, 1, back.Size())
}

func TestPaddedLength(t *testing.T) {
	assert.Equal(t, MinLength, PaddedLength(0, 10))
	assert.Equal(t, MinLength+2*BytesPerEntry, PaddedLength(2, 100))
	assert.Equal(t, MinLength+2*BytesPerEntry, PaddedLength(1, MinLength+BytesPerEntry+1))
}

func TestSerialize_RoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	a := s.Add(models.Entry{Title: "a", Password: "same"})
	s.Add(models.Entry{Title: "b", Password: "same", Hidden: true, PasswordStrength: 4})
	require.NoError(t, s.EntryUsed(a))

	out, err := s.Serialize()
	require.NoError(t, err)

	back, err := Deserialize(out)
	require.NoError(t, err)

	assert.Equal(t, s.Revision(), back.Revision())
	if diff := cmp.Diff(s.All(), back.All()); diff != "" {
		t.Fatalf("entries differ (-want +got):\n%s", diff)
	}
}

func TestSerialize_ContinuesAfterDeserialize(t *testing.T) {
	s := New()
	first := s.Add(models.Entry{Title: "one"})
	out, err := s.Serialize()
	require.NoError(t, err)

	back, err := Deserialize(out)
	require.NoError(t, err)
	second := back.Add(models.Entry{Title: "two"})

	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, back.Size())
	assert.Equal(t, s.Revision()+1, back.Revision())
}

func TestSerialize_HelloBob(t *testing.T) {
	s := New()
	id := s.Add(models.Entry{Title: "Hello", Login: "Bob", Password: "zephyr", URL: "http://example.com"})

	out, err := s.Serialize()
	require.NoError(t, err)
	back, err := Deserialize(out)
	require.NoError(t, err)

	e, err := back.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Hello", e.Title)
	assert.Equal(t, "Bob", e.Login)
	assert.Equal(t, "zephyr", e.Password)
	assert.Equal(t, "http://example.com", e.URL)
	assert.Equal(t, 1, back.Size())
}

func TestDeserialize_Errors(t *testing.T) {
	dup := `{"entries":[{"id":"a"},{"id":"a"}],"v":2,"r":1}    `
	_, err := Deserialize(dup)
	require.ErrorIs(t, err, common.ErrDuplicateEntry)

	old := `{"entries":[{"id":"a"}],"v":1,"r":1}`
	_, err = Deserialize(old)
	require.ErrorIs(t, err, common.ErrFormatVersionMismatch)

	_, err = Deserialize("not json")
	require.ErrorIs(t, err, common.ErrBadServerResponse)
}

func TestDeserialize_IgnoresStoredReuseCount(t *testing.T) {
	in := `{"entries":[{"id":"a","password":"p","reuse_count":7}],"v":2,"r":3}`
	s, err := Deserialize(in)
	require.NoError(t, err)

	e, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 0, e.ReuseCount)
	assert.Equal(t, 3, s.Revision())
}
