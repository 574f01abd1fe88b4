package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/vaultsync/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := GenerateTfaToken("alice", secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateTfaToken error: %v", err)
	}

	got, err := UsernameFromTfaToken(tok, secret)
	if err != nil {
		t.Fatalf("UsernameFromTfaToken error: %v", err)
	}
	if got != "alice" {
		t.Fatalf("username mismatch: got %q want %q", got, "alice")
	}
}

func TestUsernameFromTfaToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := GenerateTfaToken("alice", secret, -time.Second)
	if err != nil {
		t.Fatalf("GenerateTfaToken error: %v", err)
	}

	_, err = UsernameFromTfaToken(tok, secret)
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestUsernameFromTfaToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateTfaToken("alice", []byte("right-secret"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateTfaToken error: %v", err)
	}

	if _, err := UsernameFromTfaToken(tok, []byte("wrong-secret")); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestUsernameFromTfaToken_Garbage(t *testing.T) {
	t.Parallel()

	if _, err := UsernameFromTfaToken("not-a-jwt", []byte("k")); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestUsernameFromTfaToken_RejectsOtherAudience(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{"someone-else"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Username: "alice",
	}).SignedString(secret)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := UsernameFromTfaToken(tok, secret); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestUsernameFromTfaToken_RejectsNoneAlg(t *testing.T) {
	t.Parallel()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{tfaAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Username: "alice",
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := UsernameFromTfaToken(tok, []byte("k")); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}
