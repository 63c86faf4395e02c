package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSigningKey = []byte("test-secret-key-for-unit-tests-only-32b")

func newTestIssuer(t *testing.T) *Issuer {
	t.Helper()
	iss, err := NewIssuer(testSigningKey, time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	return iss
}

func TestIssuer_IssueAndVerify(t *testing.T) {
	iss := newTestIssuer(t)

	sess, err := iss.Issue(Principal{UID: "uid-1", Email: "a@b.com", DisplayName: "Ana", Provider: "password"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if sess.ID == "" || sess.Token == "" {
		t.Fatal("expected token and session id")
	}
	if sess.UID != "uid-1" {
		t.Errorf("expected uid-1, got %s", sess.UID)
	}

	p, err := iss.Verify(sess.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if p.UID != "uid-1" || p.Email != "a@b.com" || p.DisplayName != "Ana" || p.Provider != "password" {
		t.Errorf("unexpected principal %+v", p)
	}
	if p.SessionID != sess.ID {
		t.Errorf("expected session id %s, got %s", sess.ID, p.SessionID)
	}
}

func TestIssuer_UniqueSessionIDs(t *testing.T) {
	iss := newTestIssuer(t)
	a, _ := iss.Issue(Principal{UID: "uid-1"})
	b, _ := iss.Issue(Principal{UID: "uid-1"})
	if a.ID == b.ID {
		t.Error("expected distinct session ids")
	}
}

func TestIssuer_RejectsEmptyUID(t *testing.T) {
	if _, err := newTestIssuer(t).Issue(Principal{}); err == nil {
		t.Fatal("expected error for empty uid")
	}
}

func TestIssuer_Expired(t *testing.T) {
	iss := newTestIssuer(t)
	sess, _ := iss.Issue(Principal{UID: "uid-1"})

	iss.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := iss.Verify(sess.Token); err != ErrInvalidSession {
		t.Fatalf("expected ErrInvalidSession for expired token, got %v", err)
	}
}

func TestIssuer_WrongKey(t *testing.T) {
	sess, _ := newTestIssuer(t).Issue(Principal{UID: "uid-1"})

	other, _ := NewIssuer([]byte(strings.Repeat("x", 32)), time.Hour)
	if _, err := other.Verify(sess.Token); err != ErrInvalidSession {
		t.Fatalf("expected ErrInvalidSession for foreign key, got %v", err)
	}
}

func TestIssuer_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        "jti",
		Subject:   "uid-1",
		Issuer:    sessionIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := newTestIssuer(t).Verify(token); err != ErrInvalidSession {
		t.Fatalf("expected ErrInvalidSession for alg none, got %v", err)
	}
}

func TestIssuer_RejectsForeignIssuer(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        "jti",
		Subject:   "uid-1",
		Issuer:    "someone-else",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSigningKey)
	if _, err := newTestIssuer(t).Verify(token); err != ErrInvalidSession {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}

func TestNewIssuer_RandomKeyWhenEmpty(t *testing.T) {
	a, err := NewIssuer(nil, time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	b, _ := NewIssuer(nil, time.Hour)

	sess, _ := a.Issue(Principal{UID: "uid-1"})
	if _, err := b.Verify(sess.Token); err == nil {
		t.Error("expected independently generated keys to differ")
	}
}

func TestNewIssuer_RejectsNonPositiveTTL(t *testing.T) {
	if _, err := NewIssuer(testSigningKey, 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}
