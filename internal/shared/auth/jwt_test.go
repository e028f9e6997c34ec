package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestVerifierRoundTrip(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	v := NewVerifier("test-secret").WithClock(func() time.Time { return now })

	claims := Subject("user-1")
	claims.Email = "ana@example.com"
	claims.UserMetadata = UserMetadata{Name: "Ana"}
	token, err := v.Sign(claims)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	got, err := v.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got.Subject != "user-1" || got.UserMetadata.Name != "Ana" || got.Email != "ana@example.com" {
		t.Fatalf("unexpected claims: %+v", got)
	}
	if got.ExpiresAt == nil || !got.ExpiresAt.Time.Equal(now.Add(time.Hour)) {
		t.Fatalf("expected default one hour expiry, got %v", got.ExpiresAt)
	}
}

func TestVerifierAcceptsHostedAudience(t *testing.T) {
	v := NewVerifier("test-secret")
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "user-3",
		"aud":  "authenticated",
		"role": "authenticated",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	token, err := raw.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	claims, err := v.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "user-3" || claims.Role != "authenticated" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifierRejects(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	v := NewVerifier("test-secret").WithClock(func() time.Time { return now })
	other := NewVerifier("other-secret").WithClock(func() time.Time { return now })

	expiredClaims := Subject("user-1")
	expiredClaims.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
	expiredClaims.IssuedAt = jwt.NewNumericDate(now.Add(-time.Hour))
	expired, err := v.Sign(expiredClaims)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	foreign, err := other.Sign(Subject("user-1"))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if _, err := v.Verify(expired); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
	if _, err := v.Verify(foreign); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := v.Verify("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := NewVerifier("").Verify(foreign); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
}

func TestVerifierRejectsNotYetValid(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	v := NewVerifier("s3cret").WithClock(func() time.Time { return now })

	claims := Subject("u1")
	claims.NotBefore = jwt.NewNumericDate(now.Add(24 * time.Hour))
	token, err := v.Sign(claims)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	_, err = v.Verify(token)
	if !errors.Is(err, ErrInvalidToken) || !errors.Is(err, jwt.ErrTokenNotValidYet) {
		t.Fatalf("expected not-valid-yet rejection, got %v", err)
	}
}

func TestVerifierRejectsOtherAlgorithms(t *testing.T) {
	v := NewVerifier("test-secret")
	cases := []struct {
		name   string
		method jwt.SigningMethod
		key    interface{}
	}{
		{name: "hs512", method: jwt.SigningMethodHS512, key: []byte("test-secret")},
		{name: "none", method: jwt.SigningMethodNone, key: jwt.UnsafeAllowNoneSignatureType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token, err := jwt.NewWithClaims(tc.method, Subject("user-1")).SignedString(tc.key)
			if err != nil {
				t.Fatalf("SignedString: %v", err)
			}
			if _, err := v.Verify(token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestSignRequiresSubject(t *testing.T) {
	if _, err := NewVerifier("s").Sign(Claims{}); err == nil {
		t.Fatalf("expected error for empty subject")
	}
}

func TestParseUnverified(t *testing.T) {
	v := NewVerifier("s")
	token, err := v.Sign(Subject("user-9"))
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	claims, err := ParseUnverified(token)
	if err != nil {
		t.Fatalf("ParseUnverified: %v", err)
	}
	if claims.Subject != "user-9" {
		t.Fatalf("unexpected sub %q", claims.Subject)
	}
	if _, err := ParseUnverified("garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
