package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhriti/dhriti-backend/internal/platform/httpx"
	"github.com/dhriti/dhriti-backend/internal/rbac"
)

const testKeyID = "dhriti-test-key"

type jwksFixture struct {
	key    *rsa.PrivateKey
	issuer string
	url    string
}

func newJWKSFixture(t *testing.T) *jwksFixture {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	encode := base64.RawURLEncoding.EncodeToString
	keySet := map[string]any{
		"keys": []map[string]string{{
			"kty": "RSA",
			"kid": testKeyID,
			"use": "sig",
			"alg": "RS256",
			"n":   encode(key.N.Bytes()),
			"e":   encode(big.NewInt(int64(key.E)).Bytes()),
		}},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/.well-known/jwks.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(keySet)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &jwksFixture{
		key:    key,
		issuer: srv.URL + "/auth/v1",
		url:    srv.URL + "/auth/v1/.well-known/jwks.json",
	}
}

func (f *jwksFixture) sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = testKeyID
	signed, err := tok.SignedString(f.key)
	require.NoError(t, err)
	return signed
}

func (f *jwksFixture) claims() jwt.MapClaims {
	claims := validClaims()
	claims["iss"] = f.issuer
	return claims
}

func TestJWKSVerifierAcceptsValidToken(t *testing.T) {
	f := newJWKSFixture(t)
	v := NewJWKSVerifier(context.Background(), f.url, f.issuer, "")

	p, err := v.Verify(context.Background(), f.sign(t, f.claims()))
	require.NoError(t, err)
	assert.Equal(t, "u1", p.ID)
	assert.Equal(t, "t@dhriti.test", p.Email)
	assert.Equal(t, rbac.RoleTeacher, p.Role)
}

func TestJWKSVerifierRejects(t *testing.T) {
	f := newJWKSFixture(t)
	v := NewJWKSVerifier(context.Background(), f.url, f.issuer, "")

	wrongIssuer := f.claims()
	wrongIssuer["iss"] = "https://elsewhere.supabase.co/auth/v1"

	wrongAud := f.claims()
	wrongAud["aud"] = "anon"

	expired := f.claims()
	expired["exp"] = time.Now().Add(-time.Hour).Unix()

	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	foreign := jwt.NewWithClaims(jwt.SigningMethodRS256, f.claims())
	foreign.Header["kid"] = testKeyID
	foreignToken, err := foreign.SignedString(other)
	require.NoError(t, err)

	cases := map[string]string{
		"wrong issuer":   f.sign(t, wrongIssuer),
		"wrong audience": f.sign(t, wrongAud),
		"expired":        f.sign(t, expired),
		"foreign key":    foreignToken,
		"garbage":        "not-a-jwt",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), token)
			require.Error(t, err)
			assert.ErrorIs(t, err, httpx.ErrUnauthorized)
		})
	}
}
