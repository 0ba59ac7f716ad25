package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.RegisteredClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims() jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   "7b0c2c1e-4f0e-4d8a-9a59-6c1f3c1f0a11",
		Issuer:    "https://auth.example.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
}

func TestResolver_UserID(t *testing.T) {
	r := NewResolver(testSecret, "https://auth.example.com")

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	wrongIssuer := validClaims()
	wrongIssuer.Issuer = "https://elsewhere.example.com"
	noSubject := validClaims()
	noSubject.Subject = ""
	noExpiry := validClaims()
	noExpiry.ExpiresAt = nil

	tests := []struct {
		name    string
		token   string
		want    string
		wantErr error
	}{
		{"valid", sign(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims()), validClaims().Subject, nil},
		{"empty", "", "", ErrMissingToken},
		{"garbage", "not.a.jwt", "", ErrInvalidToken},
		{"wrong secret", sign(t, jwt.SigningMethodHS256, []byte("other"), validClaims()), "", ErrInvalidToken},
		{"wrong algorithm", sign(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims()), "", ErrInvalidToken},
		{"expired", sign(t, jwt.SigningMethodHS256, []byte(testSecret), expired), "", ErrInvalidToken},
		{"no expiry", sign(t, jwt.SigningMethodHS256, []byte(testSecret), noExpiry), "", ErrInvalidToken},
		{"wrong issuer", sign(t, jwt.SigningMethodHS256, []byte(testSecret), wrongIssuer), "", ErrInvalidToken},
		{"no subject", sign(t, jwt.SigningMethodHS256, []byte(testSecret), noSubject), "", ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.UserID(tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_NoSecretIsNotConfigured(t *testing.T) {
	r := NewResolver("", "")
	_, err := r.UserID(sign(t, jwt.SigningMethodHS256, []byte("any"), validClaims()))
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = r.UserID("")
	assert.ErrorIs(t, err, ErrNotConfigured, "checked before the token")
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"Bearer":       "",
		"":             "",
	}
	for header, want := range tests {
		req := httptest.NewRequest("POST", "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		assert.Equal(t, want, BearerToken(req), "header %q", header)
	}
}

func TestValidCronSecret(t *testing.T) {
	req := httptest.NewRequest("POST", "/", nil)
	req.Header.Set(CronSecretHeader, "s3cret")
	assert.True(t, ValidCronSecret(req, "s3cret"))
	assert.False(t, ValidCronSecret(req, "other"))
	assert.False(t, ValidCronSecret(req, ""), "unset secret never validates")

	bearer := httptest.NewRequest("POST", "/", nil)
	bearer.Header.Set("Authorization", "Bearer s3cret")
	assert.True(t, ValidCronSecret(bearer, "s3cret"))

	none := httptest.NewRequest("POST", "/", nil)
	assert.False(t, ValidCronSecret(none, "s3cret"))
}
