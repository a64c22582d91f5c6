package auth

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewTokenIssuer_RejectsWeakSecret(t *testing.T) {
	_, err := NewTokenIssuer("short", 30*time.Minute)
	require.ErrorIs(t, err, ErrWeakSecret)
}

func TestIssueAndValidate_RoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer(testSecret, 30*time.Minute)
	require.NoError(t, err)

	token, err := issuer.Issue("u-1", "dev@onbotgo.com", "Dev One", []string{"developer", "member"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	session, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", session.UserID)
	assert.Equal(t, "dev@onbotgo.com", session.Email)
	assert.Equal(t, "Dev One", session.DisplayName)
	assert.Equal(t, []string{"developer", "member"}, session.Roles)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), session.ExpiresAt, 5*time.Second)
}

func TestValidate_Expired(t *testing.T) {
	issuer, err := NewTokenIssuer(testSecret, 10*time.Minute)
	require.NoError(t, err)

	issued := time.Now()
	issuer.now = func() time.Time { return issued }
	token, err := issuer.Issue("u-1", "dev@onbotgo.com", "", nil)
	require.NoError(t, err)

	issuer.now = func() time.Time { return issued.Add(11 * time.Minute) }
	_, err = issuer.Validate(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidate_WrongSecret(t *testing.T) {
	issuer, err := NewTokenIssuer(testSecret, 10*time.Minute)
	require.NoError(t, err)
	token, err := issuer.Issue("u-1", "dev@onbotgo.com", "", nil)
	require.NoError(t, err)

	other, err := NewTokenIssuer("ffffffffffffffffffffffffffffffff", 10*time.Minute)
	require.NoError(t, err)
	_, err = other.Validate(token)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidate_Garbage(t *testing.T) {
	issuer, err := NewTokenIssuer(testSecret, 10*time.Minute)
	require.NoError(t, err)
	_, err = issuer.Validate("not-a-token")
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestAuthenticate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/verifyPassword", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "dev@onbotgo.com", body["email"])
		assert.Equal(t, true, body["returnSecureToken"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"localId":      "u-123",
			"email":        "dev@onbotgo.com",
			"displayName":  "Dev One",
			"idToken":      "id-token",
			"refreshToken": "refresh-token",
			"expiresIn":    "3600",
			"registered":   true,
		})
	}))
	defer srv.Close()

	client := NewIdentityClient("test-key", testLogger(), WithIdentityEndpoints(srv.URL, srv.URL+"/token"))
	identity, err := client.Authenticate(context.Background(), "dev@onbotgo.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "u-123", identity.UserID)
	assert.Equal(t, "Dev One", identity.DisplayName)
	assert.Equal(t, 3600, identity.ExpiresIn)
	assert.True(t, identity.Registered)
}

func TestAuthenticate_BadPassword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "INVALID_PASSWORD"},
		})
	}))
	defer srv.Close()

	client := NewIdentityClient("test-key", testLogger(), WithIdentityEndpoints(srv.URL, srv.URL+"/token"))
	_, err := client.Authenticate(context.Background(), "dev@onbotgo.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAccountInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/getAccountInfo", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"users": []map[string]any{{
				"localId":       "u-123",
				"email":         "dev@onbotgo.com",
				"emailVerified": true,
				"displayName":   "Dev One",
			}},
		})
	}))
	defer srv.Close()

	client := NewIdentityClient("test-key", testLogger(), WithIdentityEndpoints(srv.URL, srv.URL+"/token"))
	info, err := client.AccountInfo(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, "u-123", info.UserID)
	assert.True(t, info.EmailVerified)
}

func TestRefreshTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/token", r.URL.Path)
		assert.Contains(t, r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "old-refresh", r.PostForm.Get("refresh_token"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "new-access",
			"id_token":      "new-id",
			"refresh_token": "new-refresh",
			"expires_in":    "3600",
			"user_id":       "u-123",
		})
	}))
	defer srv.Close()

	client := NewIdentityClient("test-key", testLogger(), WithIdentityEndpoints(srv.URL, srv.URL+"/token"))
	tokens, err := client.RefreshTokens(context.Background(), "old-refresh")
	require.NoError(t, err)
	assert.Equal(t, "new-access", tokens.AccessToken)
	assert.Equal(t, "new-refresh", tokens.RefreshToken)
	assert.Equal(t, "Bearer", tokens.TokenType)
	assert.Equal(t, 3600, tokens.ExpiresIn)
}
