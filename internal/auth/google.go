package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultIdentityBaseURL = "https://www.googleapis.com/identitytoolkit/v3/relyingparty"
	defaultTokenBaseURL    = "https://securetoken.googleapis.com/v1/token"
)

// ErrInvalidCredentials is returned when Google rejects the email/password pair.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// Identity is the authenticated identity returned by the verifyPassword flow.
type Identity struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	DisplayName  string `json:"display_name"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	Registered   bool   `json:"registered"`
}

// AccountInfo is the profile returned by the getAccountInfo endpoint.
type AccountInfo struct {
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	DisplayName   string `json:"display_name"`
	PhotoURL      string `json:"photo_url"`
	CreatedAt     string `json:"created_at"`
	LastLoginAt   string `json:"last_login_at"`
}

// RefreshedTokens is the result of exchanging a refresh token.
type RefreshedTokens struct {
	AccessToken  string `json:"access_token"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	UserID       string `json:"user_id"`
	ProjectID    string `json:"project_id"`
}

// IdentityClient talks to the Google Identity Toolkit.
type IdentityClient struct {
	identityBaseURL string
	tokenBaseURL    string
	apiKey          string
	logger          *slog.Logger
	httpClient      *http.Client
}

// IdentityOption customizes an IdentityClient.
type IdentityOption func(*IdentityClient)

// WithIdentityEndpoints overrides the Google endpoints, primarily for tests.
func WithIdentityEndpoints(identityBaseURL, tokenBaseURL string) IdentityOption {
	return func(c *IdentityClient) {
		c.identityBaseURL = identityBaseURL
		c.tokenBaseURL = tokenBaseURL
	}
}

// NewIdentityClient constructs a client for the Google Identity Toolkit.
func NewIdentityClient(apiKey string, logger *slog.Logger, opts ...IdentityOption) *IdentityClient {
	c := &IdentityClient{
		identityBaseURL: defaultIdentityBaseURL,
		tokenBaseURL:    defaultTokenBaseURL,
		apiKey:          apiKey,
		logger:          logger,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type googleError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *IdentityClient) postJSON(ctx context.Context, endpoint string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("auth: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?key="+url.QueryEscape(c.apiKey), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		var gerr googleError
		_ = json.NewDecoder(resp.Body).Decode(&gerr)
		if resp.StatusCode == http.StatusBadRequest {
			message := gerr.Error.Message
			if message == "EMAIL_NOT_FOUND" || message == "INVALID_PASSWORD" || message == "INVALID_LOGIN_CREDENTIALS" || message == "USER_DISABLED" {
				return ErrInvalidCredentials
			}
		}
		if gerr.Error.Message != "" {
			return fmt.Errorf("auth: google returned %d: %s", resp.StatusCode, gerr.Error.Message)
		}
		return fmt.Errorf("auth: google returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Authenticate verifies an email/password pair against Google Identity
// Toolkit.
func (c *IdentityClient) Authenticate(ctx context.Context, email, password string) (*Identity, error) {
	var result struct {
		LocalID      string `json:"localId"`
		Email        string `json:"email"`
		DisplayName  string `json:"displayName"`
		IDToken      string `json:"idToken"`
		RefreshToken string `json:"refreshToken"`
		ExpiresIn    string `json:"expiresIn"`
		Registered   bool   `json:"registered"`
	}
	err := c.postJSON(ctx, c.identityBaseURL+"/verifyPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &result)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.logger.Warn("authentication rejected", "email", email)
		}
		return nil, err
	}

	expiresIn, _ := strconv.Atoi(result.ExpiresIn)
	if expiresIn == 0 {
		expiresIn = 3600
	}
	c.logger.Info("user authenticated", "email", result.Email)
	return &Identity{
		UserID:       result.LocalID,
		Email:        result.Email,
		DisplayName:  result.DisplayName,
		IDToken:      result.IDToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    expiresIn,
		Registered:   result.Registered,
	}, nil
}

// AccountInfo fetches the profile behind a Google ID token.
func (c *IdentityClient) AccountInfo(ctx context.Context, idToken string) (*AccountInfo, error) {
	var result struct {
		Users []struct {
			LocalID       string `json:"localId"`
			Email         string `json:"email"`
			EmailVerified bool   `json:"emailVerified"`
			DisplayName   string `json:"displayName"`
			PhotoURL      string `json:"photoUrl"`
			CreatedAt     string `json:"createdAt"`
			LastLoginAt   string `json:"lastLoginAt"`
		} `json:"users"`
	}
	err := c.postJSON(ctx, c.identityBaseURL+"/getAccountInfo", map[string]any{
		"idToken": idToken,
	}, &result)
	if err != nil {
		return nil, err
	}
	if len(result.Users) == 0 {
		return nil, errors.New("auth: account not found")
	}
	user := result.Users[0]
	return &AccountInfo{
		UserID:        user.LocalID,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
		DisplayName:   user.DisplayName,
		PhotoURL:      user.PhotoURL,
		CreatedAt:     user.CreatedAt,
		LastLoginAt:   user.LastLoginAt,
	}, nil
}

// RefreshTokens exchanges a refresh token for fresh access tokens. The secure
// token endpoint expects form-encoded input.
func (c *IdentityClient) RefreshTokens(ctx context.Context, refreshToken string) (*RefreshedTokens, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenBaseURL+"?key="+url.QueryEscape(c.apiKey), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		var gerr googleError
		_ = json.NewDecoder(resp.Body).Decode(&gerr)
		if gerr.Error.Message != "" {
			return nil, fmt.Errorf("auth: token refresh failed: %s", gerr.Error.Message)
		}
		return nil, fmt.Errorf("auth: token refresh returned status %d", resp.StatusCode)
	}

	var result struct {
		AccessToken  string `json:"access_token"`
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    string `json:"expires_in"`
		TokenType    string `json:"token_type"`
		UserID       string `json:"user_id"`
		ProjectID    string `json:"project_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("auth: decode refresh response: %w", err)
	}
	expiresIn, _ := strconv.Atoi(result.ExpiresIn)
	if expiresIn == 0 {
		expiresIn = 3600
	}
	tokenType := result.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &RefreshedTokens{
		AccessToken:  result.AccessToken,
		IDToken:      result.IDToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    expiresIn,
		TokenType:    tokenType,
		UserID:       result.UserID,
		ProjectID:    result.ProjectID,
	}, nil
}
