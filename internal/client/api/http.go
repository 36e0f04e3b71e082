package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matchline/tournops/internal/client/models"
)

const (
	pathRegister                = "/api/v1/auth/register"
	pathLogin                   = "/api/v1/auth/login"
	pathLogout                  = "/api/v1/auth/logout"
	pathRefreshToken            = "/api/v1/auth/refresh-token"
	pathChangePassword          = "/api/v1/auth/change-password"
	pathForgotPassword          = "/api/v1/auth/forgot-password"
	pathVerifyOTP               = "/api/v1/auth/verify-otp"
	pathResetPassword           = "/api/v1/auth/reset-password"
	pathSendEmailVerification   = "/api/v1/auth/send-email-verification"
	pathVerifyEmailOTP          = "/api/v1/auth/verify-email-otp"
	pathResendEmailVerification = "/api/v1/auth/resend-email-verification"
	pathRoles                   = "/api/v1/roles"
	pathHealth                  = "/api/v1/health"
)

// HTTPClient talks to the platform backend over HTTP using the documented
// response envelope. Authorized requests carry the access token as a bearer
// header; an unauthorized reply triggers a single refresh-and-retry before
// the error is surfaced.
type HTTPClient struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
}

var _ API = (*HTTPClient)(nil)

// NewHTTPClient builds a client for the given base URL. tokens supplies the
// credential pair for authorized calls; it may be a store with no session,
// in which case requests go out unauthenticated.
func NewHTTPClient(baseURL string, tokens TokenSource, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		tokens:  tokens,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// doRequest performs a single HTTP round trip and returns the raw response.
func (c *HTTPClient) doRequest(ctx context.Context, method, path string, body any, accessToken string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return resp, nil
}

// call runs one API operation: request, envelope decode, and, for authorized
// calls, a single token refresh followed by one retry when the backend
// answers 401.
func call[T any](ctx context.Context, c *HTTPClient, method, path string, body any, authed bool) (T, error) {
	var zero T

	token := ""
	if authed {
		token = c.tokens.AccessToken()
	}

	resp, err := c.doRequest(ctx, method, path, body, token)
	if err != nil {
		return zero, err
	}

	if resp.StatusCode == http.StatusUnauthorized && authed {
		drain(resp)
		if err := c.refreshTokens(ctx); err != nil {
			return zero, err
		}
		resp, err = c.doRequest(ctx, method, path, body, c.tokens.AccessToken())
		if err != nil {
			return zero, err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			drain(resp)
			return zero, ErrUnauthorized
		}
	}
	defer drain(resp)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return zero, ErrUnauthorized
	case resp.StatusCode >= http.StatusInternalServerError:
		return zero, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	return decodeEnvelope[T](resp.Body)
}

// refreshTokens exchanges the refresh token for a new credential pair and
// stores it. Without a refresh token the session is simply expired.
func (c *HTTPClient) refreshTokens(ctx context.Context) error {
	refresh := c.tokens.RefreshToken()
	if refresh == "" {
		return ErrUnauthorized
	}

	resp, err := c.doRequest(ctx, http.MethodPost, pathRefreshToken, map[string]string{"refreshToken": refresh}, "")
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}

	pair, err := decodeEnvelope[struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}](resp.Body)
	if err != nil {
		return ErrUnauthorized
	}

	return c.tokens.UpdateTokens(ctx, pair.AccessToken, pair.RefreshToken)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

type emptyData struct{}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	res, err := call[AuthResult](ctx, c, http.MethodPost, pathLogin,
		map[string]string{"email": email, "password": password}, false)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	res, err := call[AuthResult](ctx, c, http.MethodPost, pathRegister, req, false)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	_, err := call[emptyData](ctx, c, http.MethodPost, pathLogout, nil, true)
	return err
}

func (c *HTTPClient) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	_, err := call[emptyData](ctx, c, http.MethodPost, pathChangePassword,
		map[string]string{"currentPassword": currentPassword, "newPassword": newPassword}, true)
	return err
}

func (c *HTTPClient) ForgotPassword(ctx context.Context, email string) error {
	_, err := call[emptyData](ctx, c, http.MethodPost, pathForgotPassword,
		map[string]string{"email": email}, false)
	return err
}

func (c *HTTPClient) VerifyOTP(ctx context.Context, email, otp string) error {
	_, err := call[emptyData](ctx, c, http.MethodPost, pathVerifyOTP,
		map[string]string{"email": email, "otp": otp}, false)
	return err
}

func (c *HTTPClient) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	_, err := call[emptyData](ctx, c, http.MethodPost, pathResetPassword,
		map[string]string{"email": email, "otp": otp, "newPassword": newPassword}, false)
	return err
}

func (c *HTTPClient) SendEmailVerification(ctx context.Context) error {
	_, err := call[emptyData](ctx, c, http.MethodPost, pathSendEmailVerification, nil, true)
	return err
}

func (c *HTTPClient) VerifyEmailOTP(ctx context.Context, otp string) error {
	_, err := call[emptyData](ctx, c, http.MethodPost, pathVerifyEmailOTP,
		map[string]string{"otp": otp}, true)
	return err
}

func (c *HTTPClient) ResendEmailVerification(ctx context.Context) error {
	_, err := call[emptyData](ctx, c, http.MethodPost, pathResendEmailVerification, nil, true)
	return err
}

func (c *HTTPClient) Roles(ctx context.Context) ([]models.Role, error) {
	return call[[]models.Role](ctx, c, http.MethodGet, pathRoles, nil, false)
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	status, err := call[struct {
		Status string `json:"status"`
	}](ctx, c, http.MethodGet, pathHealth, nil, false)
	if err != nil {
		return err
	}
	if status.Status != "ok" {
		return ErrUnavailable
	}
	return nil
}
