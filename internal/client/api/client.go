package api

import (
	"context"

	"github.com/matchline/tournops/internal/client/models"
)

// AuthResult is the payload of a successful login or register call:
// the account plus its credential pair. The three values always travel
// together.
type AuthResult struct {
	User         models.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

// RegisterRequest carries the fields needed to create an account.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// API is the transport-agnostic contract to the tournament platform backend.
type API interface {
	Close() error

	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, req RegisterRequest) (*AuthResult, error)
	Logout(ctx context.Context) error

	ChangePassword(ctx context.Context, currentPassword, newPassword string) error
	ForgotPassword(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, otp string) error
	ResetPassword(ctx context.Context, email, otp, newPassword string) error

	SendEmailVerification(ctx context.Context) error
	VerifyEmailOTP(ctx context.Context, otp string) error
	ResendEmailVerification(ctx context.Context) error

	Roles(ctx context.Context) ([]models.Role, error)
	Ping(ctx context.Context) error
}

// TokenSource supplies the credential pair for authorized requests and
// accepts the replacement pair minted by a refresh. The session store
// implements it.
type TokenSource interface {
	AccessToken() string
	RefreshToken() string
	UpdateTokens(ctx context.Context, accessToken, refreshToken string) error
}
