// Package devserver is a local stand-in for the tournament platform: the
// documented auth/role endpoints with envelope responses, canned accounts,
// and a websocket hub pushing notifications. It exists for development and
// integration-style tests; nothing here is production grade.
package devserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/matchline/tournops/internal/client/models"
	"github.com/matchline/tournops/internal/logging"
)

// DevOTP is accepted for every OTP check.
const DevOTP = "123456"

type account struct {
	models.User
	Password string
}

// Server implements the platform API surface in memory.
type Server struct {
	log logging.Logger
	hub *Hub

	mu       sync.Mutex
	roles    []models.Role
	accounts map[string]*account // keyed by email
	access   map[string]string   // access token -> user id
	refresh  map[string]string   // refresh token -> user id
}

// New builds a server with the default role registry and no accounts.
func New(hub *Hub, log logging.Logger) *Server {
	s := &Server{
		log:      log.With("component", "devserver"),
		hub:      hub,
		accounts: make(map[string]*account),
		access:   make(map[string]string),
		refresh:  make(map[string]string),
	}
	for _, name := range []string{
		"admin", "organizer", "chief_referee", "team_manager",
		"coach", "athlete", "spectator",
	} {
		s.roles = append(s.roles, models.Role{
			ID:          uuid.NewString(),
			Name:        name,
			Description: strings.ReplaceAll(name, "_", " "),
		})
	}
	return s
}

// Hub exposes the notification hub so callers can push frames.
func (s *Server) Hub() *Hub { return s.hub }

// Roles returns the canned role registry.
func (s *Server) Roles() []models.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Role(nil), s.roles...)
}

// Seed registers an account without going through the HTTP surface.
// roleNames must name roles from the registry.
func (s *Server) Seed(username, email, password string, roleNames ...string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	var roleIDs []string
	for _, name := range roleNames {
		for _, r := range s.roles {
			if r.Name == name {
				roleIDs = append(roleIDs, r.ID)
			}
		}
	}

	acc := &account{
		User: models.User{
			ID:       uuid.NewString(),
			Username: username,
			Email:    email,
			RoleIDs:  roleIDs,
		},
		Password: password,
	}
	s.accounts[email] = acc
	return *acc.User.Clone()
}

// Handler returns the full HTTP surface: auth endpoints, role registry,
// health probe, and the websocket upgrade path.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/v1/auth/logout", s.authed(s.handleLogout))
	mux.HandleFunc("POST /api/v1/auth/refresh-token", s.handleRefreshToken)
	mux.HandleFunc("POST /api/v1/auth/change-password", s.authed(s.handleChangePassword))
	mux.HandleFunc("POST /api/v1/auth/forgot-password", s.handleForgotPassword)
	mux.HandleFunc("POST /api/v1/auth/verify-otp", s.handleVerifyOTP)
	mux.HandleFunc("POST /api/v1/auth/reset-password", s.handleResetPassword)
	mux.HandleFunc("POST /api/v1/auth/send-email-verification", s.authed(s.handleSendEmailVerification))
	mux.HandleFunc("POST /api/v1/auth/verify-email-otp", s.authed(s.handleVerifyEmailOTP))
	mux.HandleFunc("POST /api/v1/auth/resend-email-verification", s.authed(s.handleSendEmailVerification))
	mux.HandleFunc("GET /api/v1/roles", s.handleRoles)
	mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	mux.HandleFunc("GET /ws/notifications", s.hub.ServeWS)

	return mux
}

// ---- envelope helpers ----

type envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
}

func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Error: &apiError{Message: msg}})
}

func decode[T any](r *http.Request) (T, bool) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		return v, false
	}
	return v, true
}

// ---- auth plumbing ----

// authed wraps a handler with bearer-token authentication and hands the
// resolved account to the inner handler.
func (s *Server) authed(next func(http.ResponseWriter, *http.Request, *account)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

		s.mu.Lock()
		userID, ok := s.access[token]
		var acc *account
		if ok {
			for _, a := range s.accounts {
				if a.ID == userID {
					acc = a
					break
				}
			}
		}
		s.mu.Unlock()

		if acc == nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next(w, r, acc)
	}
}

// issueTokens mints a fresh credential pair for acc. Caller holds s.mu.
func (s *Server) issueTokensLocked(acc *account) (string, string) {
	access := uuid.NewString()
	refresh := uuid.NewString()
	s.access[access] = acc.ID
	s.refresh[refresh] = acc.ID
	return access, refresh
}

type authPayload struct {
	User         models.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

// ---- handlers ----

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}](r)
	if !ok || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username, email and password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[req.Email]; exists {
		writeError(w, http.StatusConflict, "an account with this email already exists")
		return
	}

	var spectatorID string
	for _, role := range s.roles {
		if role.Name == "spectator" {
			spectatorID = role.ID
		}
	}

	acc := &account{
		User: models.User{
			ID:       uuid.NewString(),
			Username: req.Username,
			Email:    req.Email,
			RoleIDs:  []string{spectatorID},
		},
		Password: req.Password,
	}
	s.accounts[req.Email] = acc

	access, refresh := s.issueTokensLocked(acc)
	writeData(w, authPayload{User: *acc.User.Clone(), AccessToken: access, RefreshToken: refresh})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}](r)
	if !ok {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, exists := s.accounts[req.Email]
	if !exists || acc.Password != req.Password {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	access, refresh := s.issueTokensLocked(acc)
	writeData(w, authPayload{User: *acc.User.Clone(), AccessToken: access, RefreshToken: refresh})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, acc *account) {
	s.mu.Lock()
	for token, id := range s.access {
		if id == acc.ID {
			delete(s.access, token)
		}
	}
	for token, id := range s.refresh {
		if id == acc.ID {
			delete(s.refresh, token)
		}
	}
	s.mu.Unlock()

	writeData(w, struct{}{})
}

func (s *Server) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[struct {
		RefreshToken string `json:"refreshToken"`
	}](r)
	if !ok {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	userID, valid := s.refresh[req.RefreshToken]
	if !valid {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	delete(s.refresh, req.RefreshToken)

	for _, acc := range s.accounts {
		if acc.ID == userID {
			access, refresh := s.issueTokensLocked(acc)
			writeData(w, map[string]string{"accessToken": access, "refreshToken": refresh})
			return
		}
	}
	writeError(w, http.StatusUnauthorized, "unknown account")
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request, acc *account) {
	req, ok := decode[struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}](r)
	if !ok || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "new password is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if acc.Password != req.CurrentPassword {
		writeError(w, http.StatusBadRequest, "current password does not match")
		return
	}
	acc.Password = req.NewPassword
	writeData(w, struct{}{})
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[struct {
		Email string `json:"email"`
	}](r)
	if !ok {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	s.mu.Lock()
	_, exists := s.accounts[req.Email]
	s.mu.Unlock()

	if !exists {
		writeError(w, http.StatusNotFound, "no account with this email")
		return
	}
	// A real platform mails an OTP here; the harness accepts DevOTP.
	writeData(w, struct{}{})
}

func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}](r)
	if !ok || req.OTP != DevOTP {
		writeError(w, http.StatusBadRequest, "invalid code")
		return
	}
	writeData(w, struct{}{})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[struct {
		Email       string `json:"email"`
		OTP         string `json:"otp"`
		NewPassword string `json:"newPassword"`
	}](r)
	if !ok || req.OTP != DevOTP || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "invalid code or password")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, exists := s.accounts[req.Email]
	if !exists {
		writeError(w, http.StatusNotFound, "no account with this email")
		return
	}
	acc.Password = req.NewPassword
	writeData(w, struct{}{})
}

func (s *Server) handleSendEmailVerification(w http.ResponseWriter, r *http.Request, acc *account) {
	writeData(w, struct{}{})
}

func (s *Server) handleVerifyEmailOTP(w http.ResponseWriter, r *http.Request, acc *account) {
	req, ok := decode[struct {
		OTP string `json:"otp"`
	}](r)
	if !ok || req.OTP != DevOTP {
		writeError(w, http.StatusBadRequest, "invalid code")
		return
	}

	s.mu.Lock()
	acc.IsEmailVerified = true
	s.mu.Unlock()

	writeData(w, struct{}{})
}

func (s *Server) handleRoles(w http.ResponseWriter, r *http.Request) {
	writeData(w, s.Roles())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeData(w, map[string]string{"status": "ok"})
}
