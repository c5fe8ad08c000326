package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/outpost/internal/session"
)

// loginRequest is the JSON body for POST /auth/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// passwordChangeRequest is the JSON body for POST /auth/password.
type passwordChangeRequest struct {
	Current string `json:"current"`
	New     string `json:"new"`
}

// handleLogin validates credentials and issues the session cookie.
//
// Responses never distinguish a wrong username from a wrong password.
// A valid login inside another admin's activity window returns 429.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errBodyTooLarge(err) {
			writeBadRequest(w, "request body too large")
			return
		}
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeBadRequest(w, "username and password are required")
		return
	}

	token, err := s.sessions.Login(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, session.ErrInvalidCredentials):
		writeUnauthorized(w, "invalid credentials")
		return
	case errors.Is(err, session.ErrThrottled):
		writeThrottled(w, "another session is active")
		return
	case err != nil:
		s.logger.Error("login failed", "error", err)
		writeInternalError(w, "login unavailable")
		return
	}

	s.setSessionCookie(w, token, s.sessCfg.CookieMaxAge)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "logged_in",
		"username": req.Username,
	})
}

// handleLogout revokes the live session and clears the cookie.
// It succeeds whatever token was presented, including none.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Logout(r.Context()); err != nil {
		s.logger.Error("logout failed", "error", err)
		writeInternalError(w, "logout unavailable")
		return
	}

	s.setSessionCookie(w, session.SentinelToken, -1)
	writeJSON(w, http.StatusOK, map[string]any{"status": "logged_out"})
}

// handleSessionInfo reports the caller's classification. Used by panel
// clients to decide whether to show the login form.
func (s *Server) handleSessionInfo(w http.ResponseWriter, r *http.Request) {
	state := sessionState(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"state":         state.String(),
		"authenticated": state == session.StateAuthenticated,
	})
}

// handleChangePassword rotates the admin password.
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Current == "" || req.New == "" {
		writeBadRequest(w, "current and new passwords are required")
		return
	}

	err := s.sessions.ChangePassword(r.Context(), req.Current, req.New)
	switch {
	case errors.Is(err, session.ErrInvalidCredentials):
		writeUnauthorized(w, "invalid credentials")
		return
	case err != nil:
		s.logger.Error("password change failed", "error", err)
		writeInternalError(w, "password change unavailable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "password_changed"})
}

// setSessionCookie attaches the session cookie. maxAge < 0 expires it.
func (s *Server) setSessionCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.cfg.TLS.Enabled,
	})
}
