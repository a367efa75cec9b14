package handler

import (
	"net/http"
	"time"

	"decor-store/internal/auth"
	"decor-store/internal/model"
	"decor-store/internal/service"

	"github.com/rs/zerolog"
)

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	service      service.AuthService
	signer       *auth.Signer
	secureCookie bool
	logger       zerolog.Logger
}

// NewAuthHandler creates a new auth handler. secureCookie marks the session
// cookie as HTTPS-only.
func NewAuthHandler(service service.AuthService, signer *auth.Signer, secureCookie bool, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service:      service,
		signer:       signer,
		secureCookie: secureCookie,
		logger:       logger.With().Str("handler", "auth").Logger(),
	}
}

// Register handles POST /api/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	user, session, err := h.service.Register(r.Context(), &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if err := h.setSessionCookie(w, session); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	user, session, err := h.service.Login(r.Context(), &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	if err := h.setSessionCookie(w, session); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Logout handles POST /api/logout. Logging out without a session succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if principal := auth.PrincipalFrom(r.Context()); principal != nil {
		if err := h.service.Logout(r.Context(), principal.SessionID); err != nil {
			writeError(w, r, err, h.logger)
			return
		}
	}

	http.SetCookie(w, h.cookie("", time.Unix(0, 0), -1))
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Logged out"})
}

// CurrentUser handles GET /api/auth/user.
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFrom(r.Context())
	if principal == nil {
		writeJSON(w, http.StatusUnauthorized, model.ErrorResponse{Message: "Unauthorized"})
		return
	}

	user, err := h.service.CurrentUser(r.Context(), principal)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, session *model.Session) error {
	token, err := h.signer.Sign(session.ID, session.ExpiresAt)
	if err != nil {
		return err
	}
	http.SetCookie(w, h.cookie(token, session.ExpiresAt, 0))
	return nil
}

func (h *AuthHandler) cookie(value string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     auth.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
