// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"adverpress/internal/middleware"
	"adverpress/internal/session"
	"adverpress/internal/store"
)

// totpIssuer is the issuer name shown in authenticator apps.
const totpIssuer = "Adverpress"

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	sessions  *session.Store
	userStore *store.UserStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, userStore *store.UserStore) *Auth {
	return &Auth{
		sessions:  sessions,
		userStore: userStore,
	}
}

// loginResponse tells the client which step comes next after a password
// login: first-time users must enroll a TOTP device, returning users
// verify a code.
type loginResponse struct {
	NextStep string `json:"next_step"` // "2fa_setup" or "2fa_verify"
}

// Login checks email/password and opens a session with the TOTP step
// still pending.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := a.userStore.FindByEmail(body.Email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	if user == nil || !a.userStore.CheckPassword(user, body.Password) {
		errorJSON(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	// TwoFADone starts false: the session cannot reach protected routes
	// until the TOTP step completes.
	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		TwoFADone:   false,
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	next := "2fa_verify"
	if user.Needs2FASetup() {
		next = "2fa_setup"
	}
	respondJSON(w, http.StatusOK, loginResponse{NextStep: next})
}

// TwoFASetup generates a fresh TOTP secret for the logged-in user and
// returns it with a base64 QR code PNG for authenticator enrollment.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		errorJSON(w, http.StatusUnauthorized, "authentication required")
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: sess.Email,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := a.userStore.SetTOTPSecret(sess.UserID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"secret":  key.Secret(),
		"qr_code": base64.StdEncoding.EncodeToString(qrPNG),
	})
}

// TwoFAVerify validates a TOTP code and completes authentication. On a
// first-time setup this also enables TOTP on the account.
func (a *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		errorJSON(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var body struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for 2fa failed", "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	if user.TOTPSecret == nil {
		errorJSON(w, http.StatusConflict, "two-factor setup not started")
		return
	}

	if !totp.Validate(body.Code, *user.TOTPSecret) {
		errorJSON(w, http.StatusUnauthorized, "invalid code")
		return
	}

	if !user.TOTPEnabled {
		if err := a.userStore.EnableTOTP(user.ID); err != nil {
			slog.Error("enable totp failed", "error", err)
			errorJSON(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Me returns the current session's identity.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		errorJSON(w, http.StatusUnauthorized, "authentication required")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"email":        sess.Email,
		"display_name": sess.DisplayName,
		"role":         sess.Role,
	})
}

// Logout destroys the session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Destroy(r.Context(), w, r)
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
