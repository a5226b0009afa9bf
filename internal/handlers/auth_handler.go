package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"parkingconsole/internal/guard"
	"parkingconsole/internal/models"
	"parkingconsole/internal/notify"
	"parkingconsole/internal/security"
)

// AuthHandler handles the public authentication pages
type AuthHandler struct {
	*Pages
	sessionTTL time.Duration
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(pages *Pages, sessionTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		Pages:      pages,
		sessionTTL: sessionTTL,
	}
}

// Home renders the landing page
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	h.render(w, "home.tmpl", HomeViewData{PageData: h.pageData(r, "Smart Parking", "home", nil)})
}

// ShowLogin renders the login page
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	next := guard.SafeReturnTo(r.URL.Query().Get(guard.NextParam))

	if GetSessionFromContext(r.Context()).IsAuthenticated() {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}

	h.render(w, "login.tmpl", LoginViewData{
		PageData: h.pageData(r, "Login", "login", nil),
		Next:     next,
	})
}

// Login handles login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	next := guard.SafeReturnTo(r.FormValue(guard.NextParam))

	flash := &notify.Flash{}
	sess, err := h.client.For(nil, flash).Auth.Login(r.Context(), email, password)
	if err != nil {
		if aborted(err) {
			return
		}
		h.render(w, "login.tmpl", LoginViewData{
			PageData: h.pageData(r, "Login", "login", flash),
			Email:    email,
			Next:     next,
		})
		return
	}

	if !h.startSession(w, r, sess) {
		return
	}
	h.redirect(w, r, flash, next)
}

// startSession stores sess under a fresh browser session id so an id
// issued before login is never promoted
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, sess models.Session) bool {
	st := stateFromContext(r.Context())
	oldSID := st.sid

	sid := security.NewSessionID()
	if err := h.store.Set(r.Context(), sid, sess); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error saving session", err)
		return false
	}
	if err := h.store.Clear(r.Context(), oldSID); err != nil {
		log.Printf("Error clearing previous session: %v", err)
	}

	http.SetCookie(w, security.CreateSessionCookie(r, sid, time.Now().Add(h.sessionTTL)))
	st.sid = sid
	st.session = &sess
	return true
}

// ShowRegister renders the registration page
func (h *AuthHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	if GetSessionFromContext(r.Context()).IsAuthenticated() {
		http.Redirect(w, r, guard.HomePath, http.StatusSeeOther)
		return
	}
	h.render(w, "register.tmpl", RegisterViewData{PageData: h.pageData(r, "Register", "register", nil)})
}

// Register handles registration form submission. The new identity is kept
// without a token until the email is verified and the user logs in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if GetSessionFromContext(r.Context()).IsAuthenticated() {
		http.Redirect(w, r, guard.HomePath, http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	data := RegisterViewData{
		FirstName: strings.TrimSpace(r.FormValue("firstName")),
		LastName:  strings.TrimSpace(r.FormValue("lastName")),
		Email:     strings.TrimSpace(r.FormValue("email")),
	}
	password := r.FormValue("password")

	flash := &notify.Flash{}
	if password != r.FormValue("confirmPassword") {
		data.Error = errPasswordsDoNotMatch
		data.PageData = h.pageData(r, "Register", "register", flash)
		h.render(w, "register.tmpl", data)
		return
	}

	user, err := h.client.For(nil, flash).Auth.Register(r.Context(), data.FirstName, data.LastName, data.Email, password)
	if err != nil {
		if aborted(err) {
			return
		}
		data.PageData = h.pageData(r, "Register", "register", flash)
		h.render(w, "register.tmpl", data)
		return
	}

	pending := models.Session{
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      models.RoleUser,
	}
	if pending.Email == "" {
		pending.Email = data.Email
	}
	if err := h.store.SetProfile(r.Context(), sessionID(r.Context()), pending); err != nil {
		log.Printf("Error storing registered identity: %v", err)
	}

	h.redirect(w, r, flash, "/verify-email")
}

// Logout clears the identity and returns to the login page
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context(), sessionID(r.Context())); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error clearing session", err)
		return
	}

	flash := &notify.Flash{}
	flash.Success("Logged out successfully")
	h.redirect(w, r, flash, guard.LoginPath)
}

// ShowForgotPassword renders the reset request form
func (h *AuthHandler) ShowForgotPassword(w http.ResponseWriter, r *http.Request) {
	h.render(w, "forgot_password.tmpl", ForgotPasswordViewData{
		PageData: h.pageData(r, "Forgot Password", "login", nil),
	})
}

// ForgotPassword asks the backend to mail a reset link
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	flash := &notify.Flash{}
	err := h.client.For(nil, flash).Auth.SendPasswordResetEmail(r.Context(), email)
	if aborted(err) {
		return
	}

	h.render(w, "forgot_password.tmpl", ForgotPasswordViewData{
		PageData:  h.pageData(r, "Forgot Password", "login", flash),
		Email:     email,
		Submitted: err == nil,
	})
}

// ShowResetPassword renders the new password form for an emailed token
func (h *AuthHandler) ShowResetPassword(w http.ResponseWriter, r *http.Request) {
	h.render(w, "reset_password.tmpl", ResetPasswordViewData{
		PageData: h.pageData(r, "Reset Password", "login", nil),
		Token:    r.PathValue("token"),
	})
}

// ResetPassword sets the new password and sends the user to login
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	token := r.PathValue("token")
	password := r.FormValue("password")
	flash := &notify.Flash{}

	data := ResetPasswordViewData{Token: token}
	if password != r.FormValue("confirmPassword") {
		data.Error = errPasswordsDoNotMatch
		data.PageData = h.pageData(r, "Reset Password", "login", flash)
		h.render(w, "reset_password.tmpl", data)
		return
	}

	if err := h.client.For(nil, flash).Auth.ResetPassword(r.Context(), token, password); err != nil {
		if aborted(err) {
			return
		}
		data.PageData = h.pageData(r, "Reset Password", "login", flash)
		h.render(w, "reset_password.tmpl", data)
		return
	}

	h.redirect(w, r, flash, guard.LoginPath)
}

// ShowVerifyEmail renders the verification notice. With a token in the
// query it confirms the address first.
func (h *AuthHandler) ShowVerifyEmail(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := VerifyEmailViewData{
		Email: h.verificationEmail(r, q.Get("email")),
		Token: q.Get("token"),
	}

	flash := &notify.Flash{}
	if data.Token != "" {
		if data.Email == "" {
			data.Error = errMissingEmail
		} else {
			err := h.client.For(nil, flash).Auth.VerifyEmail(r.Context(), data.Token, data.Email)
			if aborted(err) {
				return
			}
			data.Verified = err == nil
		}
	}

	data.PageData = h.pageData(r, "Verify Email", "login", flash)
	h.render(w, "verify_email.tmpl", data)
}

// ResendVerification asks the backend for a new verification email
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidFormData, "", err)
		return
	}

	data := VerifyEmailViewData{Email: h.verificationEmail(r, r.FormValue("email"))}
	flash := &notify.Flash{}
	if data.Email == "" {
		data.Error = errMissingEmail
	} else {
		err := h.client.For(nil, flash).Auth.SendVerificationEmail(r.Context(), data.Email)
		if aborted(err) {
			return
		}
		data.Resent = err == nil
	}

	data.PageData = h.pageData(r, "Verify Email", "login", flash)
	h.render(w, "verify_email.tmpl", data)
}

// verificationEmail prefers an explicit address over the one registration left in the session
func (h *AuthHandler) verificationEmail(r *http.Request, explicit string) string {
	if email := strings.TrimSpace(explicit); email != "" {
		return email
	}
	email, err := h.store.StoredEmail(r.Context(), sessionID(r.Context()))
	if err != nil {
		log.Printf("Error reading stored email: %v", err)
	}
	return email
}
