package backend

import (
	"context"
	"net/http"
	"net/url"

	"parkingconsole/internal/models"
	"parkingconsole/internal/validation"
)

const authResource = "auth"

// Auth wraps the unauthenticated /auth endpoints
type Auth struct {
	api *API
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

type tokenPayload struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a token. The returned session is ready to
// be stored; its role comes from the configured role policy.
func (a *Auth) Login(ctx context.Context, email, password string) (models.Session, error) {
	const failed = "Login failed"

	env, err := a.api.send(ctx, call{
		resource: authResource,
		method:   http.MethodPost,
		path:     "/auth/login",
		body:     loginRequest{Email: email, Password: password},
	})
	if err != nil {
		return models.Session{}, a.api.fail(err, failed)
	}

	payload, err := decode[tokenPayload](env)
	if err != nil || payload.Token == "" {
		return models.Session{}, a.api.fail(ErrMissingToken, failed)
	}

	sess := models.Session{
		Token:     payload.Token,
		Email:     email,
		FirstName: "User",
		Role:      a.api.client.policy.Role(email, payload.Token),
	}
	a.api.notifier.Success("Logged in successfully")
	return sess, nil
}

// Register creates an account. The caller keeps the returned identity in the
// session without a token until the user verifies and logs in.
func (a *Auth) Register(ctx context.Context, firstName, lastName, email, password string) (*models.User, error) {
	const failed = "Registration failed"

	req := models.CreateUserRequest{FirstName: firstName, LastName: lastName, Email: email, Password: password}
	if err := req.Validate(); err != nil {
		return nil, a.api.fail(err, failed)
	}

	env, err := a.api.send(ctx, call{
		resource: authResource,
		method:   http.MethodPost,
		path:     "/auth/register",
		body:     req,
	})
	if err != nil {
		return nil, a.api.fail(err, failed)
	}

	user, err := decode[models.User](env)
	if err != nil {
		return nil, a.api.fail(err, failed)
	}

	a.api.notifier.Success("Registered successfully! Please verify your email.")
	a.api.record(ctx, "register", authResource, user.ID)
	return &user, nil
}

// SendPasswordResetEmail asks the backend to mail a reset link
func (a *Auth) SendPasswordResetEmail(ctx context.Context, email string) error {
	if err := validation.ValidateEmail(email); err != nil {
		return a.api.fail(err, "")
	}
	return a.simple(ctx, "/auth/send-reset-password-email", emailRequest{Email: email},
		"Failed to send reset email", "Password reset email sent")
}

// ResetPassword sets a new password using the emailed token
func (a *Auth) ResetPassword(ctx context.Context, token, password string) error {
	if err := validation.ValidatePassword(password); err != nil {
		return a.api.fail(err, "")
	}
	return a.simple(ctx, "/auth/reset-password/"+url.PathEscape(token), passwordRequest{Password: password},
		"Failed to reset password", "Password reset successfully")
}

// VerifyEmail confirms ownership of email with the emailed token
func (a *Auth) VerifyEmail(ctx context.Context, token, email string) error {
	return a.simple(ctx, "/auth/verify-email/"+url.PathEscape(token), emailRequest{Email: email},
		"Failed to verify email", "Email verified successfully")
}

// SendVerificationEmail asks the backend to mail a new verification link
func (a *Auth) SendVerificationEmail(ctx context.Context, email string) error {
	if err := validation.ValidateEmail(email); err != nil {
		return a.api.fail(err, "")
	}
	return a.simple(ctx, "/auth/send-verification-email", emailRequest{Email: email},
		"Failed to send verification email", "Verification email sent")
}

func (a *Auth) simple(ctx context.Context, path string, body interface{}, failed, succeeded string) error {
	_, err := a.api.send(ctx, call{
		resource: authResource,
		method:   http.MethodPost,
		path:     path,
		body:     body,
	})
	if err != nil {
		return a.api.fail(err, failed)
	}
	a.api.notifier.Success(succeeded)
	return nil
}
