// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CCAW Contributors

package httpapi

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/oklog/ulid/v2"

	"github.com/ccaw/speakerauth/internal/auth"
	"github.com/ccaw/speakerauth/pkg/errutil"
)

// Alert texts returned to the client.
const (
	alertInvalidBody    = "invalid request body"
	alertSignupOK       = "account created"
	alertEmailTaken     = "email taken"
	alertUserNotFound   = "user not found"
	alertNotSaved       = "not saved"
	alertEmailNotFound  = "email not found"
	alertPasswordUnsave = "password not saved"
	alertNotSent        = "not sent"
	alertPasswordSent   = "password sent"
	alertNotFound       = "not found"
	alertSaved          = "saved"
	alertUploadsCleared = "uploads cleared"
)

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type leadPresBody struct {
	NameFirst string `json:"nameFirst"`
	NameLast  string `json:"nameLast"`
}

type speakerFormBody struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}

// signupBody accepts both the flat self-service form and the nested
// copresenter form sent by a lead presenter.
type signupBody struct {
	Email     string           `json:"email"`
	Password  string           `json:"password"`
	FirstName string           `json:"firstName"`
	LastName  string           `json:"lastName"`
	LeadPres  *leadPresBody    `json:"leadPres"`
	FormData  *speakerFormBody `json:"formData"`
}

func (b signupBody) request() auth.SignupRequest {
	if b.LeadPres == nil {
		return auth.SignupRequest{
			Email:     b.Email,
			FirstName: b.FirstName,
			LastName:  b.LastName,
			Password:  b.Password,
		}
	}
	var form speakerFormBody
	if b.FormData != nil {
		form = *b.FormData
	}
	return auth.SignupRequest{
		Email:     form.Email,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Lead:      &auth.LeadPresenter{FirstName: b.LeadPres.NameFirst, LastName: b.LeadPres.NameLast},
	}
}

type changePasswordBody struct {
	FormData speakerFormBody `json:"formData"`
	UserID   string          `json:"userId"`
}

type forgotPasswordBody struct {
	FormData speakerFormBody `json:"formData"`
}

func alert(c fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"alert": msg})
}

// sessionToken reads the token from a Bearer header, then the session cookie.
func sessionToken(c fiber.Ctx) string {
	if h := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return c.Cookies(SessionCookieName)
}

func (s *Server) setSessionCookie(c fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.cfg.SessionTTL),
		HTTPOnly: true,
		Secure:   s.cfg.SecureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(c fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.cfg.SecureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *Server) checkSession(c fiber.Ctx) error {
	speaker := s.svc.Sessions.CheckSession(c.Context(), sessionToken(c))
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"user": speaker})
}

func (s *Server) login(c fiber.Ctx) error {
	var body loginBody
	if err := c.Bind().Body(&body); err != nil {
		return alert(c, fiber.StatusBadRequest, alertInvalidBody)
	}

	speaker, token, err := s.svc.Sessions.Login(c.Context(), body.Email, body.Password, c.Get(fiber.HeaderUserAgent), c.IP())
	s.metrics.RecordAuth("login", err)
	if err != nil {
		if errutil.HasCode(err, auth.CodeInvalidCredentials) {
			return alert(c, fiber.StatusUnauthorized, auth.InvalidCredentialsMessage)
		}
		errutil.LogErrorContext(c.Context(), s.logger, "login failed", err)
		return alert(c, fiber.StatusInternalServerError, err.Error())
	}

	s.setSessionCookie(c, token)
	return c.Status(fiber.StatusOK).JSON(speaker)
}

func (s *Server) signup(c fiber.Ctx) error {
	var body signupBody
	if err := c.Bind().Body(&body); err != nil {
		return alert(c, fiber.StatusBadRequest, alertInvalidBody)
	}

	speaker, err := s.svc.Signups.Signup(c.Context(), body.request())
	s.metrics.RecordAuth("signup", err)
	if err != nil {
		switch errutil.Code(err) {
		case auth.CodeDuplicateEmail:
			return alert(c, fiber.StatusConflict, alertEmailTaken)
		case auth.CodeValidation:
			return alert(c, fiber.StatusBadRequest, err.Error())
		default:
			errutil.LogErrorContext(c.Context(), s.logger, "signup failed", err)
			return alert(c, fiber.StatusInternalServerError, err.Error())
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"alert":  alertSignupOK,
		"userId": speaker.ID.String(),
	})
}

func (s *Server) logout(c fiber.Ctx) error {
	s.svc.Sessions.Logout(c.Context(), sessionToken(c))
	s.metrics.RecordAuth("logout", nil)
	s.clearSessionCookie(c)
	return c.Status(fiber.StatusOK).Send(nil)
}

func (s *Server) changePassword(c fiber.Ctx) error {
	var body changePasswordBody
	if err := c.Bind().Body(&body); err != nil {
		return alert(c, fiber.StatusBadRequest, alertInvalidBody)
	}

	id, err := ulid.Parse(body.UserID)
	if err != nil {
		s.metrics.RecordAuth("change_password", err)
		return alert(c, fiber.StatusBadRequest, alertUserNotFound)
	}

	speaker, err := s.svc.Passwords.ChangePassword(c.Context(), id, body.FormData.Password)
	s.metrics.RecordAuth("change_password", err)
	if err != nil {
		if errutil.HasCode(err, auth.CodeNotFound) {
			return alert(c, fiber.StatusBadRequest, alertUserNotFound)
		}
		errutil.LogErrorContext(c.Context(), s.logger, "change password failed", err)
		return alert(c, fiber.StatusBadRequest, alertNotSaved)
	}
	return c.Status(fiber.StatusOK).JSON(speaker)
}

func (s *Server) forgotPassword(c fiber.Ctx) error {
	var body forgotPasswordBody
	if err := c.Bind().Body(&body); err != nil {
		return alert(c, fiber.StatusBadRequest, alertInvalidBody)
	}

	err := s.svc.Passwords.ForgotPassword(c.Context(), body.FormData.Email)
	s.metrics.RecordAuth("forgot_password", err)
	if err == nil {
		return alert(c, fiber.StatusOK, alertPasswordSent)
	}

	switch errutil.Code(err) {
	case auth.CodeNotFound:
		return alert(c, fiber.StatusNotFound, alertEmailNotFound)
	case auth.CodeNotification:
		errutil.LogErrorContext(c.Context(), s.logger, "password reset email failed", err)
		return alert(c, fiber.StatusBadRequest, alertNotSent)
	default:
		errutil.LogErrorContext(c.Context(), s.logger, "forgot password failed", err)
		return alert(c, fiber.StatusBadRequest, alertPasswordUnsave)
	}
}

func (s *Server) addAdmin(c fiber.Ctx) error {
	return s.toggleAdmin(c, "grant_admin", s.svc.Privileges.GrantAdmin)
}

func (s *Server) deleteAdmin(c fiber.Ctx) error {
	return s.toggleAdmin(c, "revoke_admin", s.svc.Privileges.RevokeAdmin)
}

func (s *Server) toggleAdmin(c fiber.Ctx, operation string, apply func(ctx context.Context, id ulid.ULID) error) error {
	id, err := ulid.Parse(c.Params("id"))
	if err != nil {
		s.metrics.RecordAuth(operation, err)
		return alert(c, fiber.StatusNotFound, alertNotFound)
	}

	err = apply(c.Context(), id)
	s.metrics.RecordAuth(operation, err)
	if err != nil {
		if errutil.HasCode(err, auth.CodeNotFound) {
			return alert(c, fiber.StatusNotFound, alertNotFound)
		}
		errutil.LogErrorContext(c.Context(), s.logger, "admin toggle failed", err)
		return alert(c, fiber.StatusBadRequest, alertNotSaved)
	}
	return alert(c, fiber.StatusOK, alertSaved)
}

func (s *Server) clearUploads(c fiber.Ctx) error {
	n, err := s.svc.Uploads.ClearUploads(c.Context())
	s.metrics.RecordAuth("clear_uploads", err)
	if err != nil {
		errutil.LogErrorContext(c.Context(), s.logger, "clear uploads failed", err)
		return alert(c, fiber.StatusBadRequest, err.Error())
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"alert": alertUploadsCleared,
		"count": n,
	})
}
