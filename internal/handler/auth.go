package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/flight-seat-reservation/internal/config"
	"github.com/iliyamo/flight-seat-reservation/internal/model"
	"github.com/iliyamo/flight-seat-reservation/internal/utils"
)

type userStore interface {
	Create(ctx context.Context, email, password, confirmToken string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UserByID(ctx context.Context, id uint64) (*model.User, error)
	ConfirmByToken(ctx context.Context, token string) error
	Delete(ctx context.Context, id uint64) error
}

type tokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
}

type accountMailer interface {
	SendAccountConfirmation(ctx context.Context, to, link string) error
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  userStore
	Tokens tokenStore
	Mail   accountMailer
	Log    logrus.FieldLogger
}

func NewAuthHandler(cfg config.Config, u userStore, t tokenStore, m accountMailer, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Mail: m, Log: log}
}

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type userPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
}

type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func (h *AuthHandler) domainAllowed(email string) bool {
	if len(h.Cfg.AllowedDomains) == 0 {
		return true
	}
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return false
	}
	domain := email[at+1:]
	for _, d := range h.Cfg.AllowedDomains {
		if domain == d {
			return true
		}
	}
	return false
}

// Register creates an unconfirmed user and mails the confirmation link.
// When the mail cannot be sent the user is deleted again, so the address
// can register later.
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}
	if !strings.Contains(req.Email, "@") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email"})
	}
	if !h.domainAllowed(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "email domain must be one of: " + strings.Join(h.Cfg.AllowedDomains, ", "),
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	token := utils.NewConfirmationToken()
	uid, err := h.Users.Create(ctx, req.Email, req.Password, token, h.Cfg.BcryptCost)
	if errors.Is(err, model.ErrEmailExists) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	}
	if err != nil {
		h.Log.WithError(err).Error("register: create user")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	link := h.Cfg.AppURL + "/v1/auth/confirm?token=" + url.QueryEscape(token)
	if err := h.Mail.SendAccountConfirmation(c.Request().Context(), req.Email, link); err != nil {
		h.Log.WithError(err).WithField("user_id", uid).Warn("register: confirmation mail failed, removing user")
		if derr := h.Users.Delete(context.WithoutCancel(ctx), uid); derr != nil {
			h.Log.WithError(derr).WithField("user_id", uid).Error("register: delete user")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not send confirmation email, try again later"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "check your inbox to confirm your account",
		"user":    userPart{ID: uid, Email: req.Email},
	})
}

// Confirm redeems a confirmation token.
func (h *AuthHandler) Confirm(c echo.Context) error {
	token := strings.TrimSpace(c.QueryParam("token"))
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token required"})
	}
	err := h.Users.ConfirmByToken(c.Request().Context(), token)
	if errors.Is(err, model.ErrInvalidToken) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or already used token"})
	}
	if err != nil {
		h.Log.WithError(err).Error("confirm: update user")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "confirmation failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "account confirmed, you can log in now"})
}

func (h *AuthHandler) issue(ctx context.Context, u *model.User) (authResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email, time.Duration(h.Cfg.AccessTTLMin)*time.Minute)
	if err != nil {
		return authResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return authResp{}, err
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return authResp{}, err
	}
	return authResp{
		User:    userPart{ID: u.ID, Email: u.Email},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	}, nil
}

// Login verifies credentials.  Unconfirmed accounts get 403.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if errors.Is(err, model.ErrUserNotFound) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if err != nil {
		h.Log.WithError(err).Error("login: load user")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if !u.EmailConfirmed {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "confirm your email before logging in"})
	}

	resp, err := h.issue(ctx, u)
	if err != nil {
		h.Log.WithError(err).Error("login: issue tokens")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, resp)
}

// Refresh rotates a refresh token: the old one is revoked and a new pair
// is issued.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke failed"})
	}
	u, err := h.Users.UserByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	resp, err := h.issue(ctx, u)
	if err != nil {
		h.Log.WithError(err).Error("refresh: issue tokens")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout revokes the given refresh token.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	if err := h.Tokens.RevokeByHash(c.Request().Context(), utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Me echoes the authenticated identity.
func (h *AuthHandler) Me(c echo.Context) error {
	id, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, userPart{ID: id, Email: getEmail(c)})
}
