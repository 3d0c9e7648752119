package handler

import (
	"errors"
	"net/http"

	"bookex/internal/http-api/dto"
	"bookex/internal/http-api/middleware"
	"bookex/internal/http-api/service"
	"bookex/internal/logging"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService  service.AuthService
	pages        *Renderer
	cookieName   string
	secureCookie bool
}

func NewAuthHandler(authService service.AuthService, pages *Renderer, cookieName string, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		pages:        pages,
		cookieName:   cookieName,
		secureCookie: secureCookie,
	}
}

func (h *AuthHandler) RegisterForm(c *gin.Context) {
	h.pages.Page(c, http.StatusOK, "register.html", gin.H{"title": "Register", "form": dto.RegisterForm{}})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterForm
	if err := c.ShouldBind(&req); err != nil {
		h.renderRegister(c, http.StatusBadRequest, req, dto.FromBindError(err, "__all__"))
		return
	}

	user, err := h.authService.Register(req.Username, req.Password, req.Email)
	switch {
	case errors.Is(err, service.ErrNameInUse):
		h.renderRegister(c, http.StatusConflict, req, dto.NewValidationError("username", "A user with that username already exists."))
		return
	case errors.Is(err, service.ErrEmailInUse):
		h.renderRegister(c, http.StatusConflict, req, dto.NewValidationError("email", "A user with that email already exists."))
		return
	case errors.Is(err, service.ErrPasswordTooShort):
		h.renderRegister(c, http.StatusBadRequest, req, dto.NewValidationError("password", "This password is too short. It must contain at least 8 characters."))
		return
	case err != nil:
		h.pages.Fail(c, err)
		return
	}

	logging.FromContext(c.Request.Context()).Info("user registered", "user_id", user.ID, "username", user.Username)
	c.Redirect(http.StatusFound, "/login?registered=1")
}

func (h *AuthHandler) renderRegister(c *gin.Context, status int, req dto.RegisterForm, verr *dto.ValidationError) {
	// never echo passwords back
	req.Password, req.ConfirmPassword = "", ""
	h.pages.Page(c, status, "register.html", gin.H{
		"title":  "Register",
		"form":   req,
		"errors": verr.Fields,
	})
}

func (h *AuthHandler) LoginForm(c *gin.Context) {
	_, registered := c.GetQuery("registered")
	h.pages.Page(c, http.StatusOK, "login.html", gin.H{
		"title":      "Log in",
		"form":       dto.LoginForm{},
		"next":       middleware.SafeRedirect(c.Query("next"), "/"),
		"registered": registered,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginForm
	if err := c.ShouldBind(&req); err != nil {
		h.renderLogin(c, http.StatusBadRequest, req, dto.FromBindError(err, "__all__"))
		return
	}

	token, user, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.renderLogin(c, http.StatusUnauthorized, req, dto.NewValidationError("__all__",
				"Please enter a correct username and password. Note that both fields may be case-sensitive."))
			return
		}
		h.pages.Fail(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, token, int(h.authService.SessionTTL().Seconds()), "/", "", h.secureCookie, true)
	logging.FromContext(c.Request.Context()).Info("user logged in", "user_id", user.ID)
	c.Redirect(http.StatusFound, middleware.SafeRedirect(req.Next, "/"))
}

func (h *AuthHandler) renderLogin(c *gin.Context, status int, req dto.LoginForm, verr *dto.ValidationError) {
	next := middleware.SafeRedirect(req.Next, "/")
	req.Password = ""
	h.pages.Page(c, status, "login.html", gin.H{
		"title":  "Log in",
		"form":   req,
		"next":   next,
		"errors": verr.Fields,
	})
}

// Logout drops the session cookie. Tokens are stateless, so nothing else is revoked.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, "", -1, "/", "", h.secureCookie, true)
	c.Redirect(http.StatusFound, "/")
}
