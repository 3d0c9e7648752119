package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"bookex/internal/http-api/dto"
	"bookex/internal/http-api/middleware"
	"bookex/internal/http-api/service"
	"bookex/internal/logging"

	"github.com/gin-gonic/gin"
)

const requestTimeout = 5 * time.Second

// Renderer fills in what every page needs (menu, current actor) and maps errors to pages.
type Renderer struct {
	menu service.MenuService
}

func NewRenderer(menu service.MenuService) *Renderer {
	return &Renderer{menu: menu}
}

// Page renders template name with data plus the shared layout values.
func (r *Renderer) Page(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	items, err := r.menu.List(c.Request.Context())
	if err != nil {
		logging.FromContext(c.Request.Context()).Warn("failed to load menu", "error", err)
	}
	data["item_list"] = items
	data["actor"] = middleware.ActorFrom(c)
	if _, ok := data["errors"]; !ok {
		data["errors"] = map[string]string{}
	}
	c.HTML(status, name, data)
}

// Fail turns a service error into a redirect or an error page.
func (r *Renderer) Fail(c *gin.Context, err error) {
	var verr *dto.ValidationError
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		c.Redirect(http.StatusFound, middleware.LoginURL(c.Request))
	case errors.Is(err, service.ErrPermissionDenied):
		r.errorPage(c, http.StatusForbidden, "You do not have permission to do that.")
	case errors.Is(err, service.ErrBookNotFound):
		r.errorPage(c, http.StatusNotFound, "That book does not exist.")
	case errors.As(err, &verr):
		r.errorPage(c, http.StatusBadRequest, verr.Error())
	default:
		logging.FromContext(c.Request.Context()).Error("request failed",
			"method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		_ = c.Error(err)
		r.errorPage(c, http.StatusInternalServerError, "Something went wrong on our side. Please try again.")
	}
	c.Abort()
}

// NotFound is used for unmatched routes.
func (r *Renderer) NotFound(c *gin.Context) {
	r.errorPage(c, http.StatusNotFound, "The page you requested was not found.")
}

func (r *Renderer) errorPage(c *gin.Context, status int, message string) {
	r.Page(c, status, "error.html", gin.H{
		"title":   http.StatusText(status),
		"status":  status,
		"message": message,
	})
}

// bookID parses the :id path segment. Anything but a positive integer is a missing book.
func bookID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, service.ErrBookNotFound
	}
	return id, nil
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}
