package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"bookex/internal/http-api/service"
	"bookex/internal/shared"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// CurrentUser resolves the session token from the cookie or an Authorization header
// and stores the request Actor. Missing or invalid tokens leave the request anonymous.
func CurrentUser(authService service.AuthService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := shared.Anonymous
		if token := sessionToken(c, cookieName); token != "" {
			if claims, err := authService.ParseToken(token); err == nil {
				actor = claims.Actor()
			}
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

func sessionToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	// Extract token (format: "Bearer <token>")
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// ActorFrom returns the identity set by CurrentUser.
func ActorFrom(c *gin.Context) shared.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(shared.Actor); ok {
			return actor
		}
	}
	return shared.Anonymous
}

// RequireAuth sends anonymous visitors to the login page, remembering where they were going.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ActorFrom(c).IsAuthenticated() {
			c.Redirect(http.StatusFound, LoginURL(c.Request))
			c.Abort()
			return
		}
		c.Next()
	}
}

// LoginURL is /login with next pointing back at r. POSTs return to the page they came from.
func LoginURL(r *http.Request) string {
	next := r.URL.RequestURI()
	if r.Method != http.MethodGet {
		next = SafeRedirect(r.Referer(), "/")
	}
	return "/login?next=" + url.QueryEscape(next)
}

// SafeRedirect keeps only the same-site path and query of target, falling back otherwise.
func SafeRedirect(target, fallback string) string {
	u, err := url.Parse(target)
	if target == "" || err != nil {
		return fallback
	}
	path := u.EscapedPath()
	if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") || strings.Contains(u.Path, "\\") {
		return fallback
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return path
}
