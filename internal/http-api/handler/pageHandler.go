package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// PageHandler serves the static informational pages and the health probe.
type PageHandler struct {
	pages *Renderer
	ping  func(ctx context.Context) error
}

func NewPageHandler(pages *Renderer, ping func(ctx context.Context) error) *PageHandler {
	return &PageHandler{pages: pages, ping: ping}
}

func (h *PageHandler) Index(c *gin.Context) {
	h.pages.Page(c, http.StatusOK, "index.html", gin.H{"title": "Home"})
}

func (h *PageHandler) AboutUs(c *gin.Context) {
	h.pages.Page(c, http.StatusOK, "aboutus.html", gin.H{"title": "About Us"})
}

// Healthz reports liveness and database reachability.
func (h *PageHandler) Healthz(c *gin.Context) {
	if h.ping != nil {
		ctx, cancel := requestContext(c)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "ok"})
}
