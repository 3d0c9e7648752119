package handler

import (
	"errors"
	"net/http"
	"strconv"

	"bookex/internal/http-api/dto"
	"bookex/internal/http-api/middleware"
	"bookex/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	comments service.CommentService
	books    *BookHandler
}

func NewCommentHandler(comments service.CommentService, books *BookHandler) *CommentHandler {
	return &CommentHandler{comments: comments, books: books}
}

// Create appends a comment and redirects to the detail page so a refresh does not repost.
func (h *CommentHandler) Create(c *gin.Context) {
	id, err := bookID(c)
	if err != nil {
		h.books.pages.Fail(c, err)
		return
	}

	var form dto.CommentForm
	if err := c.ShouldBind(&form); err != nil {
		h.books.renderDetail(c, http.StatusBadRequest, dto.FromBindError(err, "content"), form.Content)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.comments.Append(ctx, middleware.ActorFrom(c), id, form.Content); err != nil {
		var verr *dto.ValidationError
		if errors.As(err, &verr) {
			h.books.renderDetail(c, http.StatusBadRequest, verr, form.Content)
			return
		}
		h.books.pages.Fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, detailPath(id))
}

// Show only exists so a stray GET lands on the detail page.
func (h *CommentHandler) Show(c *gin.Context) {
	id, err := bookID(c)
	if err != nil {
		h.books.pages.Fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, detailPath(id))
}

func detailPath(id int64) string {
	return "/book_detail/" + strconv.FormatInt(id, 10)
}
