package handler

import (
	"errors"
	"net/http"

	"bookex/internal/http-api/dto"
	"bookex/internal/http-api/middleware"
	"bookex/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type RatingHandler struct {
	ratings service.RatingService
	books   *BookHandler
}

func NewRatingHandler(ratings service.RatingService, books *BookHandler) *RatingHandler {
	return &RatingHandler{ratings: ratings, books: books}
}

// Rate handles POST /book_detail/:id. Resubmitting replaces the earlier score.
func (h *RatingHandler) Rate(c *gin.Context) {
	id, err := bookID(c)
	if err != nil {
		h.books.pages.Fail(c, err)
		return
	}

	var form dto.RatingForm
	if err := c.ShouldBind(&form); err != nil {
		h.books.renderDetail(c, http.StatusBadRequest, dto.FromBindError(err, "score"), "")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.ratings.Submit(ctx, middleware.ActorFrom(c), id, form.Score); err != nil {
		var verr *dto.ValidationError
		if errors.As(err, &verr) {
			h.books.renderDetail(c, http.StatusBadRequest, verr, "")
			return
		}
		h.books.pages.Fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, detailPath(id))
}
