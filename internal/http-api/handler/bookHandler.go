package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"bookex/internal/http-api/dto"
	"bookex/internal/http-api/middleware"
	"bookex/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

// formOverhead is room for the text fields on top of the picture itself.
const formOverhead = 1 << 20

type BookHandler struct {
	books     service.BookService
	pages     *Renderer
	maxUpload int64
}

func NewBookHandler(books service.BookService, pages *Renderer, maxUpload int64) *BookHandler {
	return &BookHandler{books: books, pages: pages, maxUpload: maxUpload}
}

// PostBookForm shows the empty form, or the banner after a successful submit.
func (h *BookHandler) PostBookForm(c *gin.Context) {
	_, submitted := c.GetQuery("submitted")
	h.pages.Page(c, http.StatusOK, "postbook.html", gin.H{
		"title":     "Post Book",
		"form":      dto.BookForm{},
		"submitted": submitted,
	})
}

func (h *BookHandler) PostBook(c *gin.Context) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+formOverhead)
	}

	var form dto.BookForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderForm(c, form, h.bindError(err, "name"))
		return
	}

	upload, closeFile, err := h.picture(c)
	if err != nil {
		h.renderForm(c, form, h.bindError(err, "picture"))
		return
	}
	defer closeFile()

	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.books.Create(ctx, middleware.ActorFrom(c), form, upload); err != nil {
		var verr *dto.ValidationError
		if errors.As(err, &verr) {
			h.renderForm(c, form, verr)
			return
		}
		h.pages.Fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/postbook?submitted=True")
}

// picture returns the optional upload. A missing file is not an error.
func (h *BookHandler) picture(c *gin.Context) (*dto.Upload, func(), error) {
	header, err := c.FormFile("picture")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, nil, err
	}
	if header.Size == 0 && header.Filename == "" {
		return nil, func() {}, nil
	}
	file, err := header.Open()
	if err != nil {
		return nil, nil, err
	}
	return uploadFrom(header, file), func() { file.Close() }, nil
}

func uploadFrom(header *multipart.FileHeader, file multipart.File) *dto.Upload {
	return &dto.Upload{Filename: header.Filename, Size: header.Size, Body: file}
}

// bindError maps oversize bodies onto the picture field and everything else through the validator.
func (h *BookHandler) bindError(err error, fallback string) *dto.ValidationError {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return dto.NewValidationError("picture", fmt.Sprintf("Pictures may be at most %d bytes.", h.maxUpload))
	}
	return dto.FromBindError(err, fallback)
}

func (h *BookHandler) renderForm(c *gin.Context, form dto.BookForm, verr *dto.ValidationError) {
	h.pages.Page(c, http.StatusBadRequest, "postbook.html", gin.H{
		"title":  "Post Book",
		"form":   form,
		"errors": verr.Fields,
	})
}

func (h *BookHandler) DisplayBooks(c *gin.Context) {
	h.list(c, service.ListAll, "Books", "No books have been posted yet.")
}

func (h *BookHandler) MyBooks(c *gin.Context) {
	h.list(c, service.ListOwned, "My Books", "You have not posted any books yet.")
}

func (h *BookHandler) Favorites(c *gin.Context) {
	h.list(c, service.ListFavorites, "Favorites", "No favorite books yet.")
}

func (h *BookHandler) list(c *gin.Context, kind service.ListKind, title, empty string) {
	ctx, cancel := requestContext(c)
	defer cancel()

	books, err := h.books.List(ctx, middleware.ActorFrom(c), kind)
	if err != nil {
		h.pages.Fail(c, err)
		return
	}
	h.pages.Page(c, http.StatusOK, "books.html", gin.H{
		"title": title,
		"books": books,
		"empty": empty,
	})
}

// Detail shows a book with its comments and the rating form.
func (h *BookHandler) Detail(c *gin.Context) {
	h.renderDetail(c, http.StatusOK, nil, "")
}

// renderDetail is shared with the rating and comment handlers for re-rendering on bad input.
func (h *BookHandler) renderDetail(c *gin.Context, status int, verr *dto.ValidationError, comment string) {
	id, err := bookID(c)
	if err != nil {
		h.pages.Fail(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	detail, err := h.books.Detail(ctx, middleware.ActorFrom(c), id)
	if err != nil {
		h.pages.Fail(c, err)
		return
	}
	userScore := 0
	if detail.UserScore != nil {
		userScore = *detail.UserScore
	}
	data := gin.H{
		"title":      detail.Book.Name,
		"detail":     detail,
		"choices":    dto.RatingChoices,
		"user_score": userScore,
		"comment":    comment,
	}
	if verr != nil {
		data["errors"] = verr.Fields
	}
	h.pages.Page(c, status, "book_detail.html", data)
}

// DeleteConfirm is the GET half of deletion: it only asks.
func (h *BookHandler) DeleteConfirm(c *gin.Context) {
	id, err := bookID(c)
	if err != nil {
		h.pages.Fail(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	book, err := h.books.ConfirmDelete(ctx, middleware.ActorFrom(c), id)
	if err != nil {
		h.pages.Fail(c, err)
		return
	}
	h.pages.Page(c, http.StatusOK, "book_delete.html", gin.H{
		"title": "Delete " + book.Name,
		"book":  book,
	})
}

func (h *BookHandler) Delete(c *gin.Context) {
	id, err := bookID(c)
	if err != nil {
		h.pages.Fail(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.books.Delete(ctx, middleware.ActorFrom(c), id); err != nil {
		h.pages.Fail(c, err)
		return
	}
	h.pages.Page(c, http.StatusOK, "book_delete.html", gin.H{
		"title":   "Book deleted",
		"deleted": true,
	})
}

// ToggleFavorite flips the flag and sends the user back where they came from.
func (h *BookHandler) ToggleFavorite(c *gin.Context) {
	id, err := bookID(c)
	if err != nil {
		h.pages.Fail(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if _, err := h.books.ToggleFavorite(ctx, middleware.ActorFrom(c), id); err != nil {
		h.pages.Fail(c, err)
		return
	}
	back := detailPath(id)
	c.Redirect(http.StatusFound, middleware.SafeRedirect(c.Request.Referer(), back))
}
