package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"bookex/internal/http-api/dto"
	"bookex/internal/http-api/models"
	"bookex/internal/http-api/repository"
	"bookex/internal/shared"
	"bookex/internal/storage"

	"gorm.io/gorm"
)

// sniffLen is how much of an upload http.DetectContentType looks at.
const sniffLen = 512

// ListKind selects which books List returns.
type ListKind int

const (
	ListAll ListKind = iota
	ListFavorites
	ListOwned
)

type BookService interface {
	Create(ctx context.Context, actor shared.Actor, form dto.BookForm, picture *dto.Upload) (*models.Book, error)
	List(ctx context.Context, actor shared.Actor, kind ListKind) ([]dto.BookView, error)
	Detail(ctx context.Context, actor shared.Actor, id int64) (*dto.BookDetail, error)
	ConfirmDelete(ctx context.Context, actor shared.Actor, id int64) (*dto.BookView, error)
	Delete(ctx context.Context, actor shared.Actor, id int64) error
	ToggleFavorite(ctx context.Context, actor shared.Actor, id int64) (bool, error)
}

type bookService struct {
	books     repository.BookRepository
	ratings   repository.RatingRepository
	comments  repository.CommentRepository
	store     storage.Store
	maxUpload int64
	logger    *slog.Logger
}

func NewBookService(
	books repository.BookRepository,
	ratings repository.RatingRepository,
	comments repository.CommentRepository,
	store storage.Store,
	maxUpload int64,
	logger *slog.Logger,
) BookService {
	if logger == nil {
		logger = slog.Default()
	}
	return &bookService{
		books:     books,
		ratings:   ratings,
		comments:  comments,
		store:     store,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

func (s *bookService) Create(ctx context.Context, actor shared.Actor, form dto.BookForm, picture *dto.Upload) (*models.Book, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(form.Name) == "" {
		return nil, dto.NewValidationError("name", "This field is required.")
	}
	book, err := form.ToModel(actor.UserID)
	if err != nil {
		return nil, err
	}

	var pictureKey string
	if picture != nil {
		pictureKey, err = s.storePicture(ctx, picture)
		if err != nil {
			return nil, err
		}
		book.PictureKey = &pictureKey
	}

	if err := s.books.Create(ctx, book); err != nil {
		if pictureKey != "" {
			s.removePicture(ctx, pictureKey)
		}
		return nil, err
	}
	s.logger.InfoContext(ctx, "book created", "book_id", book.ID, "owner_id", actor.UserID)
	return book, nil
}

// storePicture checks size and sniffed type before handing the bytes to the store.
func (s *bookService) storePicture(ctx context.Context, picture *dto.Upload) (string, error) {
	if picture.Size <= 0 {
		return "", dto.NewValidationError("picture", "The submitted file is empty.")
	}
	if s.maxUpload > 0 && picture.Size > s.maxUpload {
		return "", dto.NewValidationError("picture", fmt.Sprintf("Pictures may be at most %d bytes.", s.maxUpload))
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(picture.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read picture: %w", err)
	}
	head = head[:n]
	contentType := http.DetectContentType(head)
	if !strings.HasPrefix(contentType, "image/") {
		return "", dto.NewValidationError("picture", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}

	key := storage.NewPictureKey(picture.Filename)
	body := io.MultiReader(bytes.NewReader(head), picture.Body)
	if err := s.store.Put(ctx, key, body, picture.Size, contentType); err != nil {
		return "", fmt.Errorf("store picture: %w", err)
	}
	return key, nil
}

func (s *bookService) removePicture(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "failed to delete picture", "key", key, "error", err)
	}
}

func (s *bookService) List(ctx context.Context, actor shared.Actor, kind ListKind) ([]dto.BookView, error) {
	var filter repository.BookFilter
	switch kind {
	case ListAll:
	case ListFavorites:
		if !actor.IsAuthenticated() {
			return nil, ErrUnauthenticated
		}
		filter.FavoritesOnly = true
	case ListOwned:
		if !actor.IsAuthenticated() {
			return nil, ErrUnauthenticated
		}
		filter.OwnerID = actor.UserID
	default:
		return nil, fmt.Errorf("unknown list kind %d", kind)
	}

	books, err := s.books.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.ID)
	}
	summaries, err := s.ratings.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]dto.BookView, 0, len(books))
	for i := range books {
		v, err := dto.NewBookView(ctx, s.store, &books[i], summaries[books[i].ID], actor)
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *bookService) Detail(ctx context.Context, actor shared.Actor, id int64) (*dto.BookDetail, error) {
	book, err := s.getBook(ctx, id)
	if err != nil {
		return nil, err
	}
	summary, err := s.ratings.Summary(ctx, id)
	if err != nil {
		return nil, err
	}
	view, err := dto.NewBookView(ctx, s.store, book, summary, actor)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.ListByBook(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &dto.BookDetail{Book: view, Comments: make([]dto.CommentView, 0, len(comments))}
	for i := range comments {
		detail.Comments = append(detail.Comments, dto.FromModelToCommentView(&comments[i]))
	}

	if actor.IsAuthenticated() {
		rating, err := s.ratings.GetByUserAndBook(ctx, actor.UserID, id)
		switch {
		case err == nil:
			detail.UserScore = &rating.Score
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}
	}
	return detail, nil
}

func (s *bookService) ConfirmDelete(ctx context.Context, actor shared.Actor, id int64) (*dto.BookView, error) {
	book, err := s.authorizeDelete(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	view, err := dto.NewBookView(ctx, s.store, book, models.RatingSummary{BookID: id}, actor)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *bookService) Delete(ctx context.Context, actor shared.Actor, id int64) error {
	book, err := s.authorizeDelete(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.books.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		return err
	}
	if book.PictureKey != nil && *book.PictureKey != "" {
		s.removePicture(ctx, *book.PictureKey)
	}
	s.logger.InfoContext(ctx, "book deleted", "book_id", id, "actor_id", actor.UserID)
	return nil
}

// authorizeDelete lets owners and admins through. Unknown ids win over permission errors.
func (s *bookService) authorizeDelete(ctx context.Context, actor shared.Actor, id int64) (*models.Book, error) {
	book, err := s.getBook(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}
	if !actor.IsAdmin() && !book.OwnedBy(actor.UserID) {
		return nil, ErrPermissionDenied
	}
	return book, nil
}

func (s *bookService) ToggleFavorite(ctx context.Context, actor shared.Actor, id int64) (bool, error) {
	if !actor.IsAuthenticated() {
		return false, ErrUnauthenticated
	}
	favorite, err := s.books.ToggleFavorite(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrBookNotFound
		}
		return false, err
	}
	return favorite, nil
}

func (s *bookService) getBook(ctx context.Context, id int64) (*models.Book, error) {
	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return book, nil
}
