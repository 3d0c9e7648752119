package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"bookex/internal/http-api/dto"
	"bookex/internal/http-api/models"
	"bookex/internal/http-api/repository"
	"bookex/internal/shared"

	"gorm.io/gorm"
)

const maxCommentLength = 2000

type CommentService interface {
	Append(ctx context.Context, actor shared.Actor, bookID int64, content string) (*dto.CommentView, error)
	List(ctx context.Context, bookID int64) ([]dto.CommentView, error)
}

type commentService struct {
	commentRepo repository.CommentRepository
	bookRepo    repository.BookRepository
}

func NewCommentService(commentRepo repository.CommentRepository, bookRepo repository.BookRepository) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		bookRepo:    bookRepo,
	}
}

// Append adds a comment to a book
func (s *commentService) Append(ctx context.Context, actor shared.Actor, bookID int64, content string) (*dto.CommentView, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(content) == "" {
		return nil, dto.NewValidationError("content", "This field is required.")
	}
	if utf8.RuneCountInString(content) > maxCommentLength {
		return nil, dto.NewValidationError("content", "Ensure this value has at most 2000 characters.")
	}

	// Check if book exists
	if _, err := s.bookRepo.GetByID(ctx, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	comment := &models.Comment{
		UserID:  actor.UserID,
		BookID:  bookID,
		Content: content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	// Reload with user data
	comment, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	view := dto.FromModelToCommentView(comment)
	return &view, nil
}

// List returns a book's comments, newest first
func (s *commentService) List(ctx context.Context, bookID int64) ([]dto.CommentView, error) {
	comments, err := s.commentRepo.ListByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	views := make([]dto.CommentView, 0, len(comments))
	for i := range comments {
		views = append(views, dto.FromModelToCommentView(&comments[i]))
	}
	return views, nil
}
