package service

import (
	"context"
	"errors"

	"bookex/internal/http-api/dto"
	"bookex/internal/http-api/models"
	"bookex/internal/http-api/repository"
	"bookex/internal/shared"

	"gorm.io/gorm"
)

type RatingService interface {
	Submit(ctx context.Context, actor shared.Actor, bookID int64, score int) (*models.Rating, error)
	Average(ctx context.Context, bookID int64) (*float64, error)
	CountFor(ctx context.Context, bookID int64) (int64, error)
	ScoreFor(ctx context.Context, actor shared.Actor, bookID int64) (*int, error)
}

type ratingService struct {
	ratingRepo repository.RatingRepository
	bookRepo   repository.BookRepository
}

func NewRatingService(ratingRepo repository.RatingRepository, bookRepo repository.BookRepository) RatingService {
	return &ratingService{
		ratingRepo: ratingRepo,
		bookRepo:   bookRepo,
	}
}

// Submit creates or replaces the actor's rating for a book
func (s *ratingService) Submit(ctx context.Context, actor shared.Actor, bookID int64, score int) (*models.Rating, error) {
	if !actor.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}
	if score < models.MinScore || score > models.MaxScore {
		return nil, dto.NewValidationError("score", "Select a valid choice.")
	}

	// Check if book exists
	if _, err := s.bookRepo.GetByID(ctx, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}

	return s.ratingRepo.Upsert(ctx, actor.UserID, bookID, score)
}

// Average is nil while the book has no ratings
func (s *ratingService) Average(ctx context.Context, bookID int64) (*float64, error) {
	summary, err := s.ratingRepo.Summary(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return summary.Average, nil
}

func (s *ratingService) CountFor(ctx context.Context, bookID int64) (int64, error) {
	summary, err := s.ratingRepo.Summary(ctx, bookID)
	if err != nil {
		return 0, err
	}
	return summary.Count, nil
}

// ScoreFor returns the actor's own score, nil for anonymous actors or unrated books
func (s *ratingService) ScoreFor(ctx context.Context, actor shared.Actor, bookID int64) (*int, error) {
	if !actor.IsAuthenticated() {
		return nil, nil
	}
	rating, err := s.ratingRepo.GetByUserAndBook(ctx, actor.UserID, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rating.Score, nil
}
