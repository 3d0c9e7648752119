package repository

import (
	"context"
	"errors"
	"fmt"

	"bookex/internal/http-api/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// upsertAttempts bounds the retries after a duplicate-key race.
const upsertAttempts = 3

type RatingRepository interface {
	Upsert(ctx context.Context, userID string, bookID int64, score int) (*models.Rating, error)
	GetByUserAndBook(ctx context.Context, userID string, bookID int64) (*models.Rating, error)
	Summary(ctx context.Context, bookID int64) (models.RatingSummary, error)
	Summaries(ctx context.Context, bookIDs []int64) (map[int64]models.RatingSummary, error)
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

// Upsert writes score for (userID, bookID) with INSERT ... ON CONFLICT DO UPDATE,
// so concurrent submissions leave exactly one row.
func (r *ratingRepository) Upsert(ctx context.Context, userID string, bookID int64, score int) (*models.Rating, error) {
	var err error
	for attempt := 0; attempt < upsertAttempts; attempt++ {
		rating := &models.Rating{UserID: userID, BookID: bookID, Score: score}
		err = r.db.WithContext(ctx).
			Omit(clause.Associations).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "book_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"score", "updated_at"}),
			}).
			Create(rating).Error
		if err == nil {
			return r.GetByUserAndBook(ctx, userID, bookID)
		}
		if !IsUniqueViolation(err) {
			return nil, fmt.Errorf("upsert rating: %w", err)
		}
	}
	return nil, fmt.Errorf("upsert rating: %w", err)
}

// GetByUserAndBook retrieves a user's rating for a specific book
func (r *ratingRepository) GetByUserAndBook(ctx context.Context, userID string, bookID int64) (*models.Rating, error) {
	var rating models.Rating
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		First(&rating).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

type summaryRow struct {
	BookID  int64
	Average *float64
	Total   int64
}

// Summary returns average and count for one book. Average stays nil without ratings.
func (r *ratingRepository) Summary(ctx context.Context, bookID int64) (models.RatingSummary, error) {
	var row summaryRow
	err := r.db.WithContext(ctx).
		Model(&models.Rating{}).
		Select("CAST(AVG(score) AS FLOAT) AS average, COUNT(*) AS total").
		Where("book_id = ?", bookID).
		Scan(&row).Error
	if err != nil {
		return models.RatingSummary{}, err
	}
	if row.Total == 0 {
		row.Average = nil
	}
	return models.RatingSummary{BookID: bookID, Average: row.Average, Count: row.Total}, nil
}

// Summaries aggregates several books in one query. Books without ratings get a zero summary.
func (r *ratingRepository) Summaries(ctx context.Context, bookIDs []int64) (map[int64]models.RatingSummary, error) {
	out := make(map[int64]models.RatingSummary, len(bookIDs))
	for _, id := range bookIDs {
		out[id] = models.RatingSummary{BookID: id}
	}
	if len(bookIDs) == 0 {
		return out, nil
	}

	var rows []summaryRow
	err := r.db.WithContext(ctx).
		Model(&models.Rating{}).
		Select("book_id, CAST(AVG(score) AS FLOAT) AS average, COUNT(*) AS total").
		Where("book_id IN ?", bookIDs).
		Group("book_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("rating summaries: %w", err)
	}
	for _, row := range rows {
		out[row.BookID] = models.RatingSummary{BookID: row.BookID, Average: row.Average, Count: row.Total}
	}
	return out, nil
}

// IsUniqueViolation reports duplicate-key errors from either driver.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
