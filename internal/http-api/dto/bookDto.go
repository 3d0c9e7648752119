package dto

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"bookex/internal/http-api/models"
	"bookex/internal/shared"
	"bookex/internal/storage"
)

// BookForm is the "post book" form. The picture travels separately as an Upload.
type BookForm struct {
	Name  string `form:"name" binding:"required,max=200"`
	Web   string `form:"web" binding:"omitempty,max=300,http_url"`
	Price string `form:"price" binding:"omitempty,price"`
}

// Upload is a picture attached to a BookForm.
type Upload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

// ToModel builds the row to insert. CreatedAt is left for the database.
func (f BookForm) ToModel(ownerID string) (*models.Book, error) {
	price, err := ParsePrice(f.Price)
	if err != nil {
		return nil, NewValidationError("price", "Enter a price with at most 6 digits before and 2 after the decimal point.")
	}
	book := &models.Book{
		Name:  strings.TrimSpace(f.Name),
		Price: price,
	}
	if web := strings.TrimSpace(f.Web); web != "" {
		book.Web = &web
	}
	if ownerID != "" {
		book.OwnerID = &ownerID
	}
	return book, nil
}

// BookView is a book as the templates see it, with the derived fields filled in.
type BookView struct {
	ID          int64
	Name        string
	Web         string
	Price       string
	PictureURL  string
	IsFavorite  bool
	OwnerName   string
	CreatedAt   time.Time
	Average     *float64
	RatingCount int64
	CanDelete   bool
}

// NewBookView is the one place a picture key becomes a URL.
func NewBookView(ctx context.Context, store storage.Store, b *models.Book, summary models.RatingSummary, actor shared.Actor) (BookView, error) {
	v := BookView{
		ID:          b.ID,
		Name:        b.Name,
		IsFavorite:  b.IsFavorite,
		CreatedAt:   b.CreatedAt,
		Average:     summary.Average,
		RatingCount: summary.Count,
		CanDelete:   actor.IsAdmin() || b.OwnedBy(actor.UserID),
	}
	if b.Web != nil {
		v.Web = *b.Web
	}
	if b.Price.Valid {
		v.Price = b.Price.Decimal.StringFixed(2)
	}
	if b.Owner != nil {
		v.OwnerName = b.Owner.Username
	}
	if b.PictureKey != nil && *b.PictureKey != "" {
		url, err := store.URL(ctx, *b.PictureKey)
		if err != nil {
			return BookView{}, fmt.Errorf("picture url for book %d: %w", b.ID, err)
		}
		v.PictureURL = url
	}
	return v, nil
}

// AverageText renders the average with one decimal, or a placeholder when unrated.
func (v BookView) AverageText() string {
	if v.Average == nil {
		return "No ratings yet"
	}
	return fmt.Sprintf("%.1f", *v.Average)
}

// BookDetail is everything the detail page shows.
type BookDetail struct {
	Book      BookView
	Comments  []CommentView
	UserScore *int
}
