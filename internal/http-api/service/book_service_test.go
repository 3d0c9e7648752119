package service

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bookex/internal/http-api/dto"
	"bookex/internal/http-api/models"
	"bookex/internal/http-api/repository"
	"bookex/internal/shared"
	"bookex/internal/storage"
	"bookex/internal/testutil"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// 1x1 transparent PNG
var pngPixel = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

type CatalogSuite struct {
	suite.Suite
	ctx      context.Context
	db       *gorm.DB
	store    *storage.FileStore
	books    BookService
	ratings  RatingService
	comments CommentService

	alice, bob, carol, admin shared.Actor
}

func TestCatalogSuite(t *testing.T) {
	suite.Run(t, new(CatalogSuite))
}

func (s *CatalogSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = testutil.NewDB(s.T())

	store, err := storage.NewFileStore(s.T().TempDir(), "/media/")
	s.Require().NoError(err)
	s.store = store

	bookRepo := repository.NewBookRepository(s.db)
	ratingRepo := repository.NewRatingRepository(s.db)
	commentRepo := repository.NewCommentRepository(s.db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.books = NewBookService(bookRepo, ratingRepo, commentRepo, store, 1<<20, logger)
	s.ratings = NewRatingService(ratingRepo, bookRepo)
	s.comments = NewCommentService(commentRepo, bookRepo)

	s.alice = s.actor("alice", models.RoleUser)
	s.bob = s.actor("bob", models.RoleUser)
	s.carol = s.actor("carol", models.RoleUser)
	s.admin = s.actor("staff", models.RoleAdmin)
}

func (s *CatalogSuite) actor(name, role string) shared.Actor {
	u := testutil.CreateUser(s.T(), s.db, name, role)
	return shared.Actor{UserID: u.ID, UserName: u.Username, Role: u.Role}
}

func (s *CatalogSuite) create(actor shared.Actor, name string) *models.Book {
	b, err := s.books.Create(s.ctx, actor, dto.BookForm{Name: name}, nil)
	s.Require().NoError(err)
	return b
}

func (s *CatalogSuite) TestDuneScenario() {
	dune := s.create(s.alice, "Dune")

	_, err := s.ratings.Submit(s.ctx, s.bob, dune.ID, 4)
	s.Require().NoError(err)
	avg, err := s.ratings.Average(s.ctx, dune.ID)
	s.Require().NoError(err)
	s.Require().NotNil(avg)
	s.InDelta(4.0, *avg, 1e-9)
	count, err := s.ratings.CountFor(s.ctx, dune.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), count)

	_, err = s.ratings.Submit(s.ctx, s.bob, dune.ID, 2)
	s.Require().NoError(err)
	avg, _ = s.ratings.Average(s.ctx, dune.ID)
	s.InDelta(2.0, *avg, 1e-9)
	count, _ = s.ratings.CountFor(s.ctx, dune.ID)
	s.Equal(int64(1), count)

	_, err = s.comments.Append(s.ctx, s.carol, dune.ID, "Great read.")
	s.Require().NoError(err)
	list, err := s.comments.List(s.ctx, dune.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal("Great read.", list[0].Content)
	s.Equal("carol", list[0].Author)
	s.Equal("User", list[0].AuthorTitle)

	fav, err := s.books.ToggleFavorite(s.ctx, s.alice, dune.ID)
	s.Require().NoError(err)
	s.True(fav)
	favs, err := s.books.List(s.ctx, s.alice, ListFavorites)
	s.Require().NoError(err)
	s.Require().Len(favs, 1)
	s.Equal("Dune", favs[0].Name)

	fav, err = s.books.ToggleFavorite(s.ctx, s.alice, dune.ID)
	s.Require().NoError(err)
	s.False(fav)
	favs, err = s.books.List(s.ctx, s.alice, ListFavorites)
	s.Require().NoError(err)
	s.Empty(favs)
}

func (s *CatalogSuite) TestCreateThenListOnce() {
	forms := []dto.BookForm{
		{Name: "Dune"},
		{Name: "Emma", Web: "https://example.com/emma"},
		{Name: "Ulysses", Price: "12.50"},
	}
	for _, f := range forms {
		b, err := s.books.Create(s.ctx, s.alice, f, nil)
		s.Require().NoError(err)

		all, err := s.books.List(s.ctx, shared.Anonymous, ListAll)
		s.Require().NoError(err)
		seen := 0
		for _, v := range all {
			if v.ID == b.ID {
				seen++
				s.Equal(f.Name, v.Name)
				s.False(v.CreatedAt.IsZero())
			}
		}
		s.Equal(1, seen)
	}

	all, err := s.books.List(s.ctx, shared.Anonymous, ListAll)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("Ulysses", all[0].Name)
	s.Equal("12.50", all[0].Price)
	s.Equal("https://example.com/emma", all[1].Web)
	s.Nil(all[2].Average)
}

func (s *CatalogSuite) TestCreateRequiresAuthAndValidInput() {
	_, err := s.books.Create(s.ctx, shared.Anonymous, dto.BookForm{Name: "Dune"}, nil)
	s.ErrorIs(err, ErrUnauthenticated)

	_, err = s.books.Create(s.ctx, s.alice, dto.BookForm{Name: "  "}, nil)
	var verr *dto.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Contains(verr.Fields, "name")

	_, err = s.books.Create(s.ctx, s.alice, dto.BookForm{Name: "Dune", Price: "1.999"}, nil)
	s.Require().ErrorAs(err, &verr)
	s.Contains(verr.Fields, "price")

	var n int64
	s.Require().NoError(s.db.Model(&models.Book{}).Count(&n).Error)
	s.Zero(n)
}

func (s *CatalogSuite) TestCreateWithPicture() {
	upload := &dto.Upload{Filename: "cover.PNG", Size: int64(len(pngPixel)), Body: bytes.NewReader(pngPixel)}
	b, err := s.books.Create(s.ctx, s.alice, dto.BookForm{Name: "Dune"}, upload)
	s.Require().NoError(err)
	s.Require().NotNil(b.PictureKey)
	s.True(strings.HasSuffix(*b.PictureKey, ".png"))

	stored, err := os.ReadFile(filepath.Join(s.store.Root(), filepath.FromSlash(*b.PictureKey)))
	s.Require().NoError(err)
	s.Equal(pngPixel, stored)

	detail, err := s.books.Detail(s.ctx, shared.Anonymous, b.ID)
	s.Require().NoError(err)
	s.Equal("/media/"+*b.PictureKey, detail.Book.PictureURL)

	s.Require().NoError(s.books.Delete(s.ctx, s.alice, b.ID))
	_, err = os.Stat(filepath.Join(s.store.Root(), filepath.FromSlash(*b.PictureKey)))
	s.True(os.IsNotExist(err))
}

func (s *CatalogSuite) TestCreateRejectsBadPictures() {
	var verr *dto.ValidationError

	text := []byte("definitely not an image")
	_, err := s.books.Create(s.ctx, s.alice, dto.BookForm{Name: "Dune"},
		&dto.Upload{Filename: "cover.png", Size: int64(len(text)), Body: bytes.NewReader(text)})
	s.Require().ErrorAs(err, &verr)
	s.Contains(verr.Fields, "picture")

	_, err = s.books.Create(s.ctx, s.alice, dto.BookForm{Name: "Dune"},
		&dto.Upload{Filename: "huge.png", Size: 2 << 20, Body: bytes.NewReader(pngPixel)})
	s.Require().ErrorAs(err, &verr)
	s.Contains(verr.Fields, "picture")

	var n int64
	s.Require().NoError(s.db.Model(&models.Book{}).Count(&n).Error)
	s.Zero(n)
}

func (s *CatalogSuite) TestLastRatingWins() {
	b := s.create(s.alice, "Dune")
	for _, score := range []int{5, 1, 3} {
		_, err := s.ratings.Submit(s.ctx, s.bob, b.ID, score)
		s.Require().NoError(err)
	}
	_, err := s.ratings.Submit(s.ctx, s.carol, b.ID, 5)
	s.Require().NoError(err)

	var rows []models.Rating
	s.Require().NoError(s.db.Where("book_id = ? AND user_id = ?", b.ID, s.bob.UserID).Find(&rows).Error)
	s.Require().Len(rows, 1)
	s.Equal(3, rows[0].Score)

	avg, err := s.ratings.Average(s.ctx, b.ID)
	s.Require().NoError(err)
	s.InDelta(4.0, *avg, 1e-9)

	score, err := s.ratings.ScoreFor(s.ctx, s.bob, b.ID)
	s.Require().NoError(err)
	s.Equal(3, *score)

	score, err = s.ratings.ScoreFor(s.ctx, shared.Anonymous, b.ID)
	s.NoError(err)
	s.Nil(score)
	score, err = s.ratings.ScoreFor(s.ctx, s.admin, b.ID)
	s.NoError(err)
	s.Nil(score)
}

func (s *CatalogSuite) TestSubmitRejects() {
	b := s.create(s.alice, "Dune")

	_, err := s.ratings.Submit(s.ctx, shared.Anonymous, b.ID, 3)
	s.ErrorIs(err, ErrUnauthenticated)

	for _, score := range []int{0, 6} {
		_, err = s.ratings.Submit(s.ctx, s.bob, b.ID, score)
		var verr *dto.ValidationError
		s.Require().ErrorAs(err, &verr)
	}

	_, err = s.ratings.Submit(s.ctx, s.bob, b.ID+99, 3)
	s.ErrorIs(err, ErrBookNotFound)

	count, err := s.ratings.CountFor(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *CatalogSuite) TestAverageAbsentWithoutRatings() {
	b := s.create(s.alice, "Dune")
	avg, err := s.ratings.Average(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Nil(avg)

	detail, err := s.books.Detail(s.ctx, s.bob, b.ID)
	s.Require().NoError(err)
	s.Nil(detail.Book.Average)
	s.Zero(detail.Book.RatingCount)
	s.Nil(detail.UserScore)
}

func (s *CatalogSuite) TestDeleteCascadesAndHidesBook() {
	b := s.create(s.alice, "Dune")
	_, err := s.ratings.Submit(s.ctx, s.bob, b.ID, 4)
	s.Require().NoError(err)
	_, err = s.comments.Append(s.ctx, s.carol, b.ID, "nice")
	s.Require().NoError(err)

	s.Require().NoError(s.books.Delete(s.ctx, s.alice, b.ID))

	var n int64
	s.Require().NoError(s.db.Model(&models.Rating{}).Count(&n).Error)
	s.Zero(n)
	s.Require().NoError(s.db.Model(&models.Comment{}).Count(&n).Error)
	s.Zero(n)

	all, err := s.books.List(s.ctx, shared.Anonymous, ListAll)
	s.Require().NoError(err)
	s.Empty(all)

	_, err = s.books.Detail(s.ctx, shared.Anonymous, b.ID)
	s.ErrorIs(err, ErrBookNotFound)
	s.ErrorIs(s.books.Delete(s.ctx, s.alice, b.ID), ErrBookNotFound)
}

func (s *CatalogSuite) TestDeletePermissions() {
	b := s.create(s.alice, "Dune")

	_, err := s.books.ConfirmDelete(s.ctx, shared.Anonymous, b.ID)
	s.ErrorIs(err, ErrUnauthenticated)
	s.ErrorIs(s.books.Delete(s.ctx, s.bob, b.ID), ErrPermissionDenied)

	view, err := s.books.ConfirmDelete(s.ctx, s.alice, b.ID)
	s.Require().NoError(err)
	s.Equal("Dune", view.Name)

	other := s.create(s.bob, "Emma")
	s.NoError(s.books.Delete(s.ctx, s.admin, other.ID))
	s.NoError(s.books.Delete(s.ctx, s.alice, b.ID))
}

func (s *CatalogSuite) TestToggleFavorite() {
	b := s.create(s.alice, "Dune")

	_, err := s.books.ToggleFavorite(s.ctx, shared.Anonymous, b.ID)
	s.ErrorIs(err, ErrUnauthenticated)
	_, err = s.books.ToggleFavorite(s.ctx, s.bob, b.ID+1)
	s.ErrorIs(err, ErrBookNotFound)

	// favorites are shared: bob's toggle shows up for alice
	fav, err := s.books.ToggleFavorite(s.ctx, s.bob, b.ID)
	s.Require().NoError(err)
	s.True(fav)
	favs, err := s.books.List(s.ctx, s.alice, ListFavorites)
	s.Require().NoError(err)
	s.Len(favs, 1)
}

func (s *CatalogSuite) TestListOwnedAndAuth() {
	s.create(s.alice, "Dune")
	s.create(s.bob, "Emma")

	mine, err := s.books.List(s.ctx, s.alice, ListOwned)
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.Equal("Dune", mine[0].Name)
	s.True(mine[0].CanDelete)
	s.Equal("alice", mine[0].OwnerName)

	_, err = s.books.List(s.ctx, shared.Anonymous, ListOwned)
	s.ErrorIs(err, ErrUnauthenticated)
	_, err = s.books.List(s.ctx, shared.Anonymous, ListFavorites)
	s.ErrorIs(err, ErrUnauthenticated)
}

func (s *CatalogSuite) TestCommentRules() {
	b := s.create(s.alice, "Dune")
	var verr *dto.ValidationError

	_, err := s.comments.Append(s.ctx, s.bob, b.ID, strings.Repeat("x", 2001))
	s.Require().ErrorAs(err, &verr)
	s.Contains(verr.Fields, "content")

	_, err = s.comments.Append(s.ctx, s.bob, b.ID, "   ")
	s.Require().ErrorAs(err, &verr)

	_, err = s.comments.Append(s.ctx, shared.Anonymous, b.ID, "hello")
	s.ErrorIs(err, ErrUnauthenticated)

	_, err = s.comments.Append(s.ctx, s.bob, b.ID+5, "hello")
	s.ErrorIs(err, ErrBookNotFound)

	list, err := s.comments.List(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Empty(list)

	_, err = s.comments.Append(s.ctx, s.bob, b.ID, "first")
	s.Require().NoError(err)
	view, err := s.comments.Append(s.ctx, s.admin, b.ID, "second")
	s.Require().NoError(err)
	s.Equal("Admin", view.AuthorTitle)

	detail, err := s.books.Detail(s.ctx, s.bob, b.ID)
	s.Require().NoError(err)
	s.Require().Len(detail.Comments, 2)
	s.Equal("second", detail.Comments[0].Content)
	s.Equal("first", detail.Comments[1].Content)
}
