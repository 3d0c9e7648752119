package handler_test

import (
	"context"
	"time"

	"bookex/internal/http-api/dto"
	"bookex/internal/http-api/models"
	"bookex/internal/http-api/service"
	"bookex/internal/shared"

	"github.com/stretchr/testify/mock"
)

// --- MOCK SERVICES ---

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(username, password, email string) (*models.User, error) {
	args := m.Called(username, password, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Login(username, password string) (string, *models.User, error) {
	args := m.Called(username, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*models.User), args.Error(2)
}

func (m *MockAuthService) IssueToken(user *models.User) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) ParseToken(token string) (*shared.AuthClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.AuthClaims), args.Error(1)
}

func (m *MockAuthService) SessionTTL() time.Duration {
	return time.Hour
}

type MockBookService struct {
	mock.Mock
}

func (m *MockBookService) Create(ctx context.Context, actor shared.Actor, form dto.BookForm, picture *dto.Upload) (*models.Book, error) {
	args := m.Called(ctx, actor, form, picture)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockBookService) List(ctx context.Context, actor shared.Actor, kind service.ListKind) ([]dto.BookView, error) {
	args := m.Called(ctx, actor, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.BookView), args.Error(1)
}

func (m *MockBookService) Detail(ctx context.Context, actor shared.Actor, id int64) (*dto.BookDetail, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BookDetail), args.Error(1)
}

func (m *MockBookService) ConfirmDelete(ctx context.Context, actor shared.Actor, id int64) (*dto.BookView, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BookView), args.Error(1)
}

func (m *MockBookService) Delete(ctx context.Context, actor shared.Actor, id int64) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockBookService) ToggleFavorite(ctx context.Context, actor shared.Actor, id int64) (bool, error) {
	args := m.Called(ctx, actor, id)
	return args.Bool(0), args.Error(1)
}

type MockRatingService struct {
	mock.Mock
}

func (m *MockRatingService) Submit(ctx context.Context, actor shared.Actor, bookID int64, score int) (*models.Rating, error) {
	args := m.Called(ctx, actor, bookID, score)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rating), args.Error(1)
}

func (m *MockRatingService) Average(ctx context.Context, bookID int64) (*float64, error) {
	args := m.Called(ctx, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*float64), args.Error(1)
}

func (m *MockRatingService) CountFor(ctx context.Context, bookID int64) (int64, error) {
	args := m.Called(ctx, bookID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRatingService) ScoreFor(ctx context.Context, actor shared.Actor, bookID int64) (*int, error) {
	args := m.Called(ctx, actor, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*int), args.Error(1)
}

type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) Append(ctx context.Context, actor shared.Actor, bookID int64, content string) (*dto.CommentView, error) {
	args := m.Called(ctx, actor, bookID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CommentView), args.Error(1)
}

func (m *MockCommentService) List(ctx context.Context, bookID int64) ([]dto.CommentView, error) {
	args := m.Called(ctx, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.CommentView), args.Error(1)
}

type MockMenuService struct {
	mock.Mock
}

func (m *MockMenuService) List(ctx context.Context) ([]models.MenuItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MenuItem), args.Error(1)
}

func (m *MockMenuService) Add(ctx context.Context, item, link string) (*models.MenuItem, error) {
	args := m.Called(ctx, item, link)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MenuItem), args.Error(1)
}
