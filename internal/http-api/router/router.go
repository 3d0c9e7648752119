// Package router wires services, middleware and handlers into the gin engine.
package router

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"bookex/internal/config"
	"bookex/internal/http-api/handler"
	"bookex/internal/http-api/middleware"
	"bookex/internal/http-api/repository"
	"bookex/internal/http-api/service"
	"bookex/internal/ratelimit"
	"bookex/internal/storage"
	"bookex/web"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Services are the collaborators the HTTP layer calls.
type Services struct {
	Auth     service.AuthService
	Books    service.BookService
	Ratings  service.RatingService
	Comments service.CommentService
	Menu     service.MenuService
}

// Options tune the engine independently of the services.
type Options struct {
	CookieName   string
	SecureCookie bool
	MaxUpload    int64
	// MediaURL and MediaRoot expose locally stored pictures; empty MediaRoot disables it.
	MediaURL  string
	MediaRoot string
	Limiter   ratelimit.Limiter
	Logger    *slog.Logger
	Ping      func(ctx context.Context) error
}

// NewServices builds the service graph on top of db and store.
func NewServices(cfg *config.Config, db *gorm.DB, store storage.Store, logger *slog.Logger) Services {
	userRepo := repository.NewUserRepository(db)
	bookRepo := repository.NewBookRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	menuRepo := repository.NewMenuRepository(db)

	return Services{
		Auth:     service.NewAuthService(userRepo, cfg),
		Books:    service.NewBookService(bookRepo, ratingRepo, commentRepo, store, cfg.UploadMaxSize, logger),
		Ratings:  service.NewRatingService(ratingRepo, bookRepo),
		Comments: service.NewCommentService(commentRepo, bookRepo),
		Menu:     service.NewMenuService(menuRepo),
	}
}

// New returns the engine serving every page.
func New(svc Services, opts Options) (*gin.Engine, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	// trailing-slash variants redirect to the canonical route, keeping the method for POSTs
	r.RedirectTrailingSlash = true
	r.SetHTMLTemplate(tmpl)
	r.Use(
		middleware.RequestID(opts.Logger),
		middleware.RequestLog(),
		gin.Recovery(),
		middleware.SecurityHeaders(),
		middleware.CurrentUser(svc.Auth, opts.CookieName),
	)

	pages := handler.NewRenderer(svc.Menu)
	pageHandler := handler.NewPageHandler(pages, opts.Ping)
	bookHandler := handler.NewBookHandler(svc.Books, pages, opts.MaxUpload)
	ratingHandler := handler.NewRatingHandler(svc.Ratings, bookHandler)
	commentHandler := handler.NewCommentHandler(svc.Comments, bookHandler)
	authHandler := handler.NewAuthHandler(svc.Auth, pages, opts.CookieName, opts.SecureCookie)

	auth := middleware.RequireAuth()
	write := middleware.RateLimit(opts.Limiter, "write")
	login := middleware.RateLimit(opts.Limiter, "auth")

	r.StaticFS("/static", http.FS(web.Static()))
	if opts.MediaRoot != "" {
		r.Static(mediaPrefix(opts.MediaURL), opts.MediaRoot)
	}
	r.GET("/healthz", pageHandler.Healthz)

	r.GET("/", pageHandler.Index)
	r.GET("/aboutus", pageHandler.AboutUs)

	r.GET("/register", authHandler.RegisterForm)
	r.POST("/register", login, authHandler.Register)
	r.GET("/login", authHandler.LoginForm)
	r.POST("/login", login, authHandler.Login)
	r.POST("/logout", authHandler.Logout)

	r.GET("/displaybooks", bookHandler.DisplayBooks)
	r.GET("/postbook", auth, bookHandler.PostBookForm)
	r.POST("/postbook", auth, write, bookHandler.PostBook)
	r.GET("/book_detail/:id", bookHandler.Detail)
	r.POST("/book_detail/:id", auth, write, ratingHandler.Rate)
	r.GET("/book_comment/:id", commentHandler.Show)
	r.POST("/book_comment/:id", auth, write, commentHandler.Create)
	r.GET("/mybooks", auth, bookHandler.MyBooks)
	r.GET("/favorites", auth, bookHandler.Favorites)
	r.GET("/book_delete/:id", auth, bookHandler.DeleteConfirm)
	r.POST("/book_delete/:id", auth, write, bookHandler.Delete)
	r.POST("/toggle_favorite/:id", auth, write, bookHandler.ToggleFavorite)

	r.NoRoute(pages.NotFound)
	return r, nil
}

func mediaPrefix(mediaURL string) string {
	prefix := "/" + strings.Trim(mediaURL, "/")
	if prefix == "/" {
		return "/media"
	}
	return prefix
}
