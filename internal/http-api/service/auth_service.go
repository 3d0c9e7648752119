package service

import (
	"errors"
	"strings"
	"time"

	"bookex/internal/config"
	"bookex/internal/http-api/models"
	"bookex/internal/http-api/repository"
	"bookex/internal/middleware/auth"
	"bookex/internal/shared"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

const minPasswordLength = 8

var (
	ErrNameInUse          = errors.New("username already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrEmailInUse         = errors.New("email already in use")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
)

type AuthService interface {
	Register(username, password, email string) (*models.User, error)
	Login(username, password string) (token string, user *models.User, err error)
	IssueToken(user *models.User) (string, error)
	ParseToken(tokenString string) (*shared.AuthClaims, error)
	SessionTTL() time.Duration
}

// sessionClaims is the JWT body stored in the session cookie.
type sessionClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	userRepo   repository.UserRepository
	jwtSecret  []byte
	sessionTTL time.Duration
	now        func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtSecret:  []byte(cfg.JWTSecret),
		sessionTTL: cfg.SessionTTL, // 24 hours by default
		now:        time.Now,
	}
}

// Register: registers a new user with the given username, password, and email.
func (s *authService) Register(username, password, email string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	// Check if user exists
	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return nil, ErrNameInUse
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Check if email exists
	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailInUse
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Hash password
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: hashedPassword,
		Role:     models.RoleUser,
	}

	// a concurrent signup can still win the unique index
	if err := s.userRepo.Create(user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrNameInUse
		}
		return nil, err
	}

	return user, nil
}

// Login: authenticates a user and returns a session token upon successful login.
func (s *authService) Login(username, password string) (string, *models.User, error) {
	// Find user
	user, err := s.userRepo.FindByUsername(strings.TrimSpace(username))
	if err != nil {
		// User not found we use dummy compare to mitigate timing attacks (always take same time)
		auth.BurnCompare(password)
		return "", nil, ErrInvalidCredentials
	}

	// Verify password
	if err := auth.VerifyPassword(user.Password, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}

	now := s.now()
	if err := s.userRepo.TouchLastLogin(user.ID, now); err == nil {
		user.LastLogin = &now
	}
	return token, user, nil
}

func (s *authService) IssueToken(user *models.User) (string, error) {
	now := s.now()
	claims := sessionClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *authService) ParseToken(tokenString string) (*shared.AuthClaims, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return &shared.AuthClaims{
		UserID:   claims.UserID,
		UserName: claims.Username,
		Role:     claims.Role,
	}, nil
}

func (s *authService) SessionTTL() time.Duration {
	return s.sessionTTL
}
