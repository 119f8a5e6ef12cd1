package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/msomdec/devconnector/internal/domain"
)

const tokenTTL = 10 * time.Hour

// AuthService handles user registration, login, and JWT token operations.
type AuthService struct {
	store      domain.DocumentStore
	jwtSecret  []byte
	bcryptCost int
	logger     *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(store domain.DocumentStore, jwtSecret string, bcryptCost int, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:      store,
		jwtSecret:  []byte(jwtSecret),
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

type registration struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// Register creates a new account and returns a signed token for it.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateStruct(registration{Name: strings.TrimSpace(name), Email: email, Password: password}); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		Avatar:       GravatarURL(email),
		PasswordHash: string(hash),
		Date:         time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, domain.CollectionUsers, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return "", fmt.Errorf("%w: user already exists", domain.ErrConflict)
		}
		return "", fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", "user", user.ID)
	return s.generateJWT(user)
}

// Login verifies credentials and returns a signed JWT token string.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var user domain.User
	err := s.store.FindOne(ctx, domain.CollectionUsers,
		domain.Filter{"email": strings.ToLower(strings.TrimSpace(email))}, &user)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrUnauthorized
		}
		return "", fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", domain.ErrUnauthorized
	}

	return s.generateJWT(&user)
}

// ValidateToken parses and validates a JWT token string.
// Returns the user ID from the sub claim.
func (s *AuthService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", domain.ErrUnauthorized
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", domain.ErrUnauthorized
	}
	return sub, nil
}

// GetUserByID retrieves a user by their ID.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	if err := s.store.FindByID(ctx, domain.CollectionUsers, id, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *AuthService) generateJWT(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": user.ID,
		"iat": now.Unix(),
		"exp": now.Add(tokenTTL).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// GravatarURL returns the 200px, PG-rated Gravatar for email, falling back
// to the mystery-man image.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?s=200&r=pg&d=mm"
}
