package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tienda/internal/models"
	"tienda/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// Claims carried by access tokens.
type Claims struct {
	UserID uint
	Role   string
}

// IsAdmin reports whether the token belongs to an administrator.
func (c Claims) IsAdmin() bool { return c.Role == models.RoleAdministrator }

// Registration is the data needed to open a client account.
type Registration struct {
	Name     string
	Surname  string
	Email    string
	Password string
	Street   string
	Unit     *string
	Region   string
	Comune   string
}

// Session is what a successful login returns to the client.
type Session struct {
	ID             uint            `json:"id"`
	Name           string          `json:"name"`
	Surname        string          `json:"surname"`
	Email          string          `json:"email"`
	Role           string          `json:"role"`
	DefaultAddress *models.Address `json:"default_address"`
	Token          string          `json:"token"`
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Register creates a client account and its first address in one transaction.
func (s *AuthService) Register(ctx context.Context, reg Registration) (*models.User, error) {
	email := normalizeEmail(reg.Email)
	if existing, err := s.userRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, fmt.Errorf("email '%s' already registered: %w", email, ErrDuplicate)
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hashed, err := hashPassword(reg.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         strings.TrimSpace(reg.Name),
		Surname:      strings.TrimSpace(reg.Surname),
		Email:        email,
		PasswordHash: hashed,
		RoleID:       models.RoleClientID,
	}
	address := &models.Address{
		Street: strings.TrimSpace(reg.Street),
		Unit:   trimmedOrNil(reg.Unit),
		Region: strings.TrimSpace(reg.Region),
		Comune: strings.TrimSpace(reg.Comune),
	}
	if err := s.userRepo.Create(ctx, user, address); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	log.Info().Uint("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Login authenticates a user and returns the session record with a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(user.ID, user.RoleName())
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:             user.ID,
		Name:           user.Name,
		Surname:        user.Surname,
		Email:          user.Email,
		Role:           user.RoleName(),
		DefaultAddress: user.DefaultAddress(),
		Token:          token,
	}, nil
}

// IssueToken signs an HS256 token for the user.
func (s *AuthService) IssueToken(userID uint, role string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     now.Add(s.tokenTTL).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	// JSON numbers decode as float64.
	rawID, ok := mc["user_id"].(float64)
	if !ok || rawID <= 0 {
		return nil, fmt.Errorf("invalid token: missing user_id")
	}
	role, _ := mc["role"].(string)
	return &Claims{UserID: uint(rawID), Role: role}, nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
