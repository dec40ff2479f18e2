package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the slice of user storage the auth service needs.
type UserRepository interface {
	GetPasswordForEmail(email string) (passwordHash string, userID int64, err error)
	GetUserByID(ctx context.Context, userID int64) (*User, error)
	CreateUser(username, email, passwordHash string) (int64, error)
	EmailExists(email string) (bool, error)
}

// Service is the main auth service with dependencies
type Service struct {
	userRepo       UserRepository
	tokenGenerator TokenGenerator
	bcryptCost     int
}

// NewService creates a new auth service
func NewService(userRepo UserRepository, tokenGen TokenGenerator, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		userRepo:       userRepo,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
	}
}

type JWTTokenGenerator struct {
	Secret   []byte
	TokenTTL time.Duration
}

// NewJWTTokenGenerator creates an HS256 generator. The default session
// lifetime is 24 hours.
func NewJWTTokenGenerator(secret string, ttl time.Duration) *JWTTokenGenerator {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &JWTTokenGenerator{
		Secret:   []byte(secret),
		TokenTTL: ttl,
	}
}

// Login validates credentials and returns a session token.
func (s *Service) Login(dto LoginDTO) (TokenResponse, error) {
	if err := dto.Validate(); err != nil {
		return TokenResponse{}, err
	}

	storedHash, userID, err := s.userRepo.GetPasswordForEmail(dto.Email)
	if err != nil {
		return TokenResponse{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(dto.Password)); err != nil {
		return TokenResponse{}, ErrInvalidCredentials
	}

	token, err := s.tokenGenerator.GenerateToken(userID)
	if err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{Token: token}, nil
}

// Register creates a principal and returns a token so the client is logged
// in immediately after signup.
func (s *Service) Register(dto RegisterDTO) (TokenResponse, error) {
	if err := dto.Validate(); err != nil {
		return TokenResponse{}, err
	}

	taken, err := s.userRepo.EmailExists(dto.Email)
	if err != nil {
		return TokenResponse{}, err
	}
	if taken {
		return TokenResponse{}, ErrEmailTaken
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		return TokenResponse{}, err
	}

	userID, err := s.userRepo.CreateUser(dto.Username, dto.Email, hash)
	if err != nil {
		return TokenResponse{}, err
	}

	token, err := s.tokenGenerator.GenerateToken(userID)
	if err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{Token: token}, nil
}

// ValidateToken validates a session token and returns its claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateToken(tokenString)
}

// GetUserByID loads the principal referenced by validated claims. The
// context bounds the lookup; callers on the hot auth path pass a timeout.
func (s *Service) GetUserByID(ctx context.Context, userID int64) (*User, error) {
	return s.userRepo.GetUserByID(ctx, userID)
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// GenerateToken creates a signed session token carrying the principal id.
func (j *JWTTokenGenerator) GenerateToken(userID int64) (string, error) {
	expiresAt := time.Now().Add(j.TokenTTL)

	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   fmt.Sprintf("%d", userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.Secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ValidateToken parses and verifies a token, mapping library failures onto
// the closed AuthError set so callers can branch exhaustively.
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	})

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrMalformedToken
		}
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrMalformedToken
}
