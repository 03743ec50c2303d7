// Package auth issues and validates bearer tokens and password hashes.
package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 72 * time.Hour

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are the identity details carried by a token.
type Claims struct {
	UserID   string
	UserType string
}

// Service signs and verifies HS256 tokens.
type Service struct {
	secret []byte
	issuer string
}

func NewService(secret, issuer string) *Service {
	return &Service{secret: []byte(secret), issuer: issuer}
}

// GenerateToken signs a token for the user.
func (s *Service) GenerateToken(userID, userType string) (string, error) {
	claims := jwt.MapClaims{
		"user_id":   userID,
		"user_type": userType,
		"exp":       time.Now().Add(tokenTTL).Unix(),
		"iss":       s.issuer,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseToken validates a token and extracts its claims.
func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	userID, _ := mapClaims["user_id"].(string)
	userType, _ := mapClaims["user_type"].(string)
	if userID == "" {
		return nil, ErrInvalidToken
	}
	return &Claims{UserID: userID, UserType: userType}, nil
}

// VerifyToken implements signalhub.Authenticator.
func (s *Service) VerifyToken(tokenString string) (string, error) {
	claims, err := s.ParseToken(tokenString)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// HashPassword returns the bcrypt hash of a password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
