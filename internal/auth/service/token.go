package service

import (
	"fmt"
	"time"

	"github.com/coursehub/backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

const accessTokenType = "access"

// TokenGenerator issues and validates signed access tokens
type TokenGenerator struct {
	secret            string
	accessTokenExpiry time.Duration
	now               func() time.Time
}

// NewTokenGenerator creates a new token generator
func NewTokenGenerator(secret string, accessExpiry time.Duration) *TokenGenerator {
	return &TokenGenerator{
		secret:            secret,
		accessTokenExpiry: accessExpiry,
		now:               time.Now,
	}
}

// GenerateAccessToken creates an HS256 access token carrying the user ID and role
func (tg *TokenGenerator) GenerateAccessToken(userID int, role models.Role) (string, error) {
	now := tg.now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    string(role),
		"exp":     now.Add(tg.accessTokenExpiry).Unix(),
		"iat":     now.Unix(),
		"type":    accessTokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(tg.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// ValidateAccessToken validates an access token and returns the requester it identifies
func (tg *TokenGenerator) ValidateAccessToken(tokenString string) (models.Requester, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tg.secret), nil
	}, jwt.WithTimeFunc(tg.now))
	if err != nil {
		return models.Requester{}, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return models.Requester{}, fmt.Errorf("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Requester{}, fmt.Errorf("invalid token claims")
	}

	if tokenType, ok := claims["type"].(string); !ok || tokenType != accessTokenType {
		return models.Requester{}, fmt.Errorf("token is not an access token")
	}

	// JWT claims decode numbers as float64
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return models.Requester{}, fmt.Errorf("user_id not found in token")
	}

	role := models.Role(fmt.Sprint(claims["role"]))
	if !role.IsValid() {
		return models.Requester{}, fmt.Errorf("role not found in token")
	}

	return models.Requester{UserID: int(userID), Role: role}, nil
}
