package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

const tokenIssuer = "hrpanel-api"

type JWTService struct {
	secret []byte
}

// Claims carry a snapshot of the admin flag at issuance. Authorization must
// use the live account, not IsAdmin.
type Claims struct {
	AccountID uuid.UUID `json:"account_id"`
	IsAdmin   bool      `json:"is_admin"`
	jwt.RegisteredClaims
}

func NewJWTService(secret string) *JWTService {
	return &JWTService{secret: []byte(secret)}
}

// GenerateToken signs a session token. Tokens carry no expiry.
func (s *JWTService) GenerateToken(accountID uuid.UUID, isAdmin bool) (string, error) {
	claims := Claims{
		AccountID: accountID,
		IsAdmin:   isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
			Issuer:   tokenIssuer,
			Subject:  accountID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.AccountID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing account id", ErrInvalidToken)
	}

	return claims, nil
}
