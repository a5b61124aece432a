package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type claims struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// JWTMaker HS256, subject 為 email
// 金鑰由設定注入
type JWTMaker struct {
	secretKey []byte
	now       func() time.Time
}

func NewJWTMaker(secretKey string) (*JWTMaker, error) {
	if len(secretKey) < MinSecretKeySize {
		return nil, fmt.Errorf("%w: must be at least %d characters", ErrInvalidKey, MinSecretKeySize)
	}
	return &JWTMaker{secretKey: []byte(secretKey), now: time.Now}, nil
}

func (m *JWTMaker) CreateToken(buyerID int64, email string, role string, name string, duration time.Duration) (string, *Payload, error) {
	issuedAt := m.now().Truncate(time.Second)
	payload := &Payload{
		BuyerID:   buyerID,
		Email:     email,
		Role:      role,
		Name:      name,
		IssuedAt:  issuedAt,
		ExpiredAt: issuedAt.Add(duration),
	}

	c := claims{
		UserID: buyerID,
		Role:   role,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(payload.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(payload.ExpiredAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secretKey)
	if err != nil {
		return "", nil, err
	}
	return token, payload, nil
}

func (m *JWTMaker) VerifyToken(token string) (*Payload, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		return m.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.UserID <= 0 {
		return nil, ErrInvalidToken
	}

	payload := &Payload{
		BuyerID: c.UserID,
		Email:   c.Subject,
		Role:    c.Role,
		Name:    c.Name,
	}
	if c.IssuedAt != nil {
		payload.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		payload.ExpiredAt = c.ExpiresAt.Time
	}
	return payload, nil
}

var _ Maker = (*JWTMaker)(nil)
