package token

import (
	"errors"
	"time"
)

const MinSecretKeySize = 32

var (
	ErrInvalidToken = errors.New("token is invalid")
	ErrExpiredToken = errors.New("token has expired")
	ErrInvalidKey   = errors.New("secret key is too short")
)

// Maker 發行與驗證 bearer token
type Maker interface {
	CreateToken(buyerID int64, email string, role string, name string, duration time.Duration) (string, *Payload, error)
	VerifyToken(token string) (*Payload, error)
}

// Payload token 內的買家身分
type Payload struct {
	BuyerID   int64     `json:"userId"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Name      string    `json:"name"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiredAt time.Time `json:"expired_at"`
}
