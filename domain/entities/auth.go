package entities

import "github.com/golang-jwt/jwt/v5"

// Claims are the bearer token contents
type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}
