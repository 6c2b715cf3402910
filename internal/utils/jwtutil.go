package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"resto-system/internal/auth"
)

type Claims struct {
	UserId   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	BranchId int32  `json:"branch_id,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() (auth.Identity, error) {
	role, err := auth.ParseRole(c.Role)
	if err != nil {
		return auth.Identity{}, err
	}
	return auth.Identity{
		UserID:   c.UserId,
		Username: c.Username,
		Role:     role,
		BranchID: c.BranchId,
	}, nil
}

func GenerateToken(secret []byte, id auth.Identity, ttl time.Duration) (string, time.Time, error) {
	exp := time.Now().Add(ttl)
	claims := &Claims{
		UserId:   id.UserID,
		Username: id.Username,
		Role:     string(id.Role),
		BranchId: id.BranchID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   id.Username,
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(secret)
	return s, exp, err
}

func ParseToken(secret []byte, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
