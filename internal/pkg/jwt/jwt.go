package jwt

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var ErrEmptySecret = errors.New("jwt secret must not be empty")

type Service interface {
	GenerateAccessToken(userID string, role string) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
	now                       func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) (Service, error) {
	if secretKey == "" {
		return nil, ErrEmptySecret
	}
	if _, err := time.ParseDuration(accessTokenExpirationTime); err != nil {
		return nil, err
	}
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:                       time.Now,
	}, nil
}

// GenerateAccessToken issues a token carrying the user_id and role claims the
// payroll routes read.
func (j *JWTService) GenerateAccessToken(userID string, role string) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = j.now().Add(expDuration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"role":    role,
		"type":    "access",
		"exp":     expiresAt,
	})
	return tokenString, expiresAt, err
}
