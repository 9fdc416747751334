package jwt

import (
	"errors"
	"strconv"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var ErrInvalidClaims = errors.New("token claims are missing or invalid")

type Service interface {
	GenerateAccessToken(userID int64, role user.Role) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	issuer                    string
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, issuer string, accessTokenExpirationTime string) Service {
	opts := []jwt.ValidateOption{jwt.WithAcceptableSkew(30 * time.Second)}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &JWTService{
		issuer:                    issuer,
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, opts...),
	}
}

func (j *JWTService) GenerateAccessToken(userID int64, role user.Role) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		"user_id": strconv.FormatInt(userID, 10),
		"role":    string(role),
		"type":    "access",
		"exp":     expiresAt,
	}
	if j.issuer != "" {
		claims["iss"] = j.issuer
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// ActorFromClaims reads the authenticated user out of access token claims.
func ActorFromClaims(claims map[string]interface{}) (user.Actor, error) {
	if tokenType, _ := claims["type"].(string); tokenType != "access" {
		return user.Actor{}, ErrInvalidClaims
	}

	rawID, ok := claims["user_id"].(string)
	if !ok {
		return user.Actor{}, ErrInvalidClaims
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return user.Actor{}, ErrInvalidClaims
	}

	role, ok := claims["role"].(string)
	if !ok || !user.Role(role).Valid() {
		return user.Actor{}, ErrInvalidClaims
	}

	return user.Actor{ID: id, Role: user.Role(role)}, nil
}
