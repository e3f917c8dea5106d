package jwt

import (
	"context"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/hostel-arena/hms-backend-go/internal/domain/auth"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// StreamTokenTTL bounds how long a stream token may be used to open an event stream.
const StreamTokenTTL = 5 * time.Minute

type Service interface {
	JWTAuth() *jwtauth.JWTAuth
	GenerateStreamToken(claims auth.Claims) (token string, expiresIn int, err error)
	ValidateStreamToken(tokenString string) (auth.Claims, error)
}

// JWTService verifies dashboard tokens issued by the identity service, which
// shares the HS256 secret. It only mints the short-lived stream tokens.
type JWTService struct {
	tokenAuth *jwtauth.JWTAuth
	now       func() time.Time
}

func NewJWTService(secretKey string) Service {
	return &JWTService{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:       time.Now,
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// GenerateStreamToken generates a short-lived token for SSE connections
func (j *JWTService) GenerateStreamToken(claims auth.Claims) (token string, expiresIn int, err error) {
	expiresAt := j.now().Add(StreamTokenTTL).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id":     claims.UserID,
		"role":        string(claims.Role),
		"resident_id": claims.ResidentID,
		"type":        auth.TokenTypeStream,
		"exp":         expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, int(StreamTokenTTL.Seconds()), nil
}

// ValidateStreamToken validates an SSE token and returns its claims
func (j *JWTService) ValidateStreamToken(tokenString string) (auth.Claims, error) {
	token, err := j.tokenAuth.Decode(tokenString)
	if err != nil {
		return auth.Claims{}, auth.ErrInvalidToken
	}
	if err := jwt.Validate(token, jwt.WithAcceptableSkew(30*time.Second)); err != nil {
		return auth.Claims{}, auth.ErrInvalidToken
	}

	m, err := token.AsMap(context.Background())
	if err != nil {
		return auth.Claims{}, auth.ErrInvalidToken
	}

	claims := auth.ClaimsFromMap(m)
	if claims.Type != auth.TokenTypeStream || claims.UserID == "" {
		return auth.Claims{}, auth.ErrInvalidToken
	}
	return claims, nil
}
