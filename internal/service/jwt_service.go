package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL aplica cuando no se indica otra vigencia.
const DefaultTokenTTL = 15 * time.Minute

// JWTService emite y valida tokens JWT.
type JWTService struct {
	secret    []byte
	accessTTL time.Duration
	issuer    string
	now       func() time.Time
}

var (
	ErrJWTInvalid = errors.New("jwt invalid")
	ErrJWTExpired = fmt.Errorf("%w: expired", ErrJWTInvalid)
)

func NewJWTService(secret, issuer string, accessTTL time.Duration) *JWTService {
	if accessTTL <= 0 {
		accessTTL = DefaultTokenTTL
	}
	if strings.TrimSpace(issuer) == "" {
		issuer = "leafscan"
	}
	return &JWTService{
		secret:    []byte(secret),
		accessTTL: accessTTL,
		issuer:    issuer,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// AccessTTL devuelve la vigencia usada por signup y login.
func (s *JWTService) AccessTTL() time.Duration {
	return s.accessTTL
}

// IssueAccess firma un token con la vigencia configurada.
func (s *JWTService) IssueAccess(subject string) (string, error) {
	return s.Issue(subject, s.accessTTL)
}

// IssueDefault firma un token con DefaultTokenTTL.
func (s *JWTService) IssueDefault(subject string) (string, error) {
	return s.Issue(subject, DefaultTokenTTL)
}

// Issue firma un token para subject que expira en now+ttl.
// Un ttl <= 0 produce un token ya vencido.
func (s *JWTService) Issue(subject string, ttl time.Duration) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrJWTInvalid
	}
	if strings.TrimSpace(subject) == "" {
		return "", ErrJWTInvalid
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    s.issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate verifica firma, emisor y expiracion y devuelve el subject.
// Cualquier falla es ErrJWTInvalid; el vencimiento es ErrJWTExpired.
func (s *JWTService) Validate(tokenString string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrJWTInvalid
	}
	if strings.TrimSpace(tokenString) == "" {
		return "", ErrJWTInvalid
	}

	var claims jwt.RegisteredClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrJWTExpired
		}
		return "", ErrJWTInvalid
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", ErrJWTInvalid
	}
	return claims.Subject, nil
}
