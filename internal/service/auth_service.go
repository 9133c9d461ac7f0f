package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"leafscan/internal/domain"
)

// TokenTypeBearer es el token_type que esperan los clientes.
const TokenTypeBearer = "bearer"

// ErrUnauthenticated cubre token ausente, invalido, vencido o de un usuario borrado.
var ErrUnauthenticated = errors.New("unauthenticated")

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// AuthService une almacen de credenciales y tokens en signup, login y me.
type AuthService struct {
	logger *zap.Logger
	users  *UserService
	tokens *JWTService
}

func NewAuthService(logger *zap.Logger, users *UserService, tokens *JWTService) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		logger: logger,
		users:  users,
		tokens: tokens,
	}
}

// Signup crea el usuario y devuelve un token para el.
func (s *AuthService) Signup(ctx context.Context, email, password string) (TokenResponse, error) {
	user, err := s.users.CreateUser(ctx, email, password)
	if err != nil {
		return TokenResponse{}, err
	}
	return s.issue(user.ID)
}

// Login verifica credenciales y devuelve un token.
func (s *AuthService) Login(ctx context.Context, email, password string) (TokenResponse, error) {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return TokenResponse{}, err
	}
	return s.issue(user.ID)
}

// Authorize valida el token sin consultar el almacen.
func (s *AuthService) Authorize(token string) (string, error) {
	subject, err := s.tokens.Validate(token)
	if err != nil {
		s.logger.Debug("token rejected", zap.Error(err))
		return "", ErrUnauthenticated
	}
	return subject, nil
}

// CurrentUser resuelve el usuario dueño del token.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (domain.PublicUser, error) {
	subject, err := s.Authorize(token)
	if err != nil {
		return domain.PublicUser{}, err
	}
	user, err := s.users.GetUser(ctx, subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return domain.PublicUser{}, ErrUnauthenticated
		}
		return domain.PublicUser{}, err
	}
	return user, nil
}

func (s *AuthService) issue(userID string) (TokenResponse, error) {
	token, err := s.tokens.IssueAccess(userID)
	if err != nil {
		return TokenResponse{}, fmt.Errorf("issue token: %w", err)
	}
	return TokenResponse{AccessToken: token, TokenType: TokenTypeBearer}, nil
}
