package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"leafscan/internal/domain"
	"leafscan/internal/repository"
)

// UserService es el almacen de credenciales: alta, autenticacion y lectura.
type UserService struct {
	logger  *zap.Logger
	users   repository.UserRepository
	hasher  PasswordHasher
	limiter LoginRateLimiter

	dummyOnce   sync.Once
	dummySalt   string
	dummyDigest string
}

// NewUserService arma el servicio; limiter puede ser nil.
func NewUserService(logger *zap.Logger, users repository.UserRepository, hasher PasswordHasher, limiter LoginRateLimiter) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if hasher == nil {
		hasher = NewArgon2Hasher(DefaultArgon2Params())
	}
	return &UserService{
		logger:  logger,
		users:   users,
		hasher:  hasher,
		limiter: limiter,
	}
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrRateLimited        = errors.New("rate limited")
)

// CreateUser guarda un usuario nuevo con su hash y sal.
// Un email repetido se detecta por la restriccion unica del almacenamiento.
func (s *UserService) CreateUser(ctx context.Context, email, password string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	email = normalizeEmail(email)
	if !looksLikeEmail(email) {
		return domain.User{}, ErrInvalidEmail
	}
	if password == "" {
		return domain.User{}, ErrInvalidPassword
	}

	digest, salt, err := s.hasher.Hash(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: digest,
		Salt:         salt,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.User{}, ErrDuplicateEmail
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate devuelve el usuario si email y password coinciden.
// Email desconocido, fila sin sal o password incorrecto dan ErrInvalidCredentials
// con el mismo costo. Solo los fallos cuentan para el limitador.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	key := loginLimiterKey(ctx, email)
	if s.limiter != nil && s.limiter.Blocked(key) {
		return domain.User{}, ErrRateLimited
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.burnVerify(password)
			return domain.User{}, s.loginFailed(key)
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}
	if user.Salt == "" {
		s.logger.Warn("login rejected for legacy unsalted record", zap.String("user_id", user.ID))
		s.burnVerify(password)
		return domain.User{}, s.loginFailed(key)
	}
	if !s.hasher.Verify(password, user.Salt, user.PasswordHash) {
		// Un digest SHA-256 heredado falla en microsegundos; se iguala con argon2.
		if !isArgon2Digest(user.PasswordHash) {
			s.burnVerify(password)
		}
		return domain.User{}, s.loginFailed(key)
	}
	if s.limiter != nil {
		s.limiter.Reset(key)
	}
	return user, nil
}

func (s *UserService) loginFailed(key string) error {
	if s.limiter != nil {
		s.limiter.Fail(key)
	}
	return ErrInvalidCredentials
}

// GetUser devuelve la proyeccion publica del usuario.
func (s *UserService) GetUser(ctx context.Context, id string) (domain.PublicUser, error) {
	if s.users == nil {
		return domain.PublicUser{}, errors.New("user service not configured")
	}
	if strings.TrimSpace(id) == "" {
		return domain.PublicUser{}, ErrUserNotFound
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.PublicUser{}, ErrUserNotFound
		}
		return domain.PublicUser{}, fmt.Errorf("get user: %w", err)
	}
	return user.Public(), nil
}

// burnVerify gasta lo mismo que una verificacion real para que un email
// desconocido no se distinga por tiempo de respuesta.
func (s *UserService) burnVerify(password string) {
	s.dummyOnce.Do(func() {
		digest, salt, err := s.hasher.Hash(uuid.NewString())
		if err != nil {
			s.logger.Warn("dummy hash failed", zap.Error(err))
			return
		}
		s.dummyDigest, s.dummySalt = digest, salt
	})
	if s.dummySalt != "" {
		_ = s.hasher.Verify(password, s.dummySalt, s.dummyDigest)
	}
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

func looksLikeEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\r\n")
}
