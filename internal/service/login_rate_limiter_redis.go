package service

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cada fallo es un miembro de un sorted set con score = unix ms; ARGV[1] = ahora, ARGV[2] = ventana.
const (
	redisLoginCountScript = `
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", tonumber(ARGV[1]) - tonumber(ARGV[2]))
return redis.call("ZCARD", KEYS[1])
`
	redisLoginFailScript = `
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", tonumber(ARGV[1]) - tonumber(ARGV[2]))
redis.call("ZADD", KEYS[1], ARGV[1], ARGV[3])
redis.call("PEXPIRE", KEYS[1], ARGV[2])
return redis.call("ZCARD", KEYS[1])
`
	redisLoginKeyPrefix = "auth:login:fail:"
)

type redisLimiterClient interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// redisLoginLimiter comparte los contadores de fallos entre instancias.
// Si Redis no responde el login no se bloquea.
type redisLoginLimiter struct {
	client  redisLimiterClient
	logger  *zap.Logger
	window  time.Duration
	max     int
	timeout time.Duration
	now     func() time.Time
}

func NewRedisLoginRateLimiter(client *redis.Client, window time.Duration, max int, logger *zap.Logger) LoginRateLimiter {
	if client == nil {
		return nil
	}
	return newRedisLoginLimiter(client, window, max, logger)
}

func newRedisLoginLimiter(client redisLimiterClient, window time.Duration, max int, logger *zap.Logger) *redisLoginLimiter {
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &redisLoginLimiter{
		client:  client,
		logger:  logger,
		window:  window,
		max:     max,
		timeout: 500 * time.Millisecond,
		now:     time.Now,
	}
}

func (l *redisLoginLimiter) Blocked(key string) bool {
	if key == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	count, err := l.client.Eval(ctx, redisLoginCountScript, []string{redisLoginKeyPrefix + key}, l.args()...).Int()
	if err != nil {
		l.logger.Warn("login limiter count failed", zap.Error(err))
		return false
	}
	return count >= l.max
}

func (l *redisLoginLimiter) Fail(key string) {
	if key == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	args := append(l.args(), uuid.NewString())
	if err := l.client.Eval(ctx, redisLoginFailScript, []string{redisLoginKeyPrefix + key}, args...).Err(); err != nil {
		l.logger.Warn("login limiter record failed", zap.Error(err))
	}
}

func (l *redisLoginLimiter) Reset(key string) {
	if key == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	if err := l.client.Del(ctx, redisLoginKeyPrefix+key).Err(); err != nil {
		l.logger.Warn("login limiter reset failed", zap.Error(err))
	}
}

func (l *redisLoginLimiter) args() []interface{} {
	return []interface{}{
		strconv.FormatInt(l.now().UnixMilli(), 10),
		strconv.FormatInt(l.window.Milliseconds(), 10),
	}
}
