package service

import (
	"context"
	"strings"
	"sync"
	"time"
)

// LoginRateLimiter cuenta logins fallidos por clave (email + IP del cliente).
// Un login correcto no suma y limpia el contador de su clave.
type LoginRateLimiter interface {
	Blocked(key string) bool
	Fail(key string)
	Reset(key string)
}

type clientIPKey struct{}

// WithClientIP agrega la IP del cliente al contexto para separar contadores.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, strings.TrimSpace(ip))
}

func clientIPFrom(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}

// loginLimiterKey separa por IP: los fallos de un atacante no bloquean al
// dueño de la cuenta desde otra direccion.
func loginLimiterKey(ctx context.Context, email string) string {
	key := strings.ToLower(email)
	if ip := clientIPFrom(ctx); ip != "" {
		key += "|" + ip
	}
	return key
}

// memoryLoginLimiter guarda los fallos recientes por clave en una ventana deslizante.
// Las claves sin fallos vigentes se borran; un barrido por ventana limpia las que
// nadie volvio a consultar.
type memoryLoginLimiter struct {
	mu        sync.Mutex
	window    time.Duration
	max       int
	failures  map[string][]time.Time
	lastSweep time.Time
	now       func() time.Time
}

// NewLoginRateLimiter crea el limitador en memoria: max fallos por ventana.
func NewLoginRateLimiter(window time.Duration, max int) LoginRateLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &memoryLoginLimiter{
		window:   window,
		max:      max,
		failures: make(map[string][]time.Time),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (l *memoryLoginLimiter) Blocked(key string) bool {
	if key == "" {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.sweepLocked(now)
	return len(l.recentLocked(key, now)) >= l.max
}

func (l *memoryLoginLimiter) Fail(key string) {
	if key == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.sweepLocked(now)
	l.failures[key] = append(l.recentLocked(key, now), now)
}

func (l *memoryLoginLimiter) Reset(key string) {
	l.mu.Lock()
	delete(l.failures, key)
	l.mu.Unlock()
}

// recentLocked descarta los fallos fuera de la ventana y borra la clave si no queda ninguno.
func (l *memoryLoginLimiter) recentLocked(key string, now time.Time) []time.Time {
	entries, ok := l.failures[key]
	if !ok {
		return nil
	}
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(entries) && !entries[i].After(cutoff) {
		i++
	}
	if i == len(entries) {
		delete(l.failures, key)
		return nil
	}
	entries = entries[i:]
	l.failures[key] = entries
	return entries
}

func (l *memoryLoginLimiter) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now
	for key := range l.failures {
		l.recentLocked(key, now)
	}
}
