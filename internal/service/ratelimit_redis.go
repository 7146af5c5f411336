package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisAdmitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("TTL", KEYS[1])
return {current, ttl}
`

// redisRateLimiter es la variante distribuida del gate de admisión, con una
// clave por sesión. Se usa cuando el API corre con más de una réplica; la
// ventana es de expiración fija, no deslizante, pero respeta el mismo
// contrato de admisión.
type redisRateLimiter struct {
	client redisEvaler
	window time.Duration
	max    int
	key    string
}

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

func NewRedisRateLimiter(client *redis.Client, window time.Duration, max int, sessionID string) Admitter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisRateLimiter{
		client: client,
		window: window,
		max:    max,
		key:    "chat:rl:" + strings.TrimSpace(sessionID),
	}
}

func (l *redisRateLimiter) TryAdmit(now time.Time) AdmissionResult {
	if l == nil || l.client == nil {
		return AdmissionResult{Admitted: true}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	seconds := int(l.window.Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	vals, err := l.client.Eval(ctx, redisAdmitScript, []string{l.key}, seconds).Int64Slice()
	if err != nil || len(vals) != 2 {
		// Fail-open: un redis caído no debe dejar mudo al widget.
		return AdmissionResult{Admitted: true}
	}
	count, ttl := vals[0], vals[1]
	if count <= int64(l.max) {
		return AdmissionResult{Admitted: true}
	}
	retry := int(ttl)
	if retry < 1 {
		retry = 1
	}
	return AdmissionResult{RetryAfterSeconds: retry}
}
