package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightdesk/config"
	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client     *redis.Client
	flightsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, flightsTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		flightsTTL,
	)
}

func NewRedisCacheWithClient(client *redis.Client, flightsTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, flightsTTL: flightsTTL}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetFlights returns nil, nil on a cache miss.
func (c *RedisCache) GetFlights(ctx context.Context) ([]domain.Flight, error) {
	data, err := c.client.Get(ctx, flightsKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var flights []domain.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, err
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, flightsKey(), payload, c.flightsTTL).Err()
}

func (c *RedisCache) InvalidateFlights(ctx context.Context) error {
	return c.client.Del(ctx, flightsKey()).Err()
}

// AcquireSeatLock places a short hold on one seat. It reports false when
// someone else holds it.
func (c *RedisCache) AcquireSeatLock(ctx context.Context, flightNo, seat, owner string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, seatLockKey(flightNo, seat), owner, ttl).Result()
}

// ReleaseSeatLock drops the hold only if owner still holds it.
func (c *RedisCache) ReleaseSeatLock(ctx context.Context, flightNo, seat, owner string) error {
	return releaseScript.Run(ctx, c.client, []string{seatLockKey(flightNo, seat)}, owner).Err()
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

func (c *RedisCache) SaveSession(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	return c.client.Set(ctx, sessionKey(sessionID), userID, ttl).Err()
}

// LoadSession returns the user ID bound to the session, or "" when the
// session is unknown or expired.
func (c *RedisCache) LoadSession(ctx context.Context, sessionID string) (string, error) {
	userID, err := c.client.Get(ctx, sessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return userID, err
}

func (c *RedisCache) DeleteSession(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, sessionKey(sessionID)).Err()
}

func flightsKey() string {
	return "cache:flights"
}

func seatLockKey(flightNo, seat string) string {
	return fmt.Sprintf("lock:flight:%s:seat:%s", flightNo, seat)
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}
