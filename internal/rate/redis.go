package rate

import (
	"context"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

// RedisCooldowns implementa CooldownStore sobre Redis, para despliegues
// con más de una réplica del servicio.
type RedisCooldowns struct {
	client *rdb.Client
	prefix string
}

// NewRedisCooldowns crea el store con el prefijo de keys dado.
func NewRedisCooldowns(client *rdb.Client, prefix string) *RedisCooldowns {
	if prefix == "" {
		prefix = "ajustes"
	}
	return &RedisCooldowns{client: client, prefix: prefix}
}

func (r *RedisCooldowns) key(action, uid string) string {
	return r.prefix + ":" + cooldownKey(action, uid)
}

func (r *RedisCooldowns) OnCooldown(ctx context.Context, action, uid string) (time.Duration, error) {
	ttl, err := r.client.PTTL(ctx, r.key(action, uid)).Result()
	if err != nil {
		return 0, err
	}
	// PTTL retorna negativo si la key no existe o no tiene expiración
	if ttl <= 0 {
		return 0, nil
	}
	return ttl, nil
}

func (r *RedisCooldowns) Mark(ctx context.Context, action, uid string, ttl time.Duration) error {
	return r.client.Set(ctx, r.key(action, uid), 1, ttl).Err()
}
