package rollback

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

// expiryGrace es cuánto tiempo extra vive la key después de ExpiresAt, para
// que el consumo tardío pueda distinguir "vencido" de "inexistente" y correr
// las compensaciones de expiración si el sweep aún no pasó.
const expiryGrace = 10 * time.Minute

// RedisStore implementa Store sobre Redis, para despliegues con más de una
// réplica. Un ZSET indexa los tokens por fecha de expiración; la elección de
// ganador entre réplicas la resuelve DEL, que es atómico.
type RedisStore struct {
	client *rdb.Client
	prefix string
}

// NewRedisStore crea el store con el prefijo de keys dado.
func NewRedisStore(client *rdb.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ajustes"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(token string) string { return s.prefix + ":rollback:" + token }
func (s *RedisStore) indexKey() string        { return s.prefix + ":rollback:expiry" }

func (s *RedisStore) Put(ctx context.Context, e *Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	ttl := time.Until(e.ExpiresAt) + expiryGrace

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(e.Token), data, ttl)
	pipe.ZAdd(ctx, s.indexKey(), rdb.Z{
		Score:  float64(e.ExpiresAt.Unix()),
		Member: e.Token,
	})
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Get(ctx context.Context, token string) (*Entry, error) {
	data, err := s.client.Get(ctx, s.key(token)).Bytes()
	if errors.Is(err, rdb.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *RedisStore) Consume(ctx context.Context, token string) (*Entry, error) {
	e, err := s.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	// DEL atómico decide el ganador: si otro proceso borró la key entre el
	// GET y acá, deleted es 0 y perdimos la carrera.
	deleted, err := s.client.Del(ctx, s.key(token)).Result()
	if err != nil {
		return nil, err
	}
	s.client.ZRem(ctx, s.indexKey(), token)
	if deleted == 0 {
		return nil, ErrNotFound
	}
	return e, nil
}

func (s *RedisStore) SweepExpired(ctx context.Context, fn func(context.Context, *Entry)) (int, error) {
	now := time.Now().Unix()
	tokens, err := s.client.ZRangeByScore(ctx, s.indexKey(), &rdb.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now, 10),
	}).Result()
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, token := range tokens {
		e, err := s.Consume(ctx, token)
		if errors.Is(err, ErrNotFound) {
			// Otra réplica lo ganó, o la key venció su grace: solo limpiar el índice
			s.client.ZRem(ctx, s.indexKey(), token)
			continue
		}
		if err != nil {
			return swept, err
		}
		if fn != nil {
			fn(ctx, e)
		}
		swept++
	}
	return swept, nil
}
