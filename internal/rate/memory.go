package rate

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCooldowns implementa CooldownStore en memoria (single-node).
type MemoryCooldowns struct {
	c *gocache.Cache
}

// NewMemoryCooldowns crea el store en memoria.
func NewMemoryCooldowns() *MemoryCooldowns {
	return &MemoryCooldowns{c: gocache.New(gocache.NoExpiration, time.Minute)}
}

func (m *MemoryCooldowns) OnCooldown(ctx context.Context, action, uid string) (time.Duration, error) {
	_, exp, ok := m.c.GetWithExpiration(cooldownKey(action, uid))
	if !ok {
		return 0, nil
	}
	remaining := time.Until(exp)
	if remaining <= 0 {
		return 0, nil
	}
	return remaining, nil
}

func (m *MemoryCooldowns) Mark(ctx context.Context, action, uid string, ttl time.Duration) error {
	m.c.Set(cooldownKey(action, uid), struct{}{}, ttl)
	return nil
}
