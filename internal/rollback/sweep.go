package rollback

import (
	"context"
	"time"

	"github.com/dropDatabas3/ajustes/internal/observability/logger"
)

// Sweeper corre el barrido periódico de tokens vencidos y ejecuta sus
// compensaciones de expiración.
type Sweeper struct {
	store Store
	comp  *Compensator
	every time.Duration

	// OnSwept se invoca con la cantidad barrida en cada pasada (métricas).
	OnSwept func(n int)
}

// NewSweeper crea el sweeper. every define el intervalo entre pasadas.
func NewSweeper(store Store, comp *Compensator, every time.Duration) *Sweeper {
	if every <= 0 {
		every = time.Minute
	}
	return &Sweeper{store: store, comp: comp, every: every}
}

// Run bloquea ejecutando pasadas hasta que el contexto se cancele.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.every)
	defer ticker.Stop()

	log := logger.L().With(logger.Component("rollback.Sweeper"))
	log.Info("sweeper started", logger.Duration(s.every))

	for {
		select {
		case <-ctx.Done():
			log.Info("sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			n, err := s.SweepOnce(ctx)
			if err != nil {
				log.Warn("sweep failed", logger.Err(err))
				continue
			}
			if n > 0 {
				log.Debug("sweep completed", logger.Count(n))
			}
			if s.OnSwept != nil {
				s.OnSwept(n)
			}
		}
	}
}

// SweepOnce ejecuta una pasada (expuesto para tests y tooling).
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	return s.store.SweepExpired(ctx, s.expire)
}

// expire corre las compensaciones de expiración de una entrada ganada.
func (s *Sweeper) expire(ctx context.Context, e *Entry) {
	if len(e.OnExpire) == 0 {
		return
	}
	_ = s.comp.Run(ctx, e.OnExpire)
}
