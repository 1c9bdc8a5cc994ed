package rollback

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dropDatabas3/ajustes/internal/domain/repository"
	"github.com/dropDatabas3/ajustes/internal/storage"
)

func entry(token string, expiresAt time.Time) *Entry {
	return &Entry{
		Token:       token,
		UID:         "u1",
		PreviousDoc: &repository.SettingsDocument{UID: "u1"},
		CreatedAt:   time.Now(),
		ExpiresAt:   expiresAt,
	}
}

func TestMemoryPutGetConsume(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	e := entry("tok-1", time.Now().Add(5*time.Minute))
	if err := s.Put(ctx, e); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, "tok-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.UID != "u1" {
		t.Errorf("UID = %q", got.UID)
	}

	if _, err := s.Consume(ctx, "tok-1"); err != nil {
		t.Fatalf("Consume: %v", err)
	}

	// Segundo consumo pierde
	if _, err := s.Consume(ctx, "tok-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("segundo Consume = %v, want ErrNotFound", err)
	}
	if _, err := s.Get(ctx, "tok-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get tras consumo = %v, want ErrNotFound", err)
	}
}

func TestMemoryConsumeSingleWinner(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.Put(ctx, entry("tok-race", time.Now().Add(time.Minute)))

	const callers = 16
	var wins int32
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			if _, err := s.Consume(ctx, "tok-race"); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("ganadores = %d, want 1", wins)
	}
}

func TestMemorySweepExpired(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	now := time.Now()
	_ = s.Put(ctx, entry("vivo", now.Add(5*time.Minute)))

	vencido := entry("vencido", now.Add(-time.Second))
	vencido.OnExpire = []Compensation{DeleteObject("avatars/u1/old.webp")}
	_ = s.Put(ctx, vencido)

	var seen []*Entry
	n, err := s.SweepExpired(ctx, func(_ context.Context, e *Entry) {
		seen = append(seen, e)
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || len(seen) != 1 || seen[0].Token != "vencido" {
		t.Fatalf("sweep barrió %d, seen=%v", n, seen)
	}

	// El vivo sigue; el vencido ya no
	if _, err := s.Get(ctx, "vivo"); err != nil {
		t.Error("entrada viva barrida")
	}
	if _, err := s.Get(ctx, "vencido"); !errors.Is(err, ErrNotFound) {
		t.Error("entrada vencida sigue presente")
	}
}

func TestSweeperRunsExpireCompensations(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	bucket := storage.NewMemory("http://cdn.test")

	// El avatar viejo quedó obsoleto cuando venció la ventana
	_, _ = bucket.Put(ctx, "avatars/u1/a.webp", "image/webp", strings.NewReader("a"))

	e := entry("tok-exp", time.Now().Add(-time.Second))
	e.OnExpire = []Compensation{DeleteObject("avatars/u1/a.webp")}
	_ = s.Put(ctx, e)

	sw := NewSweeper(s, NewCompensator(bucket), time.Minute)
	n, err := sw.SweepOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("swept = %d", n)
	}
	if bucket.Has("avatars/u1/a.webp") {
		t.Error("el objeto obsoleto no fue borrado al expirar")
	}
}

func TestCompensatorContinuesOnFailure(t *testing.T) {
	ctx := context.Background()
	bucket := storage.NewMemory("http://cdn.test")
	_, _ = bucket.Put(ctx, "avatars/u1/b.webp", "image/webp", strings.NewReader("b"))

	comp := NewCompensator(bucket)
	err := comp.Run(ctx, []Compensation{
		{Kind: "desconocido"},
		DeleteObject("avatars/u1/b.webp"),
	})
	if err == nil {
		t.Error("la compensación desconocida debe reportar error")
	}
	if bucket.Has("avatars/u1/b.webp") {
		t.Error("el fallo previo no debe impedir las compensaciones siguientes")
	}
}
