package rate

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCooldowns(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryCooldowns()

	remaining, err := m.OnCooldown(ctx, "change_email", "u1")
	if err != nil || remaining != 0 {
		t.Fatalf("sin marca debe dar cero: remaining=%v err=%v", remaining, err)
	}

	if err := m.Mark(ctx, "change_email", "u1", time.Minute); err != nil {
		t.Fatalf("Mark: %v", err)
	}

	remaining, err = m.OnCooldown(ctx, "change_email", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if remaining <= 0 || remaining > time.Minute {
		t.Errorf("remaining fuera de rango: %v", remaining)
	}

	// Acciones y principals independientes
	if r, _ := m.OnCooldown(ctx, "send_verification", "u1"); r != 0 {
		t.Error("otra acción no debe compartir cooldown")
	}
	if r, _ := m.OnCooldown(ctx, "change_email", "u2"); r != 0 {
		t.Error("otro principal no debe compartir cooldown")
	}
}

func TestMemoryCooldownExpires(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryCooldowns()

	if err := m.Mark(ctx, "change_email", "u1", 10*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)

	if r, _ := m.OnCooldown(ctx, "change_email", "u1"); r != 0 {
		t.Errorf("cooldown vencido debe dar cero, got %v", r)
	}
}
