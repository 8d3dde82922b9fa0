package providers

import (
	"slices"
	"testing"
	"time"
)

func TestRegistry_InOrder(t *testing.T) {
	m := NewModrinth(time.Second, nil)
	s := NewSpiget(time.Second, nil)
	r := NewRegistry(m, s)

	ps, unknown := r.InOrder([]string{"spiget", "curse", "Modrinth"})
	if len(ps) != 2 {
		t.Fatalf("got %d providers, want 2", len(ps))
	}
	if ps[0].Name() != "spiget" || ps[1].Name() != "modrinth" {
		t.Errorf("order = [%s, %s], want [spiget, modrinth]", ps[0].Name(), ps[1].Name())
	}
	if !slices.Equal(unknown, []string{"curse"}) {
		t.Errorf("unknown = %v, want [curse]", unknown)
	}
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry(NewModrinth(time.Second, nil))

	if _, ok := r.Get(" MODRINTH "); !ok {
		t.Error("Get should be case-insensitive and trim whitespace")
	}
	if _, ok := r.Get("spiget"); ok {
		t.Error("Get should miss unregistered providers")
	}
}

func TestDefaultFileName(t *testing.T) {
	if got := defaultFileName("Vault"); got != "Vault.jar" {
		t.Errorf("defaultFileName = %q", got)
	}
}
