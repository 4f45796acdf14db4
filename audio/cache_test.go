package audio

import (
	"errors"
	"testing"
)

// TestRenderCacheReuse verifies buffers are synthesized once per name and rate
func TestRenderCacheReuse(t *testing.T) {
	c := newRenderCache()
	r := DefaultCatalog().Lookup("Calm Ding")

	a, err := c.get(r, 44100)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := c.get(r, 44100)
	if a != b {
		t.Error("Expected cached buffer to be reused")
	}

	d, _ := c.get(r, 48000)
	if d == a {
		t.Error("Expected a separate buffer per sample rate")
	}
	if c.count() != 2 {
		t.Errorf("Expected 2 entries, got %d", c.count())
	}

	c.reset()
	if c.count() != 0 {
		t.Errorf("Expected empty cache after reset, got %d", c.count())
	}
}

// TestRenderCacheInvalid verifies invalid recipes are not cached
func TestRenderCacheInvalid(t *testing.T) {
	c := newRenderCache()
	if _, err := c.get(Recipe{Name: "broken"}, 44100); !errors.Is(err, ErrInvalidRecipe) {
		t.Errorf("Expected ErrInvalidRecipe, got %v", err)
	}
	if c.count() != 0 {
		t.Errorf("Expected nothing cached, got %d", c.count())
	}
}

// TestRenderCachePreload verifies the whole catalog is synthesized
func TestRenderCachePreload(t *testing.T) {
	c := newRenderCache()
	c.preload(DefaultCatalog(), 22050)
	if got, want := c.count(), len(DefaultCatalog().Names()); got != want {
		t.Errorf("Expected %d entries, got %d", want, got)
	}
}
