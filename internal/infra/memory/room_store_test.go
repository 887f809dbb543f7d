package memory

import (
	"testing"

	"quiquiz-server/internal/domain"
	"quiquiz-server/internal/game"
)

func TestRoomStoreLifecycle(t *testing.T) {
	store := NewRoomStore()

	room := game.NewRoom("ABC234", "h1", "Alice", domain.DefaultSettings())
	if !store.PutIfAbsent(room) {
		t.Fatalf("expected insert to succeed")
	}
	if _, ok := store.Get("ABC234"); !ok {
		t.Fatalf("expected room present")
	}

	clash := game.NewRoom("ABC234", "h2", "Bob", domain.DefaultSettings())
	if store.PutIfAbsent(clash) {
		t.Fatalf("expected code collision to be rejected")
	}
	if got, _ := store.Get("ABC234"); got != room {
		t.Fatalf("collision must not replace the live room")
	}

	if rooms := store.Rooms(); len(rooms) != 1 {
		t.Fatalf("expected 1 live room, got %d", len(rooms))
	}

	store.Delete("ABC234")
	if _, ok := store.Get("ABC234"); ok {
		t.Fatalf("expected room removed")
	}
}
