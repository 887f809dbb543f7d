package redis

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"quiquiz-server/internal/domain"
	"quiquiz-server/internal/game"
)

func TestRoomStoreSetsAndClearsLivenessKeys(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	store := NewRoomStore(client, time.Minute)

	room := game.NewRoom("QRST23", "h1", "Alice", domain.DefaultSettings())
	if !store.PutIfAbsent(room) {
		t.Fatalf("expected insert to succeed")
	}
	if !mr.Exists("room:live:QRST23") {
		t.Fatalf("expected liveness key after insert")
	}

	clash := game.NewRoom("QRST23", "h2", "Bob", domain.DefaultSettings())
	if store.PutIfAbsent(clash) {
		t.Fatalf("expected code collision to be rejected")
	}
	if got, _ := store.Get("QRST23"); got != room {
		t.Fatalf("collision must not replace the live room")
	}

	if rooms := store.Rooms(); len(rooms) != 1 {
		t.Fatalf("expected 1 live room, got %d", len(rooms))
	}

	store.Delete("QRST23")
	if _, ok := store.Get("QRST23"); ok {
		t.Fatalf("expected room removed")
	}
	if mr.Exists("room:live:QRST23") {
		t.Fatalf("expected liveness key cleared after delete")
	}
}
