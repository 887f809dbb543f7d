package redis

import (
	"context"
	"sync"
	"time"

	"quiquiz-server/internal/game"
	"github.com/redis/go-redis/v9"
)

// RoomStore is a Redis-aware implementation of game.RoomStore.
// Notes:
//   - Room state itself stays in the local map; timers and per-room mutexes
//     cannot move to Redis, and cross-instance rooms are a non-goal.
//   - Redis holds liveness markers, so dashboards and sibling services can see
//     which codes are in play.
type RoomStore struct {
	client *redis.Client
	ttl    time.Duration

	mu    sync.RWMutex
	rooms map[string]*game.Room
}

func NewRoomStore(client *redis.Client, ttl time.Duration) *RoomStore {
	return &RoomStore{
		client: client,
		ttl:    ttl,
		rooms:  make(map[string]*game.Room),
	}
}

func (s *RoomStore) PutIfAbsent(room *game.Room) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.rooms[room.Code()]; taken {
		return false
	}
	s.rooms[room.Code()] = room
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(room.Code()), "1", s.ttl).Err()
	return true
}

func (s *RoomStore) Get(code string) (*game.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[code]
	return room, ok
}

func (s *RoomStore) Delete(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[code]; !ok {
		return
	}
	delete(s.rooms, code)
	_ = s.client.Del(context.Background(), s.key(code)).Err()
}

func (s *RoomStore) Rooms() []*game.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rooms := make([]*game.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

func (s *RoomStore) key(code string) string {
	return "room:live:" + code
}
