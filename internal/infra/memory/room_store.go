package memory

import (
	"sync"

	"quiquiz-server/internal/game"
)

// RoomStore is the in-memory implementation of game.RoomStore. Codes of live
// rooms are unique by construction: inserts go through PutIfAbsent.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[string]*game.Room
}

func NewRoomStore() *RoomStore {
	return &RoomStore{rooms: make(map[string]*game.Room)}
}

func (s *RoomStore) PutIfAbsent(room *game.Room) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.rooms[room.Code()]; taken {
		return false
	}
	s.rooms[room.Code()] = room
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
	delete(s.rooms, code)
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
