package domain

import "errors"

var (
	// ErrRoomNotFound is returned when a room code matches no live room.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomNotJoinable is returned when joining a room that already started or finished.
	ErrRoomNotJoinable = errors.New("game already started")
	// ErrNotHost is returned when a non-host issues a host-only action.
	ErrNotHost = errors.New("only the host can do that")
	// ErrNotEnoughPlayers is returned when starting a game with fewer than two players.
	ErrNotEnoughPlayers = errors.New("at least 2 players are required")
	// ErrNameRequired is returned when a player name is empty.
	ErrNameRequired = errors.New("player name is required")
	// ErrGameNotActive is returned when an in-game action hits a room that is not playing.
	ErrGameNotActive = errors.New("game is not active")
	// ErrAlreadyAnswered is returned on a second submission for the same question.
	ErrAlreadyAnswered = errors.New("answer already submitted for this question")
	// ErrThemeNotFound indicates an unknown theme id.
	ErrThemeNotFound = errors.New("theme not found")
	// ErrNoQuestions indicates the selected themes produced an empty question draw.
	ErrNoQuestions = errors.New("no questions available for the selected themes")
)
