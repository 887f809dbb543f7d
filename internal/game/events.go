package game

import "quiquiz-server/internal/domain"

// Notifier delivers outbound events to connected players. The transport layer
// implements it; the coordinator never touches a socket directly.
type Notifier interface {
	// ToPlayer sends an event to a single connection.
	ToPlayer(playerID, event string, payload any)
	// ToRoom broadcasts an event to every member of a room.
	ToRoom(roomCode, event string, payload any)
}

// Outbound event names.
const (
	EventRoomCreated     = "roomCreated"
	EventRoomJoined      = "roomJoined"
	EventPlayerJoined    = "playerJoined"
	EventSettingsUpdated = "settingsUpdated"
	EventGameStarting    = "gameStarting"
	EventNewQuestion     = "newQuestion"
	EventTimerTick       = "timerTick"
	EventAnswerResult    = "answerResult"
	EventPlayerAnswered  = "playerAnswered"
	EventQuestionEnded   = "questionEnded"
	EventGameEnded       = "gameEnded"
	EventPlayerLeft      = "playerLeft"
	EventHostChanged     = "hostChanged"
)

type RoomCreatedPayload struct {
	RoomCode string `json:"roomCode"`
}

type RoomJoinedPayload struct {
	RoomCode string                 `json:"roomCode"`
	Settings domain.Settings        `json:"settings"`
	Players  []domain.PlayerSummary `json:"players"`
	IsHost   bool                   `json:"isHost"`
}

type PlayerJoinedPayload struct {
	Player  domain.PlayerSummary   `json:"player"`
	Players []domain.PlayerSummary `json:"players"`
}

type SettingsUpdatedPayload struct {
	Settings domain.Settings `json:"settings"`
}

type GameStartingPayload struct {
	Countdown int `json:"countdown"`
}

type NewQuestionPayload struct {
	Index     int    `json:"index"`
	Total     int    `json:"total"`
	Question  string `json:"question"`
	TimeLimit int    `json:"timeLimit"`
}

type TimerTickPayload struct {
	TimeLeft int `json:"timeLeft"`
}

type AnswerResultPayload struct {
	IsCorrect     bool   `json:"isCorrect"`
	Points        int    `json:"points"`
	TotalScore    int    `json:"totalScore"`
	CorrectAnswer string `json:"correctAnswer"`
}

type PlayerAnsweredPayload struct {
	PlayerID      string `json:"playerId"`
	PlayerName    string `json:"playerName"`
	AnsweredCount int    `json:"answeredCount"`
	TotalPlayers  int    `json:"totalPlayers"`
}

type QuestionEndedPayload struct {
	CorrectAnswer string                `json:"correctAnswer"`
	Rankings      []domain.RankingEntry `json:"rankings"`
}

type GameEndedPayload struct {
	FinalRankings []domain.RankingEntry          `json:"finalRankings"`
	AllAnswers    map[string]domain.PlayerReport `json:"allAnswers"`
}

type PlayerLeftPayload struct {
	PlayerID   string                 `json:"playerId"`
	PlayerName string                 `json:"playerName"`
	Players    []domain.PlayerSummary `json:"players"`
}

type HostChangedPayload struct {
	NewHostID   string `json:"newHostId"`
	NewHostName string `json:"newHostName"`
}
