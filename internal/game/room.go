package game

import (
	"sync"
	"time"

	"quiquiz-server/internal/domain"
	"quiquiz-server/internal/match"
)

// Room is one isolated game instance. All state transitions happen under the
// room mutex, which stands in for the per-room serialization the coordinator
// relies on: no two actions for the same room interleave mid-transition.
type Room struct {
	code string

	mu       sync.Mutex
	hostID   string
	status   domain.RoomStatus
	settings domain.Settings
	players  map[string]*domain.Player
	order    []string // join order, drives host succession

	questions     []domain.Question
	currentIndex  int
	questionStart time.Time
	answered      map[string]struct{}
	settled       bool
	cancelTimer   func() // at most one active timer handle per room
}

// NewRoom creates a waiting room with the creator as host and first player.
func NewRoom(code, hostID, hostName string, settings domain.Settings) *Room {
	r := &Room{
		code:     code,
		hostID:   hostID,
		status:   domain.StatusWaiting,
		settings: settings,
		players:  make(map[string]*domain.Player),
		answered: make(map[string]struct{}),
	}
	r.players[hostID] = &domain.Player{ID: hostID, Name: hostName, IsHost: true}
	r.order = append(r.order, hostID)
	return r
}

// Code returns the immutable room code.
func (r *Room) Code() string {
	return r.code
}

// Status returns the current lifecycle status.
func (r *Room) Status() domain.RoomStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// HasPlayer reports whether the connection is a member of this room.
func (r *Room) HasPlayer(playerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.players[playerID]
	return ok
}

// Info returns the stateless lookup view of the room.
func (r *Room) Info() domain.RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	settings := r.settings
	return domain.RoomInfo{
		Exists:      true,
		Status:      r.status,
		PlayerCount: len(r.players),
		Settings:    &settings,
	}
}

// AddPlayer registers a joiner and returns the updated roster. Joining is only
// possible while the room is waiting.
func (r *Room) AddPlayer(playerID, name string) ([]domain.PlayerSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != domain.StatusWaiting {
		return nil, domain.ErrRoomNotJoinable
	}
	r.players[playerID] = &domain.Player{ID: playerID, Name: name}
	r.order = append(r.order, playerID)
	return r.rosterLocked(), nil
}

// RemovePlayer drops a player and applies host succession: the earliest
// remaining joiner inherits the host role. The returned newHost is nil unless
// the host changed; empty reports that the room has no players left (its
// active timer, if any, has been cancelled).
func (r *Room) RemovePlayer(playerID string) (left *domain.Player, newHost *domain.Player, roster []domain.PlayerSummary, empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	player, ok := r.players[playerID]
	if !ok {
		return nil, nil, nil, false
	}
	delete(r.players, playerID)
	delete(r.answered, playerID)
	for i, id := range r.order {
		if id == playerID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	if len(r.players) == 0 {
		r.clearTimerLocked()
		return player, nil, nil, true
	}

	if player.IsHost {
		successor := r.players[r.order[0]]
		successor.IsHost = true
		r.hostID = successor.ID
		newHost = successor
	}
	return player, newHost, r.rosterLocked(), false
}

// UpdateSettings applies a partial settings update. Host only, waiting only.
func (r *Room) UpdateSettings(playerID string, patch domain.SettingsPatch) (domain.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hostID != playerID {
		return domain.Settings{}, domain.ErrNotHost
	}
	if r.status != domain.StatusWaiting {
		return domain.Settings{}, domain.ErrRoomNotJoinable
	}
	r.settings = patch.Apply(r.settings)
	return r.settings, nil
}

// Settings returns a copy of the current settings.
func (r *Room) Settings() domain.Settings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings
}

// CanStart validates the start-game preconditions without transitioning.
func (r *Room) CanStart(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.canStartLocked(playerID)
}

func (r *Room) canStartLocked(playerID string) error {
	if r.hostID != playerID {
		return domain.ErrNotHost
	}
	if r.status != domain.StatusWaiting {
		return domain.ErrRoomNotJoinable
	}
	if len(r.players) < 2 {
		return domain.ErrNotEnoughPlayers
	}
	return nil
}

// BeginGame transitions waiting → playing with the drawn question list and
// resets every player's score and answer log.
func (r *Room) BeginGame(playerID string, questions []domain.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.canStartLocked(playerID); err != nil {
		return err
	}
	if len(questions) == 0 {
		return domain.ErrNoQuestions
	}
	r.status = domain.StatusPlaying
	r.questions = questions
	r.currentIndex = 0
	for _, p := range r.players {
		p.Score = 0
		p.Answers = nil
	}
	return nil
}

// StartQuestion arms the current question: records its start time and clears
// the answered set. ok is false when the room is no longer playing.
func (r *Room) StartQuestion(now time.Time) (q domain.Question, index, total, timeLimit int, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != domain.StatusPlaying || r.currentIndex >= len(r.questions) {
		return domain.Question{}, 0, 0, 0, false
	}
	r.questionStart = now
	r.answered = make(map[string]struct{})
	r.settled = false
	return r.questions[r.currentIndex], r.currentIndex, len(r.questions), r.settings.TimePerQuestion, true
}

// SubmitResult is the outcome of an accepted answer.
type SubmitResult struct {
	Record        domain.AnswerRecord
	TotalScore    int
	PlayerName    string
	AnsweredCount int
	TotalPlayers  int
	AllAnswered   bool
}

// Submit records a player's answer for the current question. The duplicate
// check and the set insert happen under the same lock so concurrent
// submissions for one room cannot interleave between them.
func (r *Room) Submit(playerID, answer string, now time.Time) (SubmitResult, domain.SubmitOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != domain.StatusPlaying || r.settled || r.currentIndex >= len(r.questions) {
		return SubmitResult{}, domain.SubmitRejectedInvalidState
	}
	player, ok := r.players[playerID]
	if !ok {
		return SubmitResult{}, domain.SubmitRejectedInvalidState
	}
	if _, dup := r.answered[playerID]; dup {
		return SubmitResult{}, domain.SubmitRejectedDuplicate
	}
	r.answered[playerID] = struct{}{}

	question := r.questions[r.currentIndex]
	timeLimitMs := int64(r.settings.TimePerQuestion) * 1000
	responseTime := now.Sub(r.questionStart).Milliseconds()
	correct := match.IsCorrect(answer, question.Answer)
	points := Points(correct, responseTime, timeLimitMs)

	record := domain.AnswerRecord{
		QuestionIndex:  r.currentIndex,
		Question:       question.Prompt,
		UserAnswer:     answer,
		CorrectAnswer:  question.Answer,
		IsCorrect:      correct,
		Points:         points,
		ResponseTimeMs: responseTime,
	}
	player.Score += points
	player.Answers = append(player.Answers, record)

	return SubmitResult{
		Record:        record,
		TotalScore:    player.Score,
		PlayerName:    player.Name,
		AnsweredCount: len(r.answered),
		TotalPlayers:  len(r.players),
		AllAnswered:   len(r.answered) >= len(r.players),
	}, domain.SubmitAccepted
}

// SettleResult is what the scheduler broadcasts when a question ends.
type SettleResult struct {
	CorrectAnswer string
	Rankings      []domain.RankingEntry
	Finished      bool
}

// Settle closes the current question exactly once: the settled flag is
// checked and set under the lock, so the deadline path and the all-answered
// path cannot both get through. Players who never answered receive a
// synthetic zero-point record.
func (r *Room) Settle() (SettleResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != domain.StatusPlaying || r.settled || r.currentIndex >= len(r.questions) {
		return SettleResult{}, false
	}
	r.settled = true
	r.clearTimerLocked()

	question := r.questions[r.currentIndex]
	for id, p := range r.players {
		if _, answered := r.answered[id]; answered {
			continue
		}
		p.Answers = append(p.Answers, domain.AnswerRecord{
			QuestionIndex:  r.currentIndex,
			Question:       question.Prompt,
			UserAnswer:     "(no answer)",
			CorrectAnswer:  question.Answer,
			ResponseTimeMs: int64(r.settings.TimePerQuestion) * 1000,
		})
	}

	result := SettleResult{
		CorrectAnswer: question.Answer,
		Rankings:      r.rankingsLocked(),
	}
	r.currentIndex++
	result.Finished = r.currentIndex >= len(r.questions)
	return result, true
}

// FinalResult carries the end-of-game standings and per-player answer logs.
type FinalResult struct {
	Rankings []domain.RankingEntry
	Reports  map[string]domain.PlayerReport
}

// FinishGame transitions playing → finished and assembles the final report.
func (r *Room) FinishGame() (FinalResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != domain.StatusPlaying {
		return FinalResult{}, false
	}
	r.status = domain.StatusFinished

	reports := make(map[string]domain.PlayerReport, len(r.players))
	for id, p := range r.players {
		reports[id] = domain.PlayerReport{
			PlayerName: p.Name,
			Answers:    p.Answers,
			TotalScore: p.Score,
		}
	}
	return FinalResult{Rankings: r.rankingsLocked(), Reports: reports}, true
}

// SetTimer replaces the room's active timer handle, cancelling any previous
// one so a stale callback cannot fire alongside the new schedule.
func (r *Room) SetTimer(cancel func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelTimer != nil {
		r.cancelTimer()
	}
	r.cancelTimer = cancel
}

// CancelTimer stops the active timer handle, if any.
func (r *Room) CancelTimer() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearTimerLocked()
}

func (r *Room) clearTimerLocked() {
	if r.cancelTimer != nil {
		r.cancelTimer()
		r.cancelTimer = nil
	}
}

// Roster returns the player list in join order.
func (r *Room) Roster() []domain.PlayerSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rosterLocked()
}

func (r *Room) rosterLocked() []domain.PlayerSummary {
	roster := make([]domain.PlayerSummary, 0, len(r.order))
	for _, id := range r.order {
		p := r.players[id]
		roster = append(roster, domain.PlayerSummary{ID: p.ID, Name: p.Name, IsHost: p.IsHost})
	}
	return roster
}

// Rankings returns the current standings.
func (r *Room) Rankings() []domain.RankingEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rankingsLocked()
}

func (r *Room) rankingsLocked() []domain.RankingEntry {
	players := make([]*domain.Player, 0, len(r.order))
	for _, id := range r.order {
		players = append(players, r.players[id])
	}
	return Rankings(players)
}
