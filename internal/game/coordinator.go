package game

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"quiquiz-server/internal/domain"
)

// RoomStore abstracts how live rooms are tracked (in-memory, Redis-marked, etc).
type RoomStore interface {
	// PutIfAbsent inserts the room unless its code is already taken.
	PutIfAbsent(room *Room) bool
	Get(code string) (*Room, bool)
	Delete(code string)
	// Rooms snapshots every live room, for the disconnect sweep.
	Rooms() []*Room
}

// QuestionSource draws a shuffled question batch for a set of themes.
type QuestionSource interface {
	Draw(ctx context.Context, themes []string, count int) ([]domain.Question, error)
}

// Timing groups the scheduler delays. Tests shrink these to keep runs fast.
type Timing struct {
	Countdown        time.Duration // lobby countdown before the first question
	CountdownTicks   int           // seconds announced to clients
	Tick             time.Duration // in-question timer resolution
	EarlySettleDelay time.Duration // pause after the last player answers
	SettleDelay      time.Duration // display pause between questions
	Retention        time.Duration // finished-room cleanup window
}

// DefaultTiming matches live gameplay.
func DefaultTiming() Timing {
	return Timing{
		Countdown:        3 * time.Second,
		CountdownTicks:   3,
		Tick:             time.Second,
		EarlySettleDelay: 500 * time.Millisecond,
		SettleDelay:      2 * time.Second,
		Retention:        5 * time.Minute,
	}
}

// Coordinator wires room lifecycle, the question scheduler, answer collection
// and scoring into the event stream consumed by the transport layer.
type Coordinator struct {
	rooms     RoomStore
	questions QuestionSource
	notify    Notifier
	timing    Timing
	now       func() time.Time
}

func NewCoordinator(rooms RoomStore, questions QuestionSource, notify Notifier) *Coordinator {
	return NewCoordinatorWithTiming(rooms, questions, notify, DefaultTiming())
}

// NewCoordinatorWithTiming is used by tests to run the scheduler at a faster clock.
func NewCoordinatorWithTiming(rooms RoomStore, questions QuestionSource, notify Notifier, timing Timing) *Coordinator {
	return &Coordinator{
		rooms:     rooms,
		questions: questions,
		notify:    notify,
		timing:    timing,
		now:       time.Now,
	}
}

// CreateRoom opens a waiting room with the creator as host. The generated code
// is retried until it is free among live rooms.
func (c *Coordinator) CreateRoom(playerID, hostName string, patch domain.SettingsPatch) (string, error) {
	if strings.TrimSpace(hostName) == "" {
		return "", domain.ErrNameRequired
	}
	settings := patch.Apply(domain.DefaultSettings())

	var room *Room
	for {
		room = NewRoom(newRoomCode(), playerID, hostName, settings)
		if c.rooms.PutIfAbsent(room) {
			break
		}
	}

	c.notify.ToPlayer(playerID, EventRoomCreated, RoomCreatedPayload{RoomCode: room.Code()})
	log.Printf("room %s created by %s", room.Code(), hostName)
	return room.Code(), nil
}

// JoinRoom adds a player to a waiting room and fans the roster out.
func (c *Coordinator) JoinRoom(playerID, code, playerName string) error {
	if strings.TrimSpace(playerName) == "" {
		return domain.ErrNameRequired
	}
	room, ok := c.lookup(code)
	if !ok {
		return domain.ErrRoomNotFound
	}
	roster, err := room.AddPlayer(playerID, playerName)
	if err != nil {
		return err
	}

	c.notify.ToRoom(room.Code(), EventPlayerJoined, PlayerJoinedPayload{
		Player:  domain.PlayerSummary{ID: playerID, Name: playerName},
		Players: roster,
	})
	c.notify.ToPlayer(playerID, EventRoomJoined, RoomJoinedPayload{
		RoomCode: room.Code(),
		Settings: room.Settings(),
		Players:  roster,
	})
	log.Printf("%s joined room %s", playerName, room.Code())
	return nil
}

// UpdateSettings applies a host-only partial settings update and broadcasts it.
func (c *Coordinator) UpdateSettings(playerID, code string, patch domain.SettingsPatch) error {
	room, ok := c.lookup(code)
	if !ok {
		return domain.ErrRoomNotFound
	}
	settings, err := room.UpdateSettings(playerID, patch)
	if err != nil {
		return err
	}
	c.notify.ToRoom(room.Code(), EventSettingsUpdated, SettingsUpdatedPayload{Settings: settings})
	return nil
}

// StartGame draws the question list, transitions the room to playing and
// schedules the countdown into the first question.
func (c *Coordinator) StartGame(ctx context.Context, playerID, code string) error {
	room, ok := c.lookup(code)
	if !ok {
		return domain.ErrRoomNotFound
	}
	if err := room.CanStart(playerID); err != nil {
		return err
	}

	settings := room.Settings()
	questions, err := c.questions.Draw(ctx, settings.Themes, settings.QuestionCount)
	if err != nil {
		return err
	}
	if err := room.BeginGame(playerID, questions); err != nil {
		return err
	}

	log.Printf("game started in room %s with %d questions", room.Code(), len(questions))
	c.notify.ToRoom(room.Code(), EventGameStarting, GameStartingPayload{Countdown: c.timing.CountdownTicks})
	c.schedule(room, c.timing.Countdown, func() {
		c.startQuestion(room.Code())
	})
	return nil
}

// SubmitAnswer records a player's answer. Invalid submissions are dropped
// silently per the protocol; the outcome is returned for the caller's benefit.
func (c *Coordinator) SubmitAnswer(playerID, code, answer string) domain.SubmitOutcome {
	room, ok := c.lookup(code)
	if !ok {
		return domain.SubmitRejectedInvalidState
	}
	result, outcome := room.Submit(playerID, answer, c.now())
	if outcome != domain.SubmitAccepted {
		return outcome
	}

	c.notify.ToPlayer(playerID, EventAnswerResult, AnswerResultPayload{
		IsCorrect:     result.Record.IsCorrect,
		Points:        result.Record.Points,
		TotalScore:    result.TotalScore,
		CorrectAnswer: result.Record.CorrectAnswer,
	})
	c.notify.ToRoom(room.Code(), EventPlayerAnswered, PlayerAnsweredPayload{
		PlayerID:      playerID,
		PlayerName:    result.PlayerName,
		AnsweredCount: result.AnsweredCount,
		TotalPlayers:  result.TotalPlayers,
	})

	if result.AllAnswered {
		// End the question ahead of the deadline; the short pause lets the
		// last player see their own result first.
		c.schedule(room, c.timing.EarlySettleDelay, func() {
			c.settleQuestion(room.Code())
		})
	}
	return domain.SubmitAccepted
}

// LeaveRoom removes a player; the last departure deletes the room.
func (c *Coordinator) LeaveRoom(playerID, code string) {
	room, ok := c.lookup(code)
	if !ok {
		return
	}
	left, newHost, roster, empty := room.RemovePlayer(playerID)
	if left == nil {
		return
	}
	if empty {
		c.rooms.Delete(room.Code())
		log.Printf("room %s deleted (empty)", room.Code())
		return
	}
	if newHost != nil {
		c.notify.ToRoom(room.Code(), EventHostChanged, HostChangedPayload{
			NewHostID:   newHost.ID,
			NewHostName: newHost.Name,
		})
	}
	c.notify.ToRoom(room.Code(), EventPlayerLeft, PlayerLeftPayload{
		PlayerID:   playerID,
		PlayerName: left.Name,
		Players:    roster,
	})
}

// Disconnect sweeps every room the connection belongs to.
func (c *Coordinator) Disconnect(playerID string) {
	for _, room := range c.rooms.Rooms() {
		if room.HasPlayer(playerID) {
			c.LeaveRoom(playerID, room.Code())
		}
	}
}

// RoomInfo answers the stateless existence/status lookup.
func (c *Coordinator) RoomInfo(code string) domain.RoomInfo {
	room, ok := c.lookup(code)
	if !ok {
		return domain.RoomInfo{}
	}
	return room.Info()
}

// lookup canonicalizes the code to uppercase before the exact-match lookup.
func (c *Coordinator) lookup(code string) (*Room, bool) {
	return c.rooms.Get(strings.ToUpper(strings.TrimSpace(code)))
}

// startQuestion enters QUESTION_ACTIVE: broadcasts the prompt and runs the
// per-second countdown toward the deadline. A room deleted between scheduling
// and firing makes this a no-op.
func (c *Coordinator) startQuestion(code string) {
	room, ok := c.rooms.Get(code)
	if !ok {
		return
	}
	question, index, total, timeLimit, ok := room.StartQuestion(c.now())
	if !ok {
		return
	}

	c.notify.ToRoom(code, EventNewQuestion, NewQuestionPayload{
		Index:     index,
		Total:     total,
		Question:  question.Prompt,
		TimeLimit: timeLimit,
	})

	done := make(chan struct{})
	var once sync.Once
	room.SetTimer(func() {
		once.Do(func() { close(done) })
	})

	go func() {
		ticker := time.NewTicker(c.timing.Tick)
		defer ticker.Stop()
		timeLeft := timeLimit
		for {
			select {
			case <-ticker.C:
				timeLeft--
				c.notify.ToRoom(code, EventTimerTick, TimerTickPayload{TimeLeft: timeLeft})
				if timeLeft <= 0 {
					c.settleQuestion(code)
					return
				}
			case <-done:
				return
			}
		}
	}()
}

// settleQuestion closes the current question. Both exit paths (deadline and
// all-answered) funnel through Room.Settle, which admits exactly one caller.
func (c *Coordinator) settleQuestion(code string) {
	room, ok := c.rooms.Get(code)
	if !ok {
		return
	}
	result, ok := room.Settle()
	if !ok {
		return
	}

	c.notify.ToRoom(code, EventQuestionEnded, QuestionEndedPayload{
		CorrectAnswer: result.CorrectAnswer,
		Rankings:      result.Rankings,
	})

	next := c.startQuestion
	if result.Finished {
		next = c.endGame
	}
	c.schedule(room, c.timing.SettleDelay, func() {
		next(code)
	})
}

// endGame transitions the room to finished, emits the final report and arms
// the retention cleanup.
func (c *Coordinator) endGame(code string) {
	room, ok := c.rooms.Get(code)
	if !ok {
		return
	}
	final, ok := room.FinishGame()
	if !ok {
		return
	}

	c.notify.ToRoom(code, EventGameEnded, GameEndedPayload{
		FinalRankings: final.Rankings,
		AllAnswers:    final.Reports,
	})
	log.Printf("game finished in room %s", code)

	c.schedule(room, c.timing.Retention, func() {
		if stale, ok := c.rooms.Get(code); ok && stale.Status() == domain.StatusFinished {
			c.rooms.Delete(code)
			log.Printf("room %s cleaned up after retention window", code)
		}
	})
}

// schedule arms a one-shot callback as the room's single active timer handle.
func (c *Coordinator) schedule(room *Room, d time.Duration, fn func()) {
	t := time.AfterFunc(d, fn)
	room.SetTimer(func() { t.Stop() })
}
