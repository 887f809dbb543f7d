package domain

// RoomStatus tracks a room's one-way lifecycle progression.
type RoomStatus string

const (
	StatusWaiting  RoomStatus = "waiting"
	StatusPlaying  RoomStatus = "playing"
	StatusFinished RoomStatus = "finished"
)

// Settings are the host-tunable game parameters for a room.
type Settings struct {
	Themes          []string `json:"themes"`
	QuestionCount   int      `json:"questionCount"`
	TimePerQuestion int      `json:"timePerQuestion"` // seconds
}

// DefaultSettings returns the parameters a room starts with before the host changes anything.
func DefaultSettings() Settings {
	return Settings{
		Themes:          []string{"capitals"},
		QuestionCount:   10,
		TimePerQuestion: 10,
	}
}

// SettingsPatch carries a partial settings update; nil fields are left unchanged.
type SettingsPatch struct {
	Themes          *[]string `json:"themes"`
	QuestionCount   *int      `json:"questionCount"`
	TimePerQuestion *int      `json:"timePerQuestion"`
}

// Apply merges the patch over s and returns the result. Both counters must
// stay positive, so non-positive patch values are ignored.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.Themes != nil {
		s.Themes = *p.Themes
	}
	if p.QuestionCount != nil && *p.QuestionCount > 0 {
		s.QuestionCount = *p.QuestionCount
	}
	if p.TimePerQuestion != nil && *p.TimePerQuestion > 0 {
		s.TimePerQuestion = *p.TimePerQuestion
	}
	return s
}

// Question is one prompt/answer pair drawn into a room's game.
type Question struct {
	Prompt string `json:"question"`
	Answer string `json:"answer"`
	Theme  string `json:"theme,omitempty"`
}

// AnswerRecord is one entry in a player's append-only answer log. A timed-out
// question produces a synthetic zero-point record.
type AnswerRecord struct {
	QuestionIndex  int    `json:"questionIndex"`
	Question       string `json:"question"`
	UserAnswer     string `json:"userAnswer"`
	CorrectAnswer  string `json:"correctAnswer"`
	IsCorrect      bool   `json:"isCorrect"`
	Points         int    `json:"points"`
	ResponseTimeMs int64  `json:"responseTime"`
}

// Player is one connected participant in a room. The transport connection id
// doubles as the player id.
type Player struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Score   int            `json:"score"`
	IsHost  bool           `json:"isHost"`
	Answers []AnswerRecord `json:"-"`
}

// PlayerSummary is the roster view broadcast to room members.
type PlayerSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
}

// RankingEntry is one row of the standings. Rank is the 1-based sort position;
// tied scores keep distinct consecutive ranks in score-achievement order.
type RankingEntry struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Score      int    `json:"score"`
	Rank       int    `json:"rank"`
}

// PlayerReport bundles a player's full answer log for the end-of-game host view.
type PlayerReport struct {
	PlayerName string         `json:"playerName"`
	Answers    []AnswerRecord `json:"answers"`
	TotalScore int            `json:"totalScore"`
}

// SubmitOutcome classifies an answer submission.
type SubmitOutcome int

const (
	SubmitAccepted SubmitOutcome = iota
	SubmitRejectedDuplicate
	SubmitRejectedInvalidState
)

// Err maps a rejected outcome to its sentinel. Accepted submissions map to nil.
func (o SubmitOutcome) Err() error {
	switch o {
	case SubmitRejectedDuplicate:
		return ErrAlreadyAnswered
	case SubmitRejectedInvalidState:
		return ErrGameNotActive
	default:
		return nil
	}
}

// Theme describes one question bank in the catalogue.
type Theme struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
	IsMap bool   `json:"isMap,omitempty"`
}

// ThemeCategory groups themes for the catalogue listing.
type ThemeCategory struct {
	Category string  `json:"category"`
	Icon     string  `json:"icon"`
	Themes   []Theme `json:"themes"`
}

// RoomInfo is the stateless room lookup response.
type RoomInfo struct {
	Exists      bool       `json:"exists"`
	Status      RoomStatus `json:"status,omitempty"`
	PlayerCount int        `json:"playerCount,omitempty"`
	Settings    *Settings  `json:"settings,omitempty"`
}
