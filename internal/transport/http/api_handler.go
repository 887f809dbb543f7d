package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"quiquiz-server/internal/domain"
	"quiquiz-server/internal/game"
	"quiquiz-server/internal/match"
)

// QuestionCatalog is the read side of the question bank used by the
// stateless query API.
type QuestionCatalog interface {
	Catalog(ctx context.Context) ([]domain.ThemeCategory, error)
	Questions(ctx context.Context, themeID string, count int) ([]domain.Question, error)
}

// APIHandler serves the stateless query interface: theme catalogue, solo
// question batches, standalone answer checks and room lookups.
type APIHandler struct {
	questions QuestionCatalog
	coord     *game.Coordinator
}

func NewAPIHandler(questions QuestionCatalog, coord *game.Coordinator) *APIHandler {
	return &APIHandler{questions: questions, coord: coord}
}

// Register mounts the API routes on the mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/themes", h.handleThemes)
	mux.HandleFunc("GET /api/quiz/{theme}", h.handleQuiz)
	mux.HandleFunc("POST /api/check", h.handleCheck)
	mux.HandleFunc("GET /api/rooms/{code}", h.handleRoomLookup)
}

func (h *APIHandler) handleThemes(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.questions.Catalog(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load themes")
		return
	}
	writeJSON(w, http.StatusOK, catalog)
}

type soloQuestion struct {
	ID       int    `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func (h *APIHandler) handleQuiz(w http.ResponseWriter, r *http.Request) {
	theme := r.PathValue("theme")
	count := 10
	if raw := r.URL.Query().Get("count"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			count = n
		}
	}

	questions, err := h.questions.Questions(r.Context(), theme, count)
	if err != nil {
		if errors.Is(err, domain.ErrThemeNotFound) {
			writeError(w, http.StatusBadRequest, "unknown theme")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not load questions")
		return
	}

	batch := make([]soloQuestion, len(questions))
	for i, q := range questions {
		batch[i] = soloQuestion{ID: i + 1, Question: q.Prompt, Answer: q.Answer}
	}
	writeJSON(w, http.StatusOK, batch)
}

type checkRequest struct {
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
}

func (h *APIHandler) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{
		"correct": match.IsCorrect(req.UserAnswer, req.CorrectAnswer),
	})
}

func (h *APIHandler) handleRoomLookup(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.coord.RoomInfo(r.PathValue("code")))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
