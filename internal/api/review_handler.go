package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/vocabquest-api/internal/api/shared"
	"github.com/phrazzld/vocabquest-api/internal/platform/logger"
	"github.com/phrazzld/vocabquest-api/internal/service/review"
)

// ReviewHandler serves the word review endpoints.
type ReviewHandler struct {
	reviewService review.Service
	dueLimit      int
	logger        *slog.Logger
}

// NewReviewHandler creates a ReviewHandler. dueLimit is the due list size
// used when the request does not set one.
func NewReviewHandler(reviewService review.Service, dueLimit int, log *slog.Logger) *ReviewHandler {
	if reviewService == nil {
		panic("reviewService cannot be nil for ReviewHandler")
	}
	if log == nil {
		log = slog.Default()
	}
	switch {
	case dueLimit < 1:
		dueLimit = DefaultDueLimit
	case dueLimit > MaxDueLimit:
		dueLimit = MaxDueLimit
	}

	return &ReviewHandler{
		reviewService: reviewService,
		dueLimit:      dueLimit,
		logger:        log.With(slog.String("component", "review_handler")),
	}
}

// RegisterRoutes mounts the review endpoints on r. Callers are expected to
// apply middleware.RequireUser.
func (h *ReviewHandler) RegisterRoutes(r chi.Router) {
	r.Route("/words/{id}", func(r chi.Router) {
		r.Post("/review", h.SubmitReview)
		r.Post("/quest-answer", h.AnswerQuest)
		r.Post("/postpone", h.Postpone)
	})
	r.Get("/reviews/due", h.DueWords)
	r.Get("/reviews/stats", h.Stats)
}

// SubmitReview handles POST /words/{id}/review.
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, wordID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req SubmitReviewRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	state, err := h.reviewService.SubmitReview(r.Context(), userID, wordID, review.ReviewAnswer{
		Quality: req.Quality,
		Label:   req.Label,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit review")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, wordStateToResponse(state))
}

// AnswerQuest handles POST /words/{id}/quest-answer. It responds 201 when the
// answer seeded the word and 200 when the word was already being learned.
func (h *ReviewHandler) AnswerQuest(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, wordID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req QuestAnswerRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	result, err := h.reviewService.AnswerQuest(r.Context(), userID, wordID, *req.Correct)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record quest answer")
		return
	}

	status := http.StatusOK
	if result.Seeded {
		status = http.StatusCreated
	}
	shared.RespondWithJSON(w, r, status, wordStateToResponse(result.State))
}

// Postpone handles POST /words/{id}/postpone.
func (h *ReviewHandler) Postpone(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, wordID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req PostponeRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	state, err := h.reviewService.Postpone(r.Context(), userID, wordID, req.Days)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to postpone review")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, wordStateToResponse(state))
}

// DueWords handles GET /reviews/due?limit=n.
func (h *ReviewHandler) DueWords(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := shared.GetUserID(r.Context())
	if !ok {
		log.Warn("user ID not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User identity required")
		return
	}

	limit, err := parseLimit(r, h.dueLimit, MaxDueLimit)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Limit must be a positive integer", err)
		return
	}

	states, err := h.reviewService.DueWords(r.Context(), userID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list due words")
		return
	}

	resp := DueWordsResponse{Words: make([]WordStateResponse, 0, len(states))}
	for _, s := range states {
		resp.Words = append(resp.Words, wordStateToResponse(s))
	}
	resp.Count = len(resp.Words)

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Stats handles GET /reviews/stats.
func (h *ReviewHandler) Stats(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := shared.GetUserID(r.Context())
	if !ok {
		log.Warn("user ID not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User identity required")
		return
	}

	stats, err := h.reviewService.Stats(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load review stats")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}
