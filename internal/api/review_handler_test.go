package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/vocabquest-api/internal/api/middleware"
	"github.com/phrazzld/vocabquest-api/internal/api/shared"
	"github.com/phrazzld/vocabquest-api/internal/domain"
	"github.com/phrazzld/vocabquest-api/internal/domain/srs"
	"github.com/phrazzld/vocabquest-api/internal/service/review"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockReviewService struct {
	mock.Mock
}

var _ review.Service = (*mockReviewService)(nil)

func (m *mockReviewService) SubmitReview(
	ctx context.Context,
	userID, wordID uuid.UUID,
	answer review.ReviewAnswer,
) (*domain.WordState, error) {
	args := m.Called(ctx, userID, wordID, answer)
	state, _ := args.Get(0).(*domain.WordState)
	return state, args.Error(1)
}

func (m *mockReviewService) AnswerQuest(
	ctx context.Context,
	userID, wordID uuid.UUID,
	correct bool,
) (*review.QuestResult, error) {
	args := m.Called(ctx, userID, wordID, correct)
	res, _ := args.Get(0).(*review.QuestResult)
	return res, args.Error(1)
}

func (m *mockReviewService) Postpone(
	ctx context.Context,
	userID, wordID uuid.UUID,
	days int,
) (*domain.WordState, error) {
	args := m.Called(ctx, userID, wordID, days)
	state, _ := args.Get(0).(*domain.WordState)
	return state, args.Error(1)
}

func (m *mockReviewService) DueWords(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.WordState, error) {
	args := m.Called(ctx, userID, limit)
	states, _ := args.Get(0).([]*domain.WordState)
	return states, args.Error(1)
}

func (m *mockReviewService) Stats(ctx context.Context, userID uuid.UUID) (*domain.ReviewStats, error) {
	args := m.Called(ctx, userID)
	stats, _ := args.Get(0).(*domain.ReviewStats)
	return stats, args.Error(1)
}

func newTestRouter(svc review.Service) http.Handler {
	h := NewReviewHandler(svc, 20, nil)
	r := chi.NewRouter()
	r.Use(middleware.RequireUser)
	h.RegisterRoutes(r)
	return r
}

func doRequest(t *testing.T, handler http.Handler, method, path string, userID uuid.UUID, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if userID != uuid.Nil {
		r.Header.Set(middleware.UserIDHeader, userID.String())
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	return w
}

func sampleWordState(userID, wordID uuid.UUID) *domain.WordState {
	due := time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC)
	reviewed := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)
	return &domain.WordState{
		UserID:         userID,
		WordID:         wordID,
		Repetitions:    2,
		IntervalDays:   6,
		EaseFactor:     2.5,
		DueAt:          &due,
		LastReviewedAt: &reviewed,
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var body shared.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSubmitReviewHandler(t *testing.T) {
	userID, wordID := uuid.New(), uuid.New()
	path := "/words/" + wordID.String() + "/review"

	t.Run("label", func(t *testing.T) {
		svc := new(mockReviewService)
		svc.On("SubmitReview", mock.Anything, userID, wordID, review.ReviewAnswer{Label: "got_it"}).
			Return(sampleWordState(userID, wordID), nil)

		w := doRequest(t, newTestRouter(svc), http.MethodPost, path, userID, `{"label":"got_it"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var resp WordStateResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, wordID.String(), resp.WordID)
		assert.Equal(t, 6, resp.IntervalDays)
		assert.Equal(t, time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC), resp.DueAt.UTC())
		svc.AssertExpectations(t)
	})

	t.Run("raw quality zero is accepted", func(t *testing.T) {
		svc := new(mockReviewService)
		svc.On("SubmitReview", mock.Anything, userID, wordID, mock.MatchedBy(func(a review.ReviewAnswer) bool {
			return a.Quality != nil && *a.Quality == 0 && a.Label == ""
		})).Return(sampleWordState(userID, wordID), nil)

		w := doRequest(t, newTestRouter(svc), http.MethodPost, path, userID, `{"quality":0}`)
		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantMsg    string
	}{
		{"quality out of range", `{"quality":9}`, nil, http.StatusBadRequest, "Invalid Quality: too large"},
		{"unknown label", `{"label":"meh"}`, nil, http.StatusBadRequest, "Invalid Label: invalid value"},
		{"malformed body", `{"quality":`, nil, http.StatusBadRequest, "Invalid request format"},
		{"missing grade", `{}`, review.ErrInvalidAnswer, http.StatusBadRequest, "Provide exactly one of quality or label"},
		{"no learning state", `{"quality":4}`, review.ErrWordStateNotFound, http.StatusNotFound, "Word has not been learned yet"},
		{"internal failure", `{"quality":4}`, review.NewServiceError("submit_review", "failed", errors.New("db down")), http.StatusInternalServerError, "Failed to submit review"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockReviewService)
			if tt.serviceErr != nil {
				svc.On("SubmitReview", mock.Anything, userID, wordID, mock.Anything).Return(nil, tt.serviceErr)
			}

			w := doRequest(t, newTestRouter(svc), http.MethodPost, path, userID, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantMsg, decodeError(t, w).Error)
			assert.NotContains(t, w.Body.String(), "db down")
			svc.AssertExpectations(t)
		})
	}

	t.Run("invalid word ID", func(t *testing.T) {
		svc := new(mockReviewService)
		w := doRequest(t, newTestRouter(svc), http.MethodPost, "/words/not-a-uuid/review", userID, `{"quality":4}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid ID format", decodeError(t, w).Error)
	})

	t.Run("missing identity", func(t *testing.T) {
		svc := new(mockReviewService)
		w := doRequest(t, newTestRouter(svc), http.MethodPost, path, uuid.Nil, `{"quality":4}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAnswerQuestHandler(t *testing.T) {
	userID, wordID := uuid.New(), uuid.New()
	path := "/words/" + wordID.String() + "/quest-answer"

	t.Run("seeded", func(t *testing.T) {
		svc := new(mockReviewService)
		svc.On("AnswerQuest", mock.Anything, userID, wordID, true).
			Return(&review.QuestResult{State: sampleWordState(userID, wordID), Seeded: true}, nil)

		w := doRequest(t, newTestRouter(svc), http.MethodPost, path, userID, `{"correct":true}`)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("already learning", func(t *testing.T) {
		svc := new(mockReviewService)
		svc.On("AnswerQuest", mock.Anything, userID, wordID, false).
			Return(&review.QuestResult{State: sampleWordState(userID, wordID)}, nil)

		w := doRequest(t, newTestRouter(svc), http.MethodPost, path, userID, `{"correct":false}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("correct is required", func(t *testing.T) {
		svc := new(mockReviewService)
		w := doRequest(t, newTestRouter(svc), http.MethodPost, path, userID, `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid Correct: required field", decodeError(t, w).Error)
	})
}

func TestPostponeHandler(t *testing.T) {
	userID, wordID := uuid.New(), uuid.New()
	path := "/words/" + wordID.String() + "/postpone"

	t.Run("postponed", func(t *testing.T) {
		svc := new(mockReviewService)
		svc.On("Postpone", mock.Anything, userID, wordID, 3).Return(sampleWordState(userID, wordID), nil)

		w := doRequest(t, newTestRouter(svc), http.MethodPost, path, userID, `{"days":3}`)
		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("days below one", func(t *testing.T) {
		svc := new(mockReviewService)
		w := doRequest(t, newTestRouter(svc), http.MethodPost, path, userID, `{"days":0}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("service rejects days", func(t *testing.T) {
		svc := new(mockReviewService)
		svc.On("Postpone", mock.Anything, userID, wordID, 2).Return(nil, srs.ErrInvalidDays)

		w := doRequest(t, newTestRouter(svc), http.MethodPost, path, userID, `{"days":2}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Days must be between 1 and 36500", decodeError(t, w).Error)
	})
}

func TestDueWordsHandler(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name      string
		query     string
		wantLimit int
	}{
		{"default limit", "", 20},
		{"explicit limit", "?limit=5", 5},
		{"capped limit", "?limit=500", MaxDueLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockReviewService)
			states := []*domain.WordState{sampleWordState(userID, uuid.New())}
			svc.On("DueWords", mock.Anything, userID, tt.wantLimit).Return(states, nil)

			w := doRequest(t, newTestRouter(svc), http.MethodGet, "/reviews/due"+tt.query, userID, "")
			require.Equal(t, http.StatusOK, w.Code)

			var resp DueWordsResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, 1, resp.Count)
			svc.AssertExpectations(t)
		})
	}

	t.Run("invalid limit", func(t *testing.T) {
		svc := new(mockReviewService)
		w := doRequest(t, newTestRouter(svc), http.MethodGet, "/reviews/due?limit=abc", userID, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty list encodes as array", func(t *testing.T) {
		svc := new(mockReviewService)
		svc.On("DueWords", mock.Anything, userID, 20).Return([]*domain.WordState{}, nil)

		w := doRequest(t, newTestRouter(svc), http.MethodGet, "/reviews/due", userID, "")
		assert.JSONEq(t, `{"words":[],"count":0}`, w.Body.String())
	})
}

func TestStatsHandler(t *testing.T) {
	userID := uuid.New()
	svc := new(mockReviewService)
	svc.On("Stats", mock.Anything, userID).
		Return(&domain.ReviewStats{DueCount: 4, ReviewedToday: 2, TotalWords: 30}, nil)

	w := doRequest(t, newTestRouter(svc), http.MethodGet, "/reviews/stats", userID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"due_count":4,"reviewed_today":2,"total_words":30}`, w.Body.String())
}

func TestNewReviewHandler(t *testing.T) {
	assert.Panics(t, func() { NewReviewHandler(nil, 20, nil) })

	h := NewReviewHandler(new(mockReviewService), 0, nil)
	assert.Equal(t, DefaultDueLimit, h.dueLimit)

	h = NewReviewHandler(new(mockReviewService), 1000, nil)
	assert.Equal(t, MaxDueLimit, h.dueLimit)
}
