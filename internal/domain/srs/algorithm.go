package srs

import (
	"math"
	"time"

	"github.com/phrazzld/vocabquest-api/internal/domain"
)

// Schedule holds the three numeric fields SM-2 updates on every review.
type Schedule struct {
	Repetitions  int     `json:"repetitions"`
	IntervalDays int     `json:"interval_days"`
	EaseFactor   float64 `json:"ease_factor"`
}

// DefaultState returns the schedule of a word that has never been reviewed.
// Each call returns a fresh value.
func DefaultState() Schedule {
	return Schedule{
		Repetitions:  0,
		IntervalDays: 0,
		EaseFactor:   NewDefaultParams().InitialEaseFactor,
	}
}

// scheduleOf extracts the numeric SM-2 fields from a full word state.
func scheduleOf(state *domain.WordState) Schedule {
	return Schedule{
		Repetitions:  state.Repetitions,
		IntervalDays: state.IntervalDays,
		EaseFactor:   state.EaseFactor,
	}
}

// adjustEaseFactor determines the new ease factor for a recall grade.
//
// The classic SM-2 update is applied:
//
//	delta = 0.1 - (5-q) * (0.08 + (5-q) * 0.02)
//
// Quality 5 adds 0.1, quality 4 is neutral and anything lower decreases the
// ease factor, with quality 0 producing the steepest drop. The result is always
// clamped to params.MinEaseFactor.
func adjustEaseFactor(current float64, quality domain.Quality, params *Params) float64 {
	miss := float64(domain.QualityMax - quality)
	delta := 0.1 - miss*(0.08+miss*0.02)

	return math.Max(params.MinEaseFactor, current+delta)
}

// calculateInterval determines the interval in days for the given repetition count.
//
// The first two successes follow a fixed schedule (1 then 6 days by default).
// After that the interval grows geometrically: starting from the second
// interval it is multiplied by the ease factor and rounded, once per extra
// repetition. Rounding happens at every step, so the result differs from
// SecondInterval * ease^(repetitions-2) for longer streaks. Stored intervals
// depend on this exact trajectory. Growth saturates at params.MaxInterval.
//
// Callers must pass repetitions >= 1; failures never reach this function.
func calculateInterval(repetitions int, easeFactor float64, params *Params) int {
	switch {
	case repetitions <= 1:
		return params.FirstInterval
	case repetitions == 2:
		return params.SecondInterval
	}

	interval := params.SecondInterval
	for i := 3; i <= repetitions; i++ {
		next := math.Round(float64(interval) * easeFactor)
		if next >= float64(params.MaxInterval) {
			return params.MaxInterval
		}
		interval = int(next)
	}
	return interval
}

// transition combines the ease and interval calculators into a single update.
//
// A failing grade resets repetitions and forces the failure interval while
// still eroding the ease factor. A passing grade extends the streak and
// derives the interval from the new repetition count and ease factor.
func transition(s Schedule, quality domain.Quality, params *Params) Schedule {
	ease := adjustEaseFactor(s.EaseFactor, quality, params)

	if !quality.Passed() {
		return Schedule{
			Repetitions:  0,
			IntervalDays: params.FailureInterval,
			EaseFactor:   ease,
		}
	}

	reps := s.Repetitions + 1
	return Schedule{
		Repetitions:  reps,
		IntervalDays: calculateInterval(reps, ease, params),
		EaseFactor:   ease,
	}
}

// startOfDay returns the first instant of t's calendar day in the configured location.
func startOfDay(t time.Time, params *Params) time.Time {
	local := t.In(params.Location)
	return dayStart(local.Year(), local.Month(), local.Day(), params.Location)
}

// dayStart returns the first instant of the given calendar day in loc. Where
// a DST gap swallows midnight, time.Date lands in the previous day; the end of
// that zone period is the first instant of the requested day.
func dayStart(year int, month time.Month, day int, loc *time.Location) time.Time {
	target := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	t := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, loc)
	if t.Day() == target.Day() {
		return t
	}

	if _, end := t.ZoneBounds(); !end.IsZero() && end.After(t) {
		return end
	}
	return t.Add(time.Hour)
}

// projectDueDate converts an interval into a due timestamp.
//
// The result is the start of the calendar day intervalDays after ref. Calendar
// days are used rather than 24h periods, so a DST change never moves the due
// date to another day. An interval of 0 yields the start of ref's own day.
func projectDueDate(intervalDays int, ref time.Time, params *Params) time.Time {
	local := ref.In(params.Location)
	return dayStart(local.Year(), local.Month(), local.Day()+intervalDays, params.Location)
}

// processReview applies a review to a full word state and returns a new state.
//
// The input is never modified. Besides the SM-2 transition it records
// lastReviewedAt, counts a lapse for failing grades and projects the due date.
// A failed word is due again on the same day (FailureDueDays) even though its
// stored interval is the failure interval.
func processReview(
	state *domain.WordState,
	quality domain.Quality,
	now time.Time,
	params *Params,
) *domain.WordState {
	next := state.Clone()

	s := transition(scheduleOf(state), quality, params)
	next.Repetitions = s.Repetitions
	next.IntervalDays = s.IntervalDays
	next.EaseFactor = s.EaseFactor

	dueOffset := s.IntervalDays
	if !quality.Passed() {
		dueOffset = params.FailureDueDays
		next.Lapses++
	}

	due := projectDueDate(dueOffset, now, params)
	reviewed := now
	next.DueAt = &due
	next.LastReviewedAt = &reviewed
	next.UpdatedAt = now

	return next
}
