package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQualityValidate(t *testing.T) {
	t.Parallel()

	for q := QualityMin; q <= QualityMax; q++ {
		assert.NoError(t, q.Validate(), "quality %d should be valid", q)
	}

	for _, q := range []Quality{-1, 6, 42} {
		err := q.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidQuality), "expected ErrInvalidQuality for %d", q)
	}
}

func TestQualityPassed(t *testing.T) {
	t.Parallel()

	assert.False(t, Quality(0).Passed())
	assert.False(t, Quality(2).Passed())
	assert.True(t, Quality(3).Passed())
	assert.True(t, Quality(5).Passed())
}

func TestReviewLabelQuality(t *testing.T) {
	t.Parallel()

	tests := []struct {
		label    ReviewLabel
		expected Quality
		passed   bool
	}{
		{ReviewLabelForgot, 2, false},
		{ReviewLabelDifficult, 3, true},
		{ReviewLabelGotIt, 4, true},
		{ReviewLabelTooEasy, 5, true},
	}

	for _, tc := range tests {
		t.Run(string(tc.label), func(t *testing.T) {
			q, err := tc.label.Quality()
			require.NoError(t, err)
			assert.Equal(t, tc.expected, q)
			assert.Equal(t, tc.passed, q.Passed())
		})
	}

	_, err := ReviewLabel("again").Quality()
	assert.ErrorIs(t, err, ErrInvalidReviewLabel)
}

func TestReviewLabelsOrder(t *testing.T) {
	t.Parallel()

	prev := Quality(-1)
	for _, l := range ReviewLabels() {
		q, err := l.Quality()
		require.NoError(t, err)
		assert.Greater(t, q, prev)
		prev = q
	}
}
