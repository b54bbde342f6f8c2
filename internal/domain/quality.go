package domain

import "fmt"

// Quality is an SM-2 recall grade on the fixed 0..5 scale.
//
//	0 - complete blackout
//	1 - incorrect, remembered once the answer was shown
//	2 - incorrect, but the answer felt familiar
//	3 - correct with serious difficulty
//	4 - correct after hesitation
//	5 - perfect response
type Quality int

// Bounds of the quality scale and the lowest passing grade.
const (
	QualityMin           Quality = 0
	QualityMax           Quality = 5
	QualityPassThreshold Quality = 3
)

// Validate returns ErrInvalidQuality if q is outside 0..5.
func (q Quality) Validate() error {
	if q < QualityMin || q > QualityMax {
		return fmt.Errorf("%w: %d (must be between %d and %d)",
			ErrInvalidQuality, int(q), QualityMin, QualityMax)
	}
	return nil
}

// Passed reports whether q counts as a successful recall.
func (q Quality) Passed() bool {
	return q >= QualityPassThreshold
}

// ReviewLabel is one of the four answer buttons shown to learners.
type ReviewLabel string

// Labels offered by the review UI.
const (
	ReviewLabelForgot    ReviewLabel = "forgot"
	ReviewLabelDifficult ReviewLabel = "difficult"
	ReviewLabelGotIt     ReviewLabel = "got_it"
	ReviewLabelTooEasy   ReviewLabel = "too_easy"
)

// ReviewLabels lists the labels in ascending quality order.
func ReviewLabels() []ReviewLabel {
	return []ReviewLabel{
		ReviewLabelForgot,
		ReviewLabelDifficult,
		ReviewLabelGotIt,
		ReviewLabelTooEasy,
	}
}

// Quality maps the label onto the 0..5 scale. "forgot" is the failing grade 2
// and "difficult" the lowest passing grade 3, so the UI never produces 0 or 1.
func (l ReviewLabel) Quality() (Quality, error) {
	switch l {
	case ReviewLabelForgot:
		return 2, nil
	case ReviewLabelDifficult:
		return 3, nil
	case ReviewLabelGotIt:
		return 4, nil
	case ReviewLabelTooEasy:
		return 5, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidReviewLabel, string(l))
	}
}
