package srs

import (
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/vocabquest-api/internal/domain"
)

// ErrInvalidParams is returned by Params.Validate for an unusable configuration.
var ErrInvalidParams = errors.New("invalid srs parameters")

// Params defines all configurable parameters for the SM-2 scheduler
type Params struct {
	// Ease factor limits
	MinEaseFactor     float64
	InitialEaseFactor float64

	// Fixed schedule for the first two successes
	FirstInterval  int
	SecondInterval int

	// MaxInterval caps geometric growth so long streaks stay representable
	// as due dates.
	MaxInterval int

	// Failure handling. FailureInterval is the interval stored after a lapse,
	// FailureDueDays the offset used to project its due date (0 = due today).
	FailureInterval int
	FailureDueDays  int

	// Location defines the calendar day boundaries used for due dates.
	Location *time.Location
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero values keep the defaults.
type ParamsConfig struct {
	MinEaseFactor     float64
	InitialEaseFactor float64
	MaxInterval       int
	Location          *time.Location
}

// DefaultMaxInterval is roughly one hundred years.
const DefaultMaxInterval = 36500

// NewDefaultParams creates a new Params instance with the classic SM-2 values
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor:     domain.MinEaseFactor,
		InitialEaseFactor: 2.5,
		FirstInterval:     1,
		SecondInterval:    6,
		MaxInterval:       DefaultMaxInterval,
		FailureInterval:   1,
		FailureDueDays:    0,
		Location:          time.UTC,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.InitialEaseFactor > 0 {
		params.InitialEaseFactor = config.InitialEaseFactor
	}
	if config.MaxInterval > 0 {
		params.MaxInterval = config.MaxInterval
	}
	if config.Location != nil {
		params.Location = config.Location
	}

	return params
}

// Validate checks that the parameters keep the scheduler invariants intact.
func (p *Params) Validate() error {
	if p.MinEaseFactor < domain.MinEaseFactor {
		return fmt.Errorf("%w: min ease factor %.2f is below %.2f",
			ErrInvalidParams, p.MinEaseFactor, domain.MinEaseFactor)
	}
	if p.InitialEaseFactor < p.MinEaseFactor {
		return fmt.Errorf("%w: initial ease factor %.2f is below the minimum %.2f",
			ErrInvalidParams, p.InitialEaseFactor, p.MinEaseFactor)
	}
	if p.FirstInterval < 1 || p.SecondInterval < p.FirstInterval {
		return fmt.Errorf("%w: intervals must satisfy 1 <= first <= second", ErrInvalidParams)
	}
	if p.MaxInterval < p.SecondInterval || p.MaxInterval > DefaultMaxInterval {
		return fmt.Errorf("%w: max interval must be between %d and %d",
			ErrInvalidParams, p.SecondInterval, DefaultMaxInterval)
	}
	if p.FailureInterval < 1 || p.FailureDueDays < 0 {
		return fmt.Errorf("%w: failure interval must be >= 1 and due offset >= 0", ErrInvalidParams)
	}
	if p.Location == nil {
		return fmt.Errorf("%w: location is required", ErrInvalidParams)
	}
	return nil
}
