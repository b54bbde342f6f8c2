// Package scheduler runs the periodic reminder job that tells users they
// have words due for review.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"github.com/phrazzld/vocabquest-api/internal/redact"
	"github.com/phrazzld/vocabquest-api/internal/store"
)

// DueCounter reports every user with due words at a point in time.
type DueCounter interface {
	UsersWithDue(ctx context.Context, now time.Time) ([]store.UserDueCount, error)
}

// Notifier delivers a reminder about dueCount due words to a user.
type Notifier interface {
	SendReminder(ctx context.Context, userID uuid.UUID, dueCount int) error
}

// ErrInvalidInterval is returned by New for a non-positive reminder interval.
var ErrInvalidInterval = errors.New("reminder interval must be positive")

// Scheduler runs the reminder job on a fixed interval.
type Scheduler struct {
	scheduler *gocron.Scheduler
	counter   DueCounter
	notifier  Notifier
	interval  time.Duration
	now       func() time.Time
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates a reminder scheduler. The job runs in loc.
func New(
	counter DueCounter,
	notifier Notifier,
	interval time.Duration,
	loc *time.Location,
	log *slog.Logger,
) (*Scheduler, error) {
	if counter == nil {
		return nil, errors.New("counter cannot be nil")
	}
	if notifier == nil {
		return nil, errors.New("notifier cannot be nil")
	}
	if interval <= 0 {
		return nil, ErrInvalidInterval
	}
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = slog.Default()
	}

	s := gocron.NewScheduler(loc)
	s.SingletonModeAll()

	return &Scheduler{
		scheduler: s,
		counter:   counter,
		notifier:  notifier,
		interval:  interval,
		now:       time.Now,
		timeout:   time.Minute,
		logger:    log.With(slog.String("component", "reminder_scheduler")),
	}, nil
}

// Start registers the reminder job and starts the scheduler without blocking.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(s.runJob); err != nil {
		return fmt.Errorf("schedule reminder job: %w", err)
	}
	s.scheduler.StartAsync()
	s.logger.Info("reminder scheduler started", slog.Duration("interval", s.interval))
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.logger.Info("reminder scheduler stopped")
}

func (s *Scheduler) runJob() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.RunCheck(ctx); err != nil {
		s.logger.Error("reminder check failed", slog.String("error", redact.Error(err)))
	}
}

// RunCheck notifies every user with due words and returns how many reminders
// were sent. A failing notification is logged and does not stop the others.
func (s *Scheduler) RunCheck(ctx context.Context) (int, error) {
	counts, err := s.counter.UsersWithDue(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("list users with due words: %w", err)
	}

	sent := 0
	for _, c := range counts {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		if err := s.notifier.SendReminder(ctx, c.UserID, c.DueCount); err != nil {
			s.logger.Warn("failed to send reminder",
				slog.String("user_id", c.UserID.String()),
				slog.String("error", redact.Error(err)))
			continue
		}
		sent++
	}

	s.logger.Debug("reminder check finished",
		slog.Int("users", len(counts)),
		slog.Int("sent", sent))
	return sent, nil
}

// LogNotifier records reminders in the log instead of delivering them.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{logger: log.With(slog.String("component", "log_notifier"))}
}

// SendReminder implements Notifier.
func (n *LogNotifier) SendReminder(ctx context.Context, userID uuid.UUID, dueCount int) error {
	n.logger.InfoContext(ctx, "words due for review",
		slog.String("user_id", userID.String()),
		slog.Int("due_count", dueCount))
	return nil
}
