// Package scheduler runs the recurring reminder loop: birthday broadcasts
// gated to once per local day, and interview reminders deduplicated through
// the persisted claim store. The loop has no durable queue; at-most-once
// delivery rests entirely on the claim-before-notify step.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vroo/hr-tracker/internal/config"
	"github.com/vroo/hr-tracker/internal/model"
	"github.com/vroo/hr-tracker/internal/notifier"
	"github.com/vroo/hr-tracker/internal/repository"
	"github.com/vroo/hr-tracker/pkg/logger"
	"github.com/vroo/hr-tracker/pkg/messaging"
	"github.com/vroo/hr-tracker/pkg/metrics"
	"github.com/vroo/hr-tracker/pkg/timeutil"
)

const (
	jobBirthdayToday    = "birthday_today"
	jobBirthdayUpcoming = "birthday_upcoming"

	reminderChannel = "reminders"
)

// SubscriberSource lists the recipients of a broadcast.
type SubscriberSource interface {
	ListEnabled(ctx context.Context) ([]*model.Subscriber, error)
}

// CandidateSource is the slice of candidate storage the scheduler reads.
type CandidateSource interface {
	FindWithImminentHeadInterview(ctx context.Context, from, to time.Time) ([]*model.Candidate, error)
}

// EmployeeSource is the slice of employee storage the scheduler reads.
type EmployeeSource interface {
	ListWithBirthdays(ctx context.Context) ([]*model.Employee, error)
}

type dailyJob struct {
	name   string
	hour   int
	minute int
	run    func(ctx context.Context, stats *model.TickStats) error
}

type Scheduler struct {
	candidates CandidateSource
	employees  EmployeeSource
	reminders  repository.ReminderRepository
	jobState   repository.JobStateRepository
	subs       SubscriberSource
	notifier   notifier.Notifier
	broker     messaging.Broker
	logger     *logger.Logger
	metrics    *metrics.Metrics

	loc             *time.Location
	pollInterval    time.Duration
	interviewLead   time.Duration
	windowHalfWidth time.Duration
	upcomingOffset  int

	jobs []dailyJob

	// Serializes ticks: the timer loop and the manual tick endpoint share
	// one scheduler. Also guards lastRun.
	runMu sync.Mutex

	// In-process cache of the persisted last-fired day keys.
	lastRun map[string]string

	now func() time.Time
}

type Deps struct {
	Candidates CandidateSource
	Employees  EmployeeSource
	Reminders  repository.ReminderRepository
	JobState   repository.JobStateRepository
	Subs       SubscriberSource
	Notifier   notifier.Notifier
	Broker     messaging.Broker
	Logger     *logger.Logger
	Metrics    *metrics.Metrics
}

func New(cfg config.SchedulerConfig, deps Deps) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.Timezone, err)
	}

	s := &Scheduler{
		candidates:      deps.Candidates,
		employees:       deps.Employees,
		reminders:       deps.Reminders,
		jobState:        deps.JobState,
		subs:            deps.Subs,
		notifier:        deps.Notifier,
		broker:          deps.Broker,
		logger:          deps.Logger,
		metrics:         deps.Metrics,
		loc:             loc,
		pollInterval:    cfg.PollInterval,
		interviewLead:   cfg.InterviewLead,
		windowHalfWidth: cfg.WindowHalfWidth,
		upcomingOffset:  cfg.UpcomingOffsetDays,
		lastRun:         make(map[string]string),
		now:             time.Now,
	}

	s.jobs = []dailyJob{
		{
			name:   jobBirthdayToday,
			hour:   cfg.BirthdayHour,
			minute: cfg.BirthdayMinute,
			run: func(ctx context.Context, stats *model.TickStats) error {
				// Dedup rows from past interviews ride along on the daily job.
				if purged, err := s.reminders.PurgeExpired(ctx, s.now()); err != nil {
					s.logger.ZL.Warn().Err(err).Msg("reminder purge failed")
				} else if purged > 0 {
					s.logger.ZL.Info().Int64("purged", purged).Msg("purged expired reminder records")
				}
				return s.notifyBirthdays(ctx, 0, stats)
			},
		},
		{
			name:   jobBirthdayUpcoming,
			hour:   cfg.UpcomingHour,
			minute: cfg.UpcomingMinute,
			run: func(ctx context.Context, stats *model.TickStats) error {
				return s.notifyBirthdays(ctx, s.upcomingOffset, stats)
			},
		},
	}
	return s, nil
}

// Start drives the poll loop until ctx is cancelled. A tick always runs to
// completion before the next is considered, and a tick failure never stops
// the timer.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	s.logger.ZL.Info().
		Dur("poll_interval", s.pollInterval).
		Str("timezone", s.loc.String()).
		Msg("reminder scheduler started")

	for {
		select {
		case <-ctx.Done():
			s.logger.ZL.Info().Msg("reminder scheduler stopped")
			return
		case <-ticker.C:
			if _, err := s.RunTick(ctx); err != nil {
				s.logger.ZL.Error().Err(err).Msg("reminder tick failed")
			}
		}
	}
}

// RunTick evaluates one poll pass. It is also the manual/test entry point;
// concurrent callers queue behind the running tick.
func (s *Scheduler) RunTick(ctx context.Context) (model.TickStats, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.metrics.Ticks.Inc()
	timer := time.Now()
	defer func() {
		s.metrics.TickDuration.Observe(time.Since(timer).Seconds())
	}()

	var stats model.TickStats
	var firstErr error

	now := s.now()
	hour, minute := timeutil.HourMinute(now, s.loc)
	dayKey := timeutil.DayKey(now, s.loc)

	for i := range s.jobs {
		job := &s.jobs[i]
		if hour != job.hour || minute != job.minute {
			continue
		}
		if s.lastRunDay(ctx, job.name) == dayKey {
			continue
		}
		s.markRun(ctx, job.name, dayKey)
		if err := job.run(ctx, &stats); err != nil {
			s.logger.ZL.Error().Err(err).Str("job", job.name).Msg("daily job failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if err := s.remindInterviews(ctx, &stats); err != nil {
		s.logger.ZL.Error().Err(err).Msg("interview reminders failed")
		if firstErr == nil {
			firstErr = err
		}
	}

	if firstErr != nil {
		s.metrics.TickErrors.Inc()
	}
	return stats, firstErr
}

// lastRunDay consults the in-process cache first and falls back to the
// persisted record, so gating survives restarts without a read per tick.
func (s *Scheduler) lastRunDay(ctx context.Context, jobName string) string {
	if key, ok := s.lastRun[jobName]; ok {
		return key
	}
	key, err := s.jobState.GetLastRun(ctx, jobName)
	if err != nil {
		s.logger.ZL.Warn().Err(err).Str("job", jobName).Msg("failed to read job state")
		return ""
	}
	s.lastRun[jobName] = key
	return key
}

// markRun records the firing before the job runs: a failed job must not
// re-fire the same day.
func (s *Scheduler) markRun(ctx context.Context, jobName, dayKey string) {
	s.lastRun[jobName] = dayKey
	if err := s.jobState.SetLastRun(ctx, jobName, dayKey); err != nil {
		s.logger.ZL.Warn().Err(err).Str("job", jobName).Msg("failed to persist job state")
	}
}

// fanOut delivers text to every enabled subscriber. Per-recipient failures
// are logged and skipped; they never abort the broadcast.
func (s *Scheduler) fanOut(ctx context.Context, subs []*model.Subscriber, text string, stats *model.TickStats) {
	for _, sub := range subs {
		if err := s.notifier.Send(ctx, sub.ChatID, text); err != nil {
			s.metrics.Deliveries.WithLabelValues("error").Inc()
			s.logger.ZL.Warn().Err(err).Int64("chat_id", sub.ChatID).Msg("delivery failed")
			continue
		}
		s.metrics.Deliveries.WithLabelValues("ok").Inc()
		stats.Delivered++
	}
}

// publishEvent mirrors a delivered reminder onto the broker feed,
// best effort.
func (s *Scheduler) publishEvent(ctx context.Context, eventType string, payload interface{}) {
	if s.broker == nil {
		return
	}
	msg := messaging.Message{Type: eventType, Payload: payload}
	if err := s.broker.Publish(ctx, reminderChannel, msg); err != nil {
		s.logger.ZL.Warn().Err(err).Str("event", eventType).Msg("failed to publish reminder event")
	}
}
