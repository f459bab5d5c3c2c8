package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/eluss/chromabet/internal/domain"
	"github.com/eluss/chromabet/internal/infrastructure/metrics"
)

// Scheduler drives the round lifecycle on a fixed period. It owns the
// single-active-round invariant: a new round is only created once the
// previous one is settled, and an unsettled closed round blocks new-round
// creation until settlement succeeds.
type Scheduler struct {
	roundRepo RoundRepository
	engine    SettlementEngine
	publisher EventPublisher
	idGen     IDGenerator
	clock     Clock
	period    time.Duration
	logger    zerolog.Logger
	metrics   *metrics.Metrics

	retryInitial time.Duration
	retryMax     time.Duration
}

// SchedulerConfig holds dependencies for the Scheduler.
type SchedulerConfig struct {
	RoundRepo RoundRepository
	Engine    SettlementEngine
	Publisher EventPublisher
	IDGen     IDGenerator
	Clock     Clock
	Period    time.Duration
	Logger    zerolog.Logger
	Metrics   *metrics.Metrics

	// RetryInitial and RetryMax bound the settlement retry backoff.
	RetryInitial time.Duration
	RetryMax     time.Duration
}

// NewScheduler creates a new Scheduler.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	if cfg.Period <= 0 {
		cfg.Period = time.Minute
	}
	if cfg.RetryInitial <= 0 {
		cfg.RetryInitial = 500 * time.Millisecond
	}
	if cfg.RetryMax <= 0 {
		cfg.RetryMax = 30 * time.Second
	}

	return &Scheduler{
		roundRepo:    cfg.RoundRepo,
		engine:       cfg.Engine,
		publisher:    cfg.Publisher,
		idGen:        cfg.IDGen,
		clock:        cfg.Clock,
		period:       cfg.Period,
		logger:       cfg.Logger,
		metrics:      cfg.Metrics,
		retryInitial: cfg.RetryInitial,
		retryMax:     cfg.RetryMax,
	}
}

// Run drives the round loop until the context is cancelled. On startup any
// round whose end has already passed is settled before a new one opens, and
// a round still open resumes its existing closure timer.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info().Dur("period", s.period).Msg("round scheduler started")

	for {
		if err := ctx.Err(); err != nil {
			s.logger.Info().Msg("round scheduler shutting down")
			return err
		}

		if err := s.step(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}

			s.logger.Error().Err(err).Msg("scheduler step failed")
			if !s.sleep(ctx, time.Second) {
				continue
			}
		}
	}
}

// step performs one transition of the round state machine.
func (s *Scheduler) step(ctx context.Context) error {
	now := s.clock.Now()

	// Recovery first: a due round, decided or not, must be settled before
	// anything else happens.
	overdue, err := s.roundRepo.GetOldestUnsettled(ctx, now)
	if err == nil {
		return s.settleWithRetry(ctx, overdue)
	}
	if !errors.Is(err, domain.ErrRoundNotFound) {
		return err
	}

	current, err := s.roundRepo.GetCurrent(ctx)
	if errors.Is(err, domain.ErrRoundNotFound) {
		return s.openRound(ctx)
	}
	if err != nil {
		return err
	}

	if current.Due(now) {
		return s.settleWithRetry(ctx, current)
	}

	// Resume the existing closure timer.
	s.sleep(ctx, current.EndAt.Sub(now))
	return nil
}

// openRound creates the next sequential round and broadcasts round-started.
// Creation is gated by the store's create-if-absent semantics, so two
// schedulers can never produce overlapping open rounds.
func (s *Scheduler) openRound(ctx context.Context) error {
	latest, err := s.roundRepo.GetLatestNumber(ctx)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	round := &domain.Round{
		ID:        s.idGen.Generate(),
		Number:    latest + 1,
		StartAt:   now,
		EndAt:     now.Add(s.period),
		Outcome:   domain.Undecided,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.roundRepo.CreateOpen(ctx, round); err != nil {
		if errors.Is(err, domain.ErrRoundOverlap) {
			s.logger.Warn().Msg("round already open, skipping creation")
			return nil
		}
		return err
	}

	s.logger.Info().
		Str("round_id", round.ID).
		Int64("round_number", round.Number).
		Time("end_at", round.EndAt).
		Msg("round opened")

	if s.metrics != nil {
		s.metrics.RoundsOpened.Inc()
	}

	s.publishRoundStarted(ctx, round)

	return nil
}

// settleWithRetry hands the round to the settlement engine, retrying with
// exponential backoff for as long as the context lives. Fail-closed: the
// loop never abandons an unsettled round to open a new one over it.
func (s *Scheduler) settleWithRetry(ctx context.Context, round *domain.Round) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retryInitial
	b.MaxInterval = s.retryMax
	b.MaxElapsedTime = 0

	attempt := 0

	return backoff.Retry(func() error {
		_, err := s.engine.SettleRound(ctx, round.ID)
		if err == nil {
			return nil
		}

		attempt++
		s.logger.Warn().Err(err).
			Str("round_id", round.ID).
			Int("attempt", attempt).
			Msg("settlement failed, retrying")

		if s.metrics != nil {
			s.metrics.SettlementRetries.Inc()
		}

		return err
	}, backoff.WithContext(b, ctx))
}

func (s *Scheduler) publishRoundStarted(ctx context.Context, round *domain.Round) {
	event := &domain.Event{
		ID:      s.idGen.Generate(),
		Type:    domain.EventTypeRoundStarted,
		RoundID: round.ID,
		Payload: map[string]any{
			"round_id":     round.ID,
			"round_number": round.Number,
			"start_at":     round.StartAt,
			"end_at":       round.EndAt,
		},
		CreatedAt: s.clock.Now(),
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error().Err(err).
			Str("round_id", round.ID).
			Msg("failed to publish round started event")
	}
}

// sleep waits for d or until the context is cancelled. Returns false when
// cancelled.
func (s *Scheduler) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	select {
	case <-ctx.Done():
		return false
	case <-s.clock.After(d):
		return true
	}
}
