package usecase

import (
	"time"

	"github.com/esteira-credito/esteira/pkg/domain/interfaces"
	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/esteira-credito/esteira/pkg/utils/async"
)

// Clock returns the current instant. Tests inject a fixed clock.
type Clock func() time.Time

const (
	DefaultSLAThreshold   = 48 * time.Hour
	DefaultGuardTTL       = 10 * time.Minute
	DefaultSweepWorkers   = 4
	DefaultAvailableLimit = 50
)

type UseCases struct {
	repo        interfaces.Repository
	clock       Clock
	calendar    *model.WorkingHours
	threshold   time.Duration
	guardTTL    time.Duration
	concurrency int
	archiver    interfaces.ExecutionArchiver
	tasks       *async.Group

	Case        *CaseUseCase
	Lock        *LockUseCase
	Transition  *TransitionUseCase
	SLA         *SLAUseCase
	Audit       *AuditUseCase
	Interaction *InteractionUseCase
}

type Option func(*UseCases)

func WithClock(clock Clock) Option {
	return func(uc *UseCases) {
		uc.clock = clock
	}
}

// WithWorkingHours sets the business calendar used for SLA accounting
func WithWorkingHours(calendar *model.WorkingHours) Option {
	return func(uc *UseCases) {
		uc.calendar = calendar
	}
}

// WithSLAThreshold sets how many business hours a lock may be held
func WithSLAThreshold(threshold time.Duration) Option {
	return func(uc *UseCases) {
		uc.threshold = threshold
	}
}

func WithGuardTTL(ttl time.Duration) Option {
	return func(uc *UseCases) {
		uc.guardTTL = ttl
	}
}

// WithConcurrency bounds how many candidates a sweep processes in parallel
func WithConcurrency(n int) Option {
	return func(uc *UseCases) {
		uc.concurrency = n
	}
}

func WithArchiver(archiver interfaces.ExecutionArchiver) Option {
	return func(uc *UseCases) {
		uc.archiver = archiver
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:        repo,
		clock:       func() time.Time { return time.Now().UTC() },
		threshold:   DefaultSLAThreshold,
		guardTTL:    DefaultGuardTTL,
		concurrency: DefaultSweepWorkers,
		tasks:       &async.Group{},
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.calendar == nil {
		uc.calendar = model.DefaultWorkingHours(time.UTC)
	}
	if uc.concurrency < 1 {
		uc.concurrency = 1
	}

	sm := model.NewStateMachine()
	uc.Case = NewCaseUseCase(repo, uc.clock)
	uc.Lock = NewLockUseCase(repo, sm, uc.clock)
	uc.Transition = NewTransitionUseCase(repo, sm, uc.clock)
	uc.Audit = NewAuditUseCase(repo)
	uc.Interaction = NewInteractionUseCase(repo, uc.clock)
	uc.SLA = &SLAUseCase{
		repo:        repo,
		sm:          sm,
		clock:       uc.clock,
		calendar:    uc.calendar,
		threshold:   uc.threshold,
		guardTTL:    uc.guardTTL,
		concurrency: uc.concurrency,
		archiver:    uc.archiver,
		tasks:       uc.tasks,
	}

	return uc
}

// Calendar returns the business calendar in effect
func (uc *UseCases) Calendar() *model.WorkingHours {
	return uc.calendar
}

// Wait blocks until background tasks such as execution archiving finish
func (uc *UseCases) Wait() {
	uc.tasks.Wait()
}
