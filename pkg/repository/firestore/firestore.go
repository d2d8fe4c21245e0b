package firestore

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"github.com/esteira-credito/esteira/pkg/domain/interfaces"
	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type Firestore struct {
	client      *firestore.Client
	caseRepo    *caseRepository
	audit       *auditRepository
	execution   *slaExecutionRepository
	interaction *interactionRepository
	guard       *sweepGuardRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.caseRepo.collectionPrefix = prefix
		f.audit.collectionPrefix = prefix
		f.execution.collectionPrefix = prefix
		f.interaction.collectionPrefix = prefix
		f.guard.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:      client,
		caseRepo:    newCaseRepository(client),
		audit:       newAuditRepository(client),
		execution:   newSLAExecutionRepository(client),
		interaction: newInteractionRepository(client),
		guard:       newSweepGuardRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Case() interfaces.CaseRepository {
	return f.caseRepo
}

func (f *Firestore) Audit() interfaces.AuditRepository {
	return f.audit
}

func (f *Firestore) SLAExecution() interfaces.SLAExecutionRepository {
	return f.execution
}

func (f *Firestore) Interaction() interfaces.InteractionRepository {
	return f.interaction
}

func (f *Firestore) SweepGuard() interfaces.SweepGuardRepository {
	return f.guard
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func collectionName(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}

// unavailable marks an infrastructure failure so that callers can tell it
// apart from domain errors while keeping the original cause in the chain.
func unavailable(err error, msg string, opts ...goerr.Option) error {
	return goerr.Wrap(errors.Join(model.ErrStoreUnavailable, err), msg, opts...)
}

func isDomainError(err error) bool {
	return errors.Is(err, model.ErrNotFound) ||
		errors.Is(err, model.ErrOptimisticConflict)
}
